package model

import "time"

// Product represents the product master data. Prices are stored as
// integer cents; see money.go for the decimal boundary conversion.
type Product struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primarykey"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	Description string    `json:"description" gorm:"type:varchar(500)"`
	PriceCents  int64     `json:"price_cents" gorm:"not null"`
	Stock       int       `json:"stock" gorm:"not null;default:0"`
	ImageURL    string    `json:"image_url" gorm:"type:varchar(500)"`
	Category    string    `json:"category,omitempty" gorm:"type:varchar(100)"`
	DateAdded   time.Time `json:"date_added"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	Version     int64     `json:"-" gorm:"not null;default:1"`
}
