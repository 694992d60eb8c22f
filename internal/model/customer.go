package model

import "time"

// Customer represents a registered shopper. Customers are never hard
// deleted; deactivation flips IsActive and active listings filter on it.
type Customer struct {
	ID              string    `json:"id" gorm:"type:varchar(36);primarykey"`
	Name            string    `json:"name" gorm:"type:varchar(50);not null"`
	Surname         string    `json:"surname" gorm:"type:varchar(50);not null"`
	Username        string    `json:"username" gorm:"type:varchar(30);not null"`
	Email           string    `json:"email" gorm:"type:varchar(255);not null"`
	ShippingAddress string    `json:"shipping_address" gorm:"type:varchar(200);not null"`
	PhoneNumber     string    `json:"phone_number,omitempty" gorm:"type:varchar(30)"`
	DateRegistered  time.Time `json:"date_registered"`
	IsActive        bool      `json:"is_active" gorm:"default:true"`
	Version         int64     `json:"-" gorm:"not null;default:1"`
}

// FullName is the display name used in notifications.
func (c *Customer) FullName() string {
	return c.Name + " " + c.Surname
}
