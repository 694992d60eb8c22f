package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"abcretail/internal/model"
	"abcretail/internal/store"
	"abcretail/prometheus"
)

// ProductInput carries the mutable product fields.
type ProductInput struct {
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	ImageURL    string
	Category    string
}

func (in *ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return validation("name", "product name is required")
	}
	if in.PriceCents <= 0 {
		return validation("price", "price must be positive")
	}
	if in.Stock < 0 {
		return validation("stock", "stock cannot be negative")
	}
	return nil
}

// ProductService manages the product master data.
type ProductService struct {
	products store.ProductStore
	log      *zap.Logger
}

func NewProductService(products store.ProductStore, log *zap.Logger) *ProductService {
	return &ProductService{products: products, log: log}
}

// Create adds a product with a server-assigned ID and timestamp.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &model.Product{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
		Category:    strings.TrimSpace(in.Category),
		DateAdded:   time.Now().UTC(),
		IsActive:    true,
		Version:     1,
	}
	if err := s.products.InsertProduct(ctx, p); err != nil {
		return nil, err
	}

	prometheus.UpdateProductStock(p.ID, p.Name, float64(p.Stock))
	s.log.Info("Product created",
		zap.String("product_id", p.ID),
		zap.String("name", p.Name),
		zap.Int64("price_cents", p.PriceCents))
	return p, nil
}

// Update replaces the mutable fields of an existing product. Orders
// that already snapshot the old name or price are unaffected.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	oldPrice := p.PriceCents
	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.PriceCents = in.PriceCents
	p.Stock = in.Stock
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}
	p.Category = strings.TrimSpace(in.Category)

	if err := s.products.ReplaceProduct(ctx, p); err != nil {
		return nil, err
	}

	prometheus.UpdateProductStock(p.ID, p.Name, float64(p.Stock))
	s.log.Info("Product updated",
		zap.String("product_id", p.ID),
		zap.Int64("old_price_cents", oldPrice),
		zap.Int64("new_price_cents", p.PriceCents))
	return p, nil
}

// Deactivate soft-deletes a product.
func (s *ProductService) Deactivate(ctx context.Context, id string) error {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return nil
	}
	p.IsActive = false
	if err := s.products.ReplaceProduct(ctx, p); err != nil {
		return err
	}

	s.log.Info("Product deactivated", zap.String("product_id", id))
	return nil
}

// Get returns a product by ID, active or not.
func (s *ProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	return s.products.GetProduct(ctx, id)
}

// List returns products, optionally only active ones.
func (s *ProductService) List(ctx context.Context, activeOnly bool) ([]model.Product, error) {
	return s.products.ListProducts(ctx, activeOnly)
}

// SetImage records the stored image reference on a product.
func (s *ProductService) SetImage(ctx context.Context, id, imageURL string) error {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	p.ImageURL = imageURL
	return s.products.ReplaceProduct(ctx, p)
}
