package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"abcretail/internal/model"
	"abcretail/internal/store"
)

// CustomerInput carries the mutable customer fields for create and
// update requests.
type CustomerInput struct {
	Name            string
	Surname         string
	Username        string
	Email           string
	ShippingAddress string
	PhoneNumber     string
}

func (in *CustomerInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return validation("name", "first name is required")
	}
	if strings.TrimSpace(in.Surname) == "" {
		return validation("surname", "last name is required")
	}
	if l := len(strings.TrimSpace(in.Username)); l < 3 || l > 30 {
		return validation("username", "username must be between 3 and 30 characters")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return validation("email", "invalid email address")
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return validation("shipping_address", "shipping address is required")
	}
	return nil
}

// CustomerService manages customer records. Customers are soft
// deleted: Deactivate flips IsActive and the record remains readable.
type CustomerService struct {
	customers store.CustomerStore
	log       *zap.Logger
}

func NewCustomerService(customers store.CustomerStore, log *zap.Logger) *CustomerService {
	return &CustomerService{customers: customers, log: log}
}

// Create registers a customer with a server-assigned ID and timestamp.
func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*model.Customer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	c := &model.Customer{
		ID:              uuid.New().String(),
		Name:            strings.TrimSpace(in.Name),
		Surname:         strings.TrimSpace(in.Surname),
		Username:        strings.TrimSpace(in.Username),
		Email:           strings.TrimSpace(in.Email),
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		PhoneNumber:     strings.TrimSpace(in.PhoneNumber),
		DateRegistered:  time.Now().UTC(),
		IsActive:        true,
		Version:         1,
	}
	if err := s.customers.InsertCustomer(ctx, c); err != nil {
		return nil, err
	}

	s.log.Info("Customer created",
		zap.String("customer_id", c.ID),
		zap.String("username", c.Username))
	return c, nil
}

// Update replaces the mutable fields of an existing customer. The ID
// and registration timestamp never change.
func (s *CustomerService) Update(ctx context.Context, id string, in CustomerInput) (*model.Customer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	c, err := s.customers.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Surname = strings.TrimSpace(in.Surname)
	c.Username = strings.TrimSpace(in.Username)
	c.Email = strings.TrimSpace(in.Email)
	c.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	c.PhoneNumber = strings.TrimSpace(in.PhoneNumber)

	if err := s.customers.ReplaceCustomer(ctx, c); err != nil {
		return nil, err
	}

	s.log.Info("Customer updated", zap.String("customer_id", c.ID))
	return c, nil
}

// Deactivate soft-deletes a customer.
func (s *CustomerService) Deactivate(ctx context.Context, id string) error {
	c, err := s.customers.GetCustomer(ctx, id)
	if err != nil {
		return err
	}
	if !c.IsActive {
		return nil
	}
	c.IsActive = false
	if err := s.customers.ReplaceCustomer(ctx, c); err != nil {
		return err
	}

	s.log.Info("Customer deactivated", zap.String("customer_id", id))
	return nil
}

// Get returns a customer by ID, active or not.
func (s *CustomerService) Get(ctx context.Context, id string) (*model.Customer, error) {
	return s.customers.GetCustomer(ctx, id)
}

// List returns customers, optionally only active ones.
func (s *CustomerService) List(ctx context.Context, activeOnly bool) ([]model.Customer, error) {
	return s.customers.ListCustomers(ctx, activeOnly)
}
