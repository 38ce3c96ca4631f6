package vendors

import (
	"errors"
	"time"
)

// Vendor is a supplier account. CurrentBalance tracks the open payable and is
// maintained by the party ledger.
type Vendor struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	ContactName    string    `json:"contact_name,omitempty"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	IsActive       bool      `json:"is_active"`
	CurrentBalance float64   `json:"current_balance"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

var ErrNotFound = errors.New("vendors: not found")

type CreateVendorRequest struct {
	Name        string `json:"name" validate:"required,max=150"`
	ContactName string `json:"contact_name" validate:"omitempty,max=100"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"omitempty,max=30"`
	Address     string `json:"address" validate:"omitempty,max=255"`
}

type UpdateVendorRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=150"`
	ContactName *string `json:"contact_name" validate:"omitempty,max=100"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=30"`
	Address     *string `json:"address" validate:"omitempty,max=255"`
	IsActive    *bool   `json:"is_active"`
}

type ListVendorsRequest struct {
	Search   string `json:"search,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
}
