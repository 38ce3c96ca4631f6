package customers

import (
	"errors"
	"time"
)

// Customer is a shipper account. CurrentBalance is maintained by the party
// ledger and is read-only here.
type Customer struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	IsActive       bool      `json:"is_active"`
	CurrentBalance float64   `json:"current_balance"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

var ErrNotFound = errors.New("customers: not found")

// CreateCustomerRequest opens a customer account.
type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=150"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=30"`
	Address string `json:"address" validate:"omitempty,max=255"`
}

// UpdateCustomerRequest patches customer fields. The balance is not editable.
type UpdateCustomerRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=150"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
	Address  *string `json:"address" validate:"omitempty,max=255"`
	IsActive *bool   `json:"is_active"`
}

// ListCustomersRequest filters the listing.
type ListCustomersRequest struct {
	Search   string `json:"search,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
}
