// Package models - Customer records and embedded addresses.
// This file defines the customer document model, its embedded address list,
// and the listing filter used by storage backends.
//
// Data Design Principles:
// - Addresses are embedded in their customer record, never stored standalone
// - UUID identifiers for customers and addresses (opaque, non-sequential)
// - UTC timestamps on every record for audit trails
// - JSON field names match the public wire format exactly (_id, created_at)
// - Uniqueness of email and phone is enforced by storage, not by the model
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Customer represents a customer record with its embedded addresses.
//
// Design Rationale:
// - The _id JSON name keeps existing API consumers working unchanged
// - Addresses is always non-nil so empty lists serialize as [] not null
// - Email and Phone are stored as given; uniqueness checks are exact-match
// - CreatedAt is set once at creation and never updated
type Customer struct {
	ID        string    `json:"_id"`        // Unique customer identifier (UUID)
	Name      string    `json:"name"`       // Display name
	Email     string    `json:"email"`      // Contact email, unique per customer
	Phone     string    `json:"phone"`      // Contact phone, unique per customer
	Addresses []Address `json:"addresses"`  // Embedded address list (may be empty)
	CreatedAt time.Time `json:"created_at"` // Record creation timestamp (UTC)
}

// Address represents a single postal address embedded in a customer record.
type Address struct {
	ID        string    `json:"_id"`            // Unique address identifier (UUID)
	Line1     string    `json:"line1"`          // Street line
	Area      string    `json:"area,omitempty"` // Optional locality/area
	City      string    `json:"city"`           // City name
	Pincode   string    `json:"pincode"`        // Postal code
	CreatedAt time.Time `json:"created_at"`     // Record creation timestamp (UTC)
}

// CustomerFilter provides pagination and filtering for customer lists.
//
// Query Design:
// - Email performs a case-insensitive substring match
// - Page is 1-based; Limit bounds the page size
// - Offset is derived, never supplied by callers
type CustomerFilter struct {
	Email string `json:"email,omitempty"` // Case-insensitive substring filter
	Page  int    `json:"page,omitempty"`  // 1-based page number
	Limit int    `json:"limit,omitempty"` // Maximum records per page
}

// NewCustomer creates a Customer with a generated ID, an empty address list,
// and a UTC creation timestamp.
func NewCustomer(name, email, phone string) *Customer {
	return &Customer{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Addresses: []Address{},
		CreatedAt: time.Now().UTC(),
	}
}

// NewAddress creates an Address with a generated ID and a UTC creation timestamp.
func NewAddress(line1, area, city, pincode string) *Address {
	return &Address{
		ID:        uuid.NewString(),
		Line1:     line1,
		Area:      area,
		City:      city,
		Pincode:   pincode,
		CreatedAt: time.Now().UTC(),
	}
}

func (c *Customer) Validate() error {
	if c.ID == "" {
		return errors.New("customer ID cannot be empty")
	}

	if err := ValidateID(c.ID); err != nil {
		return fmt.Errorf("invalid customer ID: %w", err)
	}

	if c.Name == "" {
		return errors.New("name cannot be empty")
	}

	if c.Email == "" {
		return errors.New("email cannot be empty")
	}

	if c.Phone == "" {
		return errors.New("phone cannot be empty")
	}

	for i := range c.Addresses {
		if err := c.Addresses[i].Validate(); err != nil {
			return fmt.Errorf("invalid address at index %d: %w", i, err)
		}
	}

	return nil
}

func (a *Address) Validate() error {
	if a.ID == "" {
		return errors.New("address ID cannot be empty")
	}

	if err := ValidateID(a.ID); err != nil {
		return fmt.Errorf("invalid address ID: %w", err)
	}

	if a.Line1 == "" {
		return errors.New("line1 cannot be empty")
	}

	if a.City == "" {
		return errors.New("city cannot be empty")
	}

	if a.Pincode == "" {
		return errors.New("pincode cannot be empty")
	}

	return nil
}

// FindAddress returns the embedded address with the given ID, or false when
// no address matches.
func (c *Customer) FindAddress(addressID string) (*Address, bool) {
	for i := range c.Addresses {
		if c.Addresses[i].ID == addressID {
			return &c.Addresses[i], true
		}
	}
	return nil, false
}

// MatchesEmail reports whether the customer's email contains the given
// fragment, ignoring case. An empty fragment matches every customer.
func (c *Customer) MatchesEmail(fragment string) bool {
	if fragment == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Email), strings.ToLower(fragment))
}

// ValidateID checks that an identifier is a well-formed UUID.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("malformed identifier: %w", err)
	}
	return nil
}

func (f *CustomerFilter) Validate() error {
	if f.Page < 0 {
		return errors.New("page cannot be negative")
	}
	if f.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	return nil
}

// Offset returns the number of records to skip for the filter's page.
func (f *CustomerFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
