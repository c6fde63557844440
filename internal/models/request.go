// Package models - incoming request bodies and query parameters.
//
// Every request type validates before it normalizes, so an error always
// describes what the caller actually sent. The validation messages are part
// of the API contract; clients match on them and they must not drift.
package models

import (
	"errors"
	"strings"
)

// Paging bounds applied during normalization. Out-of-range values are
// clamped rather than rejected so sloppy clients still get a sane page.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// CreateCustomerRequest is the POST /v1/customers body. All three fields are
// required and the combined message names them all at once; uniqueness of
// email and phone is enforced by storage, not here.
type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CreateAddressRequest is the body for appending an address to a customer.
type CreateAddressRequest struct {
	Line1   string `json:"line1"`          // Street line (required)
	Area    string `json:"area,omitempty"` // Optional locality
	City    string `json:"city"`           // City (required)
	Pincode string `json:"pincode"`        // Postal code (required)
}

// ListCustomersRequest carries the query parameters of a customer list call.
type ListCustomersRequest struct {
	Email string `json:"email,omitempty"` // Case-insensitive substring filter
	Page  int    `json:"page,omitempty"`  // 1-based page, defaults to 1
	Limit int    `json:"limit,omitempty"` // Page size, defaults to 20, capped at 100
}

func (r *CreateCustomerRequest) Validate() error {
	if r.Name == "" || r.Email == "" || r.Phone == "" {
		return errors.New("Name, email, and phone are required")
	}
	return nil
}

func (r *CreateCustomerRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r *CreateAddressRequest) Validate() error {
	if r.Line1 == "" || r.City == "" || r.Pincode == "" {
		return errors.New("line1, city, and pincode are required")
	}
	return nil
}

func (r *CreateAddressRequest) Normalize() {
	r.Line1 = strings.TrimSpace(r.Line1)
	r.Area = strings.TrimSpace(r.Area)
	r.City = strings.TrimSpace(r.City)
	r.Pincode = strings.TrimSpace(r.Pincode)
}

func (r *ListCustomersRequest) Validate() error {
	// Paging inputs are clamped in Normalize, so nothing can fail here yet.
	// Kept for symmetry with the other request types.
	return nil
}

func (r *ListCustomersRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)

	if r.Page < 1 {
		r.Page = DefaultPage
	}
	if r.Limit < 1 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
}

// Filter converts the normalized request into a storage filter.
func (r *ListCustomersRequest) Filter() CustomerFilter {
	return CustomerFilter{
		Email: r.Email,
		Page:  r.Page,
		Limit: r.Limit,
	}
}
