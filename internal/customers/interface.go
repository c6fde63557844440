package customers

import (
	"context"

	"customer-service/internal/models"
)

// ServiceInterface defines the interface for customer service operations
type ServiceInterface interface {
	// CreateCustomer registers a new customer and returns the stored record
	CreateCustomer(ctx context.Context, req *models.CreateCustomerRequest) (*models.Customer, error)

	// GetCustomer retrieves a customer with its addresses by ID
	GetCustomer(ctx context.Context, customerID string) (*models.Customer, error)

	// ListCustomers returns a page of customers matching the given request
	ListCustomers(ctx context.Context, req *models.ListCustomersRequest) (*models.CustomerListResponse, error)

	// AddAddress appends an address to an existing customer and returns the stored record
	AddAddress(ctx context.Context, customerID string, req *models.CreateAddressRequest) (*models.Address, error)

	// ListAddresses returns all addresses of an existing customer
	ListAddresses(ctx context.Context, customerID string) ([]models.Address, error)

	// GetAddress retrieves an address by its own ID across all customers
	GetAddress(ctx context.Context, addressID string) (*models.Address, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
