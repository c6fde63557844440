package customers

import (
	"context"
	"errors"

	"customer-service/internal/models"
	"customer-service/internal/storage"
)

// Service handles customer registration and lookup business logic
type Service struct {
	storage storage.Storage
}

// NewService creates a new customer service with the given storage backend
func NewService(storage storage.Storage) *Service {
	return &Service{
		storage: storage,
	}
}

// CreateCustomer registers a new customer and returns the stored record
func (s *Service) CreateCustomer(ctx context.Context, req *models.CreateCustomerRequest) (*models.Customer, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, NewBadRequestError(err.Error())
	}

	customer := models.NewCustomer(req.Name, req.Email, req.Phone)

	if err := s.storage.CreateCustomer(ctx, customer); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, NewDuplicateCustomerError()
		}
		return nil, NewDatabaseError(err)
	}

	return customer, nil
}

// GetCustomer retrieves a customer with its addresses by ID
func (s *Service) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	if err := models.ValidateID(customerID); err != nil {
		return nil, NewBadRequestError("Invalid customer_id format")
	}

	customer, err := s.storage.GetCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewCustomerNotFoundError()
		}
		return nil, NewDatabaseError(err)
	}

	return customer, nil
}

// ListCustomers returns a page of customers matching the given request
func (s *Service) ListCustomers(ctx context.Context, req *models.ListCustomersRequest) (*models.CustomerListResponse, error) {
	req.Normalize()

	items, err := s.storage.ListCustomers(ctx, req.Filter())
	if err != nil {
		return nil, NewDatabaseError(err)
	}

	return models.NewCustomerListResponse(req.Page, req.Limit, items), nil
}

// AddAddress appends an address to an existing customer and returns the stored record
func (s *Service) AddAddress(ctx context.Context, customerID string, req *models.CreateAddressRequest) (*models.Address, error) {
	if err := models.ValidateID(customerID); err != nil {
		return nil, NewBadRequestError("Invalid customer_id format")
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, NewBadRequestError(err.Error())
	}

	address := models.NewAddress(req.Line1, req.Area, req.City, req.Pincode)

	if err := s.storage.AddAddress(ctx, customerID, address); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewCustomerNotFoundError()
		}
		return nil, NewDatabaseError(err)
	}

	return address, nil
}

// ListAddresses returns all addresses of an existing customer
func (s *Service) ListAddresses(ctx context.Context, customerID string) ([]models.Address, error) {
	if err := models.ValidateID(customerID); err != nil {
		return nil, NewBadRequestError("Invalid customer_id format")
	}

	addresses, err := s.storage.Addresses(ctx, customerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewCustomerNotFoundError()
		}
		return nil, NewDatabaseError(err)
	}

	return addresses, nil
}

// GetAddress retrieves an address by its own ID across all customers
func (s *Service) GetAddress(ctx context.Context, addressID string) (*models.Address, error) {
	if err := models.ValidateID(addressID); err != nil {
		return nil, NewBadRequestError("Invalid address_id format")
	}

	address, err := s.storage.GetAddress(ctx, addressID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewAddressNotFoundError()
		}
		return nil, NewDatabaseError(err)
	}

	return address, nil
}
