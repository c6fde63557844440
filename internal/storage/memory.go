package storage

import (
	"context"
	"sort"
	"sync"

	"customer-service/internal/models"
)

// MemoryStorage keeps every record in process memory behind a RWMutex. It
// exists for development and tests; nothing survives a restart. The secondary
// maps give O(1) uniqueness checks and address lookups.
type MemoryStorage struct {
	mu        sync.RWMutex
	customers map[string]*models.Customer // keyed by customer ID
	emails    map[string]string           // email -> customer ID
	phones    map[string]string           // phone -> customer ID
	addresses map[string]string           // address ID -> customer ID
}

// NewMemoryStorage returns an empty in-memory store. The config is accepted
// for factory symmetry but carries nothing this backend needs.
func NewMemoryStorage(config Config) (*MemoryStorage, error) {
	return &MemoryStorage{
		customers: make(map[string]*models.Customer),
		emails:    make(map[string]string),
		phones:    make(map[string]string),
		addresses: make(map[string]string),
	}, nil
}

// copyCustomer returns a deep copy so callers can never mutate stored state
// through the returned value. The address slice needs its own backing array.
func copyCustomer(c *models.Customer) *models.Customer {
	customerCopy := *c
	customerCopy.Addresses = make([]models.Address, len(c.Addresses))
	copy(customerCopy.Addresses, c.Addresses)
	return &customerCopy
}

// CreateCustomer stores a new customer record
func (m *MemoryStorage) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.emails[customer.Email]; taken {
		return ErrDuplicate
	}
	if _, taken := m.phones[customer.Phone]; taken {
		return ErrDuplicate
	}

	m.customers[customer.ID] = copyCustomer(customer)
	m.emails[customer.Email] = customer.ID
	m.phones[customer.Phone] = customer.ID

	for _, address := range customer.Addresses {
		m.addresses[address.ID] = customer.ID
	}

	return nil
}

// GetCustomer retrieves a customer with its addresses by ID
func (m *MemoryStorage) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	customer, exists := m.customers[customerID]
	if !exists {
		return nil, ErrNotFound
	}

	return copyCustomer(customer), nil
}

// ListCustomers returns a page of customers matching the filter
func (m *MemoryStorage) ListCustomers(ctx context.Context, filter models.CustomerFilter) ([]models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*models.Customer, 0, len(m.customers))
	for _, customer := range m.customers {
		if customer.MatchesEmail(filter.Email) {
			matched = append(matched, customer)
		}
	}

	// Stable order: creation time, then ID as tiebreak.
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	return pageOf(matched, filter), nil
}

// pageOf applies pagination and copies the selected window out.
func pageOf(customers []*models.Customer, filter models.CustomerFilter) []models.Customer {
	offset := filter.Offset()
	if offset >= len(customers) {
		return []models.Customer{}
	}

	end := len(customers)
	if filter.Limit > 0 && offset+filter.Limit < end {
		end = offset + filter.Limit
	}

	page := make([]models.Customer, 0, end-offset)
	for _, customer := range customers[offset:end] {
		page = append(page, *copyCustomer(customer))
	}
	return page
}

// AddAddress appends an address to an existing customer
func (m *MemoryStorage) AddAddress(ctx context.Context, customerID string, address *models.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	customer, exists := m.customers[customerID]
	if !exists {
		return ErrNotFound
	}

	customer.Addresses = append(customer.Addresses, *address)
	m.addresses[address.ID] = customerID

	return nil
}

// Addresses returns all addresses of an existing customer
func (m *MemoryStorage) Addresses(ctx context.Context, customerID string) ([]models.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	customer, exists := m.customers[customerID]
	if !exists {
		return nil, ErrNotFound
	}

	addresses := make([]models.Address, len(customer.Addresses))
	copy(addresses, customer.Addresses)
	return addresses, nil
}

// GetAddress retrieves an address by its own ID across all customers
func (m *MemoryStorage) GetAddress(ctx context.Context, addressID string) (*models.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	customerID, exists := m.addresses[addressID]
	if !exists {
		return nil, ErrNotFound
	}

	customer := m.customers[customerID]
	address, ok := customer.FindAddress(addressID)
	if !ok {
		return nil, ErrNotFound
	}

	addressCopy := *address
	return &addressCopy, nil
}

// Ping always succeeds; memory is as reachable as it gets.
func (m *MemoryStorage) Ping(_ context.Context) error {
	return nil
}

// Close drops all records so a reused instance starts empty.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.customers = make(map[string]*models.Customer)
	m.emails = make(map[string]string)
	m.phones = make(map[string]string)
	m.addresses = make(map[string]string)

	return nil
}
