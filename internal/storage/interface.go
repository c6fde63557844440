package storage

import (
	"context"
	"time"

	"customer-service/internal/models"
)

// Storage is the persistence boundary for customer records, implemented by
// the JSON file, in-memory, and SQL backends.
//
// Semantics shared by all implementations:
//   - CreateCustomer returns ErrDuplicate when the email or phone is already taken
//   - Lookups return ErrNotFound for missing records
//   - Returned values are copies; mutating them never affects stored state
//   - ListCustomers orders by creation time (oldest first), then ID
type Storage interface {
	// CreateCustomer stores a new customer record
	CreateCustomer(ctx context.Context, customer *models.Customer) error

	// GetCustomer retrieves a customer with its addresses by ID
	GetCustomer(ctx context.Context, customerID string) (*models.Customer, error)

	// ListCustomers returns a page of customers matching the filter
	ListCustomers(ctx context.Context, filter models.CustomerFilter) ([]models.Customer, error)

	// AddAddress appends an address to an existing customer
	AddAddress(ctx context.Context, customerID string, address *models.Address) error

	// Addresses returns all addresses of an existing customer
	Addresses(ctx context.Context, customerID string) ([]models.Address, error)

	// GetAddress retrieves an address by its own ID across all customers
	GetAddress(ctx context.Context, addressID string) (*models.Address, error)

	// Ping verifies the backend is reachable and operational
	Ping(ctx context.Context) error

	// Close releases files, pools, and background workers
	Close() error
}

// Config is the backend-neutral configuration the factory hands every
// constructor. Each backend reads the fields it understands and ignores the
// rest.
type Config struct {
	// Type names the backend: json, memory, postgres, sqlite, or mysql.
	Type string `json:"type" yaml:"type"`

	// Path locates the data file of the json backend.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// ConnectionString is the DSN for the database backends.
	ConnectionString string `json:"connection_string,omitempty" yaml:"connection_string,omitempty"`

	// CacheEnabled and CacheTTL govern the read cache of file-based backends
	CacheEnabled bool          `json:"cache_enabled,omitempty" yaml:"cache_enabled,omitempty"`
	CacheTTL     time.Duration `json:"cache_ttl,omitempty" yaml:"cache_ttl,omitempty"`

	// Connection pool settings for database backends
	MaxOpenConns    int           `json:"max_open_conns,omitempty" yaml:"max_open_conns,omitempty"`
	MaxIdleConns    int           `json:"max_idle_conns,omitempty" yaml:"max_idle_conns,omitempty"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime,omitempty" yaml:"conn_max_lifetime,omitempty"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time,omitempty" yaml:"conn_max_idle_time,omitempty"`

	// Options carries backend-specific extras that have no field of their own.
	Options map[string]interface{} `json:"options,omitempty" yaml:"options,omitempty"`
}
