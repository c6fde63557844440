package customers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"customer-service/internal/models"
	"customer-service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStorage implements storage.Storage and fails every operation,
// standing in for a broken database.
type failingStorage struct {
	err error
}

func (f *failingStorage) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return f.err
}

func (f *failingStorage) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	return nil, f.err
}

func (f *failingStorage) ListCustomers(ctx context.Context, filter models.CustomerFilter) ([]models.Customer, error) {
	return nil, f.err
}

func (f *failingStorage) AddAddress(ctx context.Context, customerID string, address *models.Address) error {
	return f.err
}

func (f *failingStorage) Addresses(ctx context.Context, customerID string) ([]models.Address, error) {
	return nil, f.err
}

func (f *failingStorage) GetAddress(ctx context.Context, addressID string) (*models.Address, error) {
	return nil, f.err
}

func (f *failingStorage) Ping(ctx context.Context) error {
	return f.err
}

func (f *failingStorage) Close() error {
	return nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := storage.NewMemoryStorage(storage.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewService(store)
}

// requireServiceError asserts err is a ServiceError with the expected HTTP mapping.
func requireServiceError(t *testing.T, err error, code string, status int, message string) {
	t.Helper()
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, code, serviceErr.Code)
	assert.Equal(t, status, serviceErr.StatusCode)
	assert.Equal(t, message, serviceErr.Message)
}

func TestNewService(t *testing.T) {
	store, err := storage.NewMemoryStorage(storage.Config{})
	require.NoError(t, err)
	defer store.Close()

	service := NewService(store)
	assert.NotNil(t, service)
	assert.Equal(t, store, service.storage)
}

func TestService_CreateCustomer(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		request     *models.CreateCustomerRequest
		expectError bool
		errorCode   string
		errorMsg    string
	}{
		{
			name: "valid customer",
			request: &models.CreateCustomerRequest{
				Name:  "Asha Rao",
				Email: "asha@example.com",
				Phone: "+91-9000000001",
			},
		},
		{
			name: "surrounding whitespace is trimmed",
			request: &models.CreateCustomerRequest{
				Name:  "  Ravi Kumar  ",
				Email: " ravi@example.com ",
				Phone: " +91-9000000002 ",
			},
		},
		{
			name:        "missing name",
			request:     &models.CreateCustomerRequest{Email: "x@example.com", Phone: "+91-9000000003"},
			expectError: true,
			errorCode:   models.ErrorCodeBadRequest,
			errorMsg:    "Name, email, and phone are required",
		},
		{
			name:        "missing email",
			request:     &models.CreateCustomerRequest{Name: "X", Phone: "+91-9000000004"},
			expectError: true,
			errorCode:   models.ErrorCodeBadRequest,
			errorMsg:    "Name, email, and phone are required",
		},
		{
			name:        "whitespace-only phone",
			request:     &models.CreateCustomerRequest{Name: "X", Email: "x@example.com", Phone: "   "},
			expectError: true,
			errorCode:   models.ErrorCodeBadRequest,
			errorMsg:    "Name, email, and phone are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService(t)

			customer, err := service.CreateCustomer(ctx, tt.request)
			if tt.expectError {
				requireServiceError(t, err, tt.errorCode, http.StatusBadRequest, tt.errorMsg)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, customer.ID)
			assert.NoError(t, models.ValidateID(customer.ID))
			assert.NotNil(t, customer.Addresses)
			assert.Empty(t, customer.Addresses)
			assert.WithinDuration(t, time.Now().UTC(), customer.CreatedAt, 2*time.Second)

			// Normalized values were stored
			stored, err := service.GetCustomer(ctx, customer.ID)
			require.NoError(t, err)
			assert.Equal(t, customer.Name, stored.Name)
			assert.NotContains(t, stored.Name, "  ")
		})
	}
}

func TestService_CreateCustomer_Duplicate(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.CreateCustomer(ctx, &models.CreateCustomerRequest{
		Name: "First", Email: "dup@example.com", Phone: "+91-9000000010",
	})
	require.NoError(t, err)

	_, err = service.CreateCustomer(ctx, &models.CreateCustomerRequest{
		Name: "Second", Email: "dup@example.com", Phone: "+91-9000000011",
	})
	requireServiceError(t, err, models.ErrorCodeConflict, http.StatusConflict, "Email or phone already exists")

	_, err = service.CreateCustomer(ctx, &models.CreateCustomerRequest{
		Name: "Third", Email: "third@example.com", Phone: "+91-9000000010",
	})
	requireServiceError(t, err, models.ErrorCodeConflict, http.StatusConflict, "Email or phone already exists")
}

func TestService_CreateCustomer_DatabaseError(t *testing.T) {
	service := NewService(&failingStorage{err: errors.New("connection refused")})

	_, err := service.CreateCustomer(context.Background(), &models.CreateCustomerRequest{
		Name: "X", Email: "x@example.com", Phone: "+91-9000000012",
	})

	// The wire message must not leak backend details
	requireServiceError(t, err, models.ErrorCodeDatabaseError, http.StatusInternalServerError, "A database error occurred")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestService_GetCustomer(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	created, err := service.CreateCustomer(ctx, &models.CreateCustomerRequest{
		Name: "Asha Rao", Email: "asha@example.com", Phone: "+91-9000000020",
	})
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		got, err := service.GetCustomer(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Asha Rao", got.Name)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := service.GetCustomer(ctx, "not-a-uuid")
		requireServiceError(t, err, models.ErrorCodeBadRequest, http.StatusBadRequest, "Invalid customer_id format")
	})

	t.Run("missing", func(t *testing.T) {
		_, err := service.GetCustomer(ctx, "b7f3a3f4-0000-4000-8000-000000000000")
		requireServiceError(t, err, models.ErrorCodeNotFound, http.StatusNotFound, "Customer not found")
	})
}

func TestService_ListCustomers(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	for _, c := range []struct{ name, email, phone string }{
		{"Asha Rao", "asha@example.com", "+91-9000000030"},
		{"Ravi Kumar", "ravi@example.com", "+91-9000000031"},
		{"Meera Nair", "meera@other.org", "+91-9000000032"},
	} {
		_, err := service.CreateCustomer(ctx, &models.CreateCustomerRequest{
			Name: c.name, Email: c.email, Phone: c.phone,
		})
		require.NoError(t, err)
	}

	t.Run("defaults applied", func(t *testing.T) {
		resp, err := service.ListCustomers(ctx, &models.ListCustomersRequest{})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 20, resp.Limit)
		assert.Len(t, resp.Data, 3)
	})

	t.Run("out-of-range values are clamped", func(t *testing.T) {
		resp, err := service.ListCustomers(ctx, &models.ListCustomersRequest{Page: -5, Limit: 5000})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, models.MaxLimit, resp.Limit)
	})

	t.Run("email filter", func(t *testing.T) {
		resp, err := service.ListCustomers(ctx, &models.ListCustomersRequest{Email: "EXAMPLE.com"})
		require.NoError(t, err)
		assert.Len(t, resp.Data, 2)
	})

	t.Run("page past the end yields empty data", func(t *testing.T) {
		resp, err := service.ListCustomers(ctx, &models.ListCustomersRequest{Page: 9})
		require.NoError(t, err)
		assert.Equal(t, 9, resp.Page)
		assert.NotNil(t, resp.Data)
		assert.Empty(t, resp.Data)
	})
}

func TestService_ListCustomers_DatabaseError(t *testing.T) {
	service := NewService(&failingStorage{err: errors.New("timeout")})

	_, err := service.ListCustomers(context.Background(), &models.ListCustomersRequest{})
	requireServiceError(t, err, models.ErrorCodeDatabaseError, http.StatusInternalServerError, "A database error occurred")
}

func TestService_AddAddress(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	created, err := service.CreateCustomer(ctx, &models.CreateCustomerRequest{
		Name: "Asha Rao", Email: "asha@example.com", Phone: "+91-9000000040",
	})
	require.NoError(t, err)

	t.Run("valid address", func(t *testing.T) {
		address, err := service.AddAddress(ctx, created.ID, &models.CreateAddressRequest{
			Line1: "221B MG Road", Area: "Indiranagar", City: "Bengaluru", Pincode: "560038",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, address.ID)
		assert.NoError(t, models.ValidateID(address.ID))
		assert.Equal(t, "Indiranagar", address.Area)
		assert.WithinDuration(t, time.Now().UTC(), address.CreatedAt, 2*time.Second)

		got, err := service.GetCustomer(ctx, created.ID)
		require.NoError(t, err)
		assert.Len(t, got.Addresses, 1)
	})

	t.Run("area is optional", func(t *testing.T) {
		address, err := service.AddAddress(ctx, created.ID, &models.CreateAddressRequest{
			Line1: "9 Lake View", City: "Kochi", Pincode: "682001",
		})
		require.NoError(t, err)
		assert.Equal(t, "", address.Area)
	})

	t.Run("missing required fields", func(t *testing.T) {
		_, err := service.AddAddress(ctx, created.ID, &models.CreateAddressRequest{Line1: "only line1"})
		requireServiceError(t, err, models.ErrorCodeBadRequest, http.StatusBadRequest, "line1, city, and pincode are required")
	})

	t.Run("malformed customer id", func(t *testing.T) {
		_, err := service.AddAddress(ctx, "zzz", &models.CreateAddressRequest{
			Line1: "1 Main St", City: "Pune", Pincode: "411001",
		})
		requireServiceError(t, err, models.ErrorCodeBadRequest, http.StatusBadRequest, "Invalid customer_id format")
	})

	t.Run("missing customer", func(t *testing.T) {
		_, err := service.AddAddress(ctx, "b7f3a3f4-0000-4000-8000-000000000000", &models.CreateAddressRequest{
			Line1: "1 Main St", City: "Pune", Pincode: "411001",
		})
		requireServiceError(t, err, models.ErrorCodeNotFound, http.StatusNotFound, "Customer not found")
	})
}

func TestService_ListAddresses(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	created, err := service.CreateCustomer(ctx, &models.CreateCustomerRequest{
		Name: "Ravi Kumar", Email: "ravi@example.com", Phone: "+91-9000000050",
	})
	require.NoError(t, err)

	t.Run("empty list for new customer", func(t *testing.T) {
		addresses, err := service.ListAddresses(ctx, created.ID)
		require.NoError(t, err)
		assert.NotNil(t, addresses)
		assert.Empty(t, addresses)
	})

	t.Run("returns stored addresses", func(t *testing.T) {
		_, err := service.AddAddress(ctx, created.ID, &models.CreateAddressRequest{
			Line1: "14 Hill Road", Area: "Bandra", City: "Mumbai", Pincode: "400050",
		})
		require.NoError(t, err)

		addresses, err := service.ListAddresses(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, addresses, 1)
		assert.Equal(t, "Mumbai", addresses[0].City)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := service.ListAddresses(ctx, "12345")
		requireServiceError(t, err, models.ErrorCodeBadRequest, http.StatusBadRequest, "Invalid customer_id format")
	})

	t.Run("missing customer", func(t *testing.T) {
		_, err := service.ListAddresses(ctx, "b7f3a3f4-0000-4000-8000-000000000000")
		requireServiceError(t, err, models.ErrorCodeNotFound, http.StatusNotFound, "Customer not found")
	})
}

func TestService_GetAddress(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	created, err := service.CreateCustomer(ctx, &models.CreateCustomerRequest{
		Name: "Meera Nair", Email: "meera@example.com", Phone: "+91-9000000060",
	})
	require.NoError(t, err)

	address, err := service.AddAddress(ctx, created.ID, &models.CreateAddressRequest{
		Line1: "77 Beach Road", City: "Chennai", Pincode: "600001",
	})
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		got, err := service.GetAddress(ctx, address.ID)
		require.NoError(t, err)
		assert.Equal(t, address.ID, got.ID)
		assert.Equal(t, "Chennai", got.City)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := service.GetAddress(ctx, "not-a-uuid")
		requireServiceError(t, err, models.ErrorCodeBadRequest, http.StatusBadRequest, "Invalid address_id format")
	})

	t.Run("missing", func(t *testing.T) {
		_, err := service.GetAddress(ctx, "b7f3a3f4-0000-4000-8000-000000000000")
		requireServiceError(t, err, models.ErrorCodeNotFound, http.StatusNotFound, "Address not found")
	})
}
