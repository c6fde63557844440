package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"customer-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteTestStorage(t *testing.T) Storage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStorage(Config{Type: "sqlite", ConnectionString: dbPath})
	if err != nil {
		t.Fatalf("failed to create sqlite storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorage(t *testing.T) {
	storage := newSQLiteTestStorage(t)
	ctx := context.Background()

	t.Run("Customer CRUD", func(t *testing.T) {
		created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		customer := models.NewCustomer("Asha Rao", "asha@example.com", "+91-9000000001")
		customer.CreatedAt = created
		customer.Addresses = append(customer.Addresses,
			*models.NewAddress("221B MG Road", "Indiranagar", "Bengaluru", "560038"))

		if err := storage.CreateCustomer(ctx, customer); err != nil {
			t.Fatalf("CreateCustomer failed: %v", err)
		}

		got, err := storage.GetCustomer(ctx, customer.ID)
		if err != nil {
			t.Fatalf("GetCustomer failed: %v", err)
		}
		if got.Name != "Asha Rao" {
			t.Errorf("expected name 'Asha Rao', got %q", got.Name)
		}
		if got.Email != "asha@example.com" {
			t.Errorf("expected email, got %q", got.Email)
		}
		if len(got.Addresses) != 1 {
			t.Fatalf("expected 1 embedded address, got %d", len(got.Addresses))
		}
		if got.Addresses[0].Area != "Indiranagar" {
			t.Errorf("expected area 'Indiranagar', got %q", got.Addresses[0].Area)
		}
		assert.WithinDuration(t, created, got.CreatedAt, time.Second)

		// Get non-existent customer
		_, err = storage.GetCustomer(ctx, "b7f3a3f4-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Address Operations", func(t *testing.T) {
		customer := models.NewCustomer("Ravi Kumar", "ravi@example.com", "+91-9000000002")
		require.NoError(t, storage.CreateCustomer(ctx, customer))

		addresses, err := storage.Addresses(ctx, customer.ID)
		require.NoError(t, err)
		assert.NotNil(t, addresses)
		assert.Empty(t, addresses)

		// Area is optional and round-trips as empty when absent
		address := models.NewAddress("9 Lake View", "", "Kochi", "682001")
		require.NoError(t, storage.AddAddress(ctx, customer.ID, address))

		addresses, err = storage.Addresses(ctx, customer.ID)
		require.NoError(t, err)
		require.Len(t, addresses, 1)
		assert.Equal(t, "9 Lake View", addresses[0].Line1)
		assert.Equal(t, "", addresses[0].Area)

		got, err := storage.GetAddress(ctx, address.ID)
		require.NoError(t, err)
		assert.Equal(t, "Kochi", got.City)
		assert.Equal(t, address.ID, got.ID)

		// Unknown IDs map to ErrNotFound
		_, err = storage.GetAddress(ctx, "b7f3a3f4-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, ErrNotFound)

		err = storage.AddAddress(ctx, "b7f3a3f4-0000-0000-0000-000000000000",
			models.NewAddress("1 Main St", "", "Pune", "411001"))
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = storage.Addresses(ctx, "b7f3a3f4-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSQLiteStorage_DuplicateCustomer(t *testing.T) {
	storage := newSQLiteTestStorage(t)
	ctx := context.Background()

	first := models.NewCustomer("First", "dup@example.com", "+91-9000000010")
	require.NoError(t, storage.CreateCustomer(ctx, first))

	sameEmail := models.NewCustomer("Second", "dup@example.com", "+91-9000000011")
	assert.ErrorIs(t, storage.CreateCustomer(ctx, sameEmail), ErrDuplicate)

	samePhone := models.NewCustomer("Third", "third@example.com", "+91-9000000010")
	assert.ErrorIs(t, storage.CreateCustomer(ctx, samePhone), ErrDuplicate)

	// The rejected rows must not be visible
	customers, err := storage.ListCustomers(ctx, models.CustomerFilter{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, customers, 1)
}

func TestSQLiteStorage_ListCustomers(t *testing.T) {
	storage := newSQLiteTestStorage(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		c := models.NewCustomer(
			fmt.Sprintf("Customer %d", i),
			fmt.Sprintf("customer%d@example.com", i),
			fmt.Sprintf("+91-90000001%02d", i),
		)
		c.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, storage.CreateCustomer(ctx, c))
	}

	// Ordered by creation time
	all, err := storage.ListCustomers(ctx, models.CustomerFilter{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "Customer 0", all[0].Name)
	assert.Equal(t, "Customer 4", all[4].Name)
	for _, c := range all {
		assert.NotNil(t, c.Addresses)
	}

	// Case-insensitive substring filter
	filtered, err := storage.ListCustomers(ctx, models.CustomerFilter{Email: "CUSTOMER3", Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Customer 3", filtered[0].Name)

	// Pagination
	page2, err := storage.ListCustomers(ctx, models.CustomerFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, "Customer 2", page2[0].Name)

	empty, err := storage.ListCustomers(ctx, models.CustomerFilter{Page: 10, Limit: 20})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestSQLiteStorage_PersistsAcrossInstances(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "persist.db")

	first, err := NewSQLiteStorage(Config{Type: "sqlite", ConnectionString: dbPath})
	require.NoError(t, err)

	ctx := context.Background()
	customer := models.NewCustomer("Durable", "durable@example.com", "+91-9000000020")
	require.NoError(t, first.CreateCustomer(ctx, customer))
	require.NoError(t, first.AddAddress(ctx, customer.ID,
		models.NewAddress("14 Hill Road", "Bandra", "Mumbai", "400050")))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStorage(Config{Type: "sqlite", ConnectionString: dbPath})
	require.NoError(t, err)
	defer second.Close()

	got, err := second.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Durable", got.Name)
	require.Len(t, got.Addresses, 1)
	assert.Equal(t, "Mumbai", got.Addresses[0].City)
}

func TestSQLiteStorageErrors(t *testing.T) {
	t.Run("Invalid Connection String", func(t *testing.T) {
		_, err := NewSQLiteStorage(Config{Type: "sqlite", ConnectionString: ""})
		if err == nil {
			t.Error("Expected error with empty connection string")
		}
	})

	t.Run("Database Creation", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "created.db")

		storage, err := NewSQLiteStorage(Config{Type: "sqlite", ConnectionString: dbPath})
		if err != nil {
			t.Errorf("SQLite should create database file: %v", err)
		}
		if storage != nil {
			storage.Close()
		}

		// Check if file was created
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("Database file should have been created")
		}
	})
}
