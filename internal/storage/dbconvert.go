package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"customer-service/internal/models"
)

// sqlStore is the shared database/sql implementation behind the SQLite and
// MySQL backends. Both dialects accept ? placeholders, so all query text is
// shared; the constructors supply dialect-specific DDL and error mapping.
type sqlStore struct {
	db          *sql.DB
	isDuplicate func(error) bool
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

// applyPoolSettings copies the configured connection pool limits onto the DB.
func applyPoolSettings(db *sql.DB, config Config) {
	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}
	if config.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(config.ConnMaxIdleTime)
	}
}

// CreateCustomer stores a new customer record.
func (s *sqlStore) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO customers (id, name, email, phone, created_at) VALUES (?, ?, ?, ?, ?)`,
		customer.ID, customer.Name, customer.Email, customer.Phone, customer.CreatedAt,
	)
	if err != nil {
		if s.isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}

	for i := range customer.Addresses {
		address := &customer.Addresses[i]
		_, err = tx.ExecContext(ctx,
			`INSERT INTO addresses (id, customer_id, line1, area, city, pincode, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			address.ID, customer.ID, address.Line1, stringToNullString(address.Area),
			address.City, address.Pincode, address.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create address: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetCustomer retrieves a customer with its addresses by ID.
func (s *sqlStore) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, created_at FROM customers WHERE id = ?`, customerID)

	customer, err := scanSQLCustomer(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	grouped, err := s.addressesFor(ctx, []string{customerID})
	if err != nil {
		return nil, err
	}
	customer.Addresses = grouped[customerID]
	if customer.Addresses == nil {
		customer.Addresses = []models.Address{}
	}

	return customer, nil
}

// ListCustomers returns a page of customers matching the filter.
func (s *sqlStore) ListCustomers(ctx context.Context, filter models.CustomerFilter) ([]models.Customer, error) {
	// The LIKE pattern is computed here so the query works on both dialects
	// without relying on concat operators.
	pattern := "%" + strings.ToLower(filter.Email) + "%"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, phone, created_at
		 FROM customers
		 WHERE ? = '' OR LOWER(email) LIKE ?
		 ORDER BY created_at, id
		 LIMIT ? OFFSET ?`,
		filter.Email, pattern, filter.Limit, filter.Offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	ids := []string{}
	for rows.Next() {
		customer, err := scanSQLCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customer.Addresses = []models.Address{}
		customers = append(customers, *customer)
		ids = append(ids, customer.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}

	if len(ids) == 0 {
		return customers, nil
	}

	grouped, err := s.addressesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range customers {
		if addrs, ok := grouped[customers[i].ID]; ok {
			customers[i].Addresses = addrs
		}
	}

	return customers, nil
}

// AddAddress appends an address to an existing customer.
func (s *sqlStore) AddAddress(ctx context.Context, customerID string, address *models.Address) error {
	exists, err := s.customerExists(ctx, customerID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO addresses (id, customer_id, line1, area, city, pincode, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		address.ID, customerID, address.Line1, stringToNullString(address.Area),
		address.City, address.Pincode, address.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add address: %w", err)
	}
	return nil
}

// Addresses returns all addresses of an existing customer.
func (s *sqlStore) Addresses(ctx context.Context, customerID string) ([]models.Address, error) {
	exists, err := s.customerExists(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	grouped, err := s.addressesFor(ctx, []string{customerID})
	if err != nil {
		return nil, err
	}

	addresses := grouped[customerID]
	if addresses == nil {
		addresses = []models.Address{}
	}
	return addresses, nil
}

// GetAddress retrieves an address by its own ID across all customers.
func (s *sqlStore) GetAddress(ctx context.Context, addressID string) (*models.Address, error) {
	var (
		line1     string
		area      sql.NullString
		city      string
		pincode   string
		createdAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT line1, area, city, pincode, created_at FROM addresses WHERE id = ?`, addressID,
	).Scan(&line1, &area, &city, &pincode, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get address: %w", err)
	}

	return &models.Address{
		ID:        addressID,
		Line1:     line1,
		Area:      nullStringToString(area),
		City:      city,
		Pincode:   pincode,
		CreatedAt: createdAt.UTC(),
	}, nil
}

func (s *sqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) customerExists(ctx context.Context, customerID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM customers WHERE id = ?`, customerID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check customer: %w", err)
	}
	return count > 0, nil
}

// addressesFor loads the addresses of the given customers in one query,
// grouped by customer ID.
func (s *sqlStore) addressesFor(ctx context.Context, customerIDs []string) (map[string][]models.Address, error) {
	placeholders := strings.Repeat("?,", len(customerIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(customerIDs))
	for i, id := range customerIDs {
		args[i] = id
	}

	query := fmt.Sprintf(
		`SELECT id, customer_id, line1, area, city, pincode, created_at
		 FROM addresses
		 WHERE customer_id IN (%s)
		 ORDER BY created_at, id`, placeholders)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load addresses: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]models.Address)
	for rows.Next() {
		var (
			id         string
			customerID string
			line1      string
			area       sql.NullString
			city       string
			pincode    string
			createdAt  time.Time
		)
		if err := rows.Scan(&id, &customerID, &line1, &area, &city, &pincode, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}

		grouped[customerID] = append(grouped[customerID], models.Address{
			ID:        id,
			Line1:     line1,
			Area:      nullStringToString(area),
			City:      city,
			Pincode:   pincode,
			CreatedAt: createdAt.UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate addresses: %w", err)
	}

	return grouped, nil
}

// scanSQLCustomer reads a customer row without its addresses.
func scanSQLCustomer(row rowScanner) (*models.Customer, error) {
	var (
		customer  models.Customer
		createdAt time.Time
	)
	if err := row.Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone, &createdAt); err != nil {
		return nil, err
	}
	customer.CreatedAt = createdAt.UTC()
	return &customer, nil
}

// Null conversion helpers

func nullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func stringToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
