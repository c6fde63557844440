package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"customer-service/internal/models"
)

// PostgresStorage implements the Storage interface using PostgreSQL via pgx.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// Schema is applied at startup so a fresh database is usable immediately.
// Every statement is idempotent.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS customers (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	phone      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS customers_email_key ON customers (email);
CREATE UNIQUE INDEX IF NOT EXISTS customers_phone_key ON customers (phone);
CREATE TABLE IF NOT EXISTS addresses (
	id          UUID PRIMARY KEY,
	customer_id UUID NOT NULL REFERENCES customers (id) ON DELETE CASCADE,
	line1       TEXT NOT NULL,
	area        TEXT,
	city        TEXT NOT NULL,
	pincode     TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS addresses_customer_id_idx ON addresses (customer_id);
`

// NewPostgresStorage opens a pgx pool against the configured DSN, verifies
// connectivity, and ensures the schema exists.
func NewPostgresStorage(config Config) (Storage, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required for PostgreSQL storage")
	}

	poolConfig, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	applyPoolLimits(poolConfig, config)

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ps := &PostgresStorage{pool: pool}
	if err := ps.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return ps, nil
}

// applyPoolLimits copies the optional pool settings onto the pgx config.
// Zero values keep pgx defaults.
func applyPoolLimits(poolConfig *pgxpool.Config, config Config) {
	if config.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(config.MaxOpenConns)
	}
	if config.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = config.ConnMaxLifetime
	}
	if config.ConnMaxIdleTime > 0 {
		poolConfig.MaxConnIdleTime = config.ConnMaxIdleTime
	}
}

func (ps *PostgresStorage) initialize(ctx context.Context) error {
	if err := ps.pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := ps.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// CreateCustomer stores a new customer record.
func (ps *PostgresStorage) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	tx, err := ps.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	customerID, err := pgUUID(customer.ID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO customers (id, name, email, phone, created_at) VALUES ($1, $2, $3, $4, $5)`,
		customerID, customer.Name, customer.Email, customer.Phone, pgTime(customer.CreatedAt),
	)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}

	for i := range customer.Addresses {
		if err := insertPgAddress(ctx, tx, customerID, &customer.Addresses[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertPgAddress(ctx context.Context, tx pgx.Tx, customerID pgtype.UUID, address *models.Address) error {
	addressID, err := pgUUID(address.ID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO addresses (id, customer_id, line1, area, city, pincode, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		addressID, customerID, address.Line1, pgText(address.Area),
		address.City, address.Pincode, pgTime(address.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

// GetCustomer retrieves a customer with its addresses by ID.
func (ps *PostgresStorage) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	id, err := pgUUID(customerID)
	if err != nil {
		return nil, ErrNotFound
	}

	row := ps.pool.QueryRow(ctx,
		`SELECT id, name, email, phone, created_at FROM customers WHERE id = $1`, id)

	customer, err := scanPgCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	addresses, err := ps.addressesFor(ctx, []pgtype.UUID{id})
	if err != nil {
		return nil, err
	}
	customer.Addresses = addresses[customerID]
	if customer.Addresses == nil {
		customer.Addresses = []models.Address{}
	}

	return customer, nil
}

// ListCustomers returns a page of customers matching the filter.
func (ps *PostgresStorage) ListCustomers(ctx context.Context, filter models.CustomerFilter) ([]models.Customer, error) {
	rows, err := ps.pool.Query(ctx,
		`SELECT id, name, email, phone, created_at
		 FROM customers
		 WHERE $1 = '' OR email ILIKE '%' || $1 || '%'
		 ORDER BY created_at, id
		 LIMIT $2 OFFSET $3`,
		filter.Email, filter.Limit, filter.Offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	ids := []pgtype.UUID{}
	for rows.Next() {
		customer, err := scanPgCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customer.Addresses = []models.Address{}
		customers = append(customers, *customer)

		id, err := pgUUID(customer.ID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}

	if len(ids) == 0 {
		return customers, nil
	}

	addresses, err := ps.addressesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range customers {
		if addrs, ok := addresses[customers[i].ID]; ok {
			customers[i].Addresses = addrs
		}
	}

	return customers, nil
}

// addressesFor loads the addresses of the given customers in one query,
// grouped by customer ID.
func (ps *PostgresStorage) addressesFor(ctx context.Context, customerIDs []pgtype.UUID) (map[string][]models.Address, error) {
	rows, err := ps.pool.Query(ctx,
		`SELECT id, customer_id, line1, area, city, pincode, created_at
		 FROM addresses
		 WHERE customer_id = ANY($1)
		 ORDER BY created_at, id`,
		customerIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load addresses: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]models.Address)
	for rows.Next() {
		var (
			id         pgtype.UUID
			customerID pgtype.UUID
			line1      string
			area       pgtype.Text
			city       string
			pincode    string
			createdAt  pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &customerID, &line1, &area, &city, &pincode, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}

		owner := uuidString(customerID)
		grouped[owner] = append(grouped[owner], models.Address{
			ID:        uuidString(id),
			Line1:     line1,
			Area:      textOrEmpty(area),
			City:      city,
			Pincode:   pincode,
			CreatedAt: createdAt.Time.UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate addresses: %w", err)
	}

	return grouped, nil
}

// AddAddress appends an address to an existing customer. A foreign key
// violation means the customer does not exist.
func (ps *PostgresStorage) AddAddress(ctx context.Context, customerID string, address *models.Address) error {
	custID, err := pgUUID(customerID)
	if err != nil {
		return ErrNotFound
	}
	addressID, err := pgUUID(address.ID)
	if err != nil {
		return err
	}

	_, err = ps.pool.Exec(ctx,
		`INSERT INTO addresses (id, customer_id, line1, area, city, pincode, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		addressID, custID, address.Line1, pgText(address.Area),
		address.City, address.Pincode, pgTime(address.CreatedAt),
	)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return ErrNotFound
		}
		return fmt.Errorf("failed to add address: %w", err)
	}
	return nil
}

// Addresses returns all addresses of an existing customer.
func (ps *PostgresStorage) Addresses(ctx context.Context, customerID string) ([]models.Address, error) {
	id, err := pgUUID(customerID)
	if err != nil {
		return nil, ErrNotFound
	}

	var exists bool
	if err := ps.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check customer: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	grouped, err := ps.addressesFor(ctx, []pgtype.UUID{id})
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
func (ps *PostgresStorage) GetAddress(ctx context.Context, addressID string) (*models.Address, error) {
	id, err := pgUUID(addressID)
	if err != nil {
		return nil, ErrNotFound
	}

	var (
		line1     string
		area      pgtype.Text
		city      string
		pincode   string
		createdAt pgtype.Timestamptz
	)
	err = ps.pool.QueryRow(ctx,
		`SELECT line1, area, city, pincode, created_at FROM addresses WHERE id = $1`, id,
	).Scan(&line1, &area, &city, &pincode, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get address: %w", err)
	}

	return &models.Address{
		ID:        addressID,
		Line1:     line1,
		Area:      textOrEmpty(area),
		City:      city,
		Pincode:   pincode,
		CreatedAt: createdAt.Time.UTC(),
	}, nil
}

func (ps *PostgresStorage) Ping(ctx context.Context) error {
	return ps.pool.Ping(ctx)
}

func (ps *PostgresStorage) Close() error {
	ps.pool.Close()
	return nil
}

// scanPgCustomer reads a customer row without its addresses.
func scanPgCustomer(row pgx.Row) (*models.Customer, error) {
	var (
		id        pgtype.UUID
		name      string
		email     string
		phone     string
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &name, &email, &phone, &createdAt); err != nil {
		return nil, err
	}

	return &models.Customer{
		ID:        uuidString(id),
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: createdAt.Time.UTC(),
	}, nil
}

// Conversions between model fields and pgtype values. Area is the only
// nullable column, so empty string maps to SQL NULL and back.

func pgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func textOrEmpty(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func pgTime(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func pgUUID(s string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("malformed identifier: %w", err)
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func uuidString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

// SQLSTATE codes the write paths translate into storage errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
