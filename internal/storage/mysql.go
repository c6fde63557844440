package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(64) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		UNIQUE KEY customers_email_key (email),
		UNIQUE KEY customers_phone_key (phone)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id CHAR(36) NOT NULL PRIMARY KEY,
		customer_id CHAR(36) NOT NULL,
		line1 VARCHAR(512) NOT NULL,
		area VARCHAR(255),
		city VARCHAR(255) NOT NULL,
		pincode VARCHAR(32) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		KEY addresses_customer_id_idx (customer_id),
		CONSTRAINT addresses_customer_fk FOREIGN KEY (customer_id)
			REFERENCES customers (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// MySQLStorage persists customers in a MySQL database.
type MySQLStorage struct {
	sqlStore
}

// NewMySQLStorage creates a new MySQL storage instance.
func NewMySQLStorage(config Config) (Storage, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required for MySQL storage")
	}

	// parseTime is required so DATETIME columns scan into time.Time.
	dsn, err := mysql.ParseDSN(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	dsn.ParseTime = true

	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	applyPoolSettings(db, config)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, stmt := range mysqlSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	return &MySQLStorage{sqlStore{db: db, isDuplicate: mysqlIsDuplicate}}, nil
}

// mysqlDuplicateEntry is the server error number for duplicate key violations.
const mysqlDuplicateEntry = 1062

func mysqlIsDuplicate(err error) bool {
	var merr *mysql.MySQLError
	return errors.As(err, &merr) && merr.Number == mysqlDuplicateEntry
}
