package storage

import (
	"fmt"

	"customer-service/internal/models"
)

// Factory turns the storage and cache sections of the configuration into a
// ready Storage backend.
type Factory struct{}

// NewFactory returns a Factory.
func NewFactory() *Factory {
	return &Factory{}
}

// backendConfig flattens the user-facing storage and cache sections into the
// single Config struct the backends consume.
func backendConfig(st models.StorageConfig, cache models.CacheConfig) Config {
	opts := make(map[string]interface{}, len(st.Options))
	for k, v := range st.Options {
		opts[k] = v
	}
	return Config{
		Type:             st.Type,
		Path:             st.Path,
		ConnectionString: st.Database.DSN,
		CacheEnabled:     cache.Enabled,
		CacheTTL:         cache.TTL,
		MaxOpenConns:     st.Database.MaxOpenConns,
		MaxIdleConns:     st.Database.MaxIdleConns,
		ConnMaxLifetime:  st.Database.ConnMaxLifetime,
		ConnMaxIdleTime:  st.Database.ConnMaxIdleTime,
		Options:          opts,
	}
}

// Create builds the backend named by config.Type. The section is validated
// first, and database backends open and ping their connection here, so a nil
// error means the store is usable.
func (f *Factory) Create(config models.StorageConfig, cache models.CacheConfig) (Storage, error) {
	if err := f.ValidateConfig(config); err != nil {
		return nil, err
	}
	cfg := backendConfig(config, cache)

	switch config.Type {
	case models.StorageTypeMemory:
		return NewMemoryStorage(cfg)
	case models.StorageTypeJSON:
		return NewJSONStorage(cfg)
	case models.StorageTypeSQLite:
		return NewSQLiteStorage(cfg)
	case models.StorageTypePostgres:
		return NewPostgresStorage(cfg)
	case models.StorageTypeMySQL:
		return NewMySQLStorage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Type)
	}
}

// GetSupportedProviders lists every type Create accepts.
func (f *Factory) GetSupportedProviders() []string {
	return []string{
		models.StorageTypeMemory,
		models.StorageTypeJSON,
		models.StorageTypeSQLite,
		models.StorageTypePostgres,
		models.StorageTypeMySQL,
	}
}

// ValidateConfig checks that the storage section carries everything its
// chosen backend needs. It opens no connections; Create runs it before
// touching any backend.
func (f *Factory) ValidateConfig(config models.StorageConfig) error {
	switch config.Type {
	case models.StorageTypeJSON:
		if config.Path == "" {
			return fmt.Errorf("path is required for JSON storage")
		}
	case models.StorageTypeMemory:
		// Nothing to check.
	case models.StorageTypePostgres, models.StorageTypeSQLite, models.StorageTypeMySQL:
		if config.Database.DSN == "" {
			return fmt.Errorf("database DSN is required for %s storage", config.Type)
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", config.Type)
	}
	return nil
}
