package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"customer-service/internal/models"
)

// JSONStorage persists customers in a single JSON file. Reads go through an
// in-memory snapshot cached for a TTL and invalidated when the file's mtime
// moves, so external edits are picked up without restarting the service.
type JSONStorage struct {
	filePath string
	cacheTTL time.Duration

	mu           sync.RWMutex
	snapshot     *jsonFile
	lastModified time.Time
	cacheExpiry  time.Time
}

// jsonFile is the on-disk document.
type jsonFile struct {
	Customers   []*models.Customer `json:"customers"`
	LastUpdated time.Time          `json:"last_updated"`
}

// NewJSONStorage opens or creates the backing file. With caching disabled the
// TTL drops to zero and every read re-validates the file's mtime.
func NewJSONStorage(config Config) (*JSONStorage, error) {
	var ttl time.Duration
	if config.CacheEnabled {
		ttl = 5 * time.Second
		if config.CacheTTL > 0 {
			ttl = config.CacheTTL
		}
	}

	j := &JSONStorage{filePath: config.Path, cacheTTL: ttl}

	if _, err := os.Stat(j.filePath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(j.filePath), 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		j.mu.Lock()
		err := j.persist(&jsonFile{Customers: []*models.Customer{}})
		j.mu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage file: %w", err)
		}
	}

	if err := j.refresh(); err != nil {
		return nil, fmt.Errorf("failed to load initial data: %w", err)
	}
	return j, nil
}

// refresh makes the in-memory snapshot current. Double-checked locking: a
// read-locked fast path for cache hits, then re-validation under the write
// lock before any file I/O.
func (j *JSONStorage) refresh() error {
	j.mu.RLock()
	if j.snapshot != nil && time.Now().Before(j.cacheExpiry) {
		j.mu.RUnlock()
		return nil
	}
	j.mu.RUnlock()

	j.mu.Lock()
	defer j.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if j.snapshot != nil && time.Now().Before(j.cacheExpiry) {
		return nil
	}

	info, err := os.Stat(j.filePath)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if j.snapshot != nil && !info.ModTime().After(j.lastModified) {
		j.cacheExpiry = time.Now().Add(j.cacheTTL)
		return nil
	}

	raw, err := os.ReadFile(j.filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	var doc jsonFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	j.snapshot = &doc
	j.lastModified = info.ModTime()
	j.cacheExpiry = time.Now().Add(j.cacheTTL)
	return nil
}

// persist writes the document to a temporary file in the same directory and
// renames it into place, so readers never observe a half-written file. Must
// be called with the write lock held.
func (j *JSONStorage) persist(doc *jsonFile) error {
	doc.LastUpdated = time.Now()

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	// CreateTemp opens the file 0600, which is also the mode we want kept
	// after the rename.
	tmp, err := os.CreateTemp(filepath.Dir(j.filePath), ".customers-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, j.filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace storage file: %w", err)
	}

	// Keep the writer's own cache warm instead of forcing a re-read.
	j.snapshot = doc
	if info, err := os.Stat(j.filePath); err == nil {
		j.lastModified = info.ModTime()
	}
	j.cacheExpiry = time.Now().Add(j.cacheTTL)
	return nil
}

// find returns the live record for customerID. Callers hold at least the
// read lock and must copy before returning data to callers outside storage.
func (j *JSONStorage) find(customerID string) *models.Customer {
	for _, c := range j.snapshot.Customers {
		if c.ID == customerID {
			return c
		}
	}
	return nil
}

func (j *JSONStorage) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if err := j.refresh(); err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	for _, existing := range j.snapshot.Customers {
		if existing.Email == customer.Email || existing.Phone == customer.Phone {
			return ErrDuplicate
		}
	}

	j.snapshot.Customers = append(j.snapshot.Customers, copyCustomer(customer))
	return j.persist(j.snapshot)
}

func (j *JSONStorage) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	if err := j.refresh(); err != nil {
		return nil, err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	if c := j.find(customerID); c != nil {
		return copyCustomer(c), nil
	}
	return nil, ErrNotFound
}

func (j *JSONStorage) ListCustomers(ctx context.Context, filter models.CustomerFilter) ([]models.Customer, error) {
	if err := j.refresh(); err != nil {
		return nil, err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	matched := make([]*models.Customer, 0, len(j.snapshot.Customers))
	for _, c := range j.snapshot.Customers {
		if c.MatchesEmail(filter.Email) {
			matched = append(matched, c)
		}
	}

	// Order by creation time with the ID as tie-breaker so pages are stable.
	sort.Slice(matched, func(i, k int) bool {
		if matched[i].CreatedAt.Equal(matched[k].CreatedAt) {
			return matched[i].ID < matched[k].ID
		}
		return matched[i].CreatedAt.Before(matched[k].CreatedAt)
	})

	return pageOf(matched, filter), nil
}

func (j *JSONStorage) AddAddress(ctx context.Context, customerID string, address *models.Address) error {
	if err := j.refresh(); err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	c := j.find(customerID)
	if c == nil {
		return ErrNotFound
	}
	c.Addresses = append(c.Addresses, *address)
	return j.persist(j.snapshot)
}

func (j *JSONStorage) Addresses(ctx context.Context, customerID string) ([]models.Address, error) {
	if err := j.refresh(); err != nil {
		return nil, err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	c := j.find(customerID)
	if c == nil {
		return nil, ErrNotFound
	}
	addresses := make([]models.Address, len(c.Addresses))
	copy(addresses, c.Addresses)
	return addresses, nil
}

func (j *JSONStorage) GetAddress(ctx context.Context, addressID string) (*models.Address, error) {
	if err := j.refresh(); err != nil {
		return nil, err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	for _, c := range j.snapshot.Customers {
		if address, ok := c.FindAddress(addressID); ok {
			addressCopy := *address
			return &addressCopy, nil
		}
	}
	return nil, ErrNotFound
}

// Ping reports whether the backing file is reachable.
func (j *JSONStorage) Ping(_ context.Context) error {
	if _, err := os.Stat(j.filePath); err != nil {
		return fmt.Errorf("storage file unavailable: %w", err)
	}
	return nil
}

// Close drops the in-memory snapshot. The file itself needs no teardown.
func (j *JSONStorage) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.snapshot = nil
	j.cacheExpiry = time.Time{}
	return nil
}
