package storage

import "errors"

// ErrNotFound is returned when a requested customer or address does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when creating a customer whose email or phone is
// already taken. Uniqueness is exact-match on the stored value.
var ErrDuplicate = errors.New("email or phone already exists")
