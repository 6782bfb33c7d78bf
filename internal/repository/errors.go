package repository

import "errors"

// ErrSchema is returned when a record fails the storage-level format rules.
var ErrSchema = errors.New("schema violation")

// ErrUnsupportedURL is returned by Open for a database URL it cannot handle.
var ErrUnsupportedURL = errors.New("unsupported database url")
