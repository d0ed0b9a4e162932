package storage

import "errors"

// Common storage errors
var (
	// ErrPageNotFound indicates that no blob is stored under the page key
	ErrPageNotFound = errors.New("page not found")

	// ErrStorageClosed indicates that the storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
