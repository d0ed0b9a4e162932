package storage

import "context"

//go:generate moq -out page_mock.go . PageStorage

// PageStorage is the durable key/blob store behind pages.
// The blob is opaque to the storage: it only has to remember it per key.
type PageStorage interface {
	// GetPage returns the blob stored under key
	// Returns ErrPageNotFound if nothing is stored
	GetPage(ctx context.Context, key string) ([]byte, error)

	// SetPage durably stores blob under key, replacing any previous value
	SetPage(ctx context.Context, key string, blob []byte) error
}

// PageLister is implemented by storages that can enumerate stored page keys.
// Used by the background fade job.
type PageLister interface {
	// ListPages returns all stored page keys in ascending order
	ListPages(ctx context.Context) ([]string, error)
}
