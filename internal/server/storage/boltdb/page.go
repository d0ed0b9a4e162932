package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/inkpage/internal/server/storage"
)

var (
	_ storage.PageStorage = (*Storage)(nil)
	_ storage.PageLister  = (*Storage)(nil)
)

// GetPage returns the blob stored under key
// Returns storage.ErrPageNotFound if the page was never written
func (s *Storage) GetPage(ctx context.Context, key string) ([]byte, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var blob []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPages)
		if bucket == nil {
			return fmt.Errorf("pages bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrPageNotFound
		}

		// Значение валидно только внутри транзакции, копируем
		blob = make([]byte, len(data))
		copy(blob, data)
		return nil
	})

	if err != nil {
		return nil, err
	}

	return blob, nil
}

// SetPage stores blob under key, replacing the previous value
func (s *Storage) SetPage(ctx context.Context, key string, blob []byte) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPages)
		if bucket == nil {
			return fmt.Errorf("pages bucket not found")
		}

		if err := bucket.Put([]byte(key), blob); err != nil {
			return fmt.Errorf("failed to save page: %w", err)
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// ListPages returns all stored page keys in ascending (byte) order
func (s *Storage) ListPages(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var keys []string

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPages)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	return keys, nil
}
