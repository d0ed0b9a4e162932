package boltdb

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/inkpage/internal/server/storage"
)

var (
	// bucketPages хранит блобы страниц по ключу страницы
	bucketPages = []byte("pages")
)

// Storage is the BoltDB-backed page storage
type Storage struct {
	db *bbolt.DB
}

// New opens (or creates) the BoltDB file at dbPath
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Timeout нужен, чтобы второй процесс на том же файле не висел вечно
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{db: db}

	if err := storage.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return storage, nil
}

// Close closes the database. Calling Close twice is a no-op.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketPages); err != nil {
			return fmt.Errorf("failed to create pages bucket: %w", err)
		}
		return nil
	})
}

// Ping проверяет, что база открыта
func (s *Storage) Ping(ctx context.Context) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	return nil
}
