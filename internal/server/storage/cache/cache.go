// Package cache wraps a page storage with an in-process LRU of page blobs.
//
// Every write goes through the wrapper, so the cache stays coherent as long
// as this process is the only writer of the underlying storage. Reads may run
// concurrently with writes of the same page: a blob loaded on a miss is only
// cached when no write completed while it was being read.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/iudanet/inkpage/internal/server/storage"
)

// DefaultSize количество страниц в кэше по умолчанию
const DefaultSize = 1024

// ErrNotListable is returned by ListPages when the wrapped storage cannot enumerate pages
var ErrNotListable = errors.New("underlying storage cannot list pages")

// Storage is a read-through, write-through LRU cache over a PageStorage
type Storage struct {
	next  storage.PageStorage
	pages *lru.Cache[string, []byte]
	// gen растет при каждой завершенной записи, защищен mu
	gen uint64
	mu  sync.Mutex
}

var (
	_ storage.PageStorage = (*Storage)(nil)
	_ storage.PageLister  = (*Storage)(nil)
)

// New wraps next with an LRU cache holding up to size pages
func New(next storage.PageStorage, size int) (*Storage, error) {
	if size <= 0 {
		size = DefaultSize
	}

	pages, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}

	return &Storage{next: next, pages: pages}, nil
}

// GetPage returns the cached blob or loads it from the wrapped storage
func (s *Storage) GetPage(ctx context.Context, key string) ([]byte, error) {
	if blob, ok := s.pages.Get(key); ok {
		return clone(blob), nil
	}

	gen := s.generation()

	blob, err := s.next.GetPage(ctx, key)
	if err != nil {
		return nil, err
	}

	// Запись, завершившаяся во время чтения, могла сделать blob устаревшим
	s.mu.Lock()
	if s.gen == gen {
		s.pages.Add(key, clone(blob))
	}
	s.mu.Unlock()

	return blob, nil
}

// SetPage writes through to the wrapped storage and caches the blob on success
func (s *Storage) SetPage(ctx context.Context, key string, blob []byte) error {
	err := s.next.SetPage(ctx, key, blob)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++

	if err != nil {
		// Состояние записи неизвестно, следующее чтение пойдет в хранилище
		s.pages.Remove(key)
		return err
	}

	s.pages.Add(key, clone(blob))
	return nil
}

// ListPages delegates to the wrapped storage
func (s *Storage) ListPages(ctx context.Context) ([]string, error) {
	lister, ok := s.next.(storage.PageLister)
	if !ok {
		return nil, ErrNotListable
	}
	return lister.ListPages(ctx)
}

// Len returns the number of cached pages
func (s *Storage) Len() int {
	return s.pages.Len()
}

func (s *Storage) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
