package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/inkpage/internal/server/storage"
)

var (
	_ storage.PageStorage = (*Storage)(nil)
	_ storage.PageLister  = (*Storage)(nil)
)

// GetPage returns the blob stored under key
// Returns storage.ErrPageNotFound if the page was never written
func (s *Storage) GetPage(ctx context.Context, key string) ([]byte, error) {
	var blob []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT info FROM pages WHERE page_key = ?`, key,
	).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrPageNotFound
		}
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	return blob, nil
}

// SetPage stores blob under key, replacing the previous value
func (s *Storage) SetPage(ctx context.Context, key string, blob []byte) error {
	query := `
		INSERT INTO pages (page_key, info, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(page_key) DO UPDATE SET
			info = excluded.info,
			updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, key, blob, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save page: %w", err)
	}

	return nil
}

// ListPages returns all stored page keys in ascending order
func (s *Storage) ListPages(ctx context.Context) (keys []string, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT page_key FROM pages ORDER BY page_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan page key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return keys, nil
}
