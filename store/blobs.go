package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Blob is an uploaded file stored under a well-known name.
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
	UpdatedAt   time.Time
}

// PutBlob stores data under name, replacing any previous upload.
func (s *Store) PutBlob(ctx context.Context, name, contentType string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (name, content_type, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			content_type = excluded.content_type,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, name, contentType, data, s.stamp())
	if err != nil {
		return fmt.Errorf("put blob %s: %w", name, err)
	}
	return nil
}

// GetBlob loads a stored file. A missing file yields ErrNotFound.
func (s *Store) GetBlob(ctx context.Context, name string) (Blob, error) {
	b := Blob{Name: name}
	var updated string
	err := s.db.QueryRowContext(ctx, `
		SELECT content_type, data, updated_at FROM blobs WHERE name = ?
	`, name).Scan(&b.ContentType, &b.Data, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Blob{}, ErrNotFound
	}
	if err != nil {
		return Blob{}, fmt.Errorf("get blob %s: %w", name, err)
	}
	b.UpdatedAt = parseTime(updated)
	return b, nil
}

// BlobExists reports whether a file is stored under name.
func (s *Store) BlobExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blobs WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check blob %s: %w", name, err)
	}
	return n > 0, nil
}
