package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Post is a published blog post.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// PostInput carries the fields an author supplies. CreatedAt is always
// assigned by the store.
type PostInput struct {
	Title   string
	Summary string
	Content string
}

// CreatePost stores a new post with a fresh id and the current time.
func (s *Store) CreatePost(ctx context.Context, in PostInput) (Post, error) {
	p := Post{
		ID:      uuid.NewString(),
		Title:   in.Title,
		Summary: in.Summary,
		Content: in.Content,
	}
	created := s.stamp()
	p.CreatedAt = parseTime(created)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, title, summary, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Title, p.Summary, p.Content, created)
	if err != nil {
		return Post{}, fmt.Errorf("insert post: %w", err)
	}
	return p, nil
}

// ListPosts returns every post, newest first.
func (s *Store) ListPosts(ctx context.Context) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, summary, content, created_at
		FROM posts
		ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		var p Post
		var created string
		if err := rows.Scan(&p.ID, &p.Title, &p.Summary, &p.Content, &created); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.CreatedAt = parseTime(created)
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetPost fetches one post. A missing post yields ErrNotFound.
func (s *Store) GetPost(ctx context.Context, id string) (Post, error) {
	var p Post
	var created string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, summary, content, created_at
		FROM posts WHERE id = ?
	`, id).Scan(&p.ID, &p.Title, &p.Summary, &p.Content, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("get post %s: %w", id, err)
	}
	p.CreatedAt = parseTime(created)
	return p, nil
}

// CountPosts returns the number of published posts.
func (s *Store) CountPosts(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}
