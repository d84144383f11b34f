package store

import (
	"context"
	"fmt"
	"time"
)

// Visit is one recorded page view. The client address is only ever kept
// hashed.
type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats summarises site traffic for the admin dashboard.
type Stats struct {
	TotalVisitors    int64   `json:"total_visitors"`
	UniqueVisitors   int64   `json:"unique_visitors"`
	VisitorsToday    int64   `json:"visitors_today"`
	VisitorsThisWeek int64   `json:"visitors_this_week"`
	TotalPosts       int64   `json:"total_posts"`
	RecentVisitors   []Visit `json:"recent_visitors"`
}

// RecordVisit stores a page view stamped with the current time.
func (s *Store) RecordVisit(ctx context.Context, hashedIP, userAgent, path string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, timestamp)
		VALUES (?, ?, ?, ?)
	`, hashedIP, userAgent, path, s.stamp())
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// RecentVisits returns up to limit page views, newest first.
func (s *Store) RecentVisits(ctx context.Context, limit int) ([]Visit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), timestamp
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		var ts string
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		v.Timestamp = parseTime(ts)
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// Stats gathers visit and post counts relative to the store's clock.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	now := s.now().UTC()
	today := now.Format("2006-01-02")
	weekAgo := now.Add(-7 * 24 * time.Hour).Format(timeLayout)

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE DATE(timestamp) = ?`, []any{today}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{weekAgo}},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("load stats: %w", err)
		}
	}

	posts, err := s.CountPosts(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalPosts = posts

	recent, err := s.RecentVisits(ctx, 50)
	if err != nil {
		return nil, err
	}
	stats.RecentVisitors = recent
	return stats, nil
}

// CleanupVisits deletes page views older than retention and returns how many
// were removed.
func (s *Store) CleanupVisits(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-retention).Format(timeLayout)
	res, err := s.db.ExecContext(ctx, `DELETE FROM visitors WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup visits: %w", err)
	}
	return res.RowsAffected()
}
