package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type NewsletterRepository struct {
	db *DB
}

func NewNewsletterRepository(db *DB) *NewsletterRepository {
	return &NewsletterRepository{db: db}
}

// SaveNewsletter stores the rendered issue, replacing any earlier render
// for the same date.
func (r *NewsletterRepository) SaveNewsletter(ctx context.Context, newsletter Newsletter) error {
	createdAt := newsletter.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO newsletters (date, html, article_count, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			html = excluded.html,
			article_count = excluded.article_count,
			created_at = excluded.created_at
	`, newsletter.Date, newsletter.HTML, newsletter.ArticleCount, formatTime(createdAt))
	if err != nil {
		return fmt.Errorf("failed to save newsletter: %w", err)
	}

	return nil
}

func (r *NewsletterRepository) GetNewsletter(ctx context.Context, date string) (*Newsletter, error) {
	var newsletter Newsletter
	var createdAt string

	err := r.db.QueryRowContext(ctx, `
		SELECT date, html, article_count, created_at FROM newsletters WHERE date = ?
	`, date).Scan(&newsletter.Date, &newsletter.HTML, &newsletter.ArticleCount, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get newsletter: %w", err)
	}

	newsletter.CreatedAt = parseTime(createdAt)
	return &newsletter, nil
}

// ListNewsletters returns the most recent issues first.
func (r *NewsletterRepository) ListNewsletters(ctx context.Context, limit int) ([]Newsletter, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT date, html, article_count, created_at FROM newsletters
		ORDER BY date DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query newsletters: %w", err)
	}
	defer rows.Close()

	var newsletters []Newsletter
	for rows.Next() {
		var newsletter Newsletter
		var createdAt string
		if err := rows.Scan(&newsletter.Date, &newsletter.HTML, &newsletter.ArticleCount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan newsletter: %w", err)
		}
		newsletter.CreatedAt = parseTime(createdAt)
		newsletters = append(newsletters, newsletter)
	}

	return newsletters, rows.Err()
}
