package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lysyi3m/news-curator/app/article"
	"github.com/lysyi3m/news-curator/app/review"
)

const reviewArticleColumns = `id, title, url, source, summary, published_at, category, priority, score, selected, ai_summary, ai_commentary`

// ReviewRepository stores one review per date together with its articles
type ReviewRepository struct {
	db *DB
}

func NewReviewRepository(db *DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// SaveReview replaces the review for record.Date, keeping article order.
func (r *ReviewRepository) SaveReview(ctx context.Context, record review.Record) error {
	if !review.ValidDate(record.Date) {
		return fmt.Errorf("invalid review date: %q", record.Date)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reviews (date, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET created_at = excluded.created_at, updated_at = excluded.updated_at
	`, record.Date, formatTime(createdAt), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to upsert review: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM review_articles WHERE review_date = ?`, record.Date); err != nil {
		return fmt.Errorf("failed to clear review articles: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO review_articles (review_date, position, `+reviewArticleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(review_date, id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare article insert: %w", err)
	}
	defer stmt.Close()

	for i, a := range record.Articles {
		if a == nil {
			continue
		}
		_, err := stmt.ExecContext(ctx,
			record.Date, i, a.ID, a.Title, a.URL, a.Source, a.Summary,
			formatTime(a.PublishedAt), a.Category, string(a.Priority), a.Score, a.Selected,
			a.AISummary, a.AICommentary)
		if err != nil {
			return fmt.Errorf("failed to insert article %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review: %w", err)
	}

	return nil
}

func (r *ReviewRepository) GetReview(ctx context.Context, date string) (*review.Record, error) {
	var createdAt string
	err := r.db.QueryRowContext(ctx, `SELECT created_at FROM reviews WHERE date = ?`, date).Scan(&createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	articles, err := r.loadArticles(ctx, date)
	if err != nil {
		return nil, err
	}

	record := review.NewRecord(date, articles, parseTime(createdAt))
	return &record, nil
}

// ListRecords returns every stored review, oldest first.
func (r *ReviewRepository) ListRecords(ctx context.Context) ([]review.Record, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date, created_at FROM reviews ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}

	var records []review.Record
	for rows.Next() {
		var date, createdAt string
		if err := rows.Scan(&date, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		records = append(records, review.NewRecord(date, nil, parseTime(createdAt)))
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}
	rows.Close()

	for i := range records {
		articles, err := r.loadArticles(ctx, records[i].Date)
		if err != nil {
			return nil, err
		}
		records[i].Articles = articles
	}

	return records, nil
}

// ListSummaries returns per-review counts, newest first.
func (r *ReviewRepository) ListSummaries(ctx context.Context) ([]review.Summary, error) {
	records, err := r.ListRecords(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]review.Summary, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		summaries = append(summaries, records[i].Summary())
	}
	return summaries, nil
}

// UpdateSelections clears the selection flags of the review and marks the
// given article IDs. Unknown IDs are ignored. Returns the selected count.
func (r *ReviewRepository) UpdateSelections(ctx context.Context, date string, ids []string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE date = ?`, date).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to check review: %w", err)
	}
	if exists == 0 {
		return 0, fmt.Errorf("review %s: %w", date, ErrNotFound)
	}

	articles, err := selectionArticles(ctx, tx, date)
	if err != nil {
		return 0, err
	}

	record := review.NewRecord(date, articles, time.Now())
	selected := record.ApplySelections(ids)

	stmt, err := tx.PrepareContext(ctx, `UPDATE review_articles SET selected = ? WHERE review_date = ? AND id = ?`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare selection update: %w", err)
	}
	defer stmt.Close()

	for _, a := range record.Articles {
		if _, err := stmt.ExecContext(ctx, a.Selected, date, a.ID); err != nil {
			return 0, fmt.Errorf("failed to update selection of %s: %w", a.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE reviews SET updated_at = ? WHERE date = ?`, formatTime(time.Now()), date); err != nil {
		return 0, fmt.Errorf("failed to touch review: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit selections: %w", err)
	}

	return selected, nil
}

// UpdateEnrichment stores AI summaries and commentary for the given
// articles of a review.
func (r *ReviewRepository) UpdateEnrichment(ctx context.Context, date string, articles []*article.Article) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range articles {
		if a == nil {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE review_articles SET ai_summary = ?, ai_commentary = ?
			WHERE review_date = ? AND id = ?
		`, a.AISummary, a.AICommentary, date, a.ID)
		if err != nil {
			return fmt.Errorf("failed to update enrichment for %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit enrichment: %w", err)
	}
	return nil
}

func (r *ReviewRepository) DeleteReview(ctx context.Context, date string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE date = ?`, date)
	if err != nil {
		return false, fmt.Errorf("failed to delete review: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return rows > 0, nil
}

// selectionArticles loads only the IDs and flags of a review's articles.
func selectionArticles(ctx context.Context, tx *sql.Tx, date string) ([]*article.Article, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, selected FROM review_articles WHERE review_date = ? ORDER BY position
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query review articles: %w", err)
	}
	defer rows.Close()

	articles := make([]*article.Article, 0)
	for rows.Next() {
		var a article.Article
		if err := rows.Scan(&a.ID, &a.Selected); err != nil {
			return nil, fmt.Errorf("failed to scan review article: %w", err)
		}
		articles = append(articles, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read review articles: %w", err)
	}
	return articles, nil
}

func (r *ReviewRepository) loadArticles(ctx context.Context, date string) ([]*article.Article, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reviewArticleColumns+`
		FROM review_articles WHERE review_date = ? ORDER BY position
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query review articles: %w", err)
	}
	defer rows.Close()

	articles := make([]*article.Article, 0)
	for rows.Next() {
		var a article.Article
		var publishedAt, priority string

		err := rows.Scan(&a.ID, &a.Title, &a.URL, &a.Source, &a.Summary, &publishedAt,
			&a.Category, &priority, &a.Score, &a.Selected, &a.AISummary, &a.AICommentary)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review article: %w", err)
		}

		a.PublishedAt = parseTime(publishedAt)
		a.Priority, _ = article.ParsePriority(priority)
		articles = append(articles, &a)
	}

	return articles, rows.Err()
}
