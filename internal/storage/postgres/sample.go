package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"corpora/internal/domain"
)

type SampleStore struct {
	db *sqlx.DB
}

func NewSampleStore(db *sqlx.DB) *SampleStore {
	return &SampleStore{db: db}
}

func (s *SampleStore) GetOrCreateEvent(ctx context.Context, title string) (*domain.SampleEvent, error) {
	exec := GetExecutor(ctx, s.db)

	event := &domain.SampleEvent{Title: title}
	err := sqlx.GetContext(ctx, exec, &event.ID,
		`INSERT INTO sample_events (title) VALUES ($1) ON CONFLICT (title) DO NOTHING RETURNING id`,
		title,
	)
	if errors.Is(err, sql.ErrNoRows) {
		err = sqlx.GetContext(ctx, exec, &event.ID, `SELECT id FROM sample_events WHERE title = $1`, title)
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (s *SampleStore) ExistsByURL(ctx context.Context, extURL string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &exists,
		`SELECT EXISTS (SELECT 1 FROM sample_articles WHERE ext_url = $1)`,
		extURL,
	)
	return exists, err
}

func (s *SampleStore) ExistsByTitleAndEvent(ctx context.Context, title string, eventID int64) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &exists,
		`SELECT EXISTS (SELECT 1 FROM sample_articles WHERE title = $1 AND event_id = $2)`,
		title, eventID,
	)
	return exists, err
}

func (s *SampleStore) Insert(ctx context.Context, article *domain.SampleArticle) (bool, error) {
	query := `
		INSERT INTO sample_articles (
			event_id, ext_url, title, text, image, authors, tags, published_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (ext_url) DO NOTHING
		RETURNING id, created_at`

	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		article.EventID,
		article.ExtURL,
		article.Title,
		article.Text,
		article.Image,
		pq.Array(article.Authors),
		pq.Array(article.Tags),
		article.PublishedAt,
		article.UpdatedAt,
	).Scan(&article.ID, &article.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SampleStore) CountByEvent(ctx context.Context, eventID int64) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &n,
		`SELECT COUNT(*) FROM sample_articles WHERE event_id = $1`,
		eventID,
	)
	return n, err
}
