package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"corpora/internal/domain"
)

type SourceStore struct {
	db *sqlx.DB
}

func NewSourceStore(db *sqlx.DB) *SourceStore {
	return &SourceStore{db: db}
}

// GetOrCreate returns the source with the given name, inserting it first if
// needed. created reports whether this call inserted it.
func (s *SourceStore) GetOrCreate(ctx context.Context, name string) (*domain.Source, bool, error) {
	exec := GetExecutor(ctx, s.db)

	source := &domain.Source{Name: name}
	err := sqlx.GetContext(ctx, exec, &source.ID,
		`INSERT INTO sources (name) VALUES ($1) ON CONFLICT (name) DO NOTHING RETURNING id`,
		name,
	)
	if err == nil {
		return source, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	if err := sqlx.GetContext(ctx, exec, &source.ID, `SELECT id FROM sources WHERE name = $1`, name); err != nil {
		return nil, false, err
	}
	return source, false, nil
}

type FeedStore struct {
	db *sqlx.DB
}

func NewFeedStore(db *sqlx.DB) *FeedStore {
	return &FeedStore{db: db}
}

// CreateIfMissing registers a feed URL under sourceID. An existing feed with
// the same URL is left untouched, even if it belongs to another source.
func (s *FeedStore) CreateIfMissing(ctx context.Context, sourceID int64, extURL string) (bool, error) {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`INSERT INTO feeds (ext_url, source_id) VALUES ($1, $2) ON CONFLICT (ext_url) DO NOTHING`,
		extURL, sourceID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *FeedStore) List(ctx context.Context) ([]domain.Feed, error) {
	query := `
		SELECT f.id, f.ext_url, f.errors, f.source_id, s.name AS source_name
		FROM feeds f
		INNER JOIN sources s ON s.id = f.source_id
		ORDER BY f.id`

	var feeds []domain.Feed
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &feeds, query)
	return feeds, err
}

func (s *FeedStore) IncrementErrors(ctx context.Context, feedID int64) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE feeds SET errors = errors + 1 WHERE id = $1`,
		feedID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
