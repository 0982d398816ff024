package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"corpora/internal/domain"
)

type ArticleStore struct {
	db *sqlx.DB
}

func NewArticleStore(db *sqlx.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

func (s *ArticleStore) ExistsByURL(ctx context.Context, extURL string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &exists,
		`SELECT EXISTS (SELECT 1 FROM articles WHERE ext_url = $1)`,
		extURL,
	)
	return exists, err
}

// ExistsByTitleAndSource looks for an article with the same title in any
// feed of the source.
func (s *ArticleStore) ExistsByTitleAndSource(ctx context.Context, title string, sourceID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM articles a
			INNER JOIN feeds f ON f.id = a.feed_id
			WHERE a.title = $1 AND f.source_id = $2
		)`

	var exists bool
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &exists, query, title, sourceID)
	return exists, err
}

// Insert writes the article unless its URL is already stored. On success the
// generated ID and creation time are set on article.
func (s *ArticleStore) Insert(ctx context.Context, article *domain.Article) (bool, error) {
	query := `
		INSERT INTO articles (
			feed_id, ext_url, title, text, image, authors, tags, published_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (ext_url) DO NOTHING
		RETURNING id, created_at`

	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		article.FeedID,
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

func (s *ArticleStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &n, `SELECT COUNT(*) FROM articles`)
	return n, err
}
