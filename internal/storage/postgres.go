package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"asyncrest/internal/domain"
)

// ArticleStore is the pgx-backed article store.
type ArticleStore struct {
	pool *pgxpool.Pool
}

func NewArticleStore(pool *pgxpool.Pool) *ArticleStore {
	return &ArticleStore{pool: pool}
}

const articleColumns = "id, title, body, author, published, created_at, updated_at"

func (s *ArticleStore) List(ctx context.Context) ([]domain.Article, error) {
	query := fmt.Sprintf("SELECT %s FROM articles ORDER BY created_at DESC, id", articleColumns)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (s *ArticleStore) Get(ctx context.Context, pk string) (domain.Article, error) {
	id, err := uuid.Parse(pk)
	if err != nil {
		return domain.Article{}, domain.ErrArticleNotFound
	}

	query := fmt.Sprintf("SELECT %s FROM articles WHERE id = $1", articleColumns)
	a, err := scanArticle(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Article{}, domain.ErrArticleNotFound
		}
		return domain.Article{}, fmt.Errorf("get article: %w", err)
	}
	return a, nil
}

func (s *ArticleStore) Create(ctx context.Context, a domain.Article) (domain.Article, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	query := `
		INSERT INTO articles (id, title, body, author, published, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	_, err := s.pool.Exec(ctx, query,
		a.ID, a.Title, a.Body, a.Author, a.Published, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Article{}, domain.ErrTitleConflict
		}
		return domain.Article{}, fmt.Errorf("create article: %w", err)
	}
	return a, nil
}

func (s *ArticleStore) Update(ctx context.Context, pk string, a domain.Article) (domain.Article, error) {
	id, err := uuid.Parse(pk)
	if err != nil {
		return domain.Article{}, domain.ErrArticleNotFound
	}

	query := fmt.Sprintf(`
		UPDATE articles
		SET title = $2, body = $3, author = $4, published = $5, updated_at = $6
		WHERE id = $1
		RETURNING %s
	`, articleColumns)

	updated, err := scanArticle(s.pool.QueryRow(ctx, query,
		id, a.Title, a.Body, a.Author, a.Published, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Article{}, domain.ErrArticleNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Article{}, domain.ErrTitleConflict
		}
		return domain.Article{}, fmt.Errorf("update article: %w", err)
	}
	return updated, nil
}

func (s *ArticleStore) Delete(ctx context.Context, pk string) error {
	id, err := uuid.Parse(pk)
	if err != nil {
		return domain.ErrArticleNotFound
	}

	tag, err := s.pool.Exec(ctx, "DELETE FROM articles WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrArticleNotFound
	}
	return nil
}

func scanArticle(row pgx.Row) (domain.Article, error) {
	var a domain.Article
	err := row.Scan(&a.ID, &a.Title, &a.Body, &a.Author, &a.Published,
		&a.CreatedAt, &a.UpdatedAt)
	return a, err
}
