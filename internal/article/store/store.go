// Package store persists articles in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/article"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/postgres"
)

// Store reads and writes the articles table.
type Store struct {
	db *postgres.Client
}

func New(db *postgres.Client) *Store {
	return &Store{db: db}
}

// FindByIdempotencyKey returns the article previously created with key, or
// nil when there is none.
func (s *Store) FindByIdempotencyKey(ctx context.Context, key string) (*article.IngestResponse, error) {
	var resp article.IngestResponse
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT id, status FROM articles WHERE idempotency_key = $1`, key,
	).Scan(&resp.ArticleID, &resp.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying by idempotency key: %w", err)
	}
	return &resp, nil
}

// Insert stores a new PENDING article. A concurrent insert with the same
// idempotency key yields ErrIdempotencyConflict.
func (s *Store) Insert(ctx context.Context, a *article.Article, idempotencyKey string) error {
	sections, err := json.Marshal(a.Sections)
	if err != nil {
		return fmt.Errorf("marshaling sections: %w", err)
	}
	terms, err := json.Marshal(a.Terms)
	if err != nil {
		return fmt.Errorf("marshaling terms: %w", err)
	}
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO articles (id, title, sections, terms, idempotency_key, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (idempotency_key) DO NOTHING
			RETURNING created_at, updated_at`,
			a.ID, a.Title, sections, terms, nullableString(idempotencyKey), a.Status,
		).Scan(&a.CreatedAt, &a.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.New(apperrors.ErrIdempotencyConflict, http.StatusConflict, "idempotency key already in use")
		}
		return err
	})
}

// Get loads an article by ID.
func (s *Store) Get(ctx context.Context, id string) (*article.Article, error) {
	var (
		a        article.Article
		sections []byte
		terms    []byte
	)
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT id, title, sections, terms, status, created_at, updated_at
		FROM articles WHERE id = $1`, id,
	).Scan(&a.ID, &a.Title, &sections, &terms, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.ErrArticleNotFound, http.StatusNotFound, "article %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying article %s: %w", id, err)
	}
	if err := json.Unmarshal(sections, &a.Sections); err != nil {
		return nil, fmt.Errorf("decoding sections of article %s: %w", id, err)
	}
	if err := json.Unmarshal(terms, &a.Terms); err != nil {
		return nil, fmt.Errorf("decoding terms of article %s: %w", id, err)
	}
	return &a, nil
}

// MarkBuilt records that every section document has been built and cached.
func (s *Store) MarkBuilt(ctx context.Context, id string) error {
	res, err := s.db.DB.ExecContext(ctx,
		`UPDATE articles SET status = $2, updated_at = NOW() WHERE id = $1`, id, article.StatusBuilt)
	if err != nil {
		return fmt.Errorf("marking article %s built: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.Newf(apperrors.ErrArticleNotFound, http.StatusNotFound, "article %s not found", id)
	}
	return nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
