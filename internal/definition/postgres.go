package definition

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/sanitize"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
)

// Postgres reads definitions from the term_definitions table. Stored text
// may come from an editorial CMS and is reduced to plain text on read.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Lookup(ctx context.Context, term string) (*Definition, error) {
	var d Definition
	err := p.db.QueryRowContext(ctx,
		`SELECT term, definition, example FROM term_definitions WHERE term = $1`, term,
	).Scan(&d.Term, &d.Definition, &d.Example)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.DefinitionNotFound(term)
	}
	if err != nil {
		return nil, fmt.Errorf("querying definition for %q: %w", term, err)
	}
	d.Definition = sanitize.PlainText(d.Definition)
	d.Example = sanitize.PlainText(d.Example)
	return &d, nil
}

// Upsert inserts or replaces the stored definitions in one transaction.
func (p *Postgres) Upsert(ctx context.Context, defs []Definition) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, d := range defs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO term_definitions (term, definition, example, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (term) DO UPDATE
			SET definition = EXCLUDED.definition, example = EXCLUDED.example, updated_at = NOW()`,
			d.Term, d.Definition, d.Example,
		); err != nil {
			return fmt.Errorf("upserting definition %q: %w", d.Term, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing definitions: %w", err)
	}
	return nil
}
