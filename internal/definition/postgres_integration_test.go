//go:build integration

package definition

import (
	"context"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/postgres/postgrestest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresUpsertAndLookup(t *testing.T) {
	p := NewPostgres(postgrestest.Open(t).DB)
	ctx := context.Background()

	require.NoError(t, p.Upsert(ctx, []Definition{
		{Term: "AI", Definition: "<b>Artificial</b> intelligence.", Example: "AI &amp; news"},
	}))
	d, err := p.Lookup(ctx, "AI")
	require.NoError(t, err)
	assert.Equal(t, "Artificial intelligence.", d.Definition)
	assert.Equal(t, "AI & news", d.Example)

	require.NoError(t, p.Upsert(ctx, []Definition{{Term: "AI", Definition: "Updated."}}))
	d, err = p.Lookup(ctx, "AI")
	require.NoError(t, err)
	assert.Equal(t, "Updated.", d.Definition)

	_, err = p.Lookup(ctx, "no such term")
	assert.ErrorIs(t, err, apperrors.ErrDefinitionNotFound)
}
