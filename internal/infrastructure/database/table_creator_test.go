package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diampra/octopus-server/internal/infrastructure/database"
	"github.com/Diampra/octopus-server/internal/infrastructure/database/dbtest"
)

func TestSchemaIsIdempotent(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	tc := database.NewTableCreator()

	require.NoError(t, tc.CreateSchema(ctx, db))
	require.NoError(t, tc.SeedInitialContent(ctx, db))
	require.NoError(t, tc.SeedInitialContent(ctx, db))

	var count int
	require.NoError(t, db.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count))
	assert.Equal(t, 2, count)
}
