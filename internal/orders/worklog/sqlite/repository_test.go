package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storewell/orders/internal/orders/domain"
	"github.com/storewell/orders/internal/orders/worklog"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "worklog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepository_SaveAndListByRun(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	stages := []domain.Stage{
		domain.StageValidatingCustomer,
		domain.StageValidatingProducts,
		domain.StageFailed,
	}
	for _, stage := range stages {
		detail := ""
		if stage == domain.StageFailed {
			detail = `could not find product with id "PX"`
		}
		require.NoError(t, repo.Save(ctx, worklog.NewEntry(ctx, "run-1", "C1", stage, detail)))
	}
	// An unrelated run must not leak into the listing.
	require.NoError(t, repo.Save(ctx, worklog.NewEntry(ctx, "run-2", "C2", domain.StageValidatingCustomer, "")))

	entries, err := repo.ListByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	for i, entry := range entries {
		assert.Equal(t, "run-1", entry.RunID)
		assert.Equal(t, "C1", entry.CustomerID)
		assert.Equal(t, stages[i], entry.Stage)
		assert.False(t, entry.RecordedAt.IsZero())
	}
	assert.Equal(t, `could not find product with id "PX"`, entries[2].Detail)

	// Entries written without an active span carry empty trace ids.
	assert.Empty(t, entries[0].TraceID)
}

func TestRepository_ListByRun_UnknownRun(t *testing.T) {
	repo := openTestRepo(t)

	entries, err := repo.ListByRun(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
