package vecdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecdb/blobstore"
	"github.com/hupe1980/vecdb/distance"
)

func TestBackupRestore(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	db, err := Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	_, err = db.CreateCollection("docs", 2, distance.MetricCosine)
	require.NoError(t, err)
	require.NoError(t, db.InsertIntoCollection("docs", Embedding{ID: "a", Vector: []float32{0, 5}}))

	require.NoError(t, db.Backup(ctx, store, "backups/daily.db"))
	require.NoError(t, db.Close())

	restored, err := Restore(ctx, store, "backups/daily.db", filepath.Join(t.TempDir(), "restored.db"))
	require.NoError(t, err)
	defer restored.Close()

	assert.Equal(t, []string{"docs"}, restored.ListCollections())
	results, err := restored.Query("docs", []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Embedding.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-4)

	// Restore also materialized a loadable local store file.
	again, err := Open(restored.Path())
	require.NoError(t, err)
	defer again.Close()
	assert.Equal(t, []string{"docs"}, again.ListCollections())
}

func TestRestoreMissingBackup(t *testing.T) {
	_, err := Restore(context.Background(), blobstore.NewMemoryStore(), "nope", filepath.Join(t.TempDir(), "x.db"))
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestRestoreCorruptBackup(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "bad", []byte("garbage")))

	_, err := Restore(ctx, store, "bad", filepath.Join(t.TempDir(), "x.db"))
	assert.Error(t, err)
}

func TestBackupClosedDB(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	err = db.Backup(context.Background(), blobstore.NewMemoryStore(), "x")
	assert.ErrorIs(t, err, ErrClosed)
}
