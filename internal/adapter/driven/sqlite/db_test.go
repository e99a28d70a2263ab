package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/clipkeeper/internal/domain/model"
)

func TestNewDB_CreatesParentDirAndPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history", "clips.db")

	db, err := NewDB(ctx, path)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db.Writer))
	assert.Equal(t, path, db.Path())

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	id, err := NewClipRepo(db).AddClip(ctx, "survives reopen", model.CategoryText, nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := NewDB(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	require.NoError(t, RunMigrations(reopened.Writer))

	clip, err := NewClipRepo(reopened).GetClip(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, clip)
	assert.Equal(t, "survives reopen", clip.Content)
}

func TestNewDB_WriterIsSingleConnection(t *testing.T) {
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "clips.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, writerConns, db.Writer.Stats().MaxOpenConnections)
	assert.Equal(t, readerConns, db.Reader.Stats().MaxOpenConnections)
}
