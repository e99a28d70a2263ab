package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/clipkeeper/internal/domain/model"
)

// testClock is a settable clock for deterministic timestamps.
type testClock struct {
	mu      sync.Mutex
	current time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

func TestClipRepo_AddAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClipRepo(db)
	ctx := context.Background()

	id, err := repo.AddClip(ctx, "https://example.com", model.CategoryURL, nil)
	require.NoError(t, err)
	assert.Positive(t, id)

	clip, err := repo.GetClip(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, clip)
	assert.Equal(t, id, clip.ID)
	assert.Equal(t, "https://example.com", clip.Content)
	assert.Equal(t, model.CategoryURL, clip.Category)
	assert.False(t, clip.IsEncrypted)
	assert.Nil(t, clip.EncryptedPayload)
	assert.False(t, clip.IsPinned)
	assert.False(t, clip.IsFavorite)
	assert.WithinDuration(t, time.Now(), clip.CreatedAt, 5*time.Second)
}

func TestClipRepo_AddEncrypted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClipRepo(db)
	ctx := context.Background()

	payload := []byte{0x01, 0xde, 0xad, 0xbe, 0xef}
	id, err := repo.AddClip(ctx, model.EncryptedPlaceholder, model.CategoryPassword, payload)
	require.NoError(t, err)

	clip, err := repo.GetClip(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, clip)
	assert.True(t, clip.IsEncrypted)
	assert.Equal(t, payload, clip.EncryptedPayload)
	assert.Equal(t, model.EncryptedPlaceholder, clip.Content)
}

func TestClipRepo_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClipRepo(db)

	clip, err := repo.GetClip(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, clip)
}

func TestClipRepo_ListAllOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClipRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &testClock{current: base}
	repo.now = clock.Now

	oldest, err := repo.AddClip(ctx, "oldest", model.CategoryText, nil)
	require.NoError(t, err)

	clock.Set(base.Add(time.Minute))
	middle, err := repo.AddClip(ctx, "middle", model.CategoryText, nil)
	require.NoError(t, err)

	clock.Set(base.Add(2 * time.Minute))
	newest, err := repo.AddClip(ctx, "newest", model.CategoryText, nil)
	require.NoError(t, err)

	pinned, err := repo.TogglePin(ctx, oldest)
	require.NoError(t, err)
	require.True(t, pinned)

	clips, err := repo.ListAll(ctx, 10)
	require.NoError(t, err)
	require.Len(t, clips, 3)
	assert.Equal(t, oldest, clips[0].ID, "pinned clip sorts first")
	assert.Equal(t, newest, clips[1].ID)
	assert.Equal(t, middle, clips[2].ID)
}

func TestClipRepo_ListAllLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClipRepo(db)
	ctx := context.Background()

	for _, content := range []string{"a", "b", "c", "d"} {
		_, err := repo.AddClip(ctx, content, model.CategoryText, nil)
		require.NoError(t, err)
	}

	clips, err := repo.ListAll(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, clips, 2)

	clips, err = repo.ListAll(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, clips, 4, "non-positive limit falls back to the default")
}

func TestClipRepo_ListByCategory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClipRepo(db)
	ctx := context.Background()

	_, err := repo.AddClip(ctx, "https://a.example.com", model.CategoryURL, nil)
	require.NoError(t, err)
	_, err = repo.AddClip(ctx, "hello", model.CategoryText, nil)
	require.NoError(t, err)
	_, err = repo.AddClip(ctx, "https://b.example.com", model.CategoryURL, nil)
	require.NoError(t, err)

	clips, err := repo.ListByCategory(ctx, model.CategoryURL, 10)
	require.NoError(t, err)
	require.Len(t, clips, 2)
	for _, c := range clips {
		assert.Equal(t, model.CategoryURL, c.Category)
	}

	clips, err = repo.ListByCategory(ctx, model.CategoryEmail, 10)
	require.NoError(t, err)
	assert.Empty(t, clips)
}

func TestClipRepo_Search(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClipRepo(db)
	ctx := context.Background()

	_, err := repo.AddClip(ctx, "Hello World", model.CategoryText, nil)
	require.NoError(t, err)
	_, err = repo.AddClip(ctx, "goodbye world", model.CategoryText, nil)
	require.NoError(t, err)
	_, err = repo.AddClip(ctx, "100% done", model.CategoryText, nil)
	require.NoError(t, err)
	_, err = repo.AddClip(ctx, "1000 done", model.CategoryText, nil)
	require.NoError(t, err)

	clips, err := repo.Search(ctx, "world", 10)
	require.NoError(t, err)
	require.Len(t, clips, 2)
	assert.Equal(t, "goodbye world", clips[0].Content, "newest first")

	clips, err = repo.Search(ctx, "hello", 10)
	require.NoError(t, err)
	require.Len(t, clips, 1, "match is case-insensitive")

	clips, err = repo.Search(ctx, "0%", 10)
	require.NoError(t, err)
	require.Len(t, clips, 1, "percent sign is matched literally")
	assert.Equal(t, "100% done", clips[0].Content)

	clips, err = repo.Search(ctx, "nothing-matches", 10)
	require.NoError(t, err)
	assert.Empty(t, clips)
}

func TestClipRepo_TogglePinTwiceRestores(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClipRepo(db)
	ctx := context.Background()

	id, err := repo.AddClip(ctx, "pin me", model.CategoryText, nil)
	require.NoError(t, err)

	state, err := repo.TogglePin(ctx, id)
	require.NoError(t, err)
	assert.True(t, state)

	clip, err := repo.GetClip(ctx, id)
	require.NoError(t, err)
	assert.True(t, clip.IsPinned)

	state, err = repo.TogglePin(ctx, id)
	require.NoError(t, err)
	assert.False(t, state)

	clip, err = repo.GetClip(ctx, id)
	require.NoError(t, err)
	assert.False(t, clip.IsPinned)
}

func TestClipRepo_ToggleFavorite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClipRepo(db)
	ctx := context.Background()

	id, err := repo.AddClip(ctx, "fave", model.CategoryText, nil)
	require.NoError(t, err)

	state, err := repo.ToggleFavorite(ctx, id)
	require.NoError(t, err)
	assert.True(t, state)

	clip, err := repo.GetClip(ctx, id)
	require.NoError(t, err)
	assert.True(t, clip.IsFavorite)
	assert.False(t, clip.IsPinned, "favorite toggle leaves pin alone")
}

func TestClipRepo_ToggleMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClipRepo(db)
	ctx := context.Background()

	state, err := repo.TogglePin(ctx, 999)
	require.NoError(t, err)
	assert.False(t, state)

	state, err = repo.ToggleFavorite(ctx, 999)
	require.NoError(t, err)
	assert.False(t, state)
}

func TestClipRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClipRepo(db)
	ctx := context.Background()

	id, err := repo.AddClip(ctx, "delete me", model.CategoryText, nil)
	require.NoError(t, err)

	removed, err := repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, removed, "second delete removes nothing")

	clip, err := repo.GetClip(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, clip)
}

func TestClipRepo_CheckDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClipRepo(db)
	ctx := context.Background()

	dup, err := repo.CheckDuplicate(ctx, "same text")
	require.NoError(t, err)
	assert.False(t, dup)

	_, err = repo.AddClip(ctx, "same text", model.CategoryText, nil)
	require.NoError(t, err)

	dup, err = repo.CheckDuplicate(ctx, "same text")
	require.NoError(t, err)
	assert.True(t, dup)

	dup, err = repo.CheckDuplicate(ctx, "Same text")
	require.NoError(t, err)
	assert.False(t, dup, "duplicate check is an exact match")
}

func TestClipRepo_DedupWhenCallerChecksFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClipRepo(db)
	ctx := context.Background()

	for range 2 {
		dup, err := repo.CheckDuplicate(ctx, "copied twice")
		require.NoError(t, err)
		if dup {
			continue
		}
		_, err = repo.AddClip(ctx, "copied twice", model.CategoryText, nil)
		require.NoError(t, err)
	}

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClipRepo_CleanupOlderThan(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClipRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &testClock{current: base}
	repo.now = clock.Now

	oldPinned, err := repo.AddClip(ctx, "old pinned", model.CategoryText, nil)
	require.NoError(t, err)
	_, err = repo.TogglePin(ctx, oldPinned)
	require.NoError(t, err)

	oldPlain, err := repo.AddClip(ctx, "old plain", model.CategoryText, nil)
	require.NoError(t, err)

	clock.Set(base.Add(20 * 24 * time.Hour))
	boundary, err := repo.AddClip(ctx, "exactly at cutoff", model.CategoryText, nil)
	require.NoError(t, err)

	clock.Set(base.Add(25 * 24 * time.Hour))
	recent, err := repo.AddClip(ctx, "recent", model.CategoryText, nil)
	require.NoError(t, err)

	// Cutoff is now - 30d = base + 20d, which equals the boundary clip's timestamp.
	clock.Set(base.Add(50 * 24 * time.Hour))
	removed, err := repo.CleanupOlderThan(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	for _, id := range []int64{oldPinned, boundary, recent} {
		clip, err := repo.GetClip(ctx, id)
		require.NoError(t, err)
		assert.NotNil(t, clip, "clip %d should be retained", id)
	}

	clip, err := repo.GetClip(ctx, oldPlain)
	require.NoError(t, err)
	assert.Nil(t, clip, "non-pinned clip past the cutoff is removed")
}

func TestClipRepo_CleanupNeverRemovesPinned(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClipRepo(db)
	ctx := context.Background()

	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &testClock{current: base}
	repo.now = clock.Now

	id, err := repo.AddClip(ctx, "ancient", model.CategoryText, nil)
	require.NoError(t, err)
	_, err = repo.TogglePin(ctx, id)
	require.NoError(t, err)

	clock.Set(base.AddDate(5, 0, 0))
	removed, err := repo.CleanupOlderThan(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, removed)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// TestClipRepo_ConcurrentToggleAndDelete uses a file-backed database so the
// writer and reader pools behave as they do in production.
func TestClipRepo_ConcurrentToggleAndDelete(t *testing.T) {
	ctx := context.Background()
	db, err := NewDB(ctx, filepath.Join(t.TempDir(), "clips.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, RunMigrations(db.Writer))

	repo := NewClipRepo(db)

	const clips = 20
	ids := make([]int64, 0, clips)
	for i := range clips {
		id, err := repo.AddClip(ctx, "clip-"+string(rune('a'+i)), model.CategoryText, nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := repo.TogglePin(ctx, id)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := repo.Delete(ctx, id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
