// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"

	"github.com/ericfisherdev/clipkeeper/internal/domain/model"
)

// ClipStore defines the driven port for clip persistence. Every mutating
// operation has committed durably by the time it returns.
type ClipStore interface {
	// AddClip inserts a new clip and returns its identifier. A non-nil payload
	// marks the clip as encrypted. No duplicate check is performed here;
	// callers use CheckDuplicate first.
	AddClip(ctx context.Context, content string, category model.Category, payload []byte) (int64, error)

	// GetClip returns the clip with the given id, or (nil, nil) if it does not exist.
	GetClip(ctx context.Context, id int64) (*model.Clip, error)

	// ListAll returns clips ordered pinned first, then newest first.
	ListAll(ctx context.Context, limit int) ([]model.Clip, error)

	// ListByCategory is ListAll restricted to one category.
	ListByCategory(ctx context.Context, category model.Category, limit int) ([]model.Clip, error)

	// Search returns clips whose content contains substring, newest first.
	Search(ctx context.Context, substring string, limit int) ([]model.Clip, error)

	// TogglePin flips the pinned flag and returns the new state. Returns
	// (false, nil) if the clip does not exist.
	TogglePin(ctx context.Context, id int64) (bool, error)

	// ToggleFavorite flips the favorite flag and returns the new state.
	// Returns (false, nil) if the clip does not exist.
	ToggleFavorite(ctx context.Context, id int64) (bool, error)

	// Delete removes a clip and reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)

	// CheckDuplicate reports whether a clip with exactly this content exists.
	CheckDuplicate(ctx context.Context, content string) (bool, error)

	// CleanupOlderThan deletes every non-pinned clip created strictly more
	// than days ago and returns the number of rows removed.
	CleanupOlderThan(ctx context.Context, days int) (int64, error)

	// Count returns the total number of stored clips.
	Count(ctx context.Context) (int, error)
}
