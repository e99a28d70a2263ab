package driven

import "context"

// SettingStore defines the driven port for the flat key/value settings table.
type SettingStore interface {
	// GetSetting returns the stored value for key, or def if none exists.
	GetSetting(ctx context.Context, key, def string) (string, error)

	// SetSetting inserts or overwrites the value for key. Last write wins.
	SetSetting(ctx context.Context, key, value string) error
}
