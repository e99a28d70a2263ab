package model

import "time"

// EncryptedPlaceholder is stored as the content of every encrypted clip. The
// real value only exists inside EncryptedPayload.
const EncryptedPlaceholder = "[Encrypted Password]"

// Clip is one captured or manually entered piece of clipboard text.
// IsEncrypted is true exactly when EncryptedPayload is non-nil, and in that
// case Content holds EncryptedPlaceholder.
type Clip struct {
	ID               int64
	Content          string
	Category         Category
	CreatedAt        time.Time
	IsPinned         bool
	IsFavorite       bool
	EncryptedPayload []byte
	IsEncrypted      bool
}

// ClipEvent is emitted after a new clip has been persisted by the monitor.
type ClipEvent struct {
	ID       int64
	Content  string
	Category Category
}
