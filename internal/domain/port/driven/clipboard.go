package driven

import "errors"

// ErrClipboardAccess wraps transient failures reading or writing the system
// clipboard.
var ErrClipboardAccess = errors.New("clipboard access failed")

// Clipboard defines the driven port for the system clipboard.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}
