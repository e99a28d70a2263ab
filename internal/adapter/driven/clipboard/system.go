// Package clipboard adapts the operating system clipboard to the driven
// Clipboard port.
package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/ericfisherdev/clipkeeper/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Clipboard = (*System)(nil)

// System reads and writes plain text through the host clipboard utilities
// (pbcopy, xclip/xsel/wl-clipboard, or the Windows API).
type System struct {
	read  func() (string, error)
	write func(string) error
}

// NewSystem returns a clipboard adapter bound to the host clipboard.
func NewSystem() *System {
	return &System{read: clipboard.ReadAll, write: clipboard.WriteAll}
}

// Supported reports whether a clipboard utility was found on this host.
func Supported() bool {
	return !clipboard.Unsupported
}

// ReadText returns the current clipboard text.
func (s *System) ReadText() (string, error) {
	text, err := s.read()
	if err != nil {
		return "", fmt.Errorf("%w: read: %w", driven.ErrClipboardAccess, err)
	}
	return text, nil
}

// WriteText replaces the clipboard contents with text.
func (s *System) WriteText(text string) error {
	if err := s.write(text); err != nil {
		return fmt.Errorf("%w: write: %w", driven.ErrClipboardAccess, err)
	}
	return nil
}
