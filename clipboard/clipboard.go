// Package clipboard copies generated commands to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when no clipboard utility is present, e.g. on a
// headless server without xclip, xsel or wl-copy.
var ErrUnavailable = errors.New("clipboard unavailable")

// Replaced in tests.
var (
	writeAll    = clipboard.WriteAll
	unsupported = func() bool { return clipboard.Unsupported }
)

// Copy places text on the clipboard. Callers treat failure as non-fatal:
// the command is printed either way.
func Copy(text string) error {
	if unsupported() {
		return ErrUnavailable
	}
	if err := writeAll(text); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	return nil
}
