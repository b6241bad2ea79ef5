package chat

import (
	"errors"

	"github.com/atotto/clipboard"

	"github.com/comigor/tenant-console/internal/logger"
)

// Clipboard writes plain text to the operating environment's clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard uses the host clipboard utilities.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard utility available")
	}
	return clipboard.WriteAll(text)
}

type noClipboard struct{}

func (noClipboard) WriteAll(string) error {
	return errors.New("clipboard not configured")
}

// CopyMessage copies content to the clipboard. Best effort: a failure is
// logged and otherwise ignored.
func (s *Session) CopyMessage(content string) {
	if err := s.clipboard.WriteAll(content); err != nil {
		logger.L.Warn("failed to copy message", "error", err)
	}
}
