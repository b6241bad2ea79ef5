package chat

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const exportTimeLayout = "15:04:05"

// ExportMIMEType is the content type of an exported transcript.
const ExportMIMEType = "text/plain"

// ExportFilename names the export artifact after the UTC date of now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("chat-export-%s.txt", now.UTC().Format(time.DateOnly))
}

// FormatLine renders one message as "[time] Bot|You: content". Embedded
// line breaks are collapsed to spaces so a message never spans lines.
func FormatLine(m Message) string {
	return fmt.Sprintf("[%s] %s: %s", m.CreatedAt.Format(exportTimeLayout), m.Sender.Label(), flatten(m.Content))
}

func flatten(content string) string {
	lines := strings.FieldsFunc(content, func(r rune) bool { return r == '\n' || r == '\r' })
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, " ")
}

// Export writes the transcript, one line per message, in transcript order.
// It has no effect on the session.
func (s *Session) Export(w io.Writer) error {
	for i, m := range s.Transcript() {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, FormatLine(m)); err != nil {
			return err
		}
	}
	return nil
}

// ExportString is Export into a string.
func (s *Session) ExportString() string {
	var b strings.Builder
	_ = s.Export(&b)
	return b.String()
}
