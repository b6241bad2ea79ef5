package chat

import "time"

// Sender identifies who authored a transcript entry.
type Sender string

const (
	SenderOperator  Sender = "user"
	SenderAssistant Sender = "bot"
)

// Label is the name shown for the sender in exports.
func (s Sender) Label() string {
	if s == SenderAssistant {
		return "Bot"
	}
	return "You"
}

// Message is a single transcript entry. CreatedAt is for display only;
// transcript order is append order.
type Message struct {
	ID        int       `json:"id"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
