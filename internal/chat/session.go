package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/comigor/tenant-console/internal/identity"
	"github.com/comigor/tenant-console/internal/logger"
	"github.com/comigor/tenant-console/internal/rules"
)

const (
	Greeting      = "Hello! I'm your AI assistant. How can I help you today?"
	FallbackReply = "Sorry, I'm having trouble connecting to my servers right now. Please try again later."
)

// Exchange states
const (
	StateIdle          = "Idle"
	StateAwaitingReply = "AwaitingReply"
)

// Exchange triggers
const (
	TriggerSubmit         = "Submit"
	TriggerReplySucceeded = "ReplySucceeded"
	TriggerReplyFailed    = "ReplyFailed"
	TriggerClear          = "Clear"
)

var (
	ErrEmptyDraft    = errors.New("draft is empty")
	ErrAwaitingReply = errors.New("an exchange is already awaiting its reply")
)

// Session is one operator's rule chat. It allows at most one outstanding
// exchange; the transcript is only mutated under mu.
type Session struct {
	mu         sync.Mutex
	transcript []Message
	draft      string
	fsm        *stateless.StateMachine

	creator   rules.Creator
	tenantID  string
	operator  identity.Context
	clipboard Clipboard
	now       func() time.Time
}

// Option customises a Session.
type Option func(*Session)

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithClipboard sets the clipboard used by CopyMessage.
func WithClipboard(c Clipboard) Option {
	return func(s *Session) { s.clipboard = c }
}

// WithOperator attributes the session's log lines to an identity.
func WithOperator(op identity.Context) Option {
	return func(s *Session) { s.operator = op }
}

// NewSession creates a session seeded with the greeting. tenantID is sent
// with every prompt.
func NewSession(creator rules.Creator, tenantID string, opts ...Option) *Session {
	s := &Session{
		creator:   creator,
		tenantID:  tenantID,
		clipboard: noClipboard{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.fsm = stateless.NewStateMachine(StateIdle)
	s.fsm.Configure(StateIdle).
		Permit(TriggerSubmit, StateAwaitingReply).
		PermitReentry(TriggerClear)
	s.fsm.Configure(StateAwaitingReply).
		OnEntry(func(_ context.Context, args ...any) error {
			logger.L.Debug("exchange started", "user_id", s.operator.UserID, "operator", s.operator.DisplayName())
			return nil
		}).
		Permit(TriggerReplySucceeded, StateIdle).
		Permit(TriggerReplyFailed, StateIdle)

	s.transcript = []Message{s.greeting()}
	return s
}

func (s *Session) greeting() Message {
	return Message{ID: 1, Sender: SenderAssistant, Content: Greeting, CreatedAt: s.now()}
}

// appendLocked must be called with mu held.
func (s *Session) appendLocked(sender Sender, content string) Message {
	m := Message{
		ID:        len(s.transcript) + 1,
		Sender:    sender,
		Content:   content,
		CreatedAt: s.now(),
	}
	s.transcript = append(s.transcript, m)
	return m
}

func (s *Session) awaitingLocked() bool {
	return s.fsm.MustState() == StateAwaitingReply
}

// Submit appends the trimmed draft as an operator message, sends it to the
// rule creator and appends exactly one assistant reply. Endpoint failures are
// logged and replaced by FallbackReply; they never surface as an error.
// It returns ErrEmptyDraft or ErrAwaitingReply without touching the transcript
// when the send control would be disabled.
func (s *Session) Submit(ctx context.Context, draft string) (Message, error) {
	text := strings.TrimSpace(draft)
	if text == "" {
		return Message{}, ErrEmptyDraft
	}

	s.mu.Lock()
	if err := s.fsm.Fire(TriggerSubmit); err != nil {
		s.mu.Unlock()
		return Message{}, ErrAwaitingReply
	}
	s.appendLocked(SenderOperator, text)
	s.draft = ""
	s.mu.Unlock()

	reply, err := s.creator.Create(ctx, rules.Request{Prompt: text, TenantID: s.tenantID})

	s.mu.Lock()
	defer s.mu.Unlock()

	content, trigger := "", TriggerReplySucceeded
	if err != nil {
		logger.L.Error("rule creation failed", "error", err, "tenant_id", s.tenantID, "user_id", s.operator.UserID)
		content, trigger = FallbackReply, TriggerReplyFailed
	} else {
		content = reply.Content()
		logger.L.Info("rule created", "tenant_id", s.tenantID, "user_id", s.operator.UserID)
	}
	msg := s.appendLocked(SenderAssistant, content)
	if fireErr := s.fsm.Fire(trigger); fireErr != nil {
		logger.L.Warn("FSM fire error", "error", fireErr)
	}
	return msg, nil
}

// Send submits the current draft.
func (s *Session) Send(ctx context.Context) (Message, error) {
	return s.Submit(ctx, s.Draft())
}

// Clear resets the transcript to the greeting and drops the draft. It is
// refused with ErrAwaitingReply while an exchange is outstanding.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fsm.Fire(TriggerClear); err != nil {
		return ErrAwaitingReply
	}
	s.transcript = []Message{s.greeting()}
	s.draft = ""
	return nil
}

// Transcript returns a copy of the transcript in append order.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// AwaitingReply reports whether an exchange is outstanding.
func (s *Session) AwaitingReply() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaitingLocked()
}

func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	s.mu.Unlock()
}

// AppendDraft adds a line to a multi-line draft.
func (s *Session) AppendDraft(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == "" {
		s.draft = line
		return
	}
	s.draft += "\n" + line
}

func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// CanSend mirrors the send control: enabled for a non-blank draft while idle.
func (s *Session) CanSend() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.TrimSpace(s.draft) != "" && !s.awaitingLocked()
}
