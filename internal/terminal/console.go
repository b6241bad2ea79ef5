// Package terminal is the line-oriented operator console: free text goes to
// the rule chat, slash commands drive the directory.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/comigor/tenant-console/internal/chat"
	"github.com/comigor/tenant-console/internal/dialog"
	"github.com/comigor/tenant-console/internal/directory"
	"github.com/comigor/tenant-console/internal/logger"
)

// TypingIndicator is printed while an exchange awaits its reply.
const TypingIndicator = "Bot is typing…"

var errQuit = errors.New("quit")

var (
	youStyle   = color.New(color.FgGreen, color.Bold)
	botStyle   = color.New(color.FgCyan, color.Bold)
	errStyle   = color.New(color.FgRed)
	infoStyle  = color.New(color.FgYellow)
	faintStyle = color.New(color.Faint)
)

// Console binds one chat session and the directory to a terminal.
type Console struct {
	session  *chat.Session
	dir      directory.Directory
	dialogs  *dialog.Controller
	commands *Registry
	out      io.Writer
	tenantID string
	now      func() time.Time

	form *form
}

// New creates a console. tenantID scopes the group, role and user commands.
func New(session *chat.Session, dir directory.Directory, tenantID string, out io.Writer) *Console {
	c := &Console{
		session:  session,
		dir:      dir,
		dialogs:  dialog.NewController(),
		commands: NewRegistry(),
		out:      out,
		tenantID: tenantID,
		now:      time.Now,
	}
	registerCommands(c.commands)
	return c
}

// Run reads lines from in until EOF, /quit or ctx is cancelled. Cancelling
// ctx while a reply is pending resolves that exchange with the fallback reply
// before Run returns ctx.Err().
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	infoStyle.Fprintln(c.out, "Type a rule request and press Enter. End a line with \\ to continue it. /help lists commands.")
	c.printMessage(c.session.Transcript()[0])

	readCtx, stop := context.WithCancel(ctx)
	defer stop()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-readCtx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		c.prompt()
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return ctx.Err()
				}
			}
			if err := c.HandleLine(ctx, line); errors.Is(err, errQuit) {
				return nil
			}
		}
	}
}

// HandleLine processes one input line. It returns errQuit after /quit; all
// other failures are reported on the console.
func (c *Console) HandleLine(ctx context.Context, line string) error {
	if c.form != nil {
		return c.fillField(ctx, line)
	}

	if strings.HasPrefix(line, "/") && c.session.Draft() == "" {
		return c.dispatch(ctx, line)
	}

	if rest, ok := strings.CutSuffix(line, `\`); ok {
		c.session.AppendDraft(rest)
		return nil
	}
	c.session.AppendDraft(line)
	c.send(ctx)
	return nil
}

func (c *Console) dispatch(ctx context.Context, line string) error {
	parts := strings.Fields(strings.TrimPrefix(line, "/"))
	if len(parts) == 0 {
		c.errorf("unknown command: /")
		return nil
	}
	cmd, err := c.commands.Get(parts[0])
	if err != nil {
		c.errorf("%v", err)
		return nil
	}
	if err := cmd.Run(ctx, c, parts[1:]); err != nil {
		if errors.Is(err, errQuit) {
			return err
		}
		c.errorf("%v", err)
	}
	return nil
}

func (c *Console) send(ctx context.Context) {
	if !c.session.CanSend() {
		c.session.SetDraft("")
		return
	}
	faintStyle.Fprintln(c.out, TypingIndicator)
	reply, err := c.session.Send(ctx)
	switch {
	case errors.Is(err, chat.ErrEmptyDraft):
	case errors.Is(err, chat.ErrAwaitingReply):
		c.errorf("still waiting for the previous reply")
	case err != nil:
		c.errorf("%v", err)
	default:
		c.printMessage(reply)
	}
}

func (c *Console) prompt() {
	switch {
	case c.form != nil:
		f := c.form.current()
		label := f.Label
		if f.Value != "" {
			label += " [" + f.Value + "]"
		} else if f.Optional {
			label += " (optional)"
		}
		infoStyle.Fprintf(c.out, "%s: ", label)
	case c.session.Draft() != "":
		faintStyle.Fprint(c.out, "... ")
	default:
		youStyle.Fprint(c.out, "You: ")
	}
}

func (c *Console) printMessage(m chat.Message) {
	style := youStyle
	if m.Sender == chat.SenderAssistant {
		style = botStyle
	}
	style.Fprintf(c.out, "%s: ", m.Sender.Label())
	fmt.Fprintln(c.out, m.Content)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *Console) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.L.Debug("console error", "error", msg)
	errStyle.Fprintln(c.out, "Error: "+msg)
}
