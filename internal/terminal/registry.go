package terminal

import (
	"context"
	"fmt"
	"sort"
)

// Command is a slash command typed at the console prompt.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, c *Console, args []string) error
}

// Registry manages the available commands
type Registry struct {
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
	}
}

// Register adds a command, replacing any with the same name.
func (r *Registry) Register(cmd Command) {
	r.commands[cmd.Name()] = cmd
}

// Get retrieves a command by name
func (r *Registry) Get(name string) (Command, error) {
	cmd, ok := r.commands[name]
	if !ok {
		return nil, fmt.Errorf("unknown command: /%s", name)
	}
	return cmd, nil
}

// List returns all registered commands sorted by name.
func (r *Registry) List() []Command {
	cmds := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
	return cmds
}

type command struct {
	name  string
	usage string
	desc  string
	run   func(ctx context.Context, c *Console, args []string) error
}

func (cmd command) Name() string { return cmd.name }

func (cmd command) Description() string {
	if cmd.usage == "" {
		return cmd.desc
	}
	return cmd.usage + "  " + cmd.desc
}

func (cmd command) Run(ctx context.Context, c *Console, args []string) error {
	return cmd.run(ctx, c, args)
}
