package terminal

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/comigor/tenant-console/internal/chat"
	"github.com/comigor/tenant-console/internal/dialog"
	"github.com/comigor/tenant-console/internal/directory"
)

func registerCommands(r *Registry) {
	for _, cmd := range []command{
		{name: "help", desc: "List commands", run: runHelp},
		{name: "quit", desc: "Leave the console", run: func(context.Context, *Console, []string) error { return errQuit }},
		{name: "clear", desc: "Reset the conversation to the greeting", run: runClear},
		{name: "history", desc: "Show the transcript with message ids", run: runHistory},
		{name: "export", usage: "[path]", desc: "Write the transcript to a text file", run: runExport},
		{name: "copy", usage: "<id>", desc: "Copy a message to the clipboard", run: runCopy},
		{name: "tenants", desc: "List tenants", run: runTenants},
		{name: "use", usage: "<tenant-id>", desc: "Scope group, role and user commands to a tenant", run: runUse},
		{name: "groups", desc: "List groups of the current tenant", run: runGroups},
		{name: "roles", desc: "List roles of the current tenant", run: runRoles},
		{name: "users", desc: "List users of the current tenant", run: runUsers},
		{name: "new", usage: "tenant|group|role|user", desc: "Open a create dialog", run: runNew},
		{name: "edit", usage: "user <id>", desc: "Open the edit dialog for a user", run: runEdit},
		{name: "delete", usage: "tenant <id>", desc: "Delete a tenant", run: runDelete},
		{name: "cancel", desc: "Discard the open dialog", run: runCancel},
	} {
		r.Register(cmd)
	}
}

func runHelp(_ context.Context, c *Console, _ []string) error {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, cmd := range c.commands.List() {
		fmt.Fprintf(tw, "/%s\t%s\n", cmd.Name(), cmd.Description())
	}
	return tw.Flush()
}

func runClear(_ context.Context, c *Console, _ []string) error {
	if err := c.session.Clear(); err != nil {
		return err
	}
	c.printMessage(c.session.Transcript()[0])
	return nil
}

func runHistory(_ context.Context, c *Console, _ []string) error {
	for _, m := range c.session.Transcript() {
		fmt.Fprintf(c.out, "#%d %s\n", m.ID, chat.FormatLine(m))
	}
	return nil
}

func runExport(_ context.Context, c *Console, args []string) error {
	path := chat.ExportFilename(c.now())
	if len(args) > 0 {
		path = args[0]
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := c.session.Export(f); err != nil {
		f.Close()
		return fmt.Errorf("export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	c.printf("Exported chat to %s", path)
	return nil
}

func runCopy(_ context.Context, c *Console, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: /copy <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid message id %q", args[0])
	}
	for _, m := range c.session.Transcript() {
		if m.ID == id {
			c.session.CopyMessage(m.Content)
			c.printf("Copied message #%d.", id)
			return nil
		}
	}
	return fmt.Errorf("no message #%d", id)
}

func runTenants(ctx context.Context, c *Console, _ []string) error {
	tenants, err := c.dir.ListTenants(ctx)
	if err != nil {
		return err
	}
	if len(tenants) == 0 {
		c.printf("No tenants.")
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCREATED")
	for _, t := range tenants {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Name, t.CreatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

func runUse(_ context.Context, c *Console, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: /use <tenant-id>")
	}
	c.tenantID = args[0]
	c.printf("Using tenant %s.", c.tenantID)
	return nil
}

func runGroups(ctx context.Context, c *Console, _ []string) error {
	groups, err := c.dir.ListGroups(ctx, c.tenantID)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		c.printf("No groups.")
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", g.ID, g.Name, g.Description)
	}
	return tw.Flush()
}

func runRoles(ctx context.Context, c *Console, _ []string) error {
	roles, err := c.dir.ListRoles(ctx, c.tenantID)
	if err != nil {
		return err
	}
	if len(roles) == 0 {
		c.printf("No roles.")
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, r := range roles {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Name, r.Description)
	}
	return tw.Flush()
}

func runUsers(ctx context.Context, c *Console, _ []string) error {
	users, err := c.dir.ListUsers(ctx, c.tenantID)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		c.printf("No users.")
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tMOBILE\tGROUP\tROLE")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.FullName(), u.Email, u.Mobile, u.Group, u.Role)
	}
	return tw.Flush()
}

func runNew(_ context.Context, c *Console, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: /new tenant|group|role|user")
	}
	var d dialog.Dialog
	switch args[0] {
	case "tenant":
		d = dialog.Tenant{}
	case "group":
		d = dialog.Group{}
	case "role":
		d = dialog.Role{}
	case "user":
		d = dialog.UserCreate{}
	default:
		return fmt.Errorf("cannot create %q", args[0])
	}
	c.openDialog(d)
	return nil
}

func runEdit(ctx context.Context, c *Console, args []string) error {
	if len(args) != 2 || args[0] != "user" {
		return fmt.Errorf("usage: /edit user <id>")
	}
	users, err := c.dir.ListUsers(ctx, c.tenantID)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.ID == args[1] {
			c.openDialog(dialog.UserEdit{User: u})
			return nil
		}
	}
	return fmt.Errorf("user %s: %w", args[1], directory.ErrNotFound)
}

func runDelete(ctx context.Context, c *Console, args []string) error {
	if len(args) != 2 || args[0] != "tenant" {
		return fmt.Errorf("usage: /delete tenant <id>")
	}
	if err := c.dir.DeleteTenant(ctx, args[1]); err != nil {
		return err
	}
	c.printf("Tenant %s has been deleted.", args[1])
	return nil
}

func runCancel(_ context.Context, c *Console, _ []string) error {
	c.printf("No dialog is open.")
	return nil
}
