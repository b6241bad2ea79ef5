// Package dialog models which create/edit form is open. Exactly one dialog
// can be active at a time.
package dialog

import (
	"sync"

	"github.com/comigor/tenant-console/internal/directory"
)

// Dialog is the active dialog variant: None, Tenant, Group, Role,
// UserCreate or UserEdit.
type Dialog interface {
	isDialog()
}

type (
	None       struct{}
	Tenant     struct{}
	Group      struct{}
	Role       struct{}
	UserCreate struct{}
	UserEdit   struct{ User directory.User }
)

func (None) isDialog()       {}
func (Tenant) isDialog()     {}
func (Group) isDialog()      {}
func (Role) isDialog()       {}
func (UserCreate) isDialog() {}
func (UserEdit) isDialog()   {}

// Title is the heading shown above the form.
func Title(d Dialog) string {
	switch d := d.(type) {
	case Tenant:
		return "Create Tenant"
	case Group:
		return "Create Group"
	case Role:
		return "Create Role"
	case UserCreate:
		return "Create User"
	case UserEdit:
		return "Edit User " + d.User.FullName()
	default:
		return ""
	}
}

// Field is one form input.
type Field struct {
	Key      string
	Label    string
	Value    string
	Optional bool
}

// Fields lists the inputs a dialog collects, in prompt order. UserEdit is
// pre-filled from its payload.
func Fields(d Dialog) []Field {
	switch d := d.(type) {
	case Tenant:
		return []Field{{Key: "name", Label: "Tenant name"}}
	case Group:
		return []Field{
			{Key: "name", Label: "Group name"},
			{Key: "description", Label: "Description", Optional: true},
		}
	case Role:
		return []Field{
			{Key: "name", Label: "Role name"},
			{Key: "description", Label: "Description", Optional: true},
		}
	case UserCreate:
		return userFields(directory.User{})
	case UserEdit:
		return userFields(d.User)
	default:
		return nil
	}
}

func userFields(u directory.User) []Field {
	return []Field{
		{Key: "firstName", Label: "First name", Value: u.FirstName},
		{Key: "lastName", Label: "Last name", Value: u.LastName},
		{Key: "email", Label: "Email", Value: u.Email},
		{Key: "mobile", Label: "Mobile", Value: u.Mobile},
		{Key: "group", Label: "Group", Value: u.Group},
		{Key: "role", Label: "Role", Value: u.Role},
	}
}

// Controller holds the single active dialog.
type Controller struct {
	mu     sync.Mutex
	active Dialog
}

func NewController() *Controller {
	return &Controller{active: None{}}
}

// Open replaces whatever dialog is active.
func (c *Controller) Open(d Dialog) {
	if d == nil {
		d = None{}
	}
	c.mu.Lock()
	c.active = d
	c.mu.Unlock()
}

func (c *Controller) Close() {
	c.Open(None{})
}

func (c *Controller) Active() Dialog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// IsOpen reports whether any dialog other than None is active.
func (c *Controller) IsOpen() bool {
	_, none := c.Active().(None)
	return !none
}
