// Package directory is the single data-access capability for tenants,
// groups, roles and users. Views receive a Directory instead of issuing
// their own requests.
package directory

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("not found")

// Tenant is a top-level customer account partition.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

type Group struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

type Role struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

type User struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id" validate:"required"`
	FirstName string    `json:"firstName" validate:"required"`
	LastName  string    `json:"lastName" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	Mobile    string    `json:"mobile" validate:"required"`
	Group     string    `json:"group" validate:"required"`
	Role      string    `json:"role" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

// Directory lists and mutates directory entities for the authenticated operator.
type Directory interface {
	ListTenants(ctx context.Context) ([]Tenant, error)
	ListGroups(ctx context.Context, tenantID string) ([]Group, error)
	ListRoles(ctx context.Context, tenantID string) ([]Role, error)
	ListUsers(ctx context.Context, tenantID string) ([]User, error)

	CreateTenant(ctx context.Context, t Tenant) (Tenant, error)
	DeleteTenant(ctx context.Context, id string) error
	CreateGroup(ctx context.Context, g Group) (Group, error)
	CreateRole(ctx context.Context, r Role) (Role, error)
	CreateUser(ctx context.Context, u User) (User, error)
	UpdateUser(ctx context.Context, u User) (User, error)
}

// StatusError is returned by the REST directory for non-2xx responses.
type StatusError struct {
	StatusCode int
	Path       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status code: %d", e.Path, e.StatusCode)
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
