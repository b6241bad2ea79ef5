package dialog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comigor/tenant-console/internal/directory"
)

func TestController(t *testing.T) {
	c := NewController()
	require.IsType(t, None{}, c.Active())
	require.False(t, c.IsOpen())

	c.Open(Tenant{})
	require.IsType(t, Tenant{}, c.Active())
	require.True(t, c.IsOpen())

	// opening another dialog replaces the active one
	u := directory.User{ID: "u1", FirstName: "Ada", LastName: "Lovelace"}
	c.Open(UserEdit{User: u})
	edit, ok := c.Active().(UserEdit)
	require.True(t, ok)
	require.Equal(t, "u1", edit.User.ID)

	c.Close()
	require.False(t, c.IsOpen())

	c.Open(nil)
	require.IsType(t, None{}, c.Active())
}

func TestTitle(t *testing.T) {
	require.Equal(t, "Create Tenant", Title(Tenant{}))
	require.Equal(t, "Create User", Title(UserCreate{}))
	require.Equal(t, "Edit User Ada Lovelace", Title(UserEdit{User: directory.User{FirstName: "Ada", LastName: "Lovelace"}}))
	require.Empty(t, Title(None{}))
}

func TestFields(t *testing.T) {
	require.Nil(t, Fields(None{}))
	require.Len(t, Fields(Tenant{}), 1)
	require.True(t, Fields(Group{})[1].Optional)

	create := Fields(UserCreate{})
	require.Len(t, create, 6)
	for _, f := range create {
		require.Empty(t, f.Value)
		require.False(t, f.Optional)
	}

	edit := Fields(UserEdit{User: directory.User{FirstName: "Ada", Email: "ada@example.com", Role: "Admin"}})
	require.Equal(t, "Ada", edit[0].Value)
	require.Equal(t, "ada@example.com", edit[2].Value)
	require.Equal(t, "Admin", edit[5].Value)
}

type recordingDirectory struct {
	directory.Directory
	tenant directory.Tenant
	group  directory.Group
	role   directory.Role
	user   directory.User
	err    error
}

func (r *recordingDirectory) CreateTenant(_ context.Context, t directory.Tenant) (directory.Tenant, error) {
	r.tenant = t
	return t, r.err
}

func (r *recordingDirectory) CreateGroup(_ context.Context, g directory.Group) (directory.Group, error) {
	r.group = g
	return g, r.err
}

func (r *recordingDirectory) CreateRole(_ context.Context, ro directory.Role) (directory.Role, error) {
	r.role = ro
	return ro, r.err
}

func (r *recordingDirectory) CreateUser(_ context.Context, u directory.User) (directory.User, error) {
	r.user = u
	return u, r.err
}

func (r *recordingDirectory) UpdateUser(_ context.Context, u directory.User) (directory.User, error) {
	r.user = u
	return u, r.err
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	dir := &recordingDirectory{}

	msg, err := Submit(ctx, dir, Tenant{}, "t1", map[string]string{"name": "Acme"})
	require.NoError(t, err)
	require.Equal(t, `Tenant "Acme" has been created successfully!`, msg)
	require.Equal(t, "Acme", dir.tenant.Name)

	_, err = Submit(ctx, dir, Group{}, "t1", map[string]string{"name": "Ops", "description": "on call"})
	require.NoError(t, err)
	require.Equal(t, directory.Group{TenantID: "t1", Name: "Ops", Description: "on call"}, dir.group)

	_, err = Submit(ctx, dir, Role{}, "t1", map[string]string{"name": "Admin"})
	require.NoError(t, err)
	require.Equal(t, "t1", dir.role.TenantID)

	values := map[string]string{
		"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com",
		"mobile": "1", "group": "Ops", "role": "Admin",
	}
	msg, err = Submit(ctx, dir, UserCreate{}, "t1", values)
	require.NoError(t, err)
	require.Equal(t, "User has been created successfully!", msg)
	require.Equal(t, "Lovelace", dir.user.LastName)
	require.Equal(t, "t1", dir.user.TenantID)

	existing := directory.User{ID: "u1", TenantID: "t2", FirstName: "Ada", Role: "Admin"}
	_, err = Submit(ctx, dir, UserEdit{User: existing}, "t1", map[string]string{"role": "Viewer"})
	require.NoError(t, err)
	require.Equal(t, "u1", dir.user.ID)
	require.Equal(t, "t2", dir.user.TenantID)
	require.Equal(t, "Ada", dir.user.FirstName)
	require.Equal(t, "Viewer", dir.user.Role)
}

func TestSubmit_Errors(t *testing.T) {
	_, err := Submit(context.Background(), &recordingDirectory{}, None{}, "t1", nil)
	require.ErrorIs(t, err, ErrNoDialog)

	boom := errors.New("boom")
	_, err = Submit(context.Background(), &recordingDirectory{err: boom}, Tenant{}, "t1", map[string]string{"name": "x"})
	require.ErrorIs(t, err, boom)
}
