package dialog

import (
	"context"
	"errors"
	"fmt"

	"github.com/comigor/tenant-console/internal/directory"
)

var ErrNoDialog = errors.New("no dialog is open")

// Submit sends the collected form values through the directory and returns
// a confirmation line for the operator.
func Submit(ctx context.Context, dir directory.Directory, d Dialog, tenantID string, values map[string]string) (string, error) {
	switch d := d.(type) {
	case Tenant:
		t, err := dir.CreateTenant(ctx, directory.Tenant{Name: values["name"]})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Tenant %q has been created successfully!", t.Name), nil
	case Group:
		g, err := dir.CreateGroup(ctx, directory.Group{TenantID: tenantID, Name: values["name"], Description: values["description"]})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Group %q has been created successfully!", g.Name), nil
	case Role:
		r, err := dir.CreateRole(ctx, directory.Role{TenantID: tenantID, Name: values["name"], Description: values["description"]})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Role %q has been created successfully!", r.Name), nil
	case UserCreate:
		if _, err := dir.CreateUser(ctx, userFromValues(directory.User{TenantID: tenantID}, values)); err != nil {
			return "", err
		}
		return "User has been created successfully!", nil
	case UserEdit:
		u := userFromValues(d.User, values)
		if u.TenantID == "" {
			u.TenantID = tenantID
		}
		if _, err := dir.UpdateUser(ctx, u); err != nil {
			return "", err
		}
		return "User has been updated successfully!", nil
	default:
		return "", ErrNoDialog
	}
}

func userFromValues(u directory.User, values map[string]string) directory.User {
	set := func(dst *string, key string) {
		if v, ok := values[key]; ok {
			*dst = v
		}
	}
	set(&u.FirstName, "firstName")
	set(&u.LastName, "lastName")
	set(&u.Email, "email")
	set(&u.Mobile, "mobile")
	set(&u.Group, "group")
	set(&u.Role, "role")
	return u
}
