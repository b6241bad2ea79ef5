package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/comigor/tenant-console/internal/identity"
	"github.com/comigor/tenant-console/internal/logger"
)

// REST is a Directory backed by the admin REST backend.
type REST struct {
	baseURL string
	client  *http.Client
}

// NewREST creates a new REST directory client
func NewREST(baseURL string, client *http.Client) *REST {
	if client == nil {
		client = &http.Client{}
	}
	return &REST{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// do sends the request with the operator's bearer token and decodes the
// response into out. Both bare values and {"data": ...} envelopes are accepted.
func (c *REST) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	if op, ok := identity.FromContext(ctx); ok && op.Token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", op.Token))
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	logger.L.Debug("directory request", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Path: path}
	}
	if out == nil {
		return nil
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return decodeEnvelope(payload, out)
}

func decodeEnvelope(payload []byte, out any) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
			trimmed = env.Data
		}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode directory response: %w", err)
	}
	return nil
}

func tenantQuery(tenantID string) url.Values {
	if tenantID == "" {
		return nil
	}
	return url.Values{"tenant_id": {tenantID}}
}

func (c *REST) ListTenants(ctx context.Context) ([]Tenant, error) {
	var out []Tenant
	err := c.do(ctx, http.MethodGet, "/api/tenants", nil, nil, &out)
	return out, err
}

func (c *REST) ListGroups(ctx context.Context, tenantID string) ([]Group, error) {
	var out []Group
	err := c.do(ctx, http.MethodGet, "/api/groups", tenantQuery(tenantID), nil, &out)
	return out, err
}

func (c *REST) ListRoles(ctx context.Context, tenantID string) ([]Role, error) {
	var out []Role
	err := c.do(ctx, http.MethodGet, "/api/roles", tenantQuery(tenantID), nil, &out)
	return out, err
}

func (c *REST) ListUsers(ctx context.Context, tenantID string) ([]User, error) {
	var out []User
	err := c.do(ctx, http.MethodGet, "/api/users", tenantQuery(tenantID), nil, &out)
	return out, err
}

func (c *REST) CreateTenant(ctx context.Context, t Tenant) (Tenant, error) {
	t = t.Normalize()
	if err := Validate(t); err != nil {
		return Tenant{}, err
	}
	var out Tenant
	err := c.do(ctx, http.MethodPost, "/api/tenants", nil, t, &out)
	return out, err
}

func (c *REST) DeleteTenant(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tenants/"+url.PathEscape(id), nil, nil, nil)
}

func (c *REST) CreateGroup(ctx context.Context, g Group) (Group, error) {
	g = g.Normalize()
	if err := Validate(g); err != nil {
		return Group{}, err
	}
	var out Group
	err := c.do(ctx, http.MethodPost, "/api/groups", nil, g, &out)
	return out, err
}

func (c *REST) CreateRole(ctx context.Context, r Role) (Role, error) {
	r = r.Normalize()
	if err := Validate(r); err != nil {
		return Role{}, err
	}
	var out Role
	err := c.do(ctx, http.MethodPost, "/api/roles", nil, r, &out)
	return out, err
}

func (c *REST) CreateUser(ctx context.Context, u User) (User, error) {
	u = u.Normalize()
	if err := Validate(u); err != nil {
		return User{}, err
	}
	var out User
	err := c.do(ctx, http.MethodPost, "/api/users", nil, u, &out)
	return out, err
}

func (c *REST) UpdateUser(ctx context.Context, u User) (User, error) {
	u = u.Normalize()
	if u.ID == "" {
		return User{}, &ValidationError{Fields: []string{"id"}}
	}
	if err := Validate(u); err != nil {
		return User{}, err
	}
	var out User
	err := c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(u.ID), nil, u, &out)
	return out, err
}
