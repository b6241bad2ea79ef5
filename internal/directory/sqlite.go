package directory

// SQLite-backed Directory for running the console without the admin backend.
// The database is created on first open and seeded with demo tenants when empty.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"

	"github.com/comigor/tenant-console/internal/logger"
)

const schema = `
PRAGMA foreign_keys = ON;
CREATE TABLE IF NOT EXISTS tenants (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tenant_groups (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS tenant_roles (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT NOT NULL,
    mobile TEXT NOT NULL,
    group_name TEXT NOT NULL,
    role_name TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

var demoTenants = []Tenant{
	{Name: "Innovate Inc.", CreatedAt: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)},
	{Name: "Quantum Solutions", CreatedAt: time.Date(2023, 2, 20, 0, 0, 0, 0, time.UTC)},
	{Name: "Apex Logistics", CreatedAt: time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC)},
}

// SQLite is a Directory stored in a local SQLite file.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path. Use ":memory:"
// for a throwaway store.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(10000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &SQLite{db: db, now: time.Now}
	if err := s.seed(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.L.Info("sqlite directory initialized", "path", path)
	return s, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) seed(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tenants;`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, t := range demoTenants {
		if _, err := s.insertTenant(ctx, t); err != nil {
			return fmt.Errorf("seed tenants: %w", err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		logger.L.Warn("unparseable timestamp in sqlite directory", "value", v, "error", err)
	}
	return t
}

func (s *SQLite) insertTenant(ctx context.Context, t Tenant) (Tenant, error) {
	t.ID = uuid.NewString()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO tenants (id, name, created_at) VALUES (?,?,?);`,
		t.ID, t.Name, formatTime(t.CreatedAt))
	return t, err
}

func (s *SQLite) ListTenants(ctx context.Context) ([]Tenant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM tenants ORDER BY created_at ASC, name ASC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tenant
	for rows.Next() {
		var t Tenant
		var created string
		if err := rows.Scan(&t.ID, &t.Name, &created); err != nil {
			return nil, err
		}
		t.CreatedAt = parseTime(created)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLite) CreateTenant(ctx context.Context, t Tenant) (Tenant, error) {
	t = t.Normalize()
	if err := Validate(t); err != nil {
		return Tenant{}, err
	}
	t.CreatedAt = time.Time{}
	return s.insertTenant(ctx, t)
}

func (s *SQLite) DeleteTenant(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("tenant %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLite) tenantExists(ctx context.Context, id string) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tenants WHERE id = ?;`, id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("tenant %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLite) ListGroups(ctx context.Context, tenantID string) ([]Group, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, tenant_id, name, description FROM tenant_groups WHERE tenant_id = ? ORDER BY name ASC;`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.TenantID, &g.Name, &g.Description); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *SQLite) CreateGroup(ctx context.Context, g Group) (Group, error) {
	g = g.Normalize()
	if err := Validate(g); err != nil {
		return Group{}, err
	}
	if err := s.tenantExists(ctx, g.TenantID); err != nil {
		return Group{}, err
	}
	g.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `INSERT INTO tenant_groups (id, tenant_id, name, description) VALUES (?,?,?,?);`,
		g.ID, g.TenantID, g.Name, g.Description)
	return g, err
}

func (s *SQLite) ListRoles(ctx context.Context, tenantID string) ([]Role, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, tenant_id, name, description FROM tenant_roles WHERE tenant_id = ? ORDER BY name ASC;`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.ID, &r.TenantID, &r.Name, &r.Description); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) CreateRole(ctx context.Context, r Role) (Role, error) {
	r = r.Normalize()
	if err := Validate(r); err != nil {
		return Role{}, err
	}
	if err := s.tenantExists(ctx, r.TenantID); err != nil {
		return Role{}, err
	}
	r.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `INSERT INTO tenant_roles (id, tenant_id, name, description) VALUES (?,?,?,?);`,
		r.ID, r.TenantID, r.Name, r.Description)
	return r, err
}

const userColumns = `id, tenant_id, first_name, last_name, email, mobile, group_name, role_name, created_at`

func (s *SQLite) ListUsers(ctx context.Context, tenantID string) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE tenant_id = ? ORDER BY created_at ASC;`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		var created string
		if err := rows.Scan(&u.ID, &u.TenantID, &u.FirstName, &u.LastName, &u.Email, &u.Mobile, &u.Group, &u.Role, &created); err != nil {
			return nil, err
		}
		u.CreatedAt = parseTime(created)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLite) CreateUser(ctx context.Context, u User) (User, error) {
	u = u.Normalize()
	if err := Validate(u); err != nil {
		return User{}, err
	}
	if err := s.tenantExists(ctx, u.TenantID); err != nil {
		return User{}, err
	}
	u.ID = uuid.NewString()
	u.CreatedAt = s.now().UTC()
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?,?,?,?,?,?,?,?,?);`,
		u.ID, u.TenantID, u.FirstName, u.LastName, u.Email, u.Mobile, u.Group, u.Role, formatTime(u.CreatedAt))
	return u, err
}

func (s *SQLite) UpdateUser(ctx context.Context, u User) (User, error) {
	u = u.Normalize()
	if u.ID == "" {
		return User{}, &ValidationError{Fields: []string{"id"}}
	}
	if err := Validate(u); err != nil {
		return User{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE users SET first_name = ?, last_name = ?, email = ?, mobile = ?, group_name = ?, role_name = ? WHERE id = ? AND tenant_id = ?;`,
		u.FirstName, u.LastName, u.Email, u.Mobile, u.Group, u.Role, u.ID, u.TenantID)
	if err != nil {
		return User{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return User{}, fmt.Errorf("user %s: %w", u.ID, ErrNotFound)
	}

	var created string
	if err := s.db.QueryRowContext(ctx, `SELECT created_at FROM users WHERE id = ?;`, u.ID).Scan(&created); err != nil {
		return User{}, err
	}
	u.CreatedAt = parseTime(created)
	return u, nil
}
