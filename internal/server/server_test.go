package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/comigor/tenant-console/internal/chat"
	"github.com/comigor/tenant-console/internal/directory"
	"github.com/comigor/tenant-console/internal/identity"
	"github.com/comigor/tenant-console/internal/rules"
)

const testSecret = "test-secret"

type mockCreator struct {
	mu      sync.Mutex
	prompts []string
	started chan struct{}
	release chan struct{}
}

func (m *mockCreator) Create(ctx context.Context, r rules.Request) (rules.Reply, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, r.Prompt)
	m.mu.Unlock()
	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.release != nil {
		<-m.release
	}
	return rules.Reply{Data: &rules.RuleData{Name: "Geo block", Description: "Block logins from abroad"}}, nil
}

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func token(t *testing.T, sub string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, identity.Claims{
		RegisteredClaims:  jwt.RegisteredClaims{Subject: sub},
		PreferredUsername: sub,
		TenantID:          "tenant-1",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func newTestServer(t *testing.T, creator rules.Creator) *httptest.Server {
	t.Helper()
	dir, err := directory.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dir.Close() })

	sessions := NewSessions(func(op identity.Context) *chat.Session {
		return chat.NewSession(creator, "rules-tenant", chat.WithOperator(op), chat.WithClock(func() time.Time { return fixedNow }))
	})
	srv := httptest.NewServer(NewRouter(Deps{
		Sessions:  sessions,
		Directory: dir,
		Identity:  identity.NewParser(testSecret, "default-tenant"),
		Now:       func() time.Time { return fixedNow },
	}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, tok string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func createSession(t *testing.T, base, tok string) string {
	t.Helper()
	resp := do(t, http.MethodPost, base+"/api/chat/sessions", tok, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out sessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.ID)
	require.Len(t, out.Transcript, 1)
	require.Equal(t, chat.Greeting, out.Transcript[0].Content)
	return out.ID
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &mockCreator{})
	resp := do(t, http.MethodGet, srv.URL+"/healthz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	require.Equal(t, healthResponse{Status: "ok", Sessions: 0}, health)

	createSession(t, srv.URL, token(t, "alice"))
	resp = do(t, http.MethodGet, srv.URL+"/healthz", "", nil)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	require.Equal(t, 1, health.Sessions)
}

func TestRequiresToken(t *testing.T) {
	srv := newTestServer(t, &mockCreator{})

	resp := do(t, http.MethodPost, srv.URL+"/api/chat/sessions", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/tenants", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChat_SubmitFlow(t *testing.T) {
	creator := &mockCreator{}
	srv := newTestServer(t, creator)
	tok := token(t, "alice")
	id := createSession(t, srv.URL, tok)
	base := srv.URL + "/api/chat/sessions/" + id

	resp := do(t, http.MethodPost, base+"/messages", tok, submitRequest{Text: "   "})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodPost, base+"/messages", tok, submitRequest{Text: "  block foreign logins "})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out submitResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, chat.SenderAssistant, out.Reply.Sender)
	require.Equal(t, "Rule created successfully.\nName: Geo block\nDescription: Block logins from abroad", out.Reply.Content)
	require.Len(t, out.Transcript, 3)
	require.Equal(t, "block foreign logins", out.Transcript[1].Content)
	require.Equal(t, []string{"block foreign logins"}, creator.prompts)

	resp = do(t, http.MethodGet, base+"/export", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))
	require.Equal(t, `attachment; filename="chat-export-2024-05-01.txt"`, resp.Header.Get("Content-Disposition"))
	var exported bytes.Buffer
	_, err := exported.ReadFrom(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(exported.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "[10:00:00] You: block foreign logins", lines[1])

	resp = do(t, http.MethodPost, base+"/clear", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cleared sessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cleared))
	require.Len(t, cleared.Transcript, 1)

	resp = do(t, http.MethodDelete, base, tok, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, http.MethodGet, base, tok, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChat_ConflictWhileAwaiting(t *testing.T) {
	creator := &mockCreator{started: make(chan struct{}, 1), release: make(chan struct{})}
	srv := newTestServer(t, creator)
	tok := token(t, "alice")
	base := srv.URL + "/api/chat/sessions/" + createSession(t, srv.URL, tok)

	done := make(chan int, 1)
	go func() {
		req, _ := http.NewRequest(http.MethodPost, base+"/messages", strings.NewReader(`{"text":"first"}`))
		req.Header.Set("Authorization", "Bearer "+tok)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()
	<-creator.started

	resp := do(t, http.MethodGet, base, tok, nil)
	var state sessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	require.True(t, state.AwaitingReply)

	resp = do(t, http.MethodPost, base+"/messages", tok, submitRequest{Text: "second"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, http.MethodPost, base+"/clear", tok, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	close(creator.release)
	require.Equal(t, http.StatusOK, <-done)
	require.Equal(t, []string{"first"}, creator.prompts)

	// the operator message survived the refused clear and precedes the reply
	resp = do(t, http.MethodGet, base, tok, nil)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	require.False(t, state.AwaitingReply)
	require.Len(t, state.Transcript, 3)
	require.Equal(t, chat.SenderOperator, state.Transcript[1].Sender)
	require.Equal(t, "first", state.Transcript[1].Content)
	require.Equal(t, chat.SenderAssistant, state.Transcript[2].Sender)
}

func TestChat_SessionsAreOwned(t *testing.T) {
	srv := newTestServer(t, &mockCreator{})
	id := createSession(t, srv.URL, token(t, "alice"))

	resp := do(t, http.MethodGet, srv.URL+"/api/chat/sessions/"+id, token(t, "bob"), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDirectory_Tenants(t *testing.T) {
	srv := newTestServer(t, &mockCreator{})
	tok := token(t, "alice")

	resp := do(t, http.MethodGet, srv.URL+"/api/tenants", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tenants []directory.Tenant
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tenants))
	require.Len(t, tenants, 3)

	resp = do(t, http.MethodPost, srv.URL+"/api/tenants", tok, directory.Tenant{Name: "  "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var verr ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&verr))
	require.Equal(t, []string{"name"}, verr.Fields)

	resp = do(t, http.MethodPost, srv.URL+"/api/tenants", tok, directory.Tenant{Name: "Acme"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created directory.Tenant
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)

	resp = do(t, http.MethodDelete, srv.URL+"/api/tenants/"+created.ID, tok, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, http.MethodDelete, srv.URL+"/api/tenants/"+created.ID, tok, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDirectory_UsersScopedToTenant(t *testing.T) {
	srv := newTestServer(t, &mockCreator{})
	tok := token(t, "alice")

	resp := do(t, http.MethodPost, srv.URL+"/api/tenants", tok, directory.Tenant{Name: "Acme"})
	var tenant directory.Tenant
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tenant))
	scope := "?tenant_id=" + tenant.ID

	resp = do(t, http.MethodGet, srv.URL+"/api/users"+scope, tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []directory.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	require.Empty(t, users)

	in := directory.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Mobile: "123", Group: "Eng", Role: "Admin"}
	resp = do(t, http.MethodPost, srv.URL+"/api/users"+scope, tok, in)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created directory.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.Equal(t, tenant.ID, created.TenantID)

	created.Role = "Viewer"
	resp = do(t, http.MethodPut, srv.URL+"/api/users/"+created.ID+scope, tok, created)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated directory.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	require.Equal(t, "Viewer", updated.Role)

	resp = do(t, http.MethodPost, srv.URL+"/api/groups"+scope, tok, directory.Group{Name: "Ops"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = do(t, http.MethodGet, srv.URL+"/api/groups"+scope, tok, nil)
	var groups []directory.Group
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&groups))
	require.Len(t, groups, 1)
}
