package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/comigor/tenant-console/internal/directory"
	"github.com/comigor/tenant-console/internal/identity"
)

// Deps are the collaborators the HTTP API is wired to.
type Deps struct {
	Sessions  *Sessions
	Directory directory.Directory
	Identity  *identity.Parser
	Now       func() time.Time
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// NewRouter wires HTTP routes to the chat sessions and the directory.
func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, healthResponse{Status: "ok", Sessions: d.Sessions.Len()})
	})

	chatH := &chatHandler{sessions: d.Sessions, now: d.Now}
	dirH := &directoryHandler{dir: d.Directory}

	r.Route("/api", func(api chi.Router) {
		api.Use(RequireAuth(d.Identity))
		chatH.RegisterRoutes(api)
		dirH.RegisterRoutes(api)
	})

	return r
}
