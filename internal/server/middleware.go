package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/comigor/tenant-console/internal/identity"
	"github.com/comigor/tenant-console/internal/logger"
)

// RequireAuth rejects requests without a valid identity-provider bearer token
// and stores the operator in the request context.
func RequireAuth(parser *identity.Parser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op, err := parser.Parse(identity.ExtractToken(r))
			if err != nil {
				logger.L.Warn("rejected request", "path", r.URL.Path, "error", err)
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.WithContext(r.Context(), op)))
		})
	}
}

// requestLogger logs one line per request through the global slog logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.L.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func operator(r *http.Request) identity.Context {
	op, _ := identity.FromContext(r.Context())
	return op
}
