package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comigor/tenant-console/internal/directory"
)

type directoryHandler struct {
	dir directory.Directory
}

func (h *directoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tenants", h.listTenants)
	r.Post("/tenants", h.createTenant)
	r.Delete("/tenants/{tenantID}", h.deleteTenant)
	r.Get("/groups", h.listGroups)
	r.Post("/groups", h.createGroup)
	r.Get("/roles", h.listRoles)
	r.Post("/roles", h.createRole)
	r.Get("/users", h.listUsers)
	r.Post("/users", h.createUser)
	r.Put("/users/{userID}", h.updateUser)
}

// tenantScope is the tenant_id query parameter, else the operator's tenant.
func tenantScope(r *http.Request) string {
	if t := r.URL.Query().Get("tenant_id"); t != "" {
		return t
	}
	return operator(r).TenantID
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (h *directoryHandler) listTenants(w http.ResponseWriter, r *http.Request) {
	out, err := h.dir.ListTenants(r.Context())
	if err != nil {
		respondDirectoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(out))
}

func (h *directoryHandler) createTenant(w http.ResponseWriter, r *http.Request) {
	var in directory.Tenant
	if !decode(w, r, &in) {
		return
	}
	out, err := h.dir.CreateTenant(r.Context(), in)
	if err != nil {
		respondDirectoryError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, out)
}

func (h *directoryHandler) deleteTenant(w http.ResponseWriter, r *http.Request) {
	if err := h.dir.DeleteTenant(r.Context(), chi.URLParam(r, "tenantID")); err != nil {
		respondDirectoryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *directoryHandler) listGroups(w http.ResponseWriter, r *http.Request) {
	out, err := h.dir.ListGroups(r.Context(), tenantScope(r))
	if err != nil {
		respondDirectoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(out))
}

func (h *directoryHandler) createGroup(w http.ResponseWriter, r *http.Request) {
	var in directory.Group
	if !decode(w, r, &in) {
		return
	}
	if in.TenantID == "" {
		in.TenantID = tenantScope(r)
	}
	out, err := h.dir.CreateGroup(r.Context(), in)
	if err != nil {
		respondDirectoryError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, out)
}

func (h *directoryHandler) listRoles(w http.ResponseWriter, r *http.Request) {
	out, err := h.dir.ListRoles(r.Context(), tenantScope(r))
	if err != nil {
		respondDirectoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(out))
}

func (h *directoryHandler) createRole(w http.ResponseWriter, r *http.Request) {
	var in directory.Role
	if !decode(w, r, &in) {
		return
	}
	if in.TenantID == "" {
		in.TenantID = tenantScope(r)
	}
	out, err := h.dir.CreateRole(r.Context(), in)
	if err != nil {
		respondDirectoryError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, out)
}

func (h *directoryHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	out, err := h.dir.ListUsers(r.Context(), tenantScope(r))
	if err != nil {
		respondDirectoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(out))
}

func (h *directoryHandler) createUser(w http.ResponseWriter, r *http.Request) {
	var in directory.User
	if !decode(w, r, &in) {
		return
	}
	if in.TenantID == "" {
		in.TenantID = tenantScope(r)
	}
	out, err := h.dir.CreateUser(r.Context(), in)
	if err != nil {
		respondDirectoryError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, out)
}

func (h *directoryHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	var in directory.User
	if !decode(w, r, &in) {
		return
	}
	in.ID = chi.URLParam(r, "userID")
	if in.TenantID == "" {
		in.TenantID = tenantScope(r)
	}
	out, err := h.dir.UpdateUser(r.Context(), in)
	if err != nil {
		respondDirectoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}
