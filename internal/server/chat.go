package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/comigor/tenant-console/internal/chat"
	"github.com/comigor/tenant-console/internal/logger"
)

type sessionResponse struct {
	ID            string         `json:"id"`
	AwaitingReply bool           `json:"awaiting_reply"`
	Transcript    []chat.Message `json:"transcript"`
}

type submitRequest struct {
	Text string `json:"text"`
}

type submitResponse struct {
	Reply      chat.Message   `json:"reply"`
	Transcript []chat.Message `json:"transcript"`
}

type chatHandler struct {
	sessions *Sessions
	now      func() time.Time
}

func (h *chatHandler) RegisterRoutes(r chi.Router) {
	r.Route("/chat/sessions", func(r chi.Router) {
		r.Post("/", h.create)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Delete("/", h.delete)
			r.Post("/messages", h.submit)
			r.Post("/clear", h.clear)
			r.Get("/export", h.export)
		})
	})
}

func (h *chatHandler) session(w http.ResponseWriter, r *http.Request) (string, *chat.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	sess, err := h.sessions.Get(operator(r), id)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return "", nil, false
	}
	return id, sess, true
}

func (h *chatHandler) create(w http.ResponseWriter, r *http.Request) {
	id, sess := h.sessions.Create(operator(r))
	respondJSON(w, http.StatusCreated, sessionResponse{ID: id, Transcript: sess.Transcript()})
}

func (h *chatHandler) get(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{ID: id, AwaitingReply: sess.AwaitingReply(), Transcript: sess.Transcript()})
}

func (h *chatHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(operator(r), chi.URLParam(r, "sessionID")); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *chatHandler) submit(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// a dropped client connection must not cancel the exchange: it always
	// ends with exactly one assistant message
	reply, err := sess.Submit(context.WithoutCancel(r.Context()), req.Text)
	switch {
	case errors.Is(err, chat.ErrEmptyDraft):
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, chat.ErrAwaitingReply):
		respondError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		logger.L.Error("submit failed", "error", err)
		respondError(w, http.StatusInternalServerError, "submit failed")
		return
	}
	respondJSON(w, http.StatusOK, submitResponse{Reply: reply, Transcript: sess.Transcript()})
}

func (h *chatHandler) clear(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := sess.Clear(); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{ID: id, AwaitingReply: sess.AwaitingReply(), Transcript: sess.Transcript()})
}

func (h *chatHandler) export(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.session(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", chat.ExportMIMEType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", chat.ExportFilename(h.now())))
	if err := sess.Export(w); err != nil {
		logger.L.Error("export failed", "error", err)
	}
}
