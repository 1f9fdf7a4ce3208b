package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"katrina-one-backend/internal/domain"
	"katrina-one-backend/internal/repository"
	"katrina-one-backend/internal/server/authctx"

	"github.com/go-chi/chi/v5"
)

type NotificationHandler struct {
	Repo repository.NotificationRepository
}

func (h NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/notifications", h.list)
	r.Post("/notifications/{id}/read", h.markRead)
}

func (h NotificationHandler) list(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > 200 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = v
	}
	items, err := h.Repo.List(r.Context(), user.ID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, n := range items {
		resp = append(resp, notificationPayload(n))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h NotificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	if err := h.Repo.MarkRead(r.Context(), id, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "read": true})
}

func notificationPayload(n domain.Notification) map[string]any {
	payload := map[string]any{
		"id":        n.ID,
		"title":     n.Title,
		"message":   n.Message,
		"createdAt": n.CreatedAt.Format(time.RFC3339),
		"read":      n.ReadAt != nil,
	}
	if n.ReadAt != nil {
		payload["readAt"] = n.ReadAt.Format(time.RFC3339)
	}
	return payload
}
