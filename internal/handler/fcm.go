package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"katrina-one-backend/internal/repository"
	"katrina-one-backend/internal/server/authctx"

	"github.com/go-chi/chi/v5"
)

type FCMHandler struct {
	Repo repository.FCMRepository
}

func (h FCMHandler) RegisterRoutes(r chi.Router) {
	r.Post("/devices/fcm", h.register)
}

func (h FCMHandler) register(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Token    string `json:"token"`
		Platform string `json:"platform"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	// Re-registering the same token re-binds it to the current user, so a
	// shared device always pushes to whoever signed in last.
	if err := h.Repo.Register(r.Context(), repository.RegisterTokenInput{
		UserID:   &user.ID,
		Token:    req.Token,
		Platform: req.Platform,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	updated, err := h.Repo.LastUpdated(r.Context(), req.Token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      req.Token,
		"platform":   req.Platform,
		"registered": updated.Format(time.RFC3339),
	})
}
