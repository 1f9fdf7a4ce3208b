package handler

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"katrina-one-backend/internal/domain"
	"katrina-one-backend/internal/repository"
	"katrina-one-backend/internal/server/authctx"

	"github.com/go-chi/chi/v5"
)

type EventHandler struct {
	Repo repository.EventRepository
}

func (h EventHandler) RegisterStaffRoutes(r chi.Router) {
	r.Get("/events", h.list)
	r.Post("/events/{id}/join", h.join)
}

func (h EventHandler) RegisterManagerRoutes(r chi.Router) {
	r.Post("/events", h.create)
	r.Get("/events/{id}/entries", h.entries)
	r.Post("/events/{id}/draw", h.draw)
}

func (h EventHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		OpensAt  string `json:"opensAt"`
		ClosesAt string `json:"closesAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	opensAt, err := time.Parse(time.RFC3339, req.OpensAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid opensAt (use RFC 3339)")
		return
	}
	closesAt, err := time.Parse(time.RFC3339, req.ClosesAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid closesAt (use RFC 3339)")
		return
	}
	if !closesAt.After(opensAt) {
		writeError(w, http.StatusBadRequest, "closesAt must be after opensAt")
		return
	}
	ev, err := h.Repo.Create(r.Context(), req.Title, opensAt, closesAt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, eventPayload(repository.BallotEventWithCount{BallotEvent: *ev}))
}

func (h EventHandler) list(w http.ResponseWriter, r *http.Request) {
	events, err := h.Repo.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		resp = append(resp, eventPayload(ev))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h EventHandler) join(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	eventID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	if err := h.Repo.Join(r.Context(), eventID, user.ID, user.Name); err != nil {
		if repository.IsDuplicate(err) {
			writeError(w, http.StatusConflict, "already joined")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"eventId": eventID, "userId": user.ID})
}

func (h EventHandler) entries(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	entries, err := h.Repo.Entries(r.Context(), eventID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, map[string]any{
			"userId":   e.UserID,
			"userName": e.UserName,
			"joinedAt": e.JoinedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h EventHandler) draw(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	entries, err := h.Repo.Entries(r.Context(), eventID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(entries) == 0 {
		writeError(w, http.StatusConflict, "no participants to draw from")
		return
	}
	winner := pickWinner(entries)
	// SetWinner only fires while winner_user_id is NULL, so a second draw
	// cannot displace the first.
	if err := h.Repo.SetWinner(r.Context(), eventID, winner.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusConflict, "winner already drawn")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"eventId":    eventID,
		"winnerId":   winner.UserID,
		"winnerName": winner.UserName,
	})
}

// pickWinner draws uniformly. The top-level rand source is internally
// locked, so concurrent draws are safe.
func pickWinner(entries []domain.BallotEntry) domain.BallotEntry {
	return entries[rand.Intn(len(entries))]
}

func eventPayload(ev repository.BallotEventWithCount) map[string]any {
	payload := map[string]any{
		"id":           ev.ID,
		"title":        ev.Title,
		"opensAt":      ev.OpensAt.Format(time.RFC3339),
		"closesAt":     ev.ClosesAt.Format(time.RFC3339),
		"participants": ev.Participants,
	}
	if ev.WinnerUserID != nil {
		payload["winnerId"] = *ev.WinnerUserID
	}
	return payload
}
