package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"katrina-one-backend/internal/domain"
	"katrina-one-backend/internal/repository"
	"katrina-one-backend/internal/server/authctx"
	"katrina-one-backend/internal/service/payroll"

	"github.com/go-chi/chi/v5"
)

type ViolationHandler struct {
	Repo repository.ViolationRepository
}

func (h ViolationHandler) RegisterManagerRoutes(r chi.Router) {
	r.Get("/violations", h.listMonth)
	r.Post("/violations", h.create)
	r.Post("/violations/{id}/waive", h.waive)
}

// RegisterStaffRoutes exposes the penalty-submission endpoint: any staff
// member may report that they have paid their own penalty.
func (h ViolationHandler) RegisterStaffRoutes(r chi.Router) {
	r.Post("/violations/{id}/submissions", h.addSubmission)
}

func (h ViolationHandler) listMonth(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthQuery(r, "month")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.Repo.ListMonth(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, v := range items {
		resp = append(resp, violationPayload(v))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ViolationHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title     string           `json:"title"`
		Date      string           `json:"date"`
		UserCosts map[string]int64 `json:"userCosts"`
		Photos    []string         `json:"photos"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date (use YYYY-MM-DD)")
		return
	}
	// JSON object keys are strings; costs are keyed by numeric user id.
	costs := make(map[int64]int64, len(req.UserCosts))
	for key, cost := range req.UserCosts {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id in userCosts: "+key)
			return
		}
		if cost < 0 {
			writeError(w, http.StatusBadRequest, "penalty cost must be non-negative")
			return
		}
		costs[userID] = cost
	}
	if len(costs) == 0 {
		writeError(w, http.StatusBadRequest, "at least one user cost is required")
		return
	}

	created, err := h.Repo.Create(r.Context(), repository.CreateViolationInput{
		Title:     req.Title,
		Date:      date,
		UserCosts: costs,
		Photos:    req.Photos,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, violationPayload(*created))
}

func (h ViolationHandler) waive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Repo.Waive(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "violation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "isPenaltyWaived": true})
}

func (h ViolationHandler) addSubmission(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := chi.URLParam(r, "id")
	var req struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	sub := domain.PenaltySubmission{
		UserID:      user.ID,
		SubmittedAt: time.Now(),
		Note:        req.Note,
	}
	if err := h.Repo.AddSubmission(r.Context(), id, sub); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "violation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"violationId": id,
		"userId":      user.ID,
		"submittedAt": sub.SubmittedAt.Format(time.RFC3339),
		"note":        sub.Note,
	})
}

func violationPayload(v domain.ViolationRecord) map[string]any {
	costs := make(map[string]int64, len(v.UserCosts))
	for userID, cost := range v.UserCosts {
		costs[strconv.FormatInt(userID, 10)] = cost
	}
	subs := make([]map[string]any, 0, len(v.PenaltySubmissions))
	for _, s := range v.PenaltySubmissions {
		subs = append(subs, map[string]any{
			"userId":      s.UserID,
			"submittedAt": s.SubmittedAt.Format(time.RFC3339),
			"note":        s.Note,
		})
	}
	settled := make(map[string]bool, len(v.UserCosts))
	for userID := range v.UserCosts {
		totals := payroll.PenaltyTotalsFor(userID, []domain.ViolationRecord{v})
		settled[strconv.FormatInt(userID, 10)] = totals.Unpaid == 0
	}
	return map[string]any{
		"id":                 v.ID,
		"title":              v.Title,
		"date":               v.Date.Format(dateLayout),
		"userCosts":          costs,
		"isPenaltyWaived":    v.IsPenaltyWaived,
		"penaltySubmissions": subs,
		"penaltyPhotos":      v.PenaltyPhotos,
		"settledByUser":      settled,
		"createdAt":          v.CreatedAt.Format(time.RFC3339),
	}
}
