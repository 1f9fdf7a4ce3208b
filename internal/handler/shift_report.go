package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"katrina-one-backend/internal/domain"
	"katrina-one-backend/internal/locale"
	"katrina-one-backend/internal/ports"
	"katrina-one-backend/internal/repository"
	"katrina-one-backend/internal/server/authctx"

	"github.com/go-chi/chi/v5"
)

type ShiftReportHandler struct {
	Reports   repository.ReportRepository
	Templates repository.TemplateRepository
	Tokens    repository.FCMRepository
	Notices   repository.NotificationRepository
	Logs      repository.ActivityLogRepository
	Pusher    ports.Pusher
	Logger    *slog.Logger
}

func (h ShiftReportHandler) RegisterRoutes(r chi.Router) {
	r.Post("/reports", h.submit)
	r.Get("/reports/mine", h.listMine)
	r.Delete("/reports/{id}", h.delete)
}

type completionPayload struct {
	Timestamp string   `json:"timestamp"`
	Photos    []string `json:"photos,omitempty"`
	Value     *bool    `json:"value,omitempty"`
	Opinion   string   `json:"opinion,omitempty"`
}

func (h ShiftReportHandler) submit(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		ShiftKey       string                         `json:"shiftKey"`
		Date           string                         `json:"date"`
		CompletedTasks map[string][]completionPayload `json:"completedTasks"`
		Issues         string                         `json:"issues"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if _, err := h.Templates.Get(r.Context(), domain.ShiftKey(req.ShiftKey)); err != nil {
		writeError(w, http.StatusBadRequest, "unknown shift key")
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	completed := make(map[string][]domain.CompletionRecord, len(req.CompletedTasks))
	for taskID, records := range req.CompletedTasks {
		for _, c := range records {
			if _, err := time.Parse("15:04", c.Timestamp); err != nil {
				writeError(w, http.StatusBadRequest, "invalid completion timestamp (expect HH:mm)")
				return
			}
			completed[taskID] = append(completed[taskID], domain.CompletionRecord{
				Timestamp: c.Timestamp,
				Photos:    c.Photos,
				Value:     c.Value,
				Opinion:   c.Opinion,
			})
		}
	}

	rep, err := h.Reports.Create(r.Context(), repository.CreateReportInput{
		UserID:         user.ID,
		StaffName:      user.Name,
		ShiftKey:       domain.ShiftKey(req.ShiftKey),
		Date:           date,
		CompletedTasks: completed,
		Issues:         req.Issues,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.notifyManagers(r, rep)
	writeJSON(w, http.StatusOK, reportPayload(*rep))
}

// notifyManagers is best-effort: push and notification failures only log.
func (h ShiftReportHandler) notifyManagers(r *http.Request, rep *domain.ShiftReport) {
	ctx := r.Context()
	title := "Báo cáo ca mới"
	body := fmt.Sprintf("%s đã nộp báo cáo %s ngày %s", rep.StaffName, rep.ShiftKey, locale.FormatDate(rep.Date))

	if _, err := h.Notices.Create(ctx, repository.CreateNotificationInput{Title: title, Message: body}); err != nil {
		h.Logger.Warn("failed to store notification", "err", err)
	}
	tokens, err := h.Tokens.TokensForRole(ctx, domain.RoleManager)
	if err != nil {
		h.Logger.Warn("failed to load manager tokens", "err", err)
		return
	}
	if err := h.Pusher.Push(ctx, tokens, title, body); err != nil {
		h.Logger.Warn("push failed", "err", err)
	}
}

func (h ShiftReportHandler) listMine(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	items, err := h.Reports.ListByUser(r.Context(), user.ID, 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, rep := range items {
		resp = append(resp, reportPayload(rep))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ShiftReportHandler) delete(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Reports.DeleteOwned(r.Context(), id, user.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "report not found")
		case errors.Is(err, repository.ErrNotOwner):
			writeError(w, http.StatusForbidden, "not your report")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	if _, err := h.Logs.Create(r.Context(), repository.CreateActivityLogInput{
		Title:   "Xóa báo cáo ca",
		Message: fmt.Sprintf("report %s deleted", id),
		Actor:   user.Name,
		Type:    domain.LogWarning,
	}); err != nil {
		h.Logger.Warn("failed to write activity log", "err", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func reportPayload(rep domain.ShiftReport) map[string]any {
	completed := make(map[string][]completionPayload, len(rep.CompletedTasks))
	for taskID, records := range rep.CompletedTasks {
		for _, c := range records {
			completed[taskID] = append(completed[taskID], completionPayload{
				Timestamp: c.Timestamp,
				Photos:    c.Photos,
				Value:     c.Value,
				Opinion:   c.Opinion,
			})
		}
	}
	return map[string]any{
		"id":             rep.ID,
		"staffName":      rep.StaffName,
		"shiftKey":       string(rep.ShiftKey),
		"date":           rep.Date.Format(dateLayout),
		"completedTasks": completed,
		"issues":         rep.Issues,
		"submittedAt":    rep.SubmittedAt.Format(time.RFC3339),
	}
}
