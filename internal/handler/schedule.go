package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"katrina-one-backend/internal/domain"
	"katrina-one-backend/internal/repository"
	"katrina-one-backend/internal/server/authctx"

	"github.com/go-chi/chi/v5"
)

type ScheduleHandler struct {
	Repo   repository.ScheduleRepository
	Logs   repository.ActivityLogRepository
	Logger *slog.Logger
}

func (h ScheduleHandler) RegisterStaffRoutes(r chi.Router) {
	r.Get("/schedule", h.list)
}

func (h ScheduleHandler) RegisterManagerRoutes(r chi.Router) {
	r.Post("/schedule/publish", h.publish)
}

func (h ScheduleHandler) list(w http.ResponseWriter, r *http.Request) {
	from, err := parseRequiredDateQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseRequiredDateQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if from.After(to) {
		writeError(w, http.StatusBadRequest, "from must be before to")
		return
	}
	items, err := h.Repo.ListRange(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, s := range items {
		resp = append(resp, map[string]any{
			"id":       s.ID,
			"userId":   s.UserID,
			"userName": s.UserName,
			"date":     s.Date.Format(dateLayout),
			"label":    s.Label,
			"start":    minutesToClock(s.Start),
			"end":      minutesToClock(s.End),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ScheduleHandler) publish(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		WeekStart string `json:"weekStart"`
		Shifts    []struct {
			UserID   int64  `json:"userId"`
			UserName string `json:"userName"`
			Date     string `json:"date"`
			Label    string `json:"label"`
			Start    string `json:"start"` // "HH:mm"
			End      string `json:"end"`
		} `json:"shifts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	weekStart, err := time.Parse(dateLayout, req.WeekStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid weekStart")
		return
	}

	shifts := make([]repository.ScheduleShiftInput, 0, len(req.Shifts))
	for _, s := range req.Shifts {
		date, err := time.Parse(dateLayout, s.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid shift date")
			return
		}
		start, err := clockToMinutes(s.Start)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid shift start")
			return
		}
		end, err := clockToMinutes(s.End)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid shift end")
			return
		}
		if end <= start {
			writeError(w, http.StatusBadRequest, "shift end must be after start")
			return
		}
		shifts = append(shifts, repository.ScheduleShiftInput{
			UserID:   s.UserID,
			UserName: s.UserName,
			Date:     date,
			Label:    s.Label,
			Start:    start,
			End:      end,
		})
	}

	if err := h.Repo.PublishWeek(r.Context(), weekStart, shifts); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := h.Logs.Create(r.Context(), repository.CreateActivityLogInput{
		Title:   "Công bố lịch tuần",
		Message: fmt.Sprintf("week of %s, %d shifts", req.WeekStart, len(shifts)),
		Actor:   user.Name,
		Type:    domain.LogInfo,
	}); err != nil {
		h.Logger.Warn("failed to write activity log", "err", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "published": len(shifts)})
}

func minutesToClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func clockToMinutes(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
