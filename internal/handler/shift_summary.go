package handler

import (
	"net/http"

	"katrina-one-backend/internal/domain"
	"katrina-one-backend/internal/repository"
	"katrina-one-backend/internal/service/shiftsummary"

	"github.com/go-chi/chi/v5"
)

// ShiftSummaryHandler serves the manager view of one date+shift: attendance,
// merged completions, unfinished checklist sections and issue notes.
type ShiftSummaryHandler struct {
	Reports   repository.ReportRepository
	Templates repository.TemplateRepository
	Schedules repository.ScheduleRepository
	Users     repository.UserRepository
}

func (h ShiftSummaryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/summaries/{shiftKey}", h.summary)
}

func (h ShiftSummaryHandler) summary(w http.ResponseWriter, r *http.Request) {
	shiftKey := domain.ShiftKey(chi.URLParam(r, "shiftKey"))
	date, err := parseRequiredDateQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tpl, err := h.Templates.Get(r.Context(), shiftKey)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown shift key")
		return
	}
	reports, err := h.Reports.ListByDateShift(r.Context(), date, shiftKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	schedule, err := h.Schedules.ListByDate(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	servers, err := h.Users.ListByRole(r.Context(), domain.RoleServer)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s := shiftsummary.Build(*tpl, reports, schedule, servers, date)
	writeJSON(w, http.StatusOK, summaryPayload(*tpl, s))
}

// summaryPayload renders the aggregate section by section; completions for
// task IDs unknown to the template are never emitted.
func summaryPayload(tpl domain.ShiftTemplate, s shiftsummary.Summary) map[string]any {
	assigned := make([]map[string]any, 0, len(s.AssignedUsers))
	for _, u := range s.AssignedUsers {
		assigned = append(assigned, map[string]any{
			"userId":      u.UserID,
			"name":        u.Name,
			"shiftLabels": u.ShiftLabels,
		})
	}

	sections := make([]map[string]any, 0, len(tpl.Sections))
	for i, sec := range tpl.Sections {
		tasks := make([]map[string]any, 0, len(sec.Tasks))
		for _, t := range sec.Tasks {
			completions := make([]map[string]any, 0, len(s.CompletedTasks[t.ID]))
			for _, c := range s.CompletedTasks[t.ID] {
				completions = append(completions, map[string]any{
					"staffName": c.StaffName,
					"timestamp": c.Completion.Timestamp,
					"photos":    c.Completion.Photos,
					"value":     c.Completion.Value,
					"opinion":   c.Completion.Opinion,
				})
			}
			tasks = append(tasks, map[string]any{
				"id":          t.ID,
				"text":        t.Text,
				"type":        string(t.Type),
				"area":        t.Area,
				"completions": completions,
			})
		}
		status := s.Sections[i]
		uncompleted := make([]string, 0, len(status.UncompletedTasks))
		for _, t := range status.UncompletedTasks {
			uncompleted = append(uncompleted, t.ID)
		}
		sections = append(sections, map[string]any{
			"title":               sec.Title,
			"tasks":               tasks,
			"uncompletedTaskIds":  uncompleted,
			"allTasksUncompleted": status.AllTasksUncompleted,
		})
	}

	notes := make([]map[string]any, 0, len(s.Notes))
	for _, n := range s.Notes {
		notes = append(notes, map[string]any{"staffName": n.StaffName, "issues": n.Issues})
	}

	return map[string]any{
		"date":           s.Date.Format(dateLayout),
		"shiftKey":       string(s.ShiftKey),
		"shiftName":      tpl.Name,
		"assignedUsers":  assigned,
		"submittedUsers": s.SubmittedUsers,
		"absentUsers":    s.AbsentUsers,
		"sections":       sections,
		"notes":          notes,
	}
}
