package handler

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"katrina-one-backend/internal/domain"
	"katrina-one-backend/internal/repository"
	"katrina-one-backend/internal/service/checklist"

	"github.com/go-chi/chi/v5"
)

type ChecklistHandler struct {
	Templates repository.TemplateRepository
}

func (h ChecklistHandler) RegisterStaffRoutes(r chi.Router) {
	r.Get("/checklists", h.list)
	r.Get("/checklists/{shiftKey}", h.get)
}

func (h ChecklistHandler) RegisterManagerRoutes(r chi.Router) {
	r.Put("/checklists/{shiftKey}", h.replace)
	r.Post("/checklists/distribute", h.distribute)
}

func (h ChecklistHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Templates.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, tpl := range items {
		resp = append(resp, templatePayload(tpl))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ChecklistHandler) get(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.Templates.Get(r.Context(), domain.ShiftKey(chi.URLParam(r, "shiftKey")))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown shift key")
		return
	}
	writeJSON(w, http.StatusOK, templatePayload(*tpl))
}

func (h ChecklistHandler) replace(w http.ResponseWriter, r *http.Request) {
	key := domain.ShiftKey(chi.URLParam(r, "shiftKey"))
	var req struct {
		Sections []struct {
			Title string `json:"title"`
			Tasks []struct {
				ID   string `json:"id"`
				Text string `json:"text"`
				Type string `json:"type"`
				Area string `json:"area"`
			} `json:"tasks"`
		} `json:"sections"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	sections := make([]domain.TaskSection, 0, len(req.Sections))
	for _, s := range req.Sections {
		sec := domain.TaskSection{Title: s.Title}
		for _, t := range s.Tasks {
			if t.ID == "" || t.Text == "" {
				writeError(w, http.StatusBadRequest, "task id and text are required")
				return
			}
			switch domain.TaskType(t.Type) {
			case domain.TaskPhoto, domain.TaskBoolean, domain.TaskOpinion:
			default:
				writeError(w, http.StatusBadRequest, "invalid task type")
				return
			}
			sec.Tasks = append(sec.Tasks, domain.Task{ID: t.ID, Text: t.Text, Type: domain.TaskType(t.Type), Area: t.Area})
		}
		sections = append(sections, sec)
	}
	if err := h.Templates.ReplaceSections(r.Context(), key, sections); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// distribute spreads one-off tasks over a date interval, optionally skipping
// weekends.
func (h ChecklistHandler) distribute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From            string `json:"from"`
		To              string `json:"to"`
		ExcludeWeekends bool   `json:"excludeWeekends"`
		Tasks           []struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"tasks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	from, err := time.Parse(dateLayout, req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from")
		return
	}
	to, err := time.Parse(dateLayout, req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to")
		return
	}
	if from.After(to) {
		writeError(w, http.StatusBadRequest, "from must be before to")
		return
	}
	tasks := make([]domain.Task, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		tasks = append(tasks, domain.Task{ID: t.ID, Text: t.Text})
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	assigned := checklist.Distribute(rng, tasks, from, to, req.ExcludeWeekends)

	resp := make(map[string]string, len(assigned))
	for id, date := range assigned {
		resp[id] = date.Format(dateLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}

func templatePayload(tpl domain.ShiftTemplate) map[string]any {
	sections := make([]map[string]any, 0, len(tpl.Sections))
	for _, s := range tpl.Sections {
		tasks := make([]map[string]any, 0, len(s.Tasks))
		for _, t := range s.Tasks {
			tasks = append(tasks, map[string]any{
				"id":   t.ID,
				"text": t.Text,
				"type": string(t.Type),
				"area": t.Area,
			})
		}
		sections = append(sections, map[string]any{"title": s.Title, "tasks": tasks})
	}
	return map[string]any{
		"shiftKey":   string(tpl.Key),
		"name":       tpl.Name,
		"frameStart": minutesToClock(tpl.FrameStart),
		"frameEnd":   minutesToClock(tpl.FrameEnd),
		"sections":   sections,
	}
}
