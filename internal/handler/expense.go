package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"katrina-one-backend/internal/domain"
	"katrina-one-backend/internal/repository"
	"katrina-one-backend/internal/server/authctx"

	"github.com/go-chi/chi/v5"
)

var validExpenseMethods = map[domain.PaymentMethod]bool{
	domain.MethodCash:   true,
	domain.MethodBank:   true,
	domain.MethodVietQR: true,
}

type ExpenseHandler struct {
	Repo repository.ExpenseRepository
}

func (h ExpenseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/expenses", h.listRange)
	r.Post("/expenses", h.create)
	r.Delete("/expenses/{id}", h.delete)
}

func (h ExpenseHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Date  string `json:"date"`
		Items []struct {
			Category    string `json:"category"`
			Name        string `json:"name"`
			Description string `json:"description"`
			Amount      int64  `json:"amount"`
		} `json:"items"`
		PaymentMethod string `json:"paymentMethod"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date (use YYYY-MM-DD)")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "at least one expense item is required")
		return
	}
	method := domain.PaymentMethod(req.PaymentMethod)
	if !validExpenseMethods[method] {
		writeError(w, http.StatusBadRequest, "invalid payment method")
		return
	}
	items := make([]domain.ExpenseItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Amount < 0 {
			writeError(w, http.StatusBadRequest, "item amounts must be non-negative")
			return
		}
		items = append(items, domain.ExpenseItem{
			Category:    it.Category,
			Name:        it.Name,
			Description: it.Description,
			Amount:      it.Amount,
		})
	}

	created, err := h.Repo.Create(r.Context(), repository.CreateExpenseInput{
		Date:          date,
		Items:         items,
		PaymentMethod: method,
		CreatedBy:     user.Name,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, expensePayload(*created))
}

func (h ExpenseHandler) listRange(w http.ResponseWriter, r *http.Request) {
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
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "'to' must not be before 'from'")
		return
	}
	items, err := h.Repo.ListRange(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, s := range items {
		resp = append(resp, expensePayload(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ExpenseHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense slip not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

func expensePayload(s domain.ExpenseSlip) map[string]any {
	items := make([]map[string]any, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, map[string]any{
			"category":    it.Category,
			"name":        it.Name,
			"description": it.Description,
			"amount":      it.Amount,
		})
	}
	return map[string]any{
		"id":            s.ID,
		"date":          s.Date.Format(dateLayout),
		"items":         items,
		"totalAmount":   s.TotalAmount,
		"paymentMethod": string(s.PaymentMethod),
		"createdBy":     s.CreatedBy,
		"createdAt":     s.CreatedAt.Format(time.RFC3339),
	}
}
