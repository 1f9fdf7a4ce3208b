package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"katrina-one-backend/internal/domain"
	"katrina-one-backend/internal/repository"
	"katrina-one-backend/internal/server/authctx"
	"katrina-one-backend/internal/service/finance"

	"github.com/go-chi/chi/v5"
)

type RevenueHandler struct {
	Repo repository.RevenueRepository
}

func (h RevenueHandler) RegisterRoutes(r chi.Router) {
	r.Get("/revenue", h.listRange)
	r.Post("/revenue", h.create)
}

func (h RevenueHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Date            string `json:"date"`
		RevenueByMethod struct {
			Cash         int64 `json:"cash"`
			ShopeeFood   int64 `json:"shopeeFood"`
			GrabFood     int64 `json:"grabFood"`
			BankTransfer int64 `json:"bankTransfer"`
			VietQR       int64 `json:"techcombankVietQrPro"`
		} `json:"revenueByPaymentMethod"`
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
	byMethod := domain.RevenueByMethod{
		Cash:         req.RevenueByMethod.Cash,
		ShopeeFood:   req.RevenueByMethod.ShopeeFood,
		GrabFood:     req.RevenueByMethod.GrabFood,
		BankTransfer: req.RevenueByMethod.BankTransfer,
		VietQR:       req.RevenueByMethod.VietQR,
	}
	for _, v := range []int64{byMethod.Cash, byMethod.ShopeeFood, byMethod.GrabFood, byMethod.BankTransfer, byMethod.VietQR} {
		if v < 0 {
			writeError(w, http.StatusBadRequest, "revenue figures must be non-negative")
			return
		}
	}

	// Re-submissions for the same date are appended, never overwritten;
	// readers pick the latest snapshot per day.
	created, err := h.Repo.Create(r.Context(), repository.CreateRevenueInput{
		Date:      date,
		ByMethod:  byMethod,
		CreatedBy: user.Name,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, revenuePayload(*created))
}

func (h RevenueHandler) listRange(w http.ResponseWriter, r *http.Request) {
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
	// Superseded same-day snapshots are dropped here, not in the store.
	items = finance.DedupLatest(items)
	resp := make([]map[string]any, 0, len(items))
	for _, s := range items {
		resp = append(resp, revenuePayload(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func revenuePayload(s domain.RevenueStats) map[string]any {
	return map[string]any{
		"id":         s.ID,
		"date":       s.Date.Format(dateLayout),
		"netRevenue": s.NetRevenue,
		"revenueByPaymentMethod": map[string]int64{
			"cash":                 s.RevenueByMethod.Cash,
			"shopeeFood":           s.RevenueByMethod.ShopeeFood,
			"grabFood":             s.RevenueByMethod.GrabFood,
			"bankTransfer":         s.RevenueByMethod.BankTransfer,
			"techcombankVietQrPro": s.RevenueByMethod.VietQR,
		},
		"createdBy": s.CreatedBy,
		"createdAt": s.CreatedAt.Format(time.RFC3339),
	}
}
