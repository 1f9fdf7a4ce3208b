package handler

import (
	"errors"
	"net/http"
	"strconv"

	"katrina-one-backend/internal/locale"
	"katrina-one-backend/internal/service/vietqr"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
)

type PaymentHandler struct {
	Account vietqr.Account
}

func (h PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/payments/vietqr", h.payload)
	r.Get("/payments/vietqr.png", h.image)
}

func (h PaymentHandler) buildPayload(r *http.Request) (string, int64, error) {
	var amount int64
	if raw := r.URL.Query().Get("amount"); raw != "" {
		// Accepts both bare digits and the vi-VN grouped form.
		v, err := locale.ParseAmount(raw)
		if err != nil {
			return "", 0, errors.New("invalid amount")
		}
		amount = v
	}
	payload, err := vietqr.Payload(h.Account, amount, r.URL.Query().Get("note"))
	return payload, amount, err
}

func (h PaymentHandler) payload(w http.ResponseWriter, r *http.Request) {
	payload, amount, err := h.buildPayload(r)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, vietqr.ErrMissingAccount) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payload":       payload,
		"bankBin":       h.Account.BankBin,
		"accountNo":     h.Account.Number,
		"accountName":   h.Account.Name,
		"amount":        amount,
		"amountDisplay": locale.FormatVND(amount),
	})
}

func (h PaymentHandler) image(w http.ResponseWriter, r *http.Request) {
	payload, _, err := h.buildPayload(r)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, vietqr.ErrMissingAccount) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}
	size := 512
	if raw := r.URL.Query().Get("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 128 || v > 2048 {
			writeError(w, http.StatusBadRequest, "size must be between 128 and 2048")
			return
		}
		size = v
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
