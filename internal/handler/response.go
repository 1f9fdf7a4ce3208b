package handler

import (
	"encoding/json"
	"net/http"
)

// envelope is the uniform response shape: data on success, error details
// otherwise. Handlers never write bare payloads.
type envelope struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Data    any            `json:"data"`
	Error   *envelopeError `json:"error,omitempty"`
}

type envelopeError struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	env := envelope{Status: "ok", Data: payload}
	if status >= 400 {
		env.Status = "error"
		env.Error = &envelopeError{Code: status, Status: http.StatusText(status)}
	}
	send(w, status, env)
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	send(w, status, envelope{
		Status:  "error",
		Message: message,
		Error:   &envelopeError{Code: status, Status: http.StatusText(status)},
	})
}

func send(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
