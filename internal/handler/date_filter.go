package handler

import (
	"errors"
	"net/http"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseRequiredDateQuery is parseDateQuery for parameters that must be set.
func parseRequiredDateQuery(r *http.Request, key string) (time.Time, error) {
	t, err := parseDateQuery(r, key)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, errors.New(key + " is required")
	}
	return *t, nil
}

// parseMonthQuery reads a "YYYY-MM" payroll month parameter.
func parseMonthQuery(r *http.Request, key string) (string, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return "", errors.New(key + " is required")
	}
	if _, err := time.Parse(monthLayout, value); err != nil {
		return "", err
	}
	return value, nil
}
