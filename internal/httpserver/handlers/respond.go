package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/edit"
	"github.com/MrSnakeDoc/launchbar/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
)

const maxBody = 1 << 20

type errorResponse struct {
	Error  string                  `json:"error"`
	Rule   string                  `json:"rule,omitempty"`
	Fields domain.ValidationErrors `json:"fields,omitempty"`
}

func writeJSON(d deps.Deps, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		d.Logger.Debug("failed to write response", logger.Error(err))
	}
}

// statusOf maps the domain error taxonomy onto HTTP.
func statusOf(err error) int {
	var (
		verrs domain.ValidationErrors
		iv    *domain.InvariantViolation
		lr    *domain.LivenessRisk
		te    *domain.TokenResolutionError
		pe    *domain.PersistenceError
	)
	switch {
	case errors.As(err, &verrs), errors.As(err, &te):
		return http.StatusUnprocessableEntity
	case errors.As(err, &iv):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusForbidden
	case errors.Is(err, edit.ErrNotEditing),
		errors.Is(err, edit.ErrNothingSelected),
		errors.Is(err, edit.ErrWrongObject):
		return http.StatusConflict
	case errors.As(err, &lr), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.As(err, &pe):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(d deps.Deps, w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	resp := errorResponse{Error: err.Error()}

	var (
		verrs domain.ValidationErrors
		iv    *domain.InvariantViolation
	)
	if errors.As(err, &verrs) {
		resp.Fields = verrs
	}
	if errors.As(err, &iv) {
		resp.Rule = iv.Rule
	}

	if status >= http.StatusInternalServerError {
		d.Logger.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err))
	}
	writeJSON(d, w, status, resp)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func badRequest(d deps.Deps, w http.ResponseWriter, err error) {
	writeJSON(d, w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}
