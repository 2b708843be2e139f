package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/adledger/internal/api/validate"
	"github.com/baharkarakas/adledger/internal/models"
	repo "github.com/baharkarakas/adledger/internal/repository"
	"github.com/baharkarakas/adledger/internal/services"
)

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// Fail maps a service error to its HTTP status.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	var fields validate.Errs
	switch {
	case errors.As(err, &fields):
		WriteError(w, http.StatusBadRequest, "validation_failed", "validation failed", fields)
	case errors.Is(err, repo.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "not found", nil)
	case errors.Is(err, services.ErrInsufficientBalance):
		WriteError(w, http.StatusConflict, "insufficient_balance", err.Error(), nil)
	case errors.Is(err, services.ErrAlreadyModerated):
		WriteError(w, http.StatusConflict, "already_moderated", err.Error(), nil)
	case errors.Is(err, services.ErrEventConflict):
		WriteError(w, http.StatusConflict, "event_conflict", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidEvent),
		errors.Is(err, services.ErrInvalidProvider),
		errors.Is(err, services.ErrUnknownPlace),
		errors.Is(err, services.ErrInvalidScreen),
		errors.Is(err, services.ErrObjectNotFound),
		errors.Is(err, models.ErrInvalidTier),
		errors.Is(err, models.ErrInvalidEmail):
		WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
	case errors.Is(err, models.ErrInconsistentPricing):
		WriteError(w, http.StatusUnprocessableEntity, "inconsistent_pricing", err.Error(), nil)
	case services.IsRetryable(err):
		slog.Warn("retryable failure", "path", r.URL.Path, "err", err)
		WriteError(w, http.StatusServiceUnavailable, "retry", "temporarily unavailable, retry", nil)
	default:
		slog.Error("request failed", "path", r.URL.Path, "err", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}

func BadRequest(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusBadRequest, "bad_request", msg, nil)
}
