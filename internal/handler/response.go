// Package handler is the HTTP layer: it parses requests, calls services, and
// serializes JSON. Domain errors are translated to status codes in exactly
// one place (writeError); handlers never hand-pick codes for service errors.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sebcun/ysws-tracker/internal/apperror"
	"github.com/sebcun/ysws-tracker/internal/auth"
	"github.com/sebcun/ysws-tracker/internal/model"
	"github.com/sebcun/ysws-tracker/internal/service"
)

// ErrorResponse is the error shape every endpoint returns.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse acknowledges mutations that return no entity.
type SuccessResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already out; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error onto the HTTP taxonomy:
//
//	Validation, Upstream → 400
//	Unauthorized         → 401
//	Forbidden            → 403
//	NotFound             → 404
//	anything else        → 500, message withheld
//
// Upstream failures surface as a generic 400 — the provider's error detail
// stays in the logs, not the response.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrUpstream):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		}
		writeJSON(w, status, ErrorResponse{Error: appErr.Message})
		return
	}

	// Unknown error — never leak internals to the client.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "an internal error occurred"})
}

// decodeJSON parses a request body into dst, mapping malformed input to a
// validation error rather than a 500.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON body")
	}
	return nil
}

// requireCaller resolves the authenticated session user for a protected
// route. On failure it writes the error response and returns false. A stale
// session (valid token, vanished user) also clears the login cookie.
func requireCaller(w http.ResponseWriter, r *http.Request, sessions *service.SessionService) (*model.SessionUser, bool) {
	userID, _ := auth.UserIDFromContext(r.Context())
	caller, err := sessions.Resolve(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if caller == nil {
		if userID != "" {
			auth.ClearSessionCookie(w)
		}
		writeError(w, apperror.Unauthorized("authentication required"))
		return nil, false
	}
	return caller, true
}
