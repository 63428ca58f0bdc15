package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cinefeed/cinefeed/internal/api/service"
	"github.com/cinefeed/cinefeed/internal/api/store"
	"github.com/cinefeed/cinefeed/internal/api/tmdb"
	"github.com/cinefeed/cinefeed/pkg/httpx"
	"github.com/cinefeed/cinefeed/pkg/jwtx"
)

// apiError is the single error funnel for the HTTP surface. Every failure a
// handler reports goes through one of these, so the wire shape is uniform:
// {"success": false, "error": <code>, "message": <text>, "details": ...}.
type apiError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError writes the error response. Auth failures carry no-store headers
// like every other sensitive payload.
func (e *apiError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)

	body := map[string]any{
		"success": false,
		"error":   e.Code,
		"message": e.Message,
	}
	if e.Details != nil {
		body["details"] = e.Details
	}
	_ = json.NewEncoder(w).Encode(body)
}

var (
	errInvalidRequest = &apiError{
		StatusCode: http.StatusBadRequest,
		Code:       "invalid_request",
		Message:    "The request body is missing or malformed.",
	}
	errInvalidCredentials = &apiError{
		StatusCode: http.StatusUnauthorized,
		Code:       "invalid_credentials",
		Message:    "Invalid email or password.",
	}
	errUnauthorized = &apiError{
		StatusCode: http.StatusUnauthorized,
		Code:       "unauthorized",
		Message:    "A valid access token is required.",
	}
	errTokenExpired = &apiError{
		StatusCode: http.StatusUnauthorized,
		Code:       "token_expired",
		Message:    "The access token has expired.",
	}
	errInvalidRefresh = &apiError{
		StatusCode: http.StatusUnauthorized,
		Code:       "invalid_refresh_token",
		Message:    "The refresh token is invalid or expired.",
	}
	errNotFound = &apiError{
		StatusCode: http.StatusNotFound,
		Code:       "not_found",
		Message:    "The requested resource does not exist.",
	}
	errConflict = &apiError{
		StatusCode: http.StatusConflict,
		Code:       "already_exists",
		Message:    "The resource already exists.",
	}
	errUpstream = &apiError{
		StatusCode: http.StatusBadGateway,
		Code:       "upstream_error",
		Message:    "The movie metadata provider is unavailable.",
	}
	errServer = &apiError{
		StatusCode: http.StatusInternalServerError,
		Code:       "server_error",
		Message:    "An unexpected error occurred.",
	}
)

func validationError(details any) *apiError {
	return &apiError{
		StatusCode: http.StatusBadRequest,
		Code:       "validation_failed",
		Message:    "One or more fields failed validation.",
		Details:    details,
	}
}

func weakPasswordError(failures []string, score int) *apiError {
	return &apiError{
		StatusCode: http.StatusBadRequest,
		Code:       "weak_password",
		Message:    "The password does not meet the strength requirements.",
		Details: map[string]any{
			"errors": failures,
			"score":  score,
		},
	}
}

// writeServiceError maps service and store sentinels onto the wire codes.
// Anything unmapped is a 500 with no internals leaked.
func writeServiceError(w http.ResponseWriter, err error) {
	var weak *service.WeakPasswordError
	var api *apiError

	switch {
	case errors.As(err, &api):
		api.WriteError(w)
	case errors.As(err, &weak):
		weakPasswordError(weak.Failures, weak.Score).WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		errInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrRatingExists):
		(&apiError{
			StatusCode: http.StatusConflict,
			Code:       "rating_already_exists",
			Message:    "You have already rated or reviewed this movie.",
		}).WriteError(w)
	case errors.Is(err, service.ErrNothingToRate):
		(&apiError{
			StatusCode: http.StatusBadRequest,
			Code:       "rating_or_review_required",
			Message:    "Provide a rating, a review, or both.",
		}).WriteError(w)
	case errors.Is(err, store.ErrNotFound):
		errNotFound.WriteError(w)
	case errors.Is(err, store.ErrAlreadyExists):
		errConflict.WriteError(w)
	case errors.Is(err, tmdb.ErrUpstream):
		errUpstream.WriteError(w)
	case errors.Is(err, jwtx.ErrExpired):
		errTokenExpired.WriteError(w)
	case errors.Is(err, jwtx.ErrInvalid):
		errUnauthorized.WriteError(w)
	default:
		errServer.WriteError(w)
	}
}
