package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error is the JSON error envelope the server writes and the SDK parses.
// It implements the error interface so SDK callers can errors.As it out of
// a failed request.
type Error struct {
	// StatusCode is the HTTP status; it is not serialized.
	StatusCode int `json:"-"`

	// Code is a stable machine-readable identifier.
	Code string `json:"error"`

	// Message is a human-readable description. Responses deliberately stay
	// generic; details live in the server logs only.
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Write emits the error as a JSON response with its status code.
func (e *Error) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

var (
	// ErrBadRequest covers malformed bodies and missing required fields.
	ErrBadRequest = &Error{
		StatusCode: http.StatusBadRequest,
		Code:       "bad_request",
		Message:    "the request is malformed or missing required fields",
	}

	// ErrInvalidCredentials is the single answer for unknown-user and
	// wrong-password alike, so callers cannot probe which one happened.
	ErrInvalidCredentials = &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       "invalid_credentials",
		Message:    "invalid credentials",
	}

	// ErrUnauthorized covers missing, malformed, expired, or wrong-type
	// bearer tokens on protected routes.
	ErrUnauthorized = &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       "unauthorized",
		Message:    "invalid or expired token",
	}

	// ErrTokenRevoked is returned when a refresh token is cryptographically
	// valid but no longer honored (already rotated or swept). Distinct from
	// ErrUnauthorized so clients can force a clean re-login.
	ErrTokenRevoked = &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       "token_revoked",
		Message:    "token has been revoked",
	}

	// ErrRegistrationDisabled is returned when self-service registration is
	// switched off in configuration.
	ErrRegistrationDisabled = &Error{
		StatusCode: http.StatusForbidden,
		Code:       "registration_disabled",
		Message:    "registration is currently disabled",
	}

	// ErrAPIKeyRequired is returned by the public data endpoints when a
	// protected group is accessed without an X-Api-Key header.
	ErrAPIKeyRequired = &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       "api_key_required",
		Message:    "an API key is required for this resource",
	}

	// ErrAPIKeyInvalid covers unknown, disabled and expired API keys alike.
	ErrAPIKeyInvalid = &Error{
		StatusCode: http.StatusUnauthorized,
		Code:       "api_key_invalid",
		Message:    "the API key is not valid",
	}

	// ErrForbidden is returned when the resource exists but the operation is
	// not permitted, e.g. public writes to a group that disallows them.
	ErrForbidden = &Error{
		StatusCode: http.StatusForbidden,
		Code:       "forbidden",
		Message:    "operation not permitted",
	}

	// ErrNotFound is returned when the addressed resource does not exist or
	// is not owned by the caller.
	ErrNotFound = &Error{
		StatusCode: http.StatusNotFound,
		Code:       "not_found",
		Message:    "resource not found",
	}

	// ErrConflict is returned on uniqueness violations (duplicate username,
	// duplicate slug).
	ErrConflict = &Error{
		StatusCode: http.StatusConflict,
		Code:       "conflict",
		Message:    "resource already exists",
	}

	// ErrServer is the generic 500. Detail is logged, never returned.
	ErrServer = &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       "server_error",
		Message:    "internal server error",
	}

	// ErrStoreUnavailable maps datastore connectivity failures to 503.
	ErrStoreUnavailable = &Error{
		StatusCode: http.StatusServiceUnavailable,
		Code:       "store_unavailable",
		Message:    "datastore unavailable",
	}
)
