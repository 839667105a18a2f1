package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrRegistrationClosed = errors.New("registration_closed")
	ErrUsernameTaken      = errors.New("username_taken")

	ErrTokenInvalid   = errors.New("invalid_token")
	ErrTokenExpired   = errors.New("expired_token")
	ErrTokenWrongType = errors.New("wrong_token_type")

	// ErrTokenRevoked covers both explicit revocation and replay of an
	// already-rotated refresh token; the two are indistinguishable once
	// the active record is gone.
	ErrTokenRevoked = errors.New("revoked_token")

	ErrAPIKeyRequired      = errors.New("api_key_required")
	ErrAPIKeyInvalid       = errors.New("api_key_invalid")
	ErrPublicWriteDisabled = errors.New("public_write_disabled")

	ErrNotFound       = errors.New("not_found")
	ErrSlugTaken      = errors.New("slug_taken")
	ErrProtectedGroup = errors.New("protected_group")
	ErrInvalidJSON    = errors.New("invalid_json")
	ErrValidation     = errors.New("validation_failed")
)
