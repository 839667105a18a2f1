package http

import (
	"errors"
	"net/http"

	"github.com/stashbin/stashbin/internal/service"
	"github.com/stashbin/stashbin/pkg/api"
	"github.com/stashbin/stashbin/pkg/slogx"
)

// writeServiceError maps service-layer sentinels onto the wire error
// vocabulary. Anything unmapped is a 500 with the detail kept in the logs.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidJSON):
		api.ErrBadRequest.Write(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		api.ErrInvalidCredentials.Write(w)
	case errors.Is(err, service.ErrTokenInvalid),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenWrongType):
		api.ErrUnauthorized.Write(w)
	case errors.Is(err, service.ErrTokenRevoked):
		api.ErrTokenRevoked.Write(w)
	case errors.Is(err, service.ErrAPIKeyRequired):
		api.ErrAPIKeyRequired.Write(w)
	case errors.Is(err, service.ErrAPIKeyInvalid):
		api.ErrAPIKeyInvalid.Write(w)
	case errors.Is(err, service.ErrRegistrationClosed):
		api.ErrRegistrationDisabled.Write(w)
	case errors.Is(err, service.ErrPublicWriteDisabled),
		errors.Is(err, service.ErrProtectedGroup):
		api.ErrForbidden.Write(w)
	case errors.Is(err, service.ErrNotFound):
		api.ErrNotFound.Write(w)
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrSlugTaken):
		api.ErrConflict.Write(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		api.ErrServer.Write(w)
	}
}
