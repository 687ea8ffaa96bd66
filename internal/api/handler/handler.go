// Package handler wires HTTP routes to the application services.
package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"inkwell/internal/common"
)

// respondError maps a service error onto the wire. Unexpected failures are
// logged in full and answered with a generic message so internal detail
// never reaches the client.
func respondError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	if common.HTTPStatusFromError(err) == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
	}
	common.RespondDomainError(w, err)
}
