package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bookstore_api/internal/utils"
	"github.com/GTDGit/bookstore_api/pkg/ghn"
)

// carrierStatus maps GHN error kinds to HTTP statuses.
var carrierStatus = map[ghn.ErrorKind]int{
	ghn.KindConfig:    http.StatusServiceUnavailable,
	ghn.KindTransport: http.StatusBadGateway,
	ghn.KindQuote:     http.StatusUnprocessableEntity,
	ghn.KindResponse:  http.StatusBadGateway,
}

// appStatus maps application sentinels to HTTP statuses.
var appStatus = []struct {
	err    error
	status int
}{
	{utils.ErrEmptyCart, http.StatusBadRequest},
	{utils.ErrIncompleteDestination, http.StatusBadRequest},
	{utils.ErrIncompleteRecipient, http.StatusBadRequest},
	{utils.ErrSelectionRequired, http.StatusBadRequest},
	{utils.ErrUnknownLocation, http.StatusNotFound},
	{utils.ErrSessionNotFound, http.StatusNotFound},
	{utils.ErrQuoteNotFound, http.StatusNotFound},
	{utils.ErrSuperseded, http.StatusConflict},
	{utils.ErrInvalidCredentials, http.StatusUnauthorized},
	{utils.ErrAccountInactive, http.StatusForbidden},
}

// respondError writes err using the standard envelope.
func respondError(c *gin.Context, err error) {
	if kind, ok := ghn.KindOf(err); ok {
		status := carrierStatus[kind]
		if status == 0 {
			status = http.StatusBadGateway
		}
		utils.Error(c, status, string(kind), err.Error())
		return
	}

	for _, m := range appStatus {
		if errors.Is(err, m.err) {
			utils.Error(c, m.status, m.err.Error(), err.Error())
			return
		}
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
	utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}
