package model

import (
	"library-backend/internal/shared/apperror"
	"library-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HandleBookError renders a service failure onto the response. Known error
// kinds keep their own status and message; anything else becomes the fixed
// internal failure so detail is never leaked. Returns true when err was
// handled.
func HandleBookError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if e := apperror.From(err); e != nil {
		response.ErrorResponse(c, e.Status, e.Code, e.Message)
		return true
	}

	log.Error().
		Str("request_id", c.GetString("request_id")).
		Err(err).
		Msg("Unhandled book error")
	response.InternalServerError(c, apperror.InternalMessage)
	return true
}
