package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Message string      `json:"message"`
	Status  bool        `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func NewSuccessResponse(message string, data interface{}) Response {
	return Response{
		Message: message,
		Status:  true,
		Data:    data,
	}
}

func NewErrorResponse(message string) Response {
	return Response{
		Message: message,
		Status:  false,
		Error:   message,
	}
}

// Error writes err using the status mapped from its error code.
// Unclassified errors become opaque 500s; the detail goes to the log,
// not the client.
func Error(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		if appErr.StatusCode() >= 500 {
			log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		}
		c.JSON(appErr.StatusCode(), NewErrorResponse(appErr.Message))
		return
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled error")
	c.JSON(500, NewErrorResponse("internal server error"))
}

func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(200, NewSuccessResponse(message, data))
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(201, NewSuccessResponse(message, data))
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(400, NewErrorResponse(message))
}
