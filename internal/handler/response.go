package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bitbetty/internal/service"
)

type messageResponse struct {
	Message string `json:"message"`
}

type submitResponse struct {
	Guess   string `json:"guess"`
	Message string `json:"message"`
}

type scoreResponse struct {
	Score int64 `json:"score"`
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, messageResponse{Message: message})
}

// writeServiceError maps service errors onto status codes. Client errors carry
// their reason; server errors do not leak internals.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		Error(c, http.StatusBadRequest, publicMessage(err, service.ErrValidation))
	case errors.Is(err, service.ErrConflict):
		Error(c, http.StatusBadRequest, "user already has an unresolved guess")
	case errors.Is(err, service.ErrNotFound):
		Error(c, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrQueue):
		Error(c, http.StatusInternalServerError, "could not schedule guess, please retry")
	default:
		Error(c, http.StatusInternalServerError, "internal error, please retry")
	}
}

func publicMessage(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}
