package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finmetrics/portfolio-api/internal/common"
)

// envelope is the uniform JSON body for every API response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondSuccess(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: false, Message: message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Internal details never reach the client.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorInsufficientData):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorValidation):
		respondError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		respondError(c, http.StatusNotFound, "resource not found")
	case errors.Is(err, common.ErrorConflict):
		respondError(c, http.StatusConflict, "resource already exists")
	case errors.Is(err, common.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		respondError(c, http.StatusUnauthorized, "invalid or expired token")
	default:
		// the cause carries operation context from the service layer
		if log := requestLog(c); log != nil {
			log.Error(c.Request.Context(), "internal error",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err.Error(),
			)
		}
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
