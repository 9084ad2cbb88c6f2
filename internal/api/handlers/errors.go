package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orrn/printq/internal/core"
	"github.com/orrn/printq/internal/logging"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError maps a core error onto the HTTP status and error code the
// API promises. ErrForbidden wraps ErrUnauthorized, so it is checked first.
func respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, core.ErrValidation):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, core.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, core.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, core.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, core.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed", zap.Error(err))
		message = "An internal error occurred"
	}
	c.JSON(status, ErrorResponse{Error: code, Message: message})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	})
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid " + name + " parameter",
		})
		return 0, false
	}
	return id, true
}
