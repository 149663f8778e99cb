package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/explore-grabby/booking-backend/internal/logger"
	"github.com/explore-grabby/booking-backend/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Error sends a JSON error response.
// An apperror.Error supplies the status, code and message.
// Anything else is logged and reported as 500 Internal Server Error.
func Error(c *gin.Context, err error) {
	ErrorWithDetails(c, err, nil)
}

// ErrorWithDetails is Error with an extra machine-readable payload for
// client errors. Details are never sent with a 500.
func ErrorWithDetails(c *gin.Context, err error, details any) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			logger.Debug("client error", "code", appErr.Code, "cause", appErr.Err)
		}
		c.JSON(appErr.Status, ErrorResponse{Error: appErr.Message, Code: appErr.Code, Details: details})
		return
	}

	logger.ErrorContext(c.Request.Context(), "request failed",
		"method", c.Request.Method, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// BadRequest reports a malformed request with the binding error as details.
func BadRequest(c *gin.Context, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}
