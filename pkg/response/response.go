package response

import (
	"errors"
	"net/http"
	"time"

	"card-token-proxy/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorResponse is the structured error envelope for validation, rate-limit,
// transport and internal failures. Signature-verification failures do not
// use this envelope: they are normal results with their own response shape.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"errorCode"`
	Error     string `json:"error"`
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
}

// Error sends a structured error response. *apperror.AppError maps to its
// own status and code; anything else becomes a 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, ErrorResponse{
			Success:   false,
			ErrorCode: appErr.Code,
			Error:     appErr.Message,
			RequestID: getRequestID(c),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Success:   false,
		ErrorCode: "SYS_000",
		Error:     "Internal server error",
		RequestID: getRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// getRequestID retrieves the request ID from context, or generates one.
func getRequestID(c *gin.Context) string {
	if id, exists := c.Get("request_id"); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return uuid.New().String()
}
