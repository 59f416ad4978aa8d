package utils

import (
	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every endpoint writes. RequestID echoes the
// X-Request-ID the middleware assigned, so clients can quote it in reports.
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func SuccessResponse(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: c.Writer.Header().Get("X-Request-ID"),
	})
}

func ErrorResponse(c *gin.Context, code int, message string, err error) {
	response := APIResponse{
		Success:   false,
		Message:   message,
		RequestID: c.Writer.Header().Get("X-Request-ID"),
	}
	if err != nil {
		response.Error = err.Error()
	}

	c.JSON(code, response)
}
