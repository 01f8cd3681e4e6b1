package api

import (
	"github.com/gin-gonic/gin"
)

// Response is the envelope of every API response.
type Response struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError represents error details in API responses.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error codes.
const (
	CodeInvalidQuery  = "INVALID_QUERY"
	CodeUnknownFilter = "UNKNOWN_FILTER"
	CodeInvalidValue  = "INVALID_VALUE"
	CodeFilterFailed  = "FILTER_FAILED"
	CodeReadFailed    = "READ_FAILED"
)

func writeSuccess(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

func writeError(c *gin.Context, status int, code, message, details string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
