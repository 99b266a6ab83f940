package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "mentora/internal/shared/errors"
)

// Response is the uniform HTTP response envelope
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// SuccessResponse writes a 200 response with data
func SuccessResponse(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreatedResponse writes a 201 response with data
func CreatedResponse(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse writes an error response with an explicit status
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Success: false,
		Error:   message,
	})
}

// ErrorResponseWithError maps an error to a response. AppErrors carry their
// own status code; anything else is an internal error with a generic body so
// infrastructure details never leak to callers.
func ErrorResponseWithError(c *gin.Context, err error) {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		c.JSON(appErr.Code, Response{
			Success: false,
			Error:   appErr,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Error:   "internal server error",
	})
}
