package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"novelpedia-backend/internal/shared/apperror"
	"novelpedia-backend/pkg/logger"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type Meta struct {
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
	Total int `json:"total,omitempty"`
}

// Success responses
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

func SuccessWithMeta(c *gin.Context, statusCode int, data interface{}, meta *Meta) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// Error responses
func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// Common error responses
func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", message)
}

func NotFound(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", message)
}

func InternalServerError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message)
}

// reasoned is implemented by federation errors.
type reasoned interface {
	ReasonCode() string
}

// Status maps an error to its HTTP status and response code.
func Status(err error) (int, string) {
	var r reasoned
	switch {
	case errors.Is(err, apperror.ErrFederation) && errors.As(err, &r):
		return http.StatusBadRequest, r.ReasonCode()
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, codeOr(err, "VALIDATION_ERROR")
	case errors.Is(err, apperror.ErrUnauthenticated):
		return http.StatusUnauthorized, codeOr(err, "UNAUTHORIZED")
	case errors.Is(err, apperror.ErrAuthFailure):
		return http.StatusUnauthorized, codeOr(err, "INVALID_CREDENTIALS")
	case errors.Is(err, apperror.ErrPermissionDenied):
		return http.StatusForbidden, codeOr(err, "FORBIDDEN")
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, codeOr(err, "NOT_FOUND")
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, codeOr(err, "CONFLICT")
	default:
		return http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"
	}
}

// FromError writes the error envelope for err. Server faults are logged and
// their message replaced with a generic one.
func FromError(c *gin.Context, err error) {
	status, code := Status(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", err)
		InternalServerError(c, "Internal server error")
		return
	}

	message := err.Error()
	if appErr, ok := apperror.As(err); ok {
		message = appErr.Message
		if len(appErr.Fields) > 0 {
			ErrorWithDetails(c, status, code, message, appErr.Fields)
			return
		}
	}
	ErrorResponse(c, status, code, message)
}

func codeOr(err error, fallback string) string {
	if appErr, ok := apperror.As(err); ok && appErr.Code != "" {
		return appErr.Code
	}
	return fallback
}
