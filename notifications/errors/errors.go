package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrDatabaseOperation    = errors.New("database operation failed")
)

const (
	CodeNotificationNotFound = "NOTIFICATION_NOT_FOUND"
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodeDatabaseOperation    = "DATABASE_OPERATION_FAILED"
	CodeInternalError        = "INTERNAL_ERROR"
)

// WrapDatabaseError wraps a store failure.
func WrapDatabaseError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrDatabaseOperation, err)
}

// ErrorResponse represents the standardized error response format
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// HandleServiceError handles service errors and returns appropriate HTTP responses
func HandleServiceError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrInvalidRequest):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Code:    CodeValidationFailed,
			Message: "Invalid request",
			Details: err.Error(),
		})
	case errors.Is(err, ErrNotificationNotFound):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{
			Code:    CodeNotificationNotFound,
			Message: "Notification not found",
			Details: err.Error(),
		})
	case errors.Is(err, ErrDatabaseOperation):
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Code:    CodeDatabaseOperation,
			Message: "Database operation failed",
			Details: err.Error(),
		})
	default:
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Code:    CodeInternalError,
			Message: "An unexpected error occurred",
			Details: err.Error(),
		})
	}
}
