package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// User service specific errors
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrAlreadyFollowing = errors.New("already following user")
	ErrNotFollowing     = errors.New("not following user")
	ErrSelfFollow       = errors.New("cannot follow yourself")

	// Request and validation errors
	ErrInvalidRequest = errors.New("invalid request")

	// Database and system errors
	ErrDatabaseOperation = errors.New("database operation failed")
)

// Error codes
const (
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeDuplicateKey      = "DUPLICATE_KEY"
	CodeAlreadyFollowing  = "ALREADY_FOLLOWING"
	CodeNotFollowing      = "NOT_FOLLOWING"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeDatabaseOperation = "DATABASE_OPERATION_FAILED"
	CodeInternalError     = "INTERNAL_ERROR"
)

// UserError carries the client-facing message alongside a sentinel cause.
type UserError struct {
	Code    string
	Message string
	Cause   error
}

func (e *UserError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

// NewValidationError reports a missing or malformed request field.
func NewValidationError(message string) *UserError {
	return &UserError{Code: CodeValidationFailed, Message: message, Cause: ErrInvalidRequest}
}

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
		message := "Invalid request"
		var userErr *UserError
		if errors.As(err, &userErr) {
			message = userErr.Message
		}
		return HandleValidationError(c, message, err.Error())
	case errors.Is(err, ErrUserNotFound):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{
			Code:    CodeUserNotFound,
			Message: "User not found",
			Details: err.Error(),
		})
	case errors.Is(err, ErrEmailTaken):
		return c.Status(http.StatusConflict).JSON(ErrorResponse{
			Code:    CodeDuplicateKey,
			Message: "A user with this email already exists.",
			Details: err.Error(),
		})
	case errors.Is(err, ErrAlreadyFollowing):
		return c.Status(http.StatusConflict).JSON(ErrorResponse{
			Code:    CodeAlreadyFollowing,
			Message: "You are already following this user.",
			Details: err.Error(),
		})
	case errors.Is(err, ErrNotFollowing):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Code:    CodeNotFollowing,
			Message: "You are not following this user.",
			Details: err.Error(),
		})
	case errors.Is(err, ErrSelfFollow):
		return HandleValidationError(c, "You cannot follow yourself.", err.Error())
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

// HandleValidationError handles validation errors with 400 Bad Request
func HandleValidationError(c *fiber.Ctx, message string, details ...string) error {
	response := ErrorResponse{
		Code:    CodeValidationFailed,
		Message: message,
		Details: message,
	}
	if len(details) > 0 {
		response.Details = details[0]
	}
	return c.Status(http.StatusBadRequest).JSON(response)
}

// HandleInvalidRequestError handles unparsable request bodies with 400 Bad Request
func HandleInvalidRequestError(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
		Code:    CodeInvalidRequest,
		Message: message,
		Details: message,
	})
}
