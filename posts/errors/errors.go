package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Post service specific errors
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrOwnerNotFound   = errors.New("post owner not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrAlreadyLiked    = errors.New("post already liked by user")
	ErrNotLiked        = errors.New("post not liked by user")

	// Request and validation errors
	ErrInvalidRequest = errors.New("invalid request")

	// Database and system errors
	ErrDatabaseOperation = errors.New("database operation failed")
)

// Error codes
const (
	CodePostNotFound      = "POST_NOT_FOUND"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeCommentNotFound   = "COMMENT_NOT_FOUND"
	CodeAlreadyLiked      = "ALREADY_LIKED"
	CodeNotLiked          = "NOT_LIKED"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeDatabaseOperation = "DATABASE_OPERATION_FAILED"
	CodeInternalError     = "INTERNAL_ERROR"
)

// PostError represents a post service error with additional context
type PostError struct {
	Code    string
	Message string
	Cause   error
}

func (e *PostError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PostError) Unwrap() error {
	return e.Cause
}

// NewValidationError reports a missing or malformed request field.
func NewValidationError(message string) *PostError {
	return &PostError{Code: CodeValidationFailed, Message: message, Cause: ErrInvalidRequest}
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
		var postErr *PostError
		if errors.As(err, &postErr) {
			message = postErr.Message
		}
		return HandleValidationError(c, message, err.Error())
	case errors.Is(err, ErrPostNotFound):
		return notFound(c, CodePostNotFound, "Post not found", err)
	case errors.Is(err, ErrOwnerNotFound):
		return notFound(c, CodeUserNotFound, "User not found", err)
	case errors.Is(err, ErrCommentNotFound):
		return notFound(c, CodeCommentNotFound, "Comment not found", err)
	case errors.Is(err, ErrAlreadyLiked):
		return c.Status(http.StatusConflict).JSON(ErrorResponse{
			Code:    CodeAlreadyLiked,
			Message: "User already liked this post",
			Details: err.Error(),
		})
	case errors.Is(err, ErrNotLiked):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Code:    CodeNotLiked,
			Message: "User has not liked this post",
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

func notFound(c *fiber.Ctx, code, message string, err error) error {
	return c.Status(http.StatusNotFound).JSON(ErrorResponse{
		Code:    code,
		Message: message,
		Details: err.Error(),
	})
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
