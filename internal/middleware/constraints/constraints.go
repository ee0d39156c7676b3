package constraints

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
)

// CodeNotFound is the error code answered for malformed path ids.
const CodeNotFound = "NOT_FOUND"

// ErrorResponse matches the error body of the domain errors packages.
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// RequireUUID answers 404 unless every named path parameter is a valid UUID,
// so malformed ids behave like unknown resources and never reach the handler.
// Static routes such as /users/email must be registered before /users/:id.
func RequireUUID(params ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, param := range params {
			value := c.Params(param)
			if value == "" {
				continue
			}
			if _, err := uuid.FromString(value); err != nil {
				return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
					Code:    CodeNotFound,
					Message: "Resource not found",
					Details: param + " must be a valid UUID",
				})
			}
		}
		return c.Next()
	}
}
