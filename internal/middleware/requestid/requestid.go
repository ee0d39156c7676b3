package requestid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
)

const (
	// HeaderRequestID is the HTTP header carrying the request ID
	HeaderRequestID = "X-Request-ID"
	// ContextKeyRequestID is the Locals key; the log package reads the same key
	ContextKeyRequestID = "request_id"

	maxRequestIDLength = 128
)

// New reuses a well-formed inbound X-Request-ID or generates a UUID, stores it in
// Locals and echoes it on the response.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(HeaderRequestID)
		if !acceptable(requestID) {
			requestID = uuid.Must(uuid.NewV4()).String()
		}

		c.Locals(ContextKeyRequestID, requestID)
		c.Set(HeaderRequestID, requestID)

		return c.Next()
	}
}

func acceptable(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range id {
		if r <= ' ' || r >= 0x7f {
			return false
		}
	}
	return true
}

// GetRequestID retrieves the request ID from the Fiber context
func GetRequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}
