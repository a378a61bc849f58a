package middleware

import (
	"github.com/labstack/echo/v4"
)

// Envelope is the standard JSON response wrapper. The display client reads
// everything under "data", matching the upstream API's own convention, so
// a page can consume gateway and upstream payloads with the same code.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSON writes a success response wrapped in the standard envelope.
func JSON(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, Envelope{Data: data})
}

// JSONMessage writes a success response carrying only a human-readable message.
func JSONMessage(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, Envelope{Message: message})
}
