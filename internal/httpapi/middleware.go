package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// setupMiddleware wires request-id tagging and panic recovery. recover.New
// turns a panic inside a handler into an error, which errorHandler answers
// with a 500, so the server keeps running; the panic is not logged and the
// connection is not dropped. Request IDs come from uuid
// rather than requestid's default byte-random generator so log correlation
// ids look the same as every other identifier in the logs.
func setupMiddleware(app *fiber.App) {
	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.NewString() },
	}))
	app.Use(recover.New())
}

// errorHandler centralizes Fiber-level error responses (routing failures,
// panics recovered above): a *fiber.Error keeps its own status code,
// anything else becomes a 500, and the body is the error text as plain
// text.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).SendString(err.Error())
}
