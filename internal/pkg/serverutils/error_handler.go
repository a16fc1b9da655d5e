package serverutils

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// ErrorMapping binds a sentinel error to the HTTP status it produces.
type ErrorMapping struct {
	Err    error
	Status int
}

// ErrorHandlerMiddleware turns errors returned by handlers into the error
// envelope. Sentinels are matched with errors.Is in the given order; anything
// unmatched is a 500 with the detail kept out of the response.
func ErrorHandlerMiddleware(mappings ...ErrorMapping) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var verr *ValidationError
		if errors.As(err, &verr) {
			res := ErrorResponse(fiber.StatusBadRequest, "Validation failed")
			res.Errors = verr.Fields
			return ctx.Status(fiber.StatusBadRequest).JSON(res)
		}

		var ferr *fiber.Error
		if errors.As(err, &ferr) {
			return ctx.Status(ferr.Code).JSON(ErrorResponse(ferr.Code, ferr.Message))
		}

		for _, m := range mappings {
			if errors.Is(err, m.Err) {
				return ctx.Status(m.Status).JSON(ErrorResponse(m.Status, err.Error()))
			}
		}

		log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
