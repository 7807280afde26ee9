// Package handlers exposes the storefront services over HTTP with fiber.
package handlers

import (
	"errors"
	"fmt"
	"os"

	"storefront/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var validate = validator.New()

// requestError is a malformed request body, with per-field messages when the
// body parsed but failed validation.
type requestError struct {
	message string
	cause   error
	fields  map[string]string
}

func (e *requestError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// parseBody decodes the request body into dst and runs its validate tags.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return &requestError{message: "Invalid request body", cause: err}
	}
	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return &requestError{message: "Validation failed", cause: err}
		}
		errorMessages := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return &requestError{message: "Validation failed", fields: errorMessages}
	}
	return nil
}

// respondError writes err with the status its class maps to.
func respondError(c *fiber.Ctx, err error) error {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		body := fiber.Map{"message": reqErr.message}
		if reqErr.fields != nil {
			body["errors"] = reqErr.fields
		}
		if reqErr.cause != nil {
			body["error"] = reqErr.cause.Error()
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}

	status, message := fiber.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status, message = fiber.StatusBadRequest, "Validation failed"
	case errors.Is(err, apperrors.ErrEmptyCart):
		status, message = fiber.StatusBadRequest, "Cart is empty"
	case errors.Is(err, apperrors.ErrNotPurchased):
		status, message = fiber.StatusForbidden, "Only customers who bought this product can review it"
	case errors.Is(err, apperrors.ErrAuthorization):
		status, message = fiber.StatusForbidden, "Not allowed"
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = fiber.StatusNotFound, "Not found"
	case errors.Is(err, apperrors.ErrInvalidTransition):
		status, message = fiber.StatusConflict, "Invalid order status transition"
	case errors.Is(err, apperrors.ErrConflict):
		status, message = fiber.StatusConflict, "Conflict"
	}

	if status == fiber.StatusInternalServerError {
		logger.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("Request failed")
		return c.Status(status).JSON(fiber.Map{"message": message})
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
