// Package services holds the storefront's business logic. Every operation is a
// sequence of single-row atomic writes; multi-row effects such as fan-out and
// rating recomputes are best-effort or self-healing rather than transactional.
package services

import (
	"context"
	"encoding/json"
	"os"

	"storefront/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var validate = validator.New()

// EventPublisher delivers domain events to a broker. Implemented by
// pkg/rabbitmq.Client and pkg/kafka.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// publishEvent marshals payload and publishes it. Failures are logged and never
// returned; the triggering write has already happened.
func publishEvent(ctx context.Context, publisher EventPublisher, routingKey string, payload any) {
	if publisher == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Error().Err(err).Str("routing_key", routingKey).Msg("Failed to marshal event")
		return
	}
	if err := publisher.Publish(ctx, routingKey, body); err != nil {
		logger.Warn().Err(err).Str("routing_key", routingKey).Msg("Failed to publish event")
	}
}

// validateStruct runs the struct tags of v and wraps failures as validation errors.
func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return apperrors.Validation("%s", err.Error())
	}
	return nil
}
