package services

import (
	"context"

	"inventory/internal/models"
)

// EventPublisher delivers product events to interested consumers.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event models.ProductEvent) error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

// PublishProductEvent implements EventPublisher.
func (NoopPublisher) PublishProductEvent(context.Context, models.ProductEvent) error {
	return nil
}
