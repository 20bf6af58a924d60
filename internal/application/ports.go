package application

import (
	"context"
	"encoding/json"
	"time"

	"hactl/internal/domain"
)

// EntitySource supplies a fresh snapshot of entities, scenes and automations.
type EntitySource interface {
	FetchEntities(ctx context.Context) ([]domain.Entity, error)
}

// ServiceInvoker performs a service call against the controller.
type ServiceInvoker interface {
	InvokeService(ctx context.Context, entityDomain, service string, payload map[string]any) (json.RawMessage, error)
}

// Recorder observes finished dispatches.
type Recorder interface {
	ObserveDispatch(status domain.Status, elapsed time.Duration)
}

type NoopRecorder struct{}

func (NoopRecorder) ObserveDispatch(domain.Status, time.Duration) {}
