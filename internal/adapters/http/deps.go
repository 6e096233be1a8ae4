package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/isstrack/internal/core/usecases"
)

// Pinger is a backing service that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
// Tracker is set in the API process, Viewer in the viewer process.
type Dependencies struct {
	Tracker *usecases.TrackingService
	Viewer  *usecases.ViewerService
	NATS    *nats.Conn
	DB      Pinger
	Cache   Pinger
	Version string
}
