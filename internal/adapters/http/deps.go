package http

import (
	"github.com/nats-io/nats.go"

	"github.com/imanolz/gravelpass/internal/adapters/postgres"
	"github.com/imanolz/gravelpass/internal/adapters/valkey"
	"github.com/imanolz/gravelpass/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Tracks   *usecases.TrackService
	Segments *usecases.SegmentService
	Routes   *usecases.RouteService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
}
