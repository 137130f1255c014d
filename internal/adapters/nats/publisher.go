package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/imanolz/gravelpass/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      "GRAVEL_TRACKS",
			Subjects:  []string{"gravel.track.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "GRAVEL_SEGMENTS",
			Subjects:  []string{"gravel.segment.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "GRAVEL_ROUTES",
			Subjects:  []string{"gravel.route.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist — try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// trackEvent is the published shape for track events. Points are omitted on
// purpose: consumers fetch geometry through the API, events stay small.
type trackEvent struct {
	ID     string                 `json:"id"`
	Name   string                 `json:"name"`
	Stats  domain.TrackStatistics `json:"stats"`
	Bounds domain.GeoBounds       `json:"bounds"`
}

type segmentEvent struct {
	ID      string                   `json:"id"`
	TrackID string                   `json:"track_id"`
	Name    string                   `json:"name"`
	Points  int                      `json:"points"`
	Bounds  domain.GeoBounds         `json:"bounds"`
	Attrs   domain.SegmentAttributes `json:"attrs"`
}

type routeEvent struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Segments   int                    `json:"segments"`
	Points     int                    `json:"points"`
	Barycenter domain.Position        `json:"barycenter"`
	Attrs      domain.RouteAttributes `json:"attrs"`
}

func (p *Publisher) PublishTrackIngested(ctx context.Context, track *domain.Track) error {
	data, err := json.Marshal(trackEvent{
		ID:     track.ID,
		Name:   track.Name,
		Stats:  track.Stats,
		Bounds: track.Bounds,
	})
	if err != nil {
		return err
	}
	_, err = p.js.Publish("gravel.track.ingested."+track.ID, data)
	return err
}

func (p *Publisher) PublishSegmentCut(ctx context.Context, segment *domain.Segment) error {
	data, err := json.Marshal(segmentEvent{
		ID:      segment.ID,
		TrackID: segment.TrackID,
		Name:    segment.Name,
		Points:  len(segment.Points),
		Bounds:  segment.Bounds,
		Attrs:   segment.Attrs,
	})
	if err != nil {
		return err
	}
	_, err = p.js.Publish("gravel.segment.cut."+segment.ID, data)
	return err
}

func (p *Publisher) PublishRouteComposed(ctx context.Context, route *domain.Route) error {
	data, err := json.Marshal(routeEvent{
		ID:         route.ID,
		Name:       route.Name,
		Segments:   len(route.Segments),
		Points:     len(route.Composite.Points),
		Barycenter: route.Composite.Barycenter,
		Attrs:      route.Attrs,
	})
	if err != nil {
		return err
	}
	_, err = p.js.Publish("gravel.route.composed."+route.ID, data)
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
