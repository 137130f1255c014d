// Command ingestworker runs the Temporal worker that processes asynchronous
// track ingestion. The API (or importer) stores the raw blob and starts an
// IngestWorkflow; this worker does the decoding, extraction, and persistence.
package main

import (
	"context"
	"log"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/imanolz/gravelpass/internal/adapters/gpx"
	natsadapter "github.com/imanolz/gravelpass/internal/adapters/nats"
	"github.com/imanolz/gravelpass/internal/adapters/postgres"
	"github.com/imanolz/gravelpass/internal/adapters/storage"
	"github.com/imanolz/gravelpass/internal/pkg/config"
	"github.com/imanolz/gravelpass/internal/workflows"
)

func main() {
	cfg, err := config.Load("gravelpass-ingestworker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	blobs, err := storage.NewLocal(cfg.Storage.Root)
	if err != nil {
		log.Fatalf("blob storage: %v", err)
	}

	events, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer events.Close()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.IngestWorkflow)
	w.RegisterActivity(&workflows.IngestActivities{
		Tracks: postgres.NewTrackRepo(db),
		Parser: gpx.NewParser(),
		Blobs:  blobs,
		Events: events,
	})

	log.Println("ingest worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
