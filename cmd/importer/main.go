// Command importer bulk-loads a directory of GPX files into the catalog.
// Useful for seeding a fresh deployment from an existing ride archive:
//
//	importer ./rides
package main

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/imanolz/gravelpass/internal/adapters/gpx"
	"github.com/imanolz/gravelpass/internal/adapters/identifier"
	natsadapter "github.com/imanolz/gravelpass/internal/adapters/nats"
	"github.com/imanolz/gravelpass/internal/adapters/postgres"
	"github.com/imanolz/gravelpass/internal/adapters/storage"
	"github.com/imanolz/gravelpass/internal/core/domain"
	"github.com/imanolz/gravelpass/internal/core/usecases"
	"github.com/imanolz/gravelpass/internal/pkg/config"
	"github.com/imanolz/gravelpass/internal/pkg/metrics"
)

func main() {
	dir := "."
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	cfg, err := config.Load("gravelpass-importer")
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

	// Broker is optional for a bulk import; nil publisher means silent import.
	var events *natsadapter.Publisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		log.Printf("nats unavailable, importing without events: %v", err)
	} else {
		events = pub
		defer pub.Close()
	}

	trackRepo := postgres.NewTrackRepo(db)
	parser := gpx.NewParser()
	ids := identifier.New()

	base := afero.NewOsFs()
	imported, skipped := 0, 0
	start := time.Now()

	err = afero.Walk(base, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(path), ".gpx") {
			return nil
		}

		raw, err := afero.ReadFile(base, path)
		if err != nil {
			log.Printf("SKIP %s: read: %v", path, err)
			skipped++
			return nil
		}

		points, name, err := parser.Parse(raw)
		if err != nil {
			log.Printf("SKIP %s: %v", path, err)
			skipped++
			metrics.IngestFailures.WithLabelValues("importer").Inc()
			return nil
		}

		id := ids.NewID()
		track, err := usecases.ExtractTrack(points, id, name)
		if err != nil {
			log.Printf("SKIP %s: %v", path, err)
			skipped++
			metrics.IngestFailures.WithLabelValues("importer").Inc()
			return nil
		}
		track.CreatedAt = time.Now().UTC()
		if track.Name == domain.DefaultTrackName {
			track.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		if err := blobs.Put(ctx, usecases.BlobKey(id), raw); err != nil {
			log.Printf("SKIP %s: store blob: %v", path, err)
			skipped++
			return nil
		}
		if err := trackRepo.Insert(ctx, track); err != nil {
			_ = blobs.Delete(ctx, usecases.BlobKey(id))
			log.Printf("SKIP %s: persist: %v", path, err)
			skipped++
			return nil
		}

		if events != nil {
			if err := events.PublishTrackIngested(ctx, track); err != nil {
				log.Printf("WARN %s: publish: %v", path, err)
			}
		}

		metrics.TracksIngested.WithLabelValues("importer").Inc()
		imported++
		log.Printf("OK   %s → %s (%d points, %.1f km)",
			path, id, track.Stats.TotalPoints, track.Stats.TotalDistanceKm)
		return nil
	})
	if err != nil {
		log.Fatalf("walk %s: %v", dir, err)
	}

	log.Printf("done: %d imported, %d skipped in %s", imported, skipped, time.Since(start).Round(time.Millisecond))
}
