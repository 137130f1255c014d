package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// IngestInput is the input for the track ingest workflow. The raw GPX is
// already in the object store; BlobKey points at it.
type IngestInput struct {
	TrackID string
	BlobKey string
	Source  string
}

// IngestResult summarizes what the workflow produced.
type IngestResult struct {
	TrackID     string
	TotalPoints uint32
	DistanceKm  float64
}

// IngestWorkflow orchestrates asynchronous ingestion of an uploaded
// recording: fetch the blob, extract the track, persist it, announce it.
// If persistence fails after the blob was stored, the blob is deleted
// (saga compensation) so storage does not accumulate orphans.
func IngestWorkflow(ctx workflow.Context, input IngestInput) (*IngestResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting ingest workflow", "trackID", input.TrackID, "source", input.Source)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 60 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Fetch the raw recording
	var raw []byte
	if err := workflow.ExecuteActivity(ctx, "FetchBlob", input.BlobKey).Get(ctx, &raw); err != nil {
		return nil, err
	}

	// Step 2: Parse + extract. Extraction errors (empty file) are not
	// retryable; the activity marks them as such.
	var result IngestResult
	if err := workflow.ExecuteActivity(ctx, "ExtractAndPersist", input.TrackID, raw).Get(ctx, &result); err != nil {
		logger.Warn("extraction failed, compensating", "error", err)
		// Compensate: remove the stored blob
		_ = workflow.ExecuteActivity(ctx, "DeleteBlob", input.BlobKey).Get(ctx, nil)
		return nil, err
	}

	// Step 3: Announce the new track. Best-effort: a broker outage must not
	// roll back a successfully persisted track.
	if err := workflow.ExecuteActivity(ctx, "AnnounceTrack", input.TrackID).Get(ctx, nil); err != nil {
		logger.Warn("track announcement failed", "trackID", input.TrackID, "error", err)
	}

	logger.Info("Ingest complete", "trackID", result.TrackID, "points", result.TotalPoints)
	return &result, nil
}
