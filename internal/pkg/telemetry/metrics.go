package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Pipeline freshness
	MetricIngestLatency = "tracks.ingest_latency"
	MetricBlobAge       = "storage.blob_age_seconds"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricSegmentsPublished = "business.segments_published"
	MetricRoutesComposed    = "business.routes_composed"
)
