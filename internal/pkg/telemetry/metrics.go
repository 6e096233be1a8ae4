package telemetry

// Span names used for instrumentation.
const (
	SpanUpstreamFetch = "tracker.upstream_fetch"
	SpanTrackerPoll   = "tracker.poll"
	SpanViewerHistory = "viewer.load_history"
	SpanViewerPoll    = "viewer.poll"
	SpanAPIRequest    = "trackerapi.request"
)
