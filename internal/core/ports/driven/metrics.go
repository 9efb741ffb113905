package driven

import "time"

// MetricsRecorder receives pipeline events for instrumentation.
// Services accept a nil recorder and skip recording.
type MetricsRecorder interface {
	CacheHit()
	CacheMiss()
	CacheStale()
	RecommendationServed(elapsed time.Duration)
	Ingested()
	IndexRebuilt(entries int)
	IndexRebuildFailed()
}
