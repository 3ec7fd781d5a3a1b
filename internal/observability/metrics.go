package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yatube_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PageCacheRequests counts page cache lookups by result (hit, miss, error).
	PageCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_page_cache_requests_total",
		Help: "Page cache lookups by result",
	}, []string{"result"})

	// ImagesProcessed counts uploaded post images by outcome.
	ImagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_images_processed_total",
		Help: "Uploaded post images by outcome",
	}, []string{"outcome"})

	// ImageProcessingLatency records time spent decoding, resizing and storing an upload.
	ImageProcessingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "yatube_image_processing_seconds",
		Help:    "Time spent processing an uploaded post image",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
