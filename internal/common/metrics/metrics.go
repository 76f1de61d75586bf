// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ModelProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_provider_calls_total",
			Help: "Total number of vision model provider calls",
		},
		[]string{"provider", "status"},
	)

	ImageLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_lookups_total",
			Help: "Total number of garment image lookups by outcome",
		},
		[]string{"provider", "status"},
	)

	AnalyzeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "analyze_duration_seconds",
			Help: "Duration of full outfit analysis requests in seconds",
		},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_cache_requests_total",
			Help: "Image lookup cache requests by result",
		},
		[]string{"result"},
	)
)
