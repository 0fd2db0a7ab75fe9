package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quire",
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"mode", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "quire",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration including engine dispatch",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	SearchCandidatesBlended = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "quire",
			Name:      "search_candidates_blended",
			Help:      "Candidate pool size after blending, before pagination",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"mode"},
	)
)

// RegisterSearchMetrics registers the search metrics explicitly (no init()).
func RegisterSearchMetrics() {
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchCandidatesBlended)
}
