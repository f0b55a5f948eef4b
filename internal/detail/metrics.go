package detail

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reviewSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_submissions_total",
			Help: "Review submissions by result (invalid, accepted, rejected)",
		},
		[]string{"result"},
	)

	staleResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "detail_stale_results_total",
			Help: "Fetch results discarded because the view moved on",
		},
		[]string{"kind"},
	)

	openViews = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "detail_views_open",
			Help: "Detail views currently held in the registry",
		},
	)
)
