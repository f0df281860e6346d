package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lazythumb_resolutions_total",
			Help: "On-demand variant resolutions by outcome",
		},
		[]string{"outcome"},
	)

	resizeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lazythumb_resize_duration_seconds",
			Help:    "Wall time of on-demand resize operations",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	precomputedSizes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lazythumb_precomputed_sizes_total",
			Help: "Size metadata entries recorded at upload time",
		},
	)
)
