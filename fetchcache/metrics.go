package fetchcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paperless_client",
		Subsystem: "fetchcache",
		Name:      "fetches_total",
		Help:      "Fetches executed against the backend by outcome.",
	}, []string{"outcome"})

	dedupJoinedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "paperless_client",
		Subsystem: "fetchcache",
		Name:      "dedup_joined_total",
		Help:      "Callers that joined an already in-flight fetch for the same key.",
	})

	pollTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "paperless_client",
		Subsystem: "fetchcache",
		Name:      "poll_ticks_total",
		Help:      "Conditional-poll iterations executed by PollUntil.",
	})
)
