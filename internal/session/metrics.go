package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_transitions_total",
			Help: "Total number of settled session state transitions",
		},
		[]string{"state"},
	)

	exchangeFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_exchange_failures_total",
			Help: "Total number of failed session cookie exchanges",
		},
	)

	profileFetchFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_profile_fetch_failures_total",
			Help: "Total number of swallowed profile fetch failures",
		},
	)

	staleResolutionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_stale_resolutions_total",
			Help: "Total number of resolutions discarded because a newer auth event superseded them",
		},
	)
)
