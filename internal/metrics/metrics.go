// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ControlConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pairpad_control_connections",
		Help: "Live control-channel connections.",
	})

	DocSyncConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pairpad_docsync_connections",
		Help: "Live document-sync sub-connections.",
	})

	Admissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pairpad_admissions_total",
		Help: "Admission transitions by outcome.",
	}, []string{"outcome"})

	RosterBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pairpad_roster_broadcasts_total",
		Help: "room_users fanouts performed.",
	})

	RunEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pairpad_run_events_total",
		Help: "Run-sync events relayed by type.",
	}, []string{"type"})

	RejectedUpgrades = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pairpad_rejected_upgrades_total",
		Help: "Upgrade requests matching no transport route.",
	})
)

// Handler exposes the default prometheus registry.
func Handler() http.Handler { return promhttp.Handler() }
