package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PickOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "survivor_pick_operations_total", Help: "Pick lifecycle operations by kind and outcome"},
		[]string{"operation", "outcome"},
	)
	AutoAssignedPicks = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "survivor_auto_assigned_picks_total", Help: "Picks created by auto-assignment"},
	)
	Eliminations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "survivor_eliminations_total", Help: "Users eliminated, labelled by trigger"},
		[]string{"trigger"},
	)
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "survivor_notifications_total", Help: "Notification sends by kind and outcome"},
		[]string{"kind", "outcome"},
	)
	SweepRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "survivor_sweep_runs_total", Help: "Sweep passes by sweep and status"},
		[]string{"sweep", "status"},
	)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "survivor_cache_lookups_total", Help: "Read-through cache lookups by namespace and result"},
		[]string{"namespace", "result"},
	)
)

var registerOnce sync.Once

// Register adds the collectors to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			PickOperations,
			AutoAssignedPicks,
			Eliminations,
			Notifications,
			SweepRuns,
			CacheLookups,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
