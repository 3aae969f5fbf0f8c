package farm

import "github.com/prometheus/client_golang/prometheus"

var (
	plantsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_plants_total",
			Help: "Total crops planted",
		},
		[]string{"crop"},
	)
	harvestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_harvests_total",
			Help: "Total crops harvested",
		},
		[]string{"crop"},
	)
	persistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "farm_snapshot_write_failures_total",
			Help: "Snapshot writes that failed and were left to the next write to reconcile",
		},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "farm_active_sessions",
			Help: "Engines currently resident in memory",
		},
	)
)

func init() {
	prometheus.MustRegister(plantsTotal)
	prometheus.MustRegister(harvestsTotal)
	prometheus.MustRegister(persistFailures)
	prometheus.MustRegister(activeSessions)
}
