package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		workflowOutcomesTotal,
		sessionsEvictedTotal,
	)
}

var (
	workflowOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "splitleh_workflow_outcomes_total",
			Help: "Completed bot workflows by name and outcome.",
		},
		[]string{"workflow", "outcome"},
	)

	sessionsEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "splitleh_sessions_evicted_total",
			Help: "Expired pending member-addition requests removed by the sweeper.",
		},
	)
)

// IncWorkflow counts one workflow outcome, e.g. ("registration", "created").
func IncWorkflow(workflow, outcome string) {
	workflowOutcomesTotal.WithLabelValues(workflow, outcome).Inc()
}

// AddSessionsEvicted counts sessions dropped by the sweeper.
func AddSessionsEvicted(n int) {
	if n > 0 {
		sessionsEvictedTotal.Add(float64(n))
	}
}
