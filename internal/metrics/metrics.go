package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Workflow counters exposed on /metrics.
var (
	DocumentsRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "woms",
		Name:      "documents_rendered_total",
		Help:      "Number of PDF documents rendered, by kind.",
	}, []string{"kind"})

	WorkflowTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "woms",
		Name:      "workflow_transitions_total",
		Help:      "Number of workflow state transitions, by entity and outcome.",
	}, []string{"entity", "transition"})

	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "woms",
		Name:      "notification_failures_total",
		Help:      "Number of best-effort notification writes that failed.",
	})
)
