package metrics

import (
	"context"
	"errors"
	"strconv"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors fed by the engine lifecycle hooks and the HTTP layer.
type Metrics struct {
	Explorations        *prometheus.CounterVec
	NodesMaterialized   prometheus.Counter
	BranchesPruned      *prometheus.CounterVec
	OutcomesResolved    *prometheus.CounterVec
	SourceErrors        prometheus.Counter
	ExplorationDuration prometheus.Histogram
	Requests            *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Explorations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_explorations_total",
			Help: "Total number of tree explorations, labelled by result.",
		}, []string{"result"}),

		NodesMaterialized: f.NewCounter(prometheus.CounterOpts{
			Name: "arbor_nodes_materialized_total",
			Help: "Total number of tree nodes built across all explorations.",
		}),

		BranchesPruned: f.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_branches_pruned_total",
			Help: "Total number of branches dropped during exploration, labelled by reason.",
		}, []string{"reason"}),

		OutcomesResolved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_outcomes_resolved_total",
			Help: "Total number of check outcomes resolved, labelled by type.",
		}, []string{"type"}),

		SourceErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "arbor_source_errors_total",
			Help: "Total number of explorations aborted by a dataset failure.",
		}),

		ExplorationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "arbor_exploration_duration_seconds",
			Help:    "Wall time of one tree exploration.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),

		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_http_requests_total",
			Help: "Total number of API requests, labelled by route and status code.",
		}, []string{"route", "status"}),
	}
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnExplore: func(_ context.Context, e *domain.ExploreEvent) {
			result := "ok"
			switch {
			case errors.Is(e.Err, context.Canceled), errors.Is(e.Err, context.DeadlineExceeded):
				result = "canceled"
			case e.Err != nil:
				result = "error"
				m.SourceErrors.Inc()
			}
			m.Explorations.WithLabelValues(result).Inc()
			m.ExplorationDuration.Observe(e.Duration.Seconds())
		},
		OnVisit: func(context.Context, *domain.VisitEvent) {
			m.NodesMaterialized.Inc()
		},
		OnPrune: func(_ context.Context, e *domain.PruneEvent) {
			m.BranchesPruned.WithLabelValues(string(e.Reason)).Inc()
		},
		OnOutcome: func(_ context.Context, e *domain.OutcomeEvent) {
			m.OutcomesResolved.WithLabelValues(string(e.Outcome.OutcomeType)).Inc()
		},
	}
}

// ObserveRequest counts one API request.
func (m *Metrics) ObserveRequest(route string, status int) {
	m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
