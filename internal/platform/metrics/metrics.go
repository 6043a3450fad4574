package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the compliance workflow. All observer
// methods are nil-safe so wiring without metrics stays possible in tests.
type Metrics struct {
	// Order and document transitions by entity, from-status and to-status.
	Transitions *prometheus.CounterVec

	// Compliance gate evaluations by verdict.
	GateChecks *prometheus.CounterVec

	// Rejected operations by error code.
	OperationErrors *prometheus.CounterVec

	// Anchor call outcomes by kind and result.
	AnchorOutcomes *prometheus.CounterVec

	// Anchor provider round-trip latency.
	AnchorLatency prometheus.Histogram

	// Audit entries appended, by action.
	AuditEntries *prometheus.CounterVec

	// HTTP request latency by route.
	RequestLatency *prometheus.HistogramVec
}

// New registers all workflow metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmaops_workflow_transitions_total",
			Help: "State machine transitions by entity and statuses",
		}, []string{"entity", "from", "to"}),

		GateChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmaops_compliance_gate_checks_total",
			Help: "Compliance gate evaluations by verdict",
		}, []string{"verdict"}),

		OperationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmaops_operation_errors_total",
			Help: "Rejected workflow operations by error code",
		}, []string{"code"}),

		AnchorOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmaops_anchor_outcomes_total",
			Help: "Provenance anchor attempts by kind and outcome",
		}, []string{"kind", "outcome"}),

		AnchorLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pharmaops_anchor_duration_seconds",
			Help:    "Duration of provenance anchor provider calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		AuditEntries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmaops_audit_entries_total",
			Help: "Audit trail entries appended by action",
		}, []string{"action"}),

		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pharmaops_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method"}),
	}
}

// ObserveTransition records a state machine transition.
func (m *Metrics) ObserveTransition(entity, from, to string) {
	if m != nil {
		m.Transitions.WithLabelValues(entity, from, to).Inc()
	}
}

// ObserveGateCheck records a compliance gate verdict.
func (m *Metrics) ObserveGateCheck(compliant bool) {
	if m != nil {
		verdict := "compliant"
		if !compliant {
			verdict = "non_compliant"
		}
		m.GateChecks.WithLabelValues(verdict).Inc()
	}
}

// ObserveOperationError records a rejected operation.
func (m *Metrics) ObserveOperationError(code string) {
	if m != nil {
		m.OperationErrors.WithLabelValues(code).Inc()
	}
}

// ObserveAnchor records an anchor attempt outcome and latency.
func (m *Metrics) ObserveAnchor(kind, outcome string, d time.Duration) {
	if m != nil {
		m.AnchorOutcomes.WithLabelValues(kind, outcome).Inc()
		m.AnchorLatency.Observe(d.Seconds())
	}
}

// ObserveAuditEntry records an appended audit entry.
func (m *Metrics) ObserveAuditEntry(action string) {
	if m != nil {
		m.AuditEntries.WithLabelValues(action).Inc()
	}
}

// ObserveRequest records HTTP latency for a route.
func (m *Metrics) ObserveRequest(route, method string, d time.Duration) {
	if m != nil {
		m.RequestLatency.WithLabelValues(route, method).Observe(d.Seconds())
	}
}
