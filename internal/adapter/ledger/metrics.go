package ledger

import (
	"time"

	"diamond-custody-gateway/pkg/apperror"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records gateway traffic. A nil *Metrics records nothing.
type Metrics struct {
	calls     *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	submitted prometheus.Counter
	reverted  prometheus.Counter
}

// NewMetrics registers the gateway collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_rpc_calls_total",
			Help: "Ledger node calls by operation and result code.",
		}, []string{"op", "result"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_rpc_duration_seconds",
			Help:    "Ledger node call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		submitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_transactions_submitted_total",
			Help: "Signed envelopes accepted by the node.",
		}),
		reverted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_transactions_reverted_total",
			Help: "Mined transactions with a failed receipt.",
		}),
	}
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		if result = apperror.CodeOf(err); result == "" {
			result = "error"
		}
	}
	m.calls.WithLabelValues(op, result).Inc()
	m.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) incSubmitted() {
	if m != nil {
		m.submitted.Inc()
	}
}

func (m *Metrics) incReverted() {
	if m != nil {
		m.reverted.Inc()
	}
}
