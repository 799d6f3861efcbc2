package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ContestMetrics tracks committed contest transitions and rejected calls.
type ContestMetrics struct {
	launches    prometheus.Counter
	submissions prometheus.Counter
	votes       prometheus.Counter
	claims      *prometheus.CounterVec
	paidOut     *prometheus.CounterVec
	transfers   *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

var (
	contestOnce     sync.Once
	contestRegistry *ContestMetrics
)

// Contest returns the process-wide contest metrics, registering them with the
// default Prometheus registry on first use.
func Contest() *ContestMetrics {
	contestOnce.Do(func() {
		contestRegistry = NewContestMetrics(prometheus.DefaultRegisterer)
	})
	return contestRegistry
}

// NewContestMetrics builds and registers a fresh set of collectors.
func NewContestMetrics(reg prometheus.Registerer) *ContestMetrics {
	m := &ContestMetrics{
		launches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "contest",
			Name:      "launched_total",
			Help:      "Count of contests launched.",
		}),
		submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "contest",
			Name:      "artworks_submitted_total",
			Help:      "Count of artworks submitted across all contests.",
		}),
		votes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "contest",
			Name:      "votes_cast_total",
			Help:      "Count of ballots recorded across all contests.",
		}),
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contest",
			Name:      "claims_total",
			Help:      "Count of settled claims by role.",
		}, []string{"role"}),
		paidOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contest",
			Name:      "paid_out_units_total",
			Help:      "Base units released from vaults by role and asset.",
		}, []string{"role", "asset"}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contest",
			Subsystem: "ledger",
			Name:      "transfers_total",
			Help:      "Count of committed ledger transfers by asset.",
		}, []string{"asset"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contest",
			Name:      "rejected_total",
			Help:      "Count of operations rolled back, by operation and error kind.",
		}, []string{"operation", "kind"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "contest",
			Name:      "operation_duration_seconds",
			Help:      "Latency of executor operations including commit.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.launches,
			m.submissions,
			m.votes,
			m.claims,
			m.paidOut,
			m.transfers,
			m.rejected,
			m.latency,
		)
	}
	return m
}

func (m *ContestMetrics) IncLaunched() {
	if m == nil {
		return
	}
	m.launches.Inc()
}

func (m *ContestMetrics) IncSubmitted() {
	if m == nil {
		return
	}
	m.submissions.Inc()
}

func (m *ContestMetrics) IncVoted() {
	if m == nil {
		return
	}
	m.votes.Inc()
}

// RecordClaim counts a settled claim and the units it released.
func (m *ContestMetrics) RecordClaim(role, asset string, amount uint64) {
	if m == nil {
		return
	}
	role = labelOr(role, "unknown")
	m.claims.WithLabelValues(role).Inc()
	m.paidOut.WithLabelValues(role, labelOr(strings.ToUpper(asset), "unknown")).Add(float64(amount))
}

// RecordTransfer increments the transfer counter for the supplied asset.
func (m *ContestMetrics) RecordTransfer(asset string) {
	if m == nil {
		return
	}
	m.transfers.WithLabelValues(labelOr(strings.ToUpper(asset), "unknown")).Inc()
}

// ObserveRejected counts an operation whose writes were discarded.
func (m *ContestMetrics) ObserveRejected(operation, kind string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(labelOr(operation, "unknown"), labelOr(kind, "internal")).Inc()
}

// RejectedCounter returns the rejected_total series for operation and kind.
func (m *ContestMetrics) RejectedCounter(operation, kind string) prometheus.Counter {
	return m.rejected.WithLabelValues(labelOr(operation, "unknown"), labelOr(kind, "internal"))
}

// ObserveLatency records how long an operation held the executor.
func (m *ContestMetrics) ObserveLatency(operation string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(labelOr(operation, "unknown")).Observe(elapsed.Seconds())
}

func labelOr(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
