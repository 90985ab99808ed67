package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector 基于 Prometheus 的 Collector，首次使用时注册
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	reconcileTotal    *prometheus.CounterVec
	reconcileDuration prometheus.Histogram
	reconcileWrites   *prometheus.CounterVec
	reconcileRetries  prometheus.Counter
	lockWait          *prometheus.HistogramVec
	retentionPurged   prometheus.Counter
}

var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheus reg 为空时使用 prometheus.DefaultRegisterer，namespace 默认 dlpl
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "dlpl"
	}
	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.reconcileTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "reconcile",
			Name:      "runs_total",
			Help:      "Scope reconciliations by result (ok|noop|error).",
		}, []string{"result"})

		p.reconcileDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "reconcile",
			Name:      "duration_seconds",
			Help:      "Duration of one scope reconciliation including lock wait.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms .. ~2.5s
		})

		p.reconcileWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "reconcile",
			Name:      "rows_written_total",
			Help:      "Rows rewritten by reconciliation, by table.",
		}, []string{"table"})

		p.reconcileRetries = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "reconcile",
			Name:      "retries_total",
			Help:      "Whole-pass retries after a concurrency conflict.",
		})

		p.lockWait = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "scope_lock",
			Name:      "wait_seconds",
			Help:      "Time spent waiting for the scope lock.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"backend", "acquired"})

		p.retentionPurged = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "retention",
			Name:      "records_purged_total",
			Help:      "Soft-deleted records permanently removed by the retention job.",
		})

		p.reg.MustRegister(p.reconcileTotal)
		p.reg.MustRegister(p.reconcileDuration)
		p.reg.MustRegister(p.reconcileWrites)
		p.reg.MustRegister(p.reconcileRetries)
		p.reg.MustRegister(p.lockWait)
		p.reg.MustRegister(p.retentionPurged)
	})
}

func (p *PrometheusCollector) ObserveReconcile(result string, seconds float64) {
	p.ensureRegistered()
	p.reconcileTotal.WithLabelValues(result).Inc()
	p.reconcileDuration.Observe(seconds)
}

func (p *PrometheusCollector) AddReconcileWrites(assignments, records int) {
	p.ensureRegistered()
	p.reconcileWrites.WithLabelValues("assignments").Add(float64(assignments))
	p.reconcileWrites.WithLabelValues("production_records").Add(float64(records))
}

func (p *PrometheusCollector) IncReconcileRetry() {
	p.ensureRegistered()
	p.reconcileRetries.Inc()
}

func (p *PrometheusCollector) ObserveLockWait(backend string, seconds float64, acquired bool) {
	p.ensureRegistered()
	p.lockWait.WithLabelValues(backend, strconv.FormatBool(acquired)).Observe(seconds)
}

func (p *PrometheusCollector) AddRetentionPurged(n int) {
	p.ensureRegistered()
	p.retentionPurged.Add(float64(n))
}
