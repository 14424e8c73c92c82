package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the intake pipeline. A nil *Metrics is
// valid and records nothing, so tests can wire adapters without a registry.
type Metrics struct {
	SubmitsTotal      *prometheus.CounterVec
	SubmitDuration    prometheus.Histogram
	AdapterFallbacks  *prometheus.CounterVec
	LLMCallsTotal     *prometheus.CounterVec
	LLMDuration       prometheus.Histogram
	DuplicatesFound   prometheus.Counter
	HotspotErrors     prometheus.Counter
	ComplaintPriority *prometheus.CounterVec
}

// NewMetrics registers and returns pipeline metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SubmitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "civicsense_submits_total",
			Help: "Total complaint submissions by result.",
		}, []string{"result"}),
		SubmitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "civicsense_submit_duration_seconds",
			Help:    "Duration of complaint submissions end to end.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		}),
		AdapterFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "civicsense_adapter_fallbacks_total",
			Help: "Times an AI adapter used its local fallback, by adapter.",
		}, []string{"adapter"}),
		LLMCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "civicsense_llm_calls_total",
			Help: "Total LLM provider calls by outcome.",
		}, []string{"outcome"}),
		LLMDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "civicsense_llm_call_duration_seconds",
			Help:    "Duration of individual LLM calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 0.25s .. ~32s
		}),
		DuplicatesFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "civicsense_duplicates_found_total",
			Help: "Submissions linked to an existing duplicate group.",
		}),
		HotspotErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "civicsense_hotspot_update_errors_total",
			Help: "Hotspot counter updates that failed (best-effort path).",
		}),
		ComplaintPriority: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "civicsense_complaints_total",
			Help: "Persisted complaints by category and priority.",
		}, []string{"category", "priority"}),
	}

	reg.MustRegister(
		m.SubmitsTotal,
		m.SubmitDuration,
		m.AdapterFallbacks,
		m.LLMCallsTotal,
		m.LLMDuration,
		m.DuplicatesFound,
		m.HotspotErrors,
		m.ComplaintPriority,
	)

	return m
}

func (m *Metrics) incSubmit(result string) {
	if m == nil {
		return
	}
	m.SubmitsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) observeSubmit(seconds float64) {
	if m == nil {
		return
	}
	m.SubmitDuration.Observe(seconds)
}

func (m *Metrics) incFallback(adapter string) {
	if m == nil {
		return
	}
	m.AdapterFallbacks.WithLabelValues(adapter).Inc()
}

func (m *Metrics) incDuplicateFound() {
	if m == nil {
		return
	}
	m.DuplicatesFound.Inc()
}

func (m *Metrics) incHotspotError() {
	if m == nil {
		return
	}
	m.HotspotErrors.Inc()
}

func (m *Metrics) incComplaint(category Category, priority Priority) {
	if m == nil {
		return
	}
	m.ComplaintPriority.WithLabelValues(string(category), string(priority)).Inc()
}

// ObserveLLMCall is the hook the LLM client uses to record call metrics.
func (m *Metrics) ObserveLLMCall(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.LLMCallsTotal.WithLabelValues(outcome).Inc()
	m.LLMDuration.Observe(seconds)
}
