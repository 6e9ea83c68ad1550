package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PipelineMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_messages_total",
			Help: "Total number of messages processed by the translation pipeline (count)",
		},
		[]string{"status"},
	)

	TranslationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "translation_duration_ms",
			Help:    "Engine translation duration in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"engine", "status"},
	)

	CacheOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translation_cache_operations_total",
			Help: "Total number of translation cache operations (count)",
		},
		[]string{"backend", "result"},
	)

	CacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "translation_cache_size",
			Help: "Number of entries held by the translation cache (count)",
		},
	)

	PendingQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_pending_queue_depth",
			Help: "Number of translation requests waiting for a worker (count)",
		},
	)

	ReassemblyBufferSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_reassembly_buffer_size",
			Help: "Number of out-of-order results buffered by the sequencer (count)",
		},
	)

	InFlightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_inflight_requests",
			Help: "Number of translation requests currently dispatched to workers (count)",
		},
	)

	SequencerStallsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_sequencer_stalls_total",
			Help: "Total number of head-of-line results force-resolved after the stall deadline (count)",
		},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_retry_attempts_total",
			Help: "Total number of engine call retry attempts (count)",
		},
		[]string{"engine"},
	)

	EngineErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_errors_total",
			Help: "Total number of engine errors by kind (count)",
		},
		[]string{"engine", "kind"},
	)

	FeedMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_messages_total",
			Help: "Total number of raw chat events received from the feed (count)",
		},
		[]string{"source"},
	)

	SinkEmitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sink_emits_total",
			Help: "Total number of results handed to the display sink (count)",
		},
		[]string{"sink", "status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failed requests through circuit breaker (count)",
		},
		[]string{"name"},
	)
)

func RegisterPipelineMetrics() {
	prometheus.MustRegister(
		PipelineMessagesTotal,
		PendingQueueDepth,
		ReassemblyBufferSize,
		InFlightRequests,
		SequencerStallsTotal,
	)
}

func RegisterEngineMetrics() {
	prometheus.MustRegister(
		TranslationDuration,
		RetryAttemptsTotal,
		EngineErrorsTotal,
	)
}

func RegisterCacheMetrics() {
	prometheus.MustRegister(
		CacheOperationsTotal,
		CacheSize,
	)
}

func RegisterTransportMetrics() {
	prometheus.MustRegister(
		FeedMessagesTotal,
		SinkEmitsTotal,
	)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerFailures,
	)
}
