// Package metrics provides Prometheus metrics for the match clock service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Clock engine
	ticks            *prometheus.CounterVec
	tickLatency      prometheus.Histogram
	modeSwitches     *prometheus.CounterVec
	rejectedCommands *prometheus.CounterVec
	alarmsTriggered  prometheus.Counter
	timersFinished   prometheus.Counter

	// Match
	matchMinutes     prometheus.Counter
	halfTimes        prometheus.Counter
	goals            *prometheus.CounterVec
	cards            *prometheus.CounterVec
	matchesFinalized prometheus.Counter
	duplicateEvents  prometheus.Counter

	// Persistence pipeline
	persistJobs       *prometheus.CounterVec
	persistLatency    prometheus.Histogram
	persistRetries    prometheus.Counter
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueUtilization  prometheus.Gauge
	queueEnqueued     prometheus.Counter
	queueDequeued     prometheus.Counter
	queueEnqueueError prometheus.Counter
	workerCount       prometheus.Gauge
	workerActive      prometheus.Gauge

	// Repository
	repositoryQueryLatency  prometheus.Histogram
	repositoryUpdateLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "matchclock",
		subsystem:        "clock",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// RefreshInterval is how often gauges fed by pollers should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.customLabels,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.ticks = m.counterVec("ticks_total", "Ticks applied to the engine by mode", "mode")
	m.tickLatency = m.histogram("tick_latency_milliseconds", "Time spent applying one tick, listeners included",
		[]float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50})
	m.modeSwitches = m.counterVec("mode_switches_total", "Mode changes by target mode", "mode")
	m.rejectedCommands = m.counterVec("rejected_commands_total", "Commands refused by the engine by status", "status")
	m.alarmsTriggered = m.counter("alarms_triggered_total", "Alarms that fired")
	m.timersFinished = m.counter("timers_finished_total", "Countdowns that reached zero")

	m.matchMinutes = m.counter("match_minutes_total", "Match minute boundaries crossed")
	m.halfTimes = m.counter("half_times_total", "Half-time whistles")
	m.goals = m.counterVec("goals_total", "Goals recorded by side", "side")
	m.cards = m.counterVec("cards_total", "Cards issued by kind", "kind")
	m.matchesFinalized = m.counter("matches_finalized_total", "Matches finalized in the record store")
	m.duplicateEvents = m.counter("duplicate_events_total", "Goal or card requests dropped as duplicates")

	m.persistJobs = m.counterVec("persist_jobs_total", "Persistence jobs by kind and result", "kind", "result")
	m.persistLatency = m.histogram("persist_latency_milliseconds", "Latency of one persistence attempt", m.histogramBuckets)
	m.persistRetries = m.counter("persist_retries_total", "Persistence retries")
	m.queueSize = m.gauge("queue_size", "Pending persistence jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Persistence queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Persistence queue size / capacity")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Jobs dequeued")
	m.queueEnqueueError = m.counter("queue_enqueue_errors_total", "Jobs rejected by a full or closed queue")
	m.workerCount = m.gauge("worker_count", "Configured persistence workers")
	m.workerActive = m.gauge("worker_active_count", "Persistence workers currently running")

	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds", "Record store read latency", m.histogramBuckets)
	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds", "Record store write latency", m.histogramBuckets)

	m.httpRequests = promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status", ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "http_request_duration_milliseconds",
		Help: "HTTP request duration in milliseconds", Buckets: m.histogramBuckets, ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordTick counts one applied tick and its cost.
func RecordTick(mode string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.ticks.WithLabelValues(mode).Inc()
	globalManager.tickLatency.Observe(latencyMs)
}

func RecordModeSwitch(mode string) { globalManager.modeSwitches.WithLabelValues(mode).Inc() }

func RecordRejectedCommand(status string) {
	globalManager.rejectedCommands.WithLabelValues(status).Inc()
}

func RecordAlarmTriggered() { globalManager.alarmsTriggered.Inc() }
func RecordTimerFinished()  { globalManager.timersFinished.Inc() }
func RecordMatchMinute()    { globalManager.matchMinutes.Inc() }
func RecordHalfTime()       { globalManager.halfTimes.Inc() }

func RecordGoal(side string) { globalManager.goals.WithLabelValues(side).Inc() }
func RecordCard(kind string) { globalManager.cards.WithLabelValues(kind).Inc() }

func RecordMatchFinalized()    { globalManager.matchesFinalized.Inc() }
func RecordDuplicateEvent()    { globalManager.duplicateEvents.Inc() }
func RecordPersistRetry()      { globalManager.persistRetries.Inc() }
func RecordQueueEnqueue()      { globalManager.queueEnqueued.Inc() }
func RecordQueueDequeue()      { globalManager.queueDequeued.Inc() }
func RecordQueueEnqueueError() { globalManager.queueEnqueueError.Inc() }

// RecordPersistJob counts a finished persistence job. result is "ok" or "failed".
func RecordPersistJob(kind, result string) {
	globalManager.persistJobs.WithLabelValues(kind, result).Inc()
}

func RecordPersistLatency(latencyMs float64) { globalManager.persistLatency.Observe(latencyMs) }

func UpdateQueueSize(size int)             { globalManager.queueSize.Set(float64(size)) }
func UpdateQueueCapacity(capacity int)     { globalManager.queueCapacity.Set(float64(capacity)) }
func UpdateQueueUtilization(ratio float64) { globalManager.queueUtilization.Set(ratio) }
func UpdateWorkerCount(count int)          { globalManager.workerCount.Set(float64(count)) }
func UpdateWorkerActiveCount(count int)    { globalManager.workerActive.Set(float64(count)) }

func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

func UpdateSystemMemoryUsage(bytes uint64)    { globalManager.systemMemoryUsage.Set(float64(bytes)) }
func UpdateSystemGoroutineCount(count int)    { globalManager.systemGoroutineCount.Set(float64(count)) }
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
