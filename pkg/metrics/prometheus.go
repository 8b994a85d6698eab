// Package metrics provides Prometheus metrics for the gpscanon service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the gpscanon service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ingestion metrics
	filesParsed        *prometheus.CounterVec
	parseDuration      *prometheus.HistogramVec
	rowsValidated      prometheus.Counter
	validationErrors   *prometheus.CounterVec
	validationWarnings *prometheus.CounterVec
	serviceRowsSkipped prometheus.Counter
	reportsIngested    *prometheus.CounterVec
	reportDataRows     prometheus.Counter

	// Conversion metrics
	conversionsPerformed *prometheus.CounterVec
	conversionErrors     prometheus.Counter

	// Profile metrics
	profilesSaved   *prometheus.CounterVec
	guardViolations prometheus.Counter
	duplicateKeys   prometheus.Counter

	// Reconciliation metrics
	playerMatches *prometheus.CounterVec

	// Recalc queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Recalc worker metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Repository metrics
	repositoryWriteLatency prometheus.Histogram
	repositoryQueryLatency prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorRateByComponent *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gpscanon",
		subsystem:        "ingest",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.filesParsed = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "files_parsed_total",
			Help:      "Total number of vendor files parsed by format and outcome",
		},
		[]string{"format", "outcome"},
	)

	m.parseDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "parse_duration_milliseconds",
			Help:      "Vendor file parse duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"format"},
	)

	m.rowsValidated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_validated_total",
		Help:      "Total number of data rows run through validation",
	})

	m.validationErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "validation_errors_total",
			Help:      "Total number of blocking validation errors by kind",
		},
		[]string{"kind"},
	)

	m.validationWarnings = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "validation_warnings_total",
			Help:      "Total number of non-blocking validation warnings by kind",
		},
		[]string{"kind"},
	)

	m.serviceRowsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "service_rows_skipped_total",
		Help:      "Total number of aggregate rows excluded from numeric validation",
	})

	m.reportsIngested = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "reports_ingested_total",
			Help:      "Total number of reports ingested by outcome",
		},
		[]string{"outcome"},
	)

	m.reportDataRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "report_data_rows_total",
		Help:      "Total number of per-player metric facts written",
	})

	m.conversionsPerformed = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "conversions_total",
			Help:      "Total number of unit conversions by dimension",
		},
		[]string{"dimension"},
	)

	m.conversionErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "conversion_errors_total",
		Help:      "Total number of rejected unit conversions",
	})

	m.profilesSaved = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "profiles_saved_total",
			Help:      "Total number of profile saves by outcome",
		},
		[]string{"outcome"},
	)

	m.guardViolations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profile_guard_violations_total",
		Help:      "Total number of rejected mutations of locked profiles",
	})

	m.duplicateKeys = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profile_duplicate_keys_total",
		Help:      "Total number of saves rejected for duplicate canonical keys",
	})

	m.playerMatches = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "player_matches_total",
			Help:      "Total number of player name match results by action and source",
		},
		[]string{"action", "source"},
	)

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recalc_queue_size",
		Help:      "Current size of the recalculation queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recalc_queue_capacity",
		Help:      "Maximum recalculation queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recalc_queue_utilization_ratio",
		Help:      "Recalculation queue utilization ratio (current size / capacity)",
	})

	m.queueEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recalc_enqueue_total",
		Help:      "Total number of recalculation jobs enqueued",
	})

	m.queueDequeued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recalc_dequeue_total",
		Help:      "Total number of recalculation jobs dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recalc_enqueue_errors_total",
		Help:      "Total number of recalculation jobs dropped at enqueue",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recalc_worker_count",
		Help:      "Configured number of recalculation workers",
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recalc_worker_active_count",
		Help:      "Number of recalculation workers currently processing a job",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recalc_worker_latency_milliseconds",
		Help:      "Recalculation job processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recalc_worker_errors_total",
		Help:      "Total number of recalculation job failures",
	})

	m.repositoryWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_write_latency_milliseconds",
		Help:      "Repository write operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.repositoryQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_query_latency_milliseconds",
		Help:      "Repository query operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordFileParsed increments the parsed-files counter for a format and outcome.
func RecordFileParsed(format, outcome string) {
	globalManager.filesParsed.WithLabelValues(format, outcome).Inc()
}

// RecordParseDuration records file parse duration in milliseconds.
func RecordParseDuration(format string, latencyMs float64) {
	globalManager.parseDuration.WithLabelValues(format).Observe(latencyMs)
}

// RecordRowsValidated adds to the validated-rows counter.
func RecordRowsValidated(count int) {
	globalManager.rowsValidated.Add(float64(count))
}

// RecordValidationError increments the blocking validation error counter.
func RecordValidationError(kind string) {
	globalManager.validationErrors.WithLabelValues(kind).Inc()
}

// RecordValidationWarning increments the non-blocking warning counter.
func RecordValidationWarning(kind string) {
	globalManager.validationWarnings.WithLabelValues(kind).Inc()
}

// RecordServiceRowSkipped increments the skipped service-row counter.
func RecordServiceRowSkipped() {
	globalManager.serviceRowsSkipped.Inc()
}

// RecordReportIngested increments the ingested-reports counter.
func RecordReportIngested(outcome string) {
	globalManager.reportsIngested.WithLabelValues(outcome).Inc()
}

// RecordReportDataRows adds to the written metric-fact counter.
func RecordReportDataRows(count int) {
	globalManager.reportDataRows.Add(float64(count))
}

// RecordConversion increments the conversion counter for a dimension.
func RecordConversion(dimension string) {
	globalManager.conversionsPerformed.WithLabelValues(dimension).Inc()
}

// RecordConversionError increments the rejected-conversion counter.
func RecordConversionError() {
	globalManager.conversionErrors.Inc()
}

// RecordProfileSaved increments the profile-save counter.
func RecordProfileSaved(outcome string) {
	globalManager.profilesSaved.WithLabelValues(outcome).Inc()
}

// RecordGuardViolation increments the guard-violation counter.
func RecordGuardViolation() {
	globalManager.guardViolations.Inc()
}

// RecordDuplicateKey increments the duplicate-canonical-key counter.
func RecordDuplicateKey() {
	globalManager.duplicateKeys.Inc()
}

// RecordPlayerMatch increments the player-match counter.
func RecordPlayerMatch(action, source string) {
	globalManager.playerMatches.WithLabelValues(action, source).Inc()
}

// UpdateQueueSize sets the current recalc queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum recalc queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the recalc queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the dropped-job counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured recalc worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy recalc workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records recalc job latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the recalc job failure counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordRepositoryWriteLatency records repository write latency.
func RecordRepositoryWriteLatency(latencyMs float64) {
	globalManager.repositoryWriteLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records repository query latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
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

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
