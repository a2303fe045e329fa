package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric names understood by PrometheusMetrics
const (
	MetricStoreOperation     = "store.operation"
	MetricStoreLoad          = "store.load"
	MetricStoreSave          = "store.save"
	MetricTransactionAdded   = "transaction.added"
	MetricEntrySkipped       = "store.entry.skipped"
	MetricStoredTransactions = "store.transactions"
	MetricBalance            = "balance"
	MetricHTTPError          = "http.error"
)

// PrometheusMetrics records service metrics into its own registry so the CLI
// and the report server can expose or export them without global state
type PrometheusMetrics struct {
	registry           *prometheus.Registry
	storeOperations    *prometheus.CounterVec
	storeDuration      *prometheus.HistogramVec
	transactionsAdded  *prometheus.CounterVec
	skippedEntries     prometheus.Counter
	storedTransactions prometheus.Gauge
	balance            prometheus.Gauge
	httpErrors         *prometheus.CounterVec
}

func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &PrometheusMetrics{
		registry: registry,
		storeOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_store_operations_total",
				Help: "Total number of store loads and saves",
			},
			[]string{"operation", "backend", "status"},
		),
		storeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "budget_store_operation_duration_milliseconds",
				Help:    "Store operation duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"operation"},
		),
		transactionsAdded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_transactions_added_total",
				Help: "Total number of transactions appended to the store",
			},
			[]string{"type"},
		),
		skippedEntries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "budget_store_skipped_entries_total",
				Help: "Total number of malformed entries skipped during lenient loads",
			},
		),
		storedTransactions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "budget_stored_transactions",
				Help: "Number of transactions in the store after the last operation",
			},
		),
		balance: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "budget_balance",
				Help: "Last computed balance",
			},
		),
		httpErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_http_errors_total",
				Help: "Total number of report server error responses by code",
			},
			[]string{"code", "status"},
		),
	}
}

// Registry exposes the registry for the /metrics handler
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile exports the current metrics in the node exporter textfile format
func (m *PrometheusMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	switch name {
	case MetricStoreOperation:
		m.storeOperations.WithLabelValues(tags["operation"], tags["backend"], tags["status"]).Inc()
	case MetricTransactionAdded:
		if typ := tags["type"]; typ != "" {
			m.transactionsAdded.WithLabelValues(typ).Inc()
		}
	case MetricEntrySkipped:
		m.skippedEntries.Inc()
	case MetricHTTPError:
		m.httpErrors.WithLabelValues(tags["code"], tags["status"]).Inc()
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case MetricStoreLoad:
		m.storeDuration.WithLabelValues("load").Observe(float64(duration.Milliseconds()))
	case MetricStoreSave:
		m.storeDuration.WithLabelValues("save").Observe(float64(duration.Milliseconds()))
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case MetricStoredTransactions:
		m.storedTransactions.Set(value)
	case MetricBalance:
		m.balance.Set(value)
	}
}
