package metrics

import (
	"net/http"
	"strconv"
	"time"

	"smartkitchen/internal/alerts"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Alert kinds reported on the inventory_alerts gauge
const (
	KindLowStock = "low_stock"
	KindBad      = "bad"
	KindRotten   = "rotten"
	KindUrgent   = "urgent"
)

// MetricsCollector handles metrics collection and reporting
type MetricsCollector struct {
	registry *prometheus.Registry
	metrics  map[string]prometheus.Collector
}

// NewMetricsCollector creates a new metrics collector on a private registry
func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	backendLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Latency of requests to the restaurant backend",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"path", "status"},
	)

	alertGauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inventory_alerts",
			Help: "Inventory items currently raising an alert",
		},
		[]string{"kind"},
	)

	itemsGauge := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "inventory_items",
			Help: "Inventory items in the current snapshot",
		},
	)

	refreshCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_refresh_total",
			Help: "Snapshot refresh attempts by source and result",
		},
		[]string{"source", "result"},
	)

	staleGauge := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_stale",
			Help: "1 when the served snapshot is older than the last refresh attempt",
		},
	)

	orderCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Orders placed through the dashboard",
		},
		[]string{"status"},
	)

	metrics := map[string]prometheus.Collector{
		"backend_latency": backendLatency,
		"alerts":          alertGauge,
		"items":           itemsGauge,
		"refresh":         refreshCounter,
		"stale":           staleGauge,
		"orders":          orderCounter,
	}

	for _, metric := range metrics {
		registry.MustRegister(metric)
	}

	return &MetricsCollector{
		registry: registry,
		metrics:  metrics,
	}
}

// Registry returns the collector's registry
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// Handler serves the registry in the Prometheus exposition format
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{})
}

// ObserveBackend records a backend round trip. Its signature matches client.Observer.
func (mc *MetricsCollector) ObserveBackend(path string, status int, elapsed time.Duration) {
	if histogram, ok := mc.metrics["backend_latency"].(*prometheus.HistogramVec); ok {
		label := "error"
		if status > 0 {
			label = strconv.Itoa(status)
		}
		histogram.WithLabelValues(path, label).Observe(elapsed.Seconds())
	}
}

// RecordAlerts publishes the alert counts of the current snapshot
func (mc *MetricsCollector) RecordAlerts(report alerts.Report, urgent, total int) {
	if gauge, ok := mc.metrics["alerts"].(*prometheus.GaugeVec); ok {
		gauge.WithLabelValues(KindLowStock).Set(float64(len(report.LowStock)))
		gauge.WithLabelValues(KindBad).Set(float64(len(report.Bad)))
		gauge.WithLabelValues(KindRotten).Set(float64(len(report.Rotten)))
		gauge.WithLabelValues(KindUrgent).Set(float64(urgent))
	}
	if gauge, ok := mc.metrics["items"].(prometheus.Gauge); ok {
		gauge.Set(float64(total))
	}
}

// RecordRefresh counts a refresh attempt for a source
func (mc *MetricsCollector) RecordRefresh(source string, err error) {
	if counter, ok := mc.metrics["refresh"].(*prometheus.CounterVec); ok {
		result := "ok"
		if err != nil {
			result = "error"
		}
		counter.WithLabelValues(source, result).Inc()
	}
}

// RecordStale sets the stale flag
func (mc *MetricsCollector) RecordStale(stale bool) {
	if gauge, ok := mc.metrics["stale"].(prometheus.Gauge); ok {
		if stale {
			gauge.Set(1)
		} else {
			gauge.Set(0)
		}
	}
}

// RecordOrder counts an order outcome
func (mc *MetricsCollector) RecordOrder(status string) {
	if counter, ok := mc.metrics["orders"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(status).Inc()
	}
}
