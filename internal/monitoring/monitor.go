package monitoring

import (
	"strings"
	"sync"
	"time"
)

// Monitor collects and provides runtime status for the dashboard
type Monitor struct {
	metrics      map[string]interface{}
	metricsMutex sync.RWMutex
	startTime    time.Time
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		metrics:   make(map[string]interface{}),
		startTime: time.Now(),
	}
}

// RecordMetric records a metric value
func (m *Monitor) RecordMetric(name string, value interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name] = value
}

// GetMetric returns a specific metric value
func (m *Monitor) GetMetric(name string) (interface{}, bool) {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	value, exists := m.metrics[name]
	return value, exists
}

// GetMetrics returns all current metrics
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	metrics := make(map[string]interface{}, len(m.metrics))
	for k, v := range m.metrics {
		metrics[k] = v
	}

	metrics["uptime_seconds"] = time.Since(m.startTime).Seconds()

	return metrics
}

// Reset clears all metrics
func (m *Monitor) Reset() {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics = make(map[string]interface{})
}

// RecordRefresh records the outcome of a refresh of one data source. A failed
// refresh keeps the last success time and marks the source stale.
func (m *Monitor) RecordRefresh(source string, err error) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	prefix := source + "_"
	now := time.Now().Format(time.RFC3339)

	m.metrics[prefix+"last_attempt"] = now
	if err != nil {
		m.metrics[prefix+"stale"] = true
		m.metrics[prefix+"last_error"] = err.Error()
		return
	}
	m.metrics[prefix+"stale"] = false
	m.metrics[prefix+"last_refreshed"] = now
	delete(m.metrics, prefix+"last_error")
}

// Stale reports whether any source's last refresh failed
func (m *Monitor) Stale() bool {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	for k, v := range m.metrics {
		if strings.HasSuffix(k, "_stale") {
			if stale, ok := v.(bool); ok && stale {
				return true
			}
		}
	}
	return false
}
