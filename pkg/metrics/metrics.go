package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ControlMetrics tracks control-loop metrics in Prometheus format
type ControlMetrics struct {
	readingsTotal     *prometheus.CounterVec
	commandsTotal     prometheus.Counter
	debouncedTotal    prometheus.Counter
	publishTotal      *prometheus.CounterVec
	publishErrTotal   *prometheus.CounterVec
	loopUp            prometheus.Gauge
	tickDuration      prometheus.Histogram
	tickSkippedTotal  prometheus.Counter
	handlerErrorTotal prometheus.Counter
}

// NewControlMetrics creates and registers the control-loop collectors.
// Pass nil to register on the default registry.
func NewControlMetrics(reg prometheus.Registerer) *ControlMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &ControlMetrics{
		readingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edge_readings_total",
			Help: "Total sensor readings processed by the control hub.",
		}, []string{"sensor"}),
		commandsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edge_commands_dispatched_total",
			Help: "Total actuator commands dispatched.",
		}),
		debouncedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edge_commands_debounced_total",
			Help: "Commands suppressed because they repeated the last applied (command, value) pair.",
		}),
		publishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edge_upstream_publish_total",
			Help: "Total upstream publish attempts.",
		}, []string{"channel"}),
		publishErrTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edge_upstream_publish_errors_total",
			Help: "Upstream publish attempts that failed.",
		}, []string{"channel"}),
		loopUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "edge_control_loop_up",
			Help: "Whether the control loop is running (1) or stopped (0).",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "edge_tick_duration_seconds",
			Help:    "Duration of one full sensor poll tick.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		tickSkippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edge_ticks_coalesced_total",
			Help: "Scheduled ticks skipped because the concurrency cap was reached.",
		}),
		handlerErrorTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edge_handler_errors_total",
			Help: "Control-loop errors routed to the central error handler.",
		}),
	}

	reg.MustRegister(
		m.readingsTotal, m.commandsTotal, m.debouncedTotal,
		m.publishTotal, m.publishErrTotal, m.loopUp,
		m.tickDuration, m.tickSkippedTotal, m.handlerErrorTotal,
	)

	return m
}

// RecordReading counts one processed sensor reading
func (m *ControlMetrics) RecordReading(sensor string) {
	m.readingsTotal.WithLabelValues(sensor).Inc()
}

// RecordCommand counts one dispatched actuator command
func (m *ControlMetrics) RecordCommand() {
	m.commandsTotal.Inc()
}

// RecordDebounce counts one suppressed repeat command
func (m *ControlMetrics) RecordDebounce() {
	m.debouncedTotal.Inc()
}

// RecordPublish counts one upstream publish attempt and its outcome
func (m *ControlMetrics) RecordPublish(channel string, err error) {
	m.publishTotal.WithLabelValues(channel).Inc()
	if err != nil {
		m.publishErrTotal.WithLabelValues(channel).Inc()
	}
}

// SetLoopUp sets the control-loop status gauge
func (m *ControlMetrics) SetLoopUp(up bool) {
	if up {
		m.loopUp.Set(1)
	} else {
		m.loopUp.Set(0)
	}
}

// ObserveTickDuration records the duration of one poll tick
func (m *ControlMetrics) ObserveTickDuration(d time.Duration) {
	m.tickDuration.Observe(d.Seconds())
}

// RecordTickSkipped counts one coalesced tick
func (m *ControlMetrics) RecordTickSkipped() {
	m.tickSkippedTotal.Inc()
}

// RecordHandlerError counts one rejected handler invocation
func (m *ControlMetrics) RecordHandlerError() {
	m.handlerErrorTotal.Inc()
}

// StartMetricsServer starts an HTTP server on the given port to expose metrics
// Implements secure defaults with timeouts to prevent slowloris attacks
func StartMetricsServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second, // Max time to read request
		ReadHeaderTimeout: 10 * time.Second, // Max time to read headers
		WriteTimeout:      15 * time.Second, // Max time to write response
		IdleTimeout:       60 * time.Second, // Max time for keep-alive connections
	}

	return server.ListenAndServe()
}
