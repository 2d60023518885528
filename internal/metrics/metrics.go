// Package metrics exposes classification loop counters to Prometheus.
package metrics

import (
	"context"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

const namespace = "librasio"

// Metrics holds the collectors on a private registry. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	registry *prometheus.Registry

	frames       *prometheus.CounterVec
	frameErrors  *prometheus.CounterVec
	labelChanges *prometheus.CounterVec
	passDuration *prometheus.HistogramVec
	activeStream *prometheus.GaugeVec

	memUsage prometheus.Gauge
	cpuUsage prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Classification passes run, by stream.",
		}, []string{"stream"}),
		frameErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_errors_total",
			Help:      "Passes that fell back to unknown because of an error, by stream and kind.",
		}, []string{"stream", "kind"}),
		labelChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "label_changes_total",
			Help:      "Changes of the stable label, by stream.",
		}, []string{"stream"}),
		passDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of one classification pass.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"stream"}),
		activeStream: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_stream",
			Help:      "1 for the stream currently fed frames.",
		}, []string{"stream"}),
		memUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_usage_megabytes",
			Help:      "Resident memory of the process in megabytes.",
		}),
		cpuUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_usage_percent",
			Help:      "CPU usage of the process in percent.",
		}),
	}

	m.registry.MustRegister(
		m.frames, m.frameErrors, m.labelChanges, m.passDuration,
		m.activeStream, m.memUsage, m.cpuUsage,
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObservePass records one completed pass.
func (m *Metrics) ObservePass(stream string, d time.Duration) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(stream).Inc()
	m.passDuration.WithLabelValues(stream).Observe(d.Seconds())
}

// FrameError counts a pass that failed with the given error kind.
func (m *Metrics) FrameError(stream, kind string) {
	if m == nil {
		return
	}
	m.frameErrors.WithLabelValues(stream, kind).Inc()
}

// LabelChanged counts a stable label change.
func (m *Metrics) LabelChanged(stream string) {
	if m == nil {
		return
	}
	m.labelChanges.WithLabelValues(stream).Inc()
}

// SetActive marks stream as the active one among streams. An empty stream
// marks all inactive.
func (m *Metrics) SetActive(active string, streams []string) {
	if m == nil {
		return
	}
	for _, s := range streams {
		v := 0.0
		if s == active {
			v = 1
		}
		m.activeStream.WithLabelValues(s).Set(v)
	}
}

// DefaultSampleInterval is used for a non-positive SampleProcess interval.
const DefaultSampleInterval = 5 * time.Second

// SampleProcess updates memory and CPU gauges every interval until ctx is done.
func (m *Metrics) SampleProcess(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	if m == nil {
		return
	}
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		logger.Warn("process metrics disabled", zap.Error(err))
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if mem, err := proc.MemoryInfoWithContext(ctx); err == nil {
			m.memUsage.Set(float64(mem.RSS / 1024 / 1024))
		}
		if cpu, err := proc.CPUPercentWithContext(ctx); err == nil {
			m.cpuUsage.Set(math.Round(cpu*100) / 100)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
