// Package metrics collects the daemon counters and histograms in a private
// registry. Nothing is exported over HTTP, the control "stats" command
// reads a snapshot out.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

type Metrics struct {
	registry *prometheus.Registry

	// Signals counts the transmissions by action, origin and result.
	Signals *prometheus.CounterVec
	// ScheduleFires counts the schedule bindings fired by the dispatcher.
	ScheduleFires prometheus.Counter
	// ControlRequests counts the control commands by name and result.
	ControlRequests *prometheus.CounterVec
	// Skips counts the tasks dropped before transmission, by reason.
	Skips *prometheus.CounterVec
	// TransmitSeconds measures the serial transmission time.
	TransmitSeconds prometheus.Histogram
	// LockWaitSeconds measures the wait for the serial port lock.
	LockWaitSeconds prometheus.Histogram
	// QueueDepth is the current task queue length.
	QueueDepth prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		Signals: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "x10d",
			Name:      "signals_total",
			Help:      "Transmitted X10 signals.",
		}, []string{"action", "origin", "result"}),
		ScheduleFires: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "x10d",
			Name:      "schedule_fires_total",
			Help:      "Schedule bindings fired by the dispatcher.",
		}),
		ControlRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "x10d",
			Name:      "control_requests_total",
			Help:      "Control protocol requests.",
		}, []string{"command", "result"}),
		Skips: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "x10d",
			Name:      "skips_total",
			Help:      "Tasks dropped before the transmission.",
		}, []string{"reason"}),
		TransmitSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "x10d",
			Name:      "transmit_seconds",
			Help:      "Serial transmission time.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		LockWaitSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "x10d",
			Name:      "lock_wait_seconds",
			Help:      "Wait for the serial port lock.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 60},
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "x10d",
			Name:      "queue_depth",
			Help:      "Tasks waiting in the queue.",
		}),
	}
}

// Snapshot flattens the registry into "name{labels}" -> value pairs.
// Histograms are reported as the _count and _sum series.
func (m *Metrics) Snapshot() (map[string]float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64)
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			name := family.GetName() + labelsSuffix(metric)
			switch {
			case metric.GetCounter() != nil:
				out[name] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				out[name] = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				out[name+"_count"] = float64(metric.GetHistogram().GetSampleCount())
				out[name+"_sum"] = metric.GetHistogram().GetSampleSum()
			}
		}
	}
	return out, nil
}

func labelsSuffix(metric *dto.Metric) string {
	if len(metric.GetLabel()) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(metric.GetLabel()))
	for _, label := range metric.GetLabel() {
		pairs = append(pairs, fmt.Sprintf(`%s=%q`, label.GetName(), label.GetValue()))
	}
	sort.Strings(pairs)
	return "{" + strings.Join(pairs, ",") + "}"
}
