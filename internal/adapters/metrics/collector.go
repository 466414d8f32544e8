// Package metrics exposes client-side counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/haloguard/haloguard-cli/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "haloguard"

type Collector struct {
	detections     *prometheus.CounterVec
	frames         *prometheus.CounterVec
	streamMessages *prometheus.CounterVec
	historySync    *prometheus.CounterVec
}

var _ ports.Metrics = (*Collector)(nil)

// NewCollector registers the counters with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Completed detections by result source and prediction.",
		}, []string{"source", "prediction"}),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_frames_total",
			Help:      "Stream ticks by outcome.",
		}, []string{"outcome"}),
		streamMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_messages_total",
			Help:      "Inbound stream messages by outcome.",
		}, []string{"outcome"}),
		historySync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_sync_total",
			Help:      "Remote history calls by operation and outcome.",
		}, []string{"op", "outcome"}),
	}

	reg.MustRegister(c.detections, c.frames, c.streamMessages, c.historySync)

	return c
}

func (c *Collector) RecordDetection(source domain.ResultSource, prediction domain.Prediction) {
	c.detections.WithLabelValues(string(source), string(prediction)).Inc()
}

func (c *Collector) RecordFrame(outcome string) {
	c.frames.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordStreamMessage(outcome string) {
	c.streamMessages.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordHistorySync(op string, outcome string) {
	c.historySync.WithLabelValues(op, outcome).Inc()
}

// Handler serves /metrics for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}
