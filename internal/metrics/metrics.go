// Package metrics exposes the client's operational counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	framesTotal        prometheus.Counter
	decodeFailures     prometheus.Counter
	reconnectsTotal    prometheus.Counter
	signalsActive      prometheus.Gauge
	updatesTotal       *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
}

// NewRegistry creates a metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		framesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchdeck_frames_total",
			Help: "Total number of stream frames received",
		}),
		decodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchdeck_decode_failures_total",
			Help: "Total number of frames dropped as undecodable",
		}),
		reconnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchdeck_stream_reconnects_total",
			Help: "Total number of stream reconnect attempts",
		}),
		signalsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "watchdeck_signals_active",
			Help: "Number of signals currently in the registry",
		}),
		updatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchdeck_updates_total",
			Help: "Signal updates processed, by outcome",
		}, []string{"outcome"}), // "applied" or "orphaned"
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchdeck_notifications_total",
			Help: "New-signal notifications delivered, by notifier and status",
		}, []string{"notifier", "status"}),
	}

	reg.MustRegister(
		r.framesTotal,
		r.decodeFailures,
		r.reconnectsTotal,
		r.signalsActive,
		r.updatesTotal,
		r.notificationsTotal,
	)
	return r
}

// RecordFrame counts one received frame.
func (r *Registry) RecordFrame() { r.framesTotal.Inc() }

// RecordDecodeFailure counts one dropped frame.
func (r *Registry) RecordDecodeFailure() { r.decodeFailures.Inc() }

// RecordReconnect counts one reconnect attempt.
func (r *Registry) RecordReconnect() { r.reconnectsTotal.Inc() }

// SetActiveSignals tracks the registry size.
func (r *Registry) SetActiveSignals(n int) { r.signalsActive.Set(float64(n)) }

// RecordUpdate counts one update by outcome.
func (r *Registry) RecordUpdate(applied bool) {
	outcome := "applied"
	if !applied {
		outcome = "orphaned"
	}
	r.updatesTotal.WithLabelValues(outcome).Inc()
}

// RecordNotification counts one side-channel delivery.
func (r *Registry) RecordNotification(notifier string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	r.notificationsTotal.WithLabelValues(notifier, status).Inc()
}

// Handler returns the scrape endpoint handler.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}
