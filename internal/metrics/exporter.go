// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

// Package metrics exports node snapshots as Prometheus gauges for headless
// monitoring.
package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tortoise-ln/tortoise/internal/monitor"
)

const msatPerSat = 1000

// Exporter holds the tortoise collectors.
type Exporter struct {
	channels      *prometheus.GaugeVec
	balance       *prometheus.GaugeVec
	relayedCount  *prometheus.GaugeVec
	relayedSats   *prometheus.GaugeVec
	feesSats      *prometheus.GaugeVec
	returnRate    prometheus.Gauge
	onchain       *prometheus.GaugeVec
	refreshErrors prometheus.Counter
	lastRefresh   prometheus.Gauge

	ready atomic.Bool
}

// NewExporter registers the collectors with reg.
func NewExporter(reg prometheus.Registerer) *Exporter {
	f := promauto.With(reg)
	return &Exporter{
		channels: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tortoise_channels",
			Help: "Number of channels, by state group.",
		}, []string{"state"}),
		balance: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tortoise_channel_balance_sats",
			Help: "Local channel balance in satoshi, by state group.",
		}, []string{"state"}),
		relayedCount: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tortoise_relayed_count",
			Help: "Number of relayed payments, by window.",
		}, []string{"window"}),
		relayedSats: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tortoise_relayed_sats",
			Help: "Relayed volume in satoshi, by window.",
		}, []string{"window"}),
		feesSats: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tortoise_fees_sats",
			Help: "Routing fees earned in satoshi, by window.",
		}, []string{"window"}),
		returnRate: f.NewGauge(prometheus.GaugeOpts{
			Name: "tortoise_return_rate_percent",
			Help: "Monthly routing fees annualised against local liquidity.",
		}),
		onchain: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tortoise_onchain_sats",
			Help: "On-chain wallet balance in satoshi.",
		}, []string{"kind"}),
		refreshErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "tortoise_refresh_errors_total",
			Help: "Total number of failed refreshes and failed optional fetches.",
		}),
		lastRefresh: f.NewGauge(prometheus.GaugeOpts{
			Name: "tortoise_last_refresh_timestamp_seconds",
			Help: "Unix time of the last successful refresh.",
		}),
	}
}

// Observe publishes snap. Every error carried by snap is counted, so the
// caller should dismiss errors after observing them.
func (e *Exporter) Observe(snap monitor.Snapshot) {
	e.refreshErrors.Add(float64(len(snap.Errors)))
	if !snap.Ready() {
		return
	}

	l := snap.Liquidity
	e.channels.WithLabelValues("active").Set(float64(l.ActiveCount))
	e.channels.WithLabelValues("pending").Set(float64(l.PendingCount))
	e.channels.WithLabelValues("sleeping").Set(float64(l.SleepingCount))
	e.balance.WithLabelValues("active").Set(float64(l.ActiveMsat / msatPerSat))
	e.balance.WithLabelValues("pending").Set(float64(l.PendingMsat / msatPerSat))
	e.balance.WithLabelValues("sleeping").Set(float64(l.SleepingMsat / msatPerSat))

	r := snap.Relays
	e.relayedCount.WithLabelValues("day").Set(float64(r.CountDay))
	e.relayedCount.WithLabelValues("month").Set(float64(r.CountMonth))
	e.relayedSats.WithLabelValues("day").Set(float64(r.VolumeDay / msatPerSat))
	e.relayedSats.WithLabelValues("month").Set(float64(r.VolumeMonth / msatPerSat))
	e.feesSats.WithLabelValues("day").Set(float64(r.FeeDay / msatPerSat))
	e.feesSats.WithLabelValues("month").Set(float64(r.FeeMonth / msatPerSat))
	e.returnRate.Set(snap.ReturnRate)

	e.onchain.WithLabelValues("confirmed").Set(float64(snap.Onchain.Confirmed))
	e.onchain.WithLabelValues("unconfirmed").Set(float64(snap.Onchain.Unconfirmed))

	e.lastRefresh.Set(float64(snap.TakenAt.Unix()))
	e.ready.Store(true)
}

// Ready reports whether a successful snapshot has been observed.
func (e *Exporter) Ready() bool { return e.ready.Load() }

// Handler serves /metrics from gatherer and /healthz, which answers 503
// until the first successful snapshot.
func (e *Exporter) Handler(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if !e.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("waiting for first refresh\n"))
			return
		}
		_, _ = w.Write([]byte("ok\n"))
	})
	return r
}
