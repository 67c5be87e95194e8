// Package metrics defines the Prometheus collectors talentdesk exports on
// the dashboard's /metrics endpoint.
//
// Collectors are registered on an injected Registerer so tests can use a
// private registry. All recording methods are safe on a nil receiver, which
// lets components treat metrics as optional.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every talentdesk metric name.
const Namespace = "talentdesk"

// Sync holds the sync service collectors.
type Sync struct {
	SavesTotal        *prometheus.CounterVec
	SaveDuration      *prometheus.HistogramVec
	StoreErrorsTotal  *prometheus.CounterVec
	RefreshesTotal    prometheus.Counter
	DeliveriesTotal   *prometheus.CounterVec
	Observers         prometheus.Gauge
	ReconciledRecords prometheus.Counter
}

// NewSync creates and registers the sync collectors on reg. A nil reg
// registers on prometheus.DefaultRegisterer.
func NewSync(reg prometheus.Registerer) *Sync {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Sync{
		SavesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "saves_total",
				Help:      "Total number of collection saves",
			},
			[]string{"collection", "result"},
		),
		SaveDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "save_duration_seconds",
				Help:      "Duration of collection saves in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"collection"},
		),
		StoreErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "store_errors_total",
				Help:      "Total number of failed store reads and writes",
			},
			[]string{"operation"},
		),
		RefreshesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "refreshes_total",
				Help:      "Total number of refresh passes",
			},
		),
		DeliveriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "event_deliveries_total",
				Help:      "Total number of change events delivered to observers",
			},
			[]string{"collection"},
		),
		Observers: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "observers",
				Help:      "Current number of registered observers",
			},
		),
		ReconciledRecords: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "reconcile_repairs_total",
				Help:      "Total number of reconciliation passes that repaired drift",
			},
		),
	}
}

// TrackSave returns a function that records the outcome and duration of a
// save of collection started at start.
func (m *Sync) TrackSave(collection string) func(start time.Time, err error) {
	return func(start time.Time, err error) {
		if m == nil {
			return
		}
		result := "ok"
		if err != nil {
			result = "error"
		}
		m.SavesTotal.WithLabelValues(collection, result).Inc()
		m.SaveDuration.WithLabelValues(collection).Observe(time.Since(start).Seconds())
	}
}

// RecordStoreError increments the store error counter for op ("get" or "put").
func (m *Sync) RecordStoreError(op string) {
	if m == nil {
		return
	}
	m.StoreErrorsTotal.WithLabelValues(op).Inc()
}

// RecordRefresh increments the refresh counter.
func (m *Sync) RecordRefresh() {
	if m == nil {
		return
	}
	m.RefreshesTotal.Inc()
}

// RecordDeliveries adds n deliveries for collection.
func (m *Sync) RecordDeliveries(collection string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.DeliveriesTotal.WithLabelValues(collection).Add(float64(n))
}

// SetObservers sets the observer gauge.
func (m *Sync) SetObservers(n int) {
	if m == nil {
		return
	}
	m.Observers.Set(float64(n))
}

// RecordRepair counts a reconciliation pass that changed data.
func (m *Sync) RecordRepair() {
	if m == nil {
		return
	}
	m.ReconciledRecords.Inc()
}

// Dashboard holds the websocket dashboard collectors.
type Dashboard struct {
	Clients         prometheus.Gauge
	BroadcastsTotal *prometheus.CounterVec
}

// NewDashboard creates and registers the dashboard collectors on reg.
func NewDashboard(reg prometheus.Registerer) *Dashboard {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Dashboard{
		Clients: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "dashboard",
				Name:      "clients",
				Help:      "Current number of connected websocket clients",
			},
		),
		BroadcastsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "dashboard",
				Name:      "broadcasts_total",
				Help:      "Total number of messages broadcast to clients",
			},
			[]string{"type"},
		),
	}
}

// SetClients sets the connected client gauge.
func (m *Dashboard) SetClients(n int) {
	if m == nil {
		return
	}
	m.Clients.Set(float64(n))
}

// RecordBroadcast counts a broadcast message of the given type.
func (m *Dashboard) RecordBroadcast(typ string) {
	if m == nil {
		return
	}
	m.BroadcastsTotal.WithLabelValues(typ).Inc()
}
