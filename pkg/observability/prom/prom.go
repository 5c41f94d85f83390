// Package prom exports observability hooks as Prometheus metrics.
//
// A single [Metrics] value implements every hook interface of the parent
// package:
//
//	m := prom.New(prometheus.DefaultRegisterer)
//	m.Install()
//	http.Handle("/metrics", promhttp.Handler())
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/scopegraph/pkg/observability"
)

const namespace = "scopegraph"

// Metrics holds the collectors fed by the hooks.
type Metrics struct {
	Materializations   *prometheus.CounterVec
	MaterializeSeconds prometheus.Histogram
	Scopes             prometheus.Gauge
	SourcesResolved    *prometheus.CounterVec
	UnitLookups        *prometheus.CounterVec
	UnitLookupSeconds  prometheus.Histogram
	UnitsDefined       *prometheus.CounterVec
	UnitBytes          prometheus.Counter
	ResourceLookups    *prometheus.CounterVec
	CacheOps           *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPSeconds        prometheus.Histogram
	HTTPErrors         *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Materializations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "materializations_total",
			Help:      "Graph materializations by outcome",
		}, []string{"outcome"}),
		MaterializeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "materialize_duration_seconds",
			Help:      "Time spent materializing a graph",
			Buckets:   prometheus.DefBuckets,
		}),
		Scopes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scopes",
			Help:      "Scopes in the most recently materialized graph",
		}),
		SourcesResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sources_resolved_total",
			Help:      "Source specifications resolved, by resolver",
		}, []string{"resolver"}),
		UnitLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unit_lookups_total",
			Help:      "Public unit lookups, by scope and result",
		}, []string{"scope", "found"}),
		UnitLookupSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "unit_lookup_duration_seconds",
			Help:      "Time spent in public unit lookups",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		UnitsDefined: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_defined_total",
			Help:      "Units read from a scope's own artifacts",
		}, []string{"scope"}),
		UnitBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unit_bytes_total",
			Help:      "Bytes of defined units",
		}),
		ResourceLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_lookups_total",
			Help:      "Single resource lookups, by scope and result",
		}, []string{"scope", "found"}),
		CacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Remote artifact cache operations",
		}, []string{"key_type", "op"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Remote artifact requests, by host and status",
		}, []string{"host", "status"}),
		HTTPSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Remote artifact request latency",
			Buckets:   prometheus.DefBuckets,
		}),
		HTTPErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Remote artifact requests that failed without a response",
		}, []string{"host"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.Materializations, m.MaterializeSeconds, m.Scopes, m.SourcesResolved,
			m.UnitLookups, m.UnitLookupSeconds, m.UnitsDefined, m.UnitBytes,
			m.ResourceLookups, m.CacheOps, m.HTTPRequests, m.HTTPSeconds, m.HTTPErrors,
		)
	}
	return m
}

// Install registers m for every hook category.
func (m *Metrics) Install() {
	observability.SetMaterializeHooks(m)
	observability.SetResolveHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func (m *Metrics) OnMaterializeStart(context.Context, int) {}

func (m *Metrics) OnMaterializeComplete(_ context.Context, scopes int, d time.Duration, err error) {
	m.MaterializeSeconds.Observe(d.Seconds())
	if err != nil {
		m.Materializations.WithLabelValues("error").Inc()
		return
	}
	m.Materializations.WithLabelValues("ok").Inc()
	m.Scopes.Set(float64(scopes))
}

func (m *Metrics) OnSourceResolved(_ context.Context, _, resolver string, _ int) {
	m.SourcesResolved.WithLabelValues(resolver).Inc()
}

func (m *Metrics) OnUnitResolved(_ context.Context, scope string, found bool, d time.Duration) {
	m.UnitLookups.WithLabelValues(scope, strconv.FormatBool(found)).Inc()
	m.UnitLookupSeconds.Observe(d.Seconds())
}

func (m *Metrics) OnUnitDefined(_ context.Context, scope, _ string, size int) {
	m.UnitsDefined.WithLabelValues(scope).Inc()
	m.UnitBytes.Add(float64(size))
}

func (m *Metrics) OnResourceResolved(_ context.Context, scope string, found bool) {
	m.ResourceLookups.WithLabelValues(scope, strconv.FormatBool(found)).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.CacheOps.WithLabelValues(keyType, "set").Inc()
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	m.HTTPSeconds.Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.HTTPErrors.WithLabelValues(host).Inc()
}
