// Package metrics exposes the dashboard's Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
)

// Collector holds the dashboard metrics. A nil *Collector records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CacheLookups    *prometheus.CounterVec
	RateLimited     prometheus.Counter
	DatasetFeatures *prometheus.GaugeVec
}

// New registers the dashboard metrics against reg, or the default
// registerer when reg is nil. Registering twice on one registry reuses the
// existing collectors.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "riskmap_http_requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"}))
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "riskmap_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"route"}))
	if err != nil {
		return nil, err
	}

	lookups, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "riskmap_render_cache_lookups_total",
		Help: "Rendered layer cache lookups by kind and result.",
	}, []string{"kind", "result"}))
	if err != nil {
		return nil, err
	}

	limited, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "riskmap_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	}))
	if err != nil {
		return nil, err
	}

	features, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "riskmap_dataset_features",
		Help: "Number of polygons loaded per model.",
	}, []string{"model"}))
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:        gatherer,
		RequestsTotal:   requests,
		RequestDuration: duration,
		CacheLookups:    lookups,
		RateLimited:     limited,
		DatasetFeatures: features,
	}, nil
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest records one served request.
func (c *Collector) ObserveRequest(route, method string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// CacheLookup records a render cache hit or miss.
func (c *Collector) CacheLookup(kind string, hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.CacheLookups.WithLabelValues(kind, result).Inc()
}

// IncRateLimited counts a rejected request.
func (c *Collector) IncRateLimited() {
	if c == nil {
		return
	}
	c.RateLimited.Inc()
}

// SetFeatures records the polygon count of a model.
func (c *Collector) SetFeatures(model string, n int) {
	if c == nil {
		return
	}
	c.DatasetFeatures.WithLabelValues(model).Set(float64(n))
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			return c, eris.New("metrics: collector already registered with incompatible type")
		}
		return c, eris.Wrap(err, "metrics: register")
	}
	return c, nil
}
