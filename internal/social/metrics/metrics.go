// Package metrics collects Prometheus metrics for the HTTP surface, the
// domain services and the push hub. Every Record method is safe on a nil
// *Collector so services can run without metrics in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/circle/pkg/httpx"
	"github.com/aussiebroadwan/circle/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
	signups       prometheus.Counter
	logins        *prometheus.CounterVec
	follows       prometheus.Counter
	ratings       prometheus.Counter
	notifications prometheus.Counter
	pushClients   prometheus.Gauge
	pushDropped   prometheus.Counter
}

// NewCollector builds a Collector and registers it on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "circle_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "circle_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "circle_signups_total",
			Help: "Accounts created.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "circle_logins_total",
			Help: "Sessions opened by authority.",
		}, []string{"authority"}),
		follows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "circle_follows_created_total",
			Help: "Follow edges created.",
		}),
		ratings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "circle_ratings_created_total",
			Help: "Ratings created.",
		}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "circle_notifications_created_total",
			Help: "Notifications written to the ledger.",
		}),
		pushClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "circle_push_connections",
			Help: "Open push channel connections.",
		}),
		pushDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "circle_push_events_dropped_total",
			Help: "Push events dropped because a client buffer was full or the user was offline.",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.signups,
		c.logins,
		c.follows,
		c.ratings,
		c.notifications,
		c.pushClients,
		c.pushDropped,
	)

	return c
}

func (c *Collector) RecordHTTP(route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(route).Observe(d.Seconds())
}

func (c *Collector) RecordSignup() {
	if c != nil {
		c.signups.Inc()
	}
}

func (c *Collector) RecordLogin(authority string) {
	if c != nil {
		c.logins.WithLabelValues(authority).Inc()
	}
}

func (c *Collector) RecordFollow() {
	if c != nil {
		c.follows.Inc()
	}
}

func (c *Collector) RecordRating() {
	if c != nil {
		c.ratings.Inc()
	}
}

func (c *Collector) RecordNotification() {
	if c != nil {
		c.notifications.Inc()
	}
}

func (c *Collector) PushConnected() {
	if c != nil {
		c.pushClients.Inc()
	}
}

func (c *Collector) PushDisconnected() {
	if c != nil {
		c.pushClients.Dec()
	}
}

func (c *Collector) RecordPushDropped() {
	if c != nil {
		c.pushDropped.Inc()
	}
}

// Middleware records status and latency under a fixed route label. Using the
// mux pattern rather than the raw path keeps label cardinality bounded.
func (c *Collector) Middleware(route string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		if c == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := slogx.NewResponseWriter(w)
			next.ServeHTTP(rw, r)
			c.RecordHTTP(route, rw.Status(), time.Since(start))
		})
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
