// Package metrics exposes Prometheus instrumentation for the inventory service.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"medicine-inventory-service/internal/domain"
	"medicine-inventory-service/internal/logger"
	"medicine-inventory-service/internal/query"
	"medicine-inventory-service/internal/store"
)

const namespace = "medinventory"

const collectTimeout = 5 * time.Second

// Metrics owns a private registry rather than the global default registerer.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers HTTP request metrics, the inventory collector and the Go runtime collectors.
func New(ms store.MedicineStorer, now func() time.Time, log *logger.Logger) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled, by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.duration,
		newInventoryCollector(ms, now, log),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing Handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records a request count and latency per chi route pattern.
// It must be mounted with Router.Use so the pattern is resolved by the time it is read.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// inventoryCollector recomputes inventory counts from the store on every scrape.
type inventoryCollector struct {
	store store.MedicineStorer
	now   func() time.Time
	log   *logger.Logger
	desc  *prometheus.Desc
}

func newInventoryCollector(ms store.MedicineStorer, now func() time.Time, log *logger.Logger) *inventoryCollector {
	return &inventoryCollector{
		store: ms,
		now:   now,
		log:   log,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "medicines"),
			"Number of medicines in the inventory by status.",
			[]string{"status"}, nil,
		),
	}
}

func (c *inventoryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *inventoryCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	medicines, err := c.store.ListMedicines(ctx)
	if err != nil {
		c.log.Warnf("inventory metrics: listing medicines failed: %v", err)
		ch <- prometheus.NewInvalidMetric(c.desc, err)
		return
	}

	stats := query.Summarize(medicines, domain.DateOf(c.now()))
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(stats.Total), "all")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(stats.Expired), "expired")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(stats.LowStock), "low_stock")
}
