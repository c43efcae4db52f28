package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	stementity "github.com/veedubyou/spleeter-api/src/server/internal/stem/entity"
	"net/http"
	"strconv"
	"time"
)

const unmatched = "unmatched"

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	separationsTotal    *prometheus.CounterVec
	separationDuration  *prometheus.HistogramVec
}

// New builds the collectors on a private registry. loadedModels backs a
// gauge of how many separation models are resident.
func New(loadedModels func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spleeter_api_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spleeter_api_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		separationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spleeter_api_separations_total",
				Help: "Total number of separation attempts by outcome.",
			},
			[]string{"model", "format", "result"},
		),
		separationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spleeter_api_separation_duration_seconds",
				Help:    "Time spent in the separation engine.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"model"},
		),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.separationsTotal,
		m.separationDuration,
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "spleeter_api_models_loaded",
				Help: "Number of separation models currently loaded.",
			},
			func() float64 { return float64(loadedModels()) },
		),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware labels requests by echo's route pattern rather than the raw
// path so job ids don't explode the label cardinality
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
			}
			if status == 0 {
				status = http.StatusOK
			}

			path := c.Path()
			if path == "" {
				path = unmatched
			}

			method := c.Request().Method
			m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			m.httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) ObserveSeparation(model stementity.Model, format stementity.Format, elapsed time.Duration, succeeded bool) {
	result := "success"
	if !succeeded {
		result = "error"
	}

	m.separationsTotal.WithLabelValues(string(model), string(format), result).Inc()
	m.separationDuration.WithLabelValues(string(model)).Observe(elapsed.Seconds())
}
