package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "daodash"

// Collector keeps the service metrics in a dedicated registry. It observes
// chain calls for the chain clients and HTTP requests for the server.
type Collector struct {
	registry *prometheus.Registry

	chainCalls        *prometheus.CounterVec
	chainCallDuration *prometheus.HistogramVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	mountedViews      prometheus.Gauge
	transactions      *prometheus.CounterVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	chainCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chain_calls_total",
		Help:      "Contract queries and executions by kind, message and result.",
	}, []string{"kind", "name", "result"})

	chainCallDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "chain_call_duration_seconds",
		Help:      "Latency of the calls to the chain node and the signing relay.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"kind", "name"})

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	mountedViews := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mounted_views",
		Help:      "Number of page views currently mounted.",
	})

	transactions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_total",
		Help:      "Submitted transactions by kind and result.",
	}, []string{"kind", "result"})

	reg.MustRegister(chainCalls)
	reg.MustRegister(chainCallDuration)
	reg.MustRegister(httpRequests)
	reg.MustRegister(httpDuration)
	reg.MustRegister(mountedViews)
	reg.MustRegister(transactions)

	return &Collector{
		registry:          reg,
		chainCalls:        chainCalls,
		chainCallDuration: chainCallDuration,
		httpRequests:      httpRequests,
		httpDuration:      httpDuration,
		mountedViews:      mountedViews,
		transactions:      transactions,
	}
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveCall records one chain call.
func (c *Collector) ObserveCall(kind, name string, d time.Duration, err error) {
	c.chainCalls.WithLabelValues(kind, name, result(err)).Inc()
	c.chainCallDuration.WithLabelValues(kind, name).Observe(d.Seconds())
}

func (c *Collector) ObserveRequest(route, method string, code int, d time.Duration) {
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	c.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func (c *Collector) ViewMounted() {
	c.mountedViews.Inc()
}

func (c *Collector) ViewUnmounted() {
	c.mountedViews.Dec()
}

func (c *Collector) ObserveTransaction(kind string, err error) {
	c.transactions.WithLabelValues(kind, result(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
