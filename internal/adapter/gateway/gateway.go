package gateway

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the gateway collectors.
type Metrics struct {
	Requests   *prometheus.CounterVec
	UpstreamUp *prometheus.GaugeVec
	JobTiming  *prometheus.HistogramVec
}

// NewMetrics registers the gateway collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "requests_total",
			Help:      "Requests handled by the gateway by route prefix and status code.",
		}, []string{"route", "code"}),
		UpstreamUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gateway",
			Name:      "upstream_up",
			Help:      "1 when the last check reached the upstream.",
		}, []string{"upstream"}),
		JobTiming: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gateway",
			Name:      "job_duration_seconds",
			Help:      "Duration of scheduled gateway jobs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job", "result"}),
	}
	for _, c := range []prometheus.Collector{m.Requests, m.UpstreamUp, m.JobTiming} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveJob records one scheduled run.
func (m *Metrics) ObserveJob(name string, took time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.JobTiming.WithLabelValues(name, result).Observe(took.Seconds())
}

// Gateway proxies matched requests to their upstreams.
type Gateway struct {
	log     *slog.Logger
	table   *table
	checker *HealthChecker
	metrics *Metrics
	proxies map[string]*httputil.ReverseProxy
}

// New builds a gateway over routes. checker and metrics may be nil.
func New(log *slog.Logger, routes RouteFile, checker *HealthChecker, metrics *Metrics) (*Gateway, error) {
	t, err := newTable(routes)
	if err != nil {
		return nil, err
	}
	g := &Gateway{
		log:     log,
		table:   t,
		checker: checker,
		metrics: metrics,
		proxies: make(map[string]*httputil.ReverseProxy, len(t.routes)),
	}
	for _, r := range t.routes {
		g.proxies[r.Prefix] = g.newProxy(r)
	}
	return g, nil
}

func (g *Gateway) newProxy(r *route) *httputil.ReverseProxy {
	target := r.target
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = r.upstreamPath(pr.In.URL.Path)
			pr.Out.URL.RawPath = ""
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, req *http.Request, err error) {
			if errors.Is(err, req.Context().Err()) {
				return
			}
			g.log.Warn("proxy error",
				slog.String("upstream", target.String()),
				slog.String("path", req.URL.Path),
				slog.Any("err", err))
			w.WriteHeader(http.StatusBadGateway)
		},
	}
}

// Register mounts the gateway as the fallback handler of e, so explicit
// routes such as /health and /metrics keep precedence.
func (g *Gateway) Register(e *gin.Engine, limiter *ClientLimiter) {
	e.NoRoute(limiter.Middleware(), g.Handle)
}

// Handle proxies one request.
func (g *Gateway) Handle(c *gin.Context) {
	r := g.table.match(c.Request.URL.Path)
	if r == nil {
		g.count("", http.StatusNotFound)
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	if !r.allows(c.Request.Method) {
		g.count(r.Prefix, http.StatusMethodNotAllowed)
		c.AbortWithStatus(http.StatusMethodNotAllowed)
		return
	}
	if g.checker != nil && !g.checker.Up(r.Upstream) {
		g.count(r.Prefix, http.StatusServiceUnavailable)
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}

	g.proxies[r.Prefix].ServeHTTP(c.Writer, c.Request)
	g.count(r.Prefix, c.Writer.Status())
}

func (g *Gateway) count(prefix string, code int) {
	if g.metrics == nil {
		return
	}
	g.metrics.Requests.WithLabelValues(prefix, strconv.Itoa(code)).Inc()
}
