package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"blog-go-template/internal/adapter/scheduler"
)

// HealthJobName labels the health check job in logs and metrics.
const HealthJobName = "upstream-health"

// Getter is the slice of the outbound client the checker needs.
type Getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// HealthChecker tracks which upstreams answered their last check. Any HTTP answer
// counts as up, since service health endpoints only admit loopback callers.
// Upstreams start up so traffic flows before the first check completes.
type HealthChecker struct {
	client Getter
	log    *slog.Logger
	gauge  *prometheus.GaugeVec

	mu   sync.RWMutex
	down map[string]bool
}

// NewHealthChecker creates a checker for the upstreams of routes. gauge may be nil.
func NewHealthChecker(client Getter, log *slog.Logger, routes RouteFile, gauge *prometheus.GaugeVec) *HealthChecker {
	p := &HealthChecker{client: client, log: log, gauge: gauge, down: make(map[string]bool)}
	for _, r := range routes.Routes {
		p.down[r.Upstream] = false
		p.setGauge(r.Upstream, true)
	}
	return p
}

// Up reports whether upstream may receive traffic.
func (p *HealthChecker) Up(upstream string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.down[upstream]
}

// CheckAll checks every upstream concurrently and returns once all have answered.
func (p *HealthChecker) CheckAll(ctx context.Context) error {
	p.mu.RLock()
	upstreams := make([]string, 0, len(p.down))
	for u := range p.down {
		upstreams = append(upstreams, u)
	}
	p.mu.RUnlock()

	var wg sync.WaitGroup
	for _, u := range upstreams {
		wg.Add(1)
		go func(upstream string) {
			defer wg.Done()
			p.check(ctx, upstream)
		}(u)
	}
	wg.Wait()
	return ctx.Err()
}

func (p *HealthChecker) check(ctx context.Context, upstream string) {
	resp, err := p.client.Get(ctx, strings.TrimRight(upstream, "/")+"/health")
	up := err == nil
	if resp != nil {
		resp.Body.Close()
	}
	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	wasDown := p.down[upstream]
	p.down[upstream] = !up
	p.mu.Unlock()
	p.setGauge(upstream, up)

	switch {
	case up && wasDown:
		p.log.Info("upstream recovered", slog.String("upstream", upstream))
	case !up && !wasDown:
		p.log.Warn("upstream unreachable", slog.String("upstream", upstream), slog.Any("err", err))
	}
}

func (p *HealthChecker) setGauge(upstream string, up bool) {
	if p.gauge == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	p.gauge.WithLabelValues(upstream).Set(v)
}

// Schedule registers CheckAll on s. A check still running when the next one is
// due is skipped.
func (p *HealthChecker) Schedule(s *scheduler.Scheduler, schedule string, timeout time.Duration) error {
	_, err := s.Add(schedule, p.CheckAll, scheduler.JobOptions{
		Name:          HealthJobName,
		Timeout:       timeout,
		OverlapPolicy: scheduler.SkipIfRunning,
	})
	return err
}
