package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"
)

// readinessTimeout is the per-dependency timeout for readiness checks.
const readinessTimeout = 2 * time.Second

// Build-time version information, set via -ldflags:
//
//	go build -ldflags "-X api.Version=1.0.0 -X api.GitCommit=abc1234 -X api.BuildTime=2026-02-16T12:00:00Z"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// HealthChecker verifies that a dependency is reachable and healthy.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CheckResult holds the outcome of a single dependency health check.
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ReadinessResponse is the structured JSON returned by GET /health/ready.
type ReadinessResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// HandleHealthLive is a lightweight liveness probe — confirms the process
// is alive. Always returns 200.
func (s *Server) HandleHealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"version":    Version,
		"git_commit": GitCommit,
		"build_time": BuildTime,
		"go_version": runtime.Version(),
	})
}

// HandleHealthReady checks every registered dependency concurrently and
// returns 200 only if all are healthy, 503 otherwise.
func (s *Server) HandleHealthReady(w http.ResponseWriter, r *http.Request) {
	checkers := s.healthCheckers()

	if len(checkers) == 0 {
		writeJSON(w, http.StatusOK, ReadinessResponse{Status: "ready", Checks: map[string]CheckResult{}})
		return
	}

	type result struct {
		name string
		res  CheckResult
	}
	results := make([]result, len(checkers))

	var wg sync.WaitGroup
	i := 0
	for name, checker := range checkers {
		wg.Add(1)
		go func(idx int, n string, c HealthChecker) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()

			if err := c.HealthCheck(ctx); err != nil {
				results[idx] = result{name: n, res: CheckResult{Status: "error", Error: err.Error()}}
			} else {
				results[idx] = result{name: n, res: CheckResult{Status: "ok"}}
			}
		}(i, name, checker)
		i++
	}
	wg.Wait()

	checks := make(map[string]CheckResult, len(results))
	allOK := true
	for _, res := range results {
		checks[res.name] = res.res
		if res.res.Status != "ok" {
			allOK = false
		}
	}

	resp := ReadinessResponse{Checks: checks}
	if allOK {
		resp.Status = "ready"
		writeJSON(w, http.StatusOK, resp)
	} else {
		resp.Status = "not_ready"
		writeJSON(w, http.StatusServiceUnavailable, resp)
	}
}

// HandleHealth is the backward-compatible health endpoint, aliasing the
// liveness probe.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.HandleHealthLive(w, r)
}

func (s *Server) healthCheckers() map[string]HealthChecker {
	checkers := make(map[string]HealthChecker)
	if s.AuthHealth != nil {
		checkers["auth_store"] = s.AuthHealth
	}
	if s.EntityHealth != nil {
		checkers["entity_store"] = s.EntityHealth
	}
	if s.InvokerHealth != nil {
		checkers["invoker"] = s.InvokerHealth
	}
	return checkers
}

// HandleMetrics returns basic application metrics in Prometheus text
// exposition format — a lightweight scrape target, not a full
// prometheus/client_golang integration.
func (s *Server) HandleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	fmt.Fprintf(w, "# HELP gateway_info Build information about the web action gateway.\n")
	fmt.Fprintf(w, "# TYPE gateway_info gauge\n")
	fmt.Fprintf(w, "gateway_info{version=%q,git_commit=%q,go_version=%q} 1\n", Version, GitCommit, runtime.Version())

	fmt.Fprintf(w, "# HELP gateway_goroutines Number of goroutines.\n")
	fmt.Fprintf(w, "# TYPE gateway_goroutines gauge\n")
	fmt.Fprintf(w, "gateway_goroutines %d\n", runtime.NumGoroutine())

	fmt.Fprintf(w, "# HELP gateway_memory_alloc_bytes Current memory allocation in bytes.\n")
	fmt.Fprintf(w, "# TYPE gateway_memory_alloc_bytes gauge\n")
	fmt.Fprintf(w, "gateway_memory_alloc_bytes %d\n", memStats.Alloc)

	fmt.Fprintf(w, "# HELP gateway_memory_sys_bytes Total memory obtained from the OS in bytes.\n")
	fmt.Fprintf(w, "# TYPE gateway_memory_sys_bytes gauge\n")
	fmt.Fprintf(w, "gateway_memory_sys_bytes %d\n", memStats.Sys)

	fmt.Fprintf(w, "# HELP gateway_gc_completed_total Total number of completed GC cycles.\n")
	fmt.Fprintf(w, "# TYPE gateway_gc_completed_total counter\n")
	fmt.Fprintf(w, "gateway_gc_completed_total %d\n", memStats.NumGC)
}
