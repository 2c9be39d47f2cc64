package invoker

import (
	"context"
	"fmt"
	"net"
	"net/url"
)

// HealthChecker implements api.HealthChecker for the invoker by dialing its
// TCP address — a successful connection confirms the process is listening,
// the same shallow check the teacher's transport package uses for its
// runner/query gRPC backends.
type HealthChecker struct {
	addr string
}

// NewHealthChecker creates a health checker that dials baseURL's host.
func NewHealthChecker(baseURL string) *HealthChecker {
	addr := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		addr = u.Host
	}
	return &HealthChecker{addr: addr}
}

// HealthCheck attempts a TCP connection to the invoker. Returns nil if reachable.
func (h *HealthChecker) HealthCheck(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", h.addr)
	if err != nil {
		return fmt.Errorf("invoker unreachable: %w", err)
	}
	conn.Close()
	return nil
}
