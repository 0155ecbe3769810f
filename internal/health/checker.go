// Package health reports readiness for the HTTP /readyz endpoint and the gRPC health service.
package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"multi-tenant-crm/backend/internal/logger"
)

// Pinger is used for the database readiness check (e.g. *pgxpool.Pool).
type Pinger interface {
	Ping(ctx context.Context) error
}

// PolicyChecker is used for the policy engine readiness check (e.g. the OPA evaluator).
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Report is the outcome of one readiness check. Components maps a component name to "ok" or its error.
type Report struct {
	Ready      bool              `json:"ready"`
	Components map[string]string `json:"components"`
}

// Checker runs the readiness checks. A nil Pinger or PolicyChecker is skipped.
type Checker struct {
	pinger  Pinger
	policy  PolicyChecker
	timeout time.Duration
	logger  *zap.Logger
}

// NewChecker returns a Checker. Each check is bounded by timeout (2s when <= 0).
func NewChecker(pinger Pinger, policy PolicyChecker, timeout time.Duration, log *zap.Logger) *Checker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checker{pinger: pinger, policy: policy, timeout: timeout, logger: logger.OrNop(log)}
}

// Check runs every configured check and returns the report and the joined failures.
func (c *Checker) Check(ctx context.Context) (Report, error) {
	r := Report{Ready: true, Components: map[string]string{}}
	var errs []error
	run := func(name string, fn func(context.Context) error) {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		if err := fn(cctx); err != nil {
			r.Ready = false
			r.Components[name] = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			c.logger.Warn("health: readiness check failed", zap.String("component", name), zap.Error(err))
			return
		}
		r.Components[name] = "ok"
	}
	if c.pinger != nil {
		run("database", c.pinger.Ping)
	}
	if c.policy != nil {
		run("policy_engine", c.policy.HealthCheck)
	}
	return r, errors.Join(errs...)
}

// Watch updates srv's overall serving status from Check every interval until ctx is done.
func (c *Checker) Watch(ctx context.Context, srv *health.Server, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	c.sync(ctx, srv)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			srv.Shutdown()
			return
		case <-ticker.C:
			c.sync(ctx, srv)
		}
	}
}

func (c *Checker) sync(ctx context.Context, srv *health.Server) {
	status := healthpb.HealthCheckResponse_SERVING
	if _, err := c.Check(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	srv.SetServingStatus("", status)
}
