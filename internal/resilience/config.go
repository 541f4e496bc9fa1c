package resilience

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/config"
)

// FromRetryConfig builds a RetryConfig from application config. Unset
// values keep their defaults.
func FromRetryConfig(c config.RetryConfig) RetryConfig {
	cfg := DefaultRetryConfig()
	if c.MaxAttempts > 0 {
		cfg.MaxAttempts = c.MaxAttempts
	}
	if c.InitialBackoffMs > 0 {
		cfg.InitialBackoff = time.Duration(c.InitialBackoffMs) * time.Millisecond
	}
	if c.MaxBackoffMs > 0 {
		cfg.MaxBackoff = time.Duration(c.MaxBackoffMs) * time.Millisecond
	}
	if c.Multiplier > 0 {
		cfg.Multiplier = c.Multiplier
	}
	if c.JitterFraction >= 0 {
		cfg.JitterFraction = c.JitterFraction
	}
	return cfg
}

// FromCircuitConfig builds a CircuitBreakerConfig from application config.
func FromCircuitConfig(c config.CircuitConfig) CircuitBreakerConfig {
	cfg := DefaultCircuitBreakerConfig()
	if c.FailureThreshold > 0 {
		cfg.FailureThreshold = c.FailureThreshold
	}
	if c.ResetTimeoutSecs > 0 {
		cfg.ResetTimeout = time.Duration(c.ResetTimeoutSecs) * time.Second
	}
	return cfg
}

// Guard combines a retry policy with a circuit breaker for one upstream
// service. Each attempt passes through the breaker, so an open circuit
// stops retries immediately.
type Guard struct {
	Service string
	Retry   RetryConfig
	Breaker *CircuitBreaker
}

// NewGuard creates a Guard that logs retries and breaker transitions for service.
func NewGuard(service string, retry RetryConfig, breaker CircuitBreakerConfig) *Guard {
	breaker.OnStateChange = func(from, to CircuitState) {
		zap.L().Warn("resilience: circuit state changed",
			zap.String("service", service),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
	}
	if breaker.ShouldTrip == nil {
		breaker.ShouldTrip = IsTransient
	}
	retry.ShouldRetry = func(err error) bool {
		return !errors.Is(err, ErrCircuitOpen) && IsTransient(err)
	}
	return &Guard{
		Service: service,
		Retry:   retry,
		Breaker: NewCircuitBreaker(breaker),
	}
}

// Call runs fn through g. A nil Guard calls fn once.
func Call[T any](ctx context.Context, g *Guard, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	if g == nil {
		return fn(ctx)
	}
	retry := g.Retry
	if retry.OnRetry == nil {
		retry.OnRetry = RetryLogger(g.Service, operation)
	}
	return DoVal(ctx, retry, func(ctx context.Context) (T, error) {
		return ExecuteVal(ctx, g.Breaker, fn)
	})
}
