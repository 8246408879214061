package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/rehearse/internal/metrics"
)

// Retry reasons, used as log fields and metric labels.
const (
	retryRateLimit   = "rate_limit"
	retryUnavailable = "unavailable"
	retryInvalid     = "invalid_response"
	retryTransport   = "transport"
)

// RetryProvider repeats failed generations with exponential backoff and
// jitter. Question generation and feedback both run through it, so each
// retry is logged and counted under the request's purpose.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	logger *zap.Logger
}

// WithRetry wraps a Provider with retry logic. logger may be nil.
func WithRetry(p Provider, cfg RetryConfig, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryProvider{inner: p, config: cfg, logger: logger.Named("llm.retry")}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.config.MaxAttempts, 1)
	purpose := PurposeFrom(ctx)
	invalidSeen := false

	var lastErr error
	for attempt := range attempts {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			if attempt > 0 {
				r.logger.Info("generation recovered",
					zap.String("purpose", purpose),
					zap.Int("attempt", attempt+1))
			}
			return resp, nil
		}
		lastErr = err

		reason, ok := retryReason(err)
		if reason == retryInvalid {
			// A malformed reply earns one more try, not the full budget.
			ok = !invalidSeen
			invalidSeen = true
		}
		if !ok || attempt == attempts-1 {
			break
		}

		wait := r.backoff(attempt, err)
		metrics.LLMRetries.WithLabelValues(purpose, reason).Inc()
		r.logger.Warn("retrying generation",
			zap.String("purpose", purpose),
			zap.String("reason", reason),
			zap.Int("attempt", attempt+1),
			zap.Int("of", attempts),
			zap.Duration("wait", wait),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, lastErr
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// retryReason classifies err. Cancellation and an exhausted token budget
// are final; everything else, including plain network errors, is worth
// another attempt.
func retryReason(err error) (string, bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", false
	}

	var maxTok *ErrMaxTokensExceeded
	if errors.As(err, &maxTok) {
		return "", false
	}

	var invalid *ErrInvalidResponse
	if errors.As(err, &invalid) {
		return retryInvalid, true
	}
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return retryRateLimit, true
	}
	var unavail *ErrProviderUnavailable
	if errors.As(err, &unavail) {
		return retryUnavailable, true
	}
	return retryTransport, true
}

// backoff honors a provider's Retry-After, otherwise grows InitialWait by
// Multiplier per attempt up to MaxWait, with ±20% jitter.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	wait = math.Min(wait, float64(r.config.MaxWait))
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(math.Max(wait, 0))
}
