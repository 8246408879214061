package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Pinger is anything that can confirm a database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Wake pings p up to attempts times, multiplying the delay by 1.5 after
// each failure. Hosted Postgres instances that scale to zero need a few
// seconds to answer the first query.
func Wake(ctx context.Context, p Pinger, attempts int, delay time.Duration, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 1; i <= attempts; i++ {
		if err = p.Ping(ctx); err == nil {
			logger.Info("database awake", zap.Int("attempt", i))
			return nil
		}
		logger.Warn("database wake attempt failed",
			zap.Int("attempt", i),
			zap.Int("of", attempts),
			zap.Error(err))

		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * 1.5)
	}
	return fmt.Errorf("database did not wake after %d attempts: %w", attempts, err)
}
