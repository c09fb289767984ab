package yadisk

import (
	"context"

	"github.com/oshokin/yadisk-grabber/internal/client/yadisk"
	"github.com/oshokin/yadisk-grabber/internal/config"
	"github.com/oshokin/yadisk-grabber/internal/logger"
	"github.com/oshokin/yadisk-grabber/internal/utils"
)

// withRetry runs call until it succeeds, fails with a non-retryable error
// or cfg.RetryAttemptsCount attempts are spent.
// Only transient and rate limited remote failures are retried, with a random pause in between.
func withRetry[T any](
	ctx context.Context,
	cfg *config.Config,
	operation string,
	call func(ctx context.Context) (T, error),
) (T, error) {
	attempts := max(cfg.RetryAttemptsCount, 1)

	var (
		result T
		err    error
	)

	for attempt := int64(1); attempt <= attempts; attempt++ {
		result, err = call(ctx)
		if err == nil || !yadisk.IsRetryable(err) || attempt == attempts || ctx.Err() != nil {
			return result, err
		}

		logger.Warnf(ctx, "Attempt %d/%d to %s failed: %v, retrying", attempt, attempts, operation, err)

		if pauseErr := utils.RandomPause(ctx, cfg.ParsedMinRetryPause, cfg.ParsedMaxRetryPause); pauseErr != nil {
			return result, err
		}
	}

	return result, err
}
