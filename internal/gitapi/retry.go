package gitapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repoflat/internal/config"
	"github.com/fyrsmithlabs/repoflat/internal/metrics"
)

// retrier retries remote API operations with exponential backoff. Rate-limit
// responses use the remote-supplied reset hint instead of the exponential
// schedule. The retry budget and backoff schedule are explicit configuration,
// shared by tree resolution and per-file fetches.
type retrier struct {
	maxRetries        int
	initialBackoff    time.Duration
	maxBackoff        time.Duration
	backoffMultiplier float64
	logger            *zap.Logger
}

func newRetrier(cfg config.RetryConfig, logger *zap.Logger) *retrier {
	r := &retrier{
		maxRetries:        cfg.MaxRetries,
		initialBackoff:    cfg.InitialBackoff.Duration(),
		maxBackoff:        cfg.MaxBackoff.Duration(),
		backoffMultiplier: cfg.BackoffMultiplier,
		logger:            logger,
	}
	if r.initialBackoff <= 0 {
		r.initialBackoff = time.Second
	}
	if r.maxBackoff <= 0 {
		r.maxBackoff = 30 * time.Second
	}
	if r.backoffMultiplier < 1 {
		r.backoffMultiplier = 2.0
	}
	return r
}

// do runs the operation, retrying transient failures up to the budget. The
// returned error is already classified into the package taxonomy.
func (r *retrier) do(ctx context.Context, name string, op func() (*github.Response, error)) error {
	var lastErr error
	backoff := r.initialBackoff
	start := time.Now()

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		resp, err := op()
		if err == nil {
			if attempt > 0 {
				r.logger.Info("remote operation recovered after retries",
					zap.String("op", name),
					zap.Int("attempts", attempt+1),
					zap.Duration("total_time", time.Since(start)),
				)
			}
			return nil
		}

		lastErr = classifyError(err, resp)

		if !isRetryable(lastErr, resp) {
			return lastErr
		}
		if attempt == r.maxRetries {
			break
		}

		wait := backoff
		if isRateLimitResponse(resp) {
			wait = rateLimitBackoff(resp, r.maxBackoff)
			r.logger.Info("rate limit hit, honoring reset hint",
				zap.String("op", name),
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", r.maxRetries+1),
				zap.Duration("backoff", wait),
			)
		} else {
			r.logger.Info("retrying remote operation",
				zap.String("op", name),
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", r.maxRetries+1),
				zap.Duration("backoff", wait),
				zap.Error(lastErr),
			)
		}

		metrics.Retries.Inc()

		select {
		case <-ctx.Done():
			return fmt.Errorf("operation canceled: %w", ctx.Err())
		case <-time.After(wait):
			next := time.Duration(float64(backoff) * r.backoffMultiplier)
			if next > r.maxBackoff {
				next = r.maxBackoff
			}
			backoff = next
		}
	}

	r.logger.Warn("remote operation failed after retries exhausted",
		zap.String("op", name),
		zap.Int("total_attempts", r.maxRetries+1),
		zap.Duration("total_time", time.Since(start)),
		zap.Error(lastErr),
	)
	return fmt.Errorf("after %d retries: %w", r.maxRetries, lastErr)
}

// isRetryable reports whether a classified error is worth another attempt.
// NotFound and AccessDenied never are; rate limits, timeouts and 5xx are.
func isRetryable(err error, resp *github.Response) bool {
	if IsFatal(err) {
		return false
	}
	if resp != nil && resp.Response != nil {
		code := resp.StatusCode
		switch {
		case code == http.StatusTooManyRequests:
			return true
		case code >= 500 && code < 600:
			return true
		case code >= 400 && code < 500:
			// Remaining 4xx (422 and friends) won't improve on retry,
			// except rate-limited 403s already classified above.
			return isRateLimitResponse(resp)
		}
	}
	// Transport-level failures (timeouts, resets) are retryable.
	return true
}

// isRateLimitResponse reports whether the response indicates rate limiting.
func isRateLimitResponse(resp *github.Response) bool {
	if resp == nil || resp.Response == nil {
		return false
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode == http.StatusForbidden && resp.Rate.Limit > 0 && resp.Rate.Remaining == 0
}

// rateLimitBackoff derives the wait from the remote reset hint, capped at
// maxBackoff, with a one second buffer so the reset has actually happened.
func rateLimitBackoff(resp *github.Response, maxBackoff time.Duration) time.Duration {
	if resp == nil || resp.Rate.Reset.IsZero() {
		return maxBackoff
	}
	wait := time.Until(resp.Rate.Reset.Time) + time.Second
	if wait < 0 {
		wait = time.Second
	}
	if wait > maxBackoff {
		wait = maxBackoff
	}
	return wait
}
