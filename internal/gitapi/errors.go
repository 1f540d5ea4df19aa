package gitapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/google/go-github/v57/github"
)

// Error taxonomy for the remote API. NotFound and AccessDenied are fatal to a
// render; RateLimited and Timeout are recovered locally via bounded backoff
// and escalate only once the retry budget is exhausted.
var (
	ErrNotFound     = errors.New("repository or ref not found")
	ErrAccessDenied = errors.New("access denied")
	ErrRateLimited  = errors.New("rate limited by upstream")
	ErrTimeout      = errors.New("request timed out")
)

// classifyError maps a go-github error and response to the taxonomy, keeping
// the original error in the chain.
func classifyError(err error, resp *github.Response) error {
	if err == nil {
		return nil
	}

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	if resp != nil && resp.Response != nil {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %w", ErrAccessDenied, err)
		case http.StatusForbidden:
			// Forbidden with rate headers is a secondary rate limit;
			// without them it is a privilege failure.
			if resp.Rate.Limit > 0 && resp.Rate.Remaining == 0 {
				return fmt.Errorf("%w: %w", ErrRateLimited, err)
			}
			return fmt.Errorf("%w: %w", ErrAccessDenied, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
	}

	return err
}

// IsFatal reports whether an error should abort a whole render rather than be
// recorded against a single file.
func IsFatal(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrAccessDenied)
}
