package gitapi

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/repoflat/internal/config"
	"github.com/fyrsmithlabs/repoflat/internal/logging"
)

func testRetrier(maxRetries int) *retrier {
	return newRetrier(config.RetryConfig{
		MaxRetries:        maxRetries,
		InitialBackoff:    config.Duration(time.Millisecond),
		MaxBackoff:        config.Duration(10 * time.Millisecond),
		BackoffMultiplier: 2.0,
	}, logging.NewTestLogger().Logger)
}

func rateLimitedResponse() *github.Response {
	return &github.Response{
		Response: &http.Response{StatusCode: http.StatusTooManyRequests},
	}
}

func TestRetrier_SuccessFirstTry(t *testing.T) {
	r := testRetrier(3)
	calls := 0
	err := r.do(context.Background(), "op", func() (*github.Response, error) {
		calls++
		return &github.Response{Response: &http.Response{StatusCode: 200}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetrier_RecoversWithinBudget(t *testing.T) {
	// Two simulated rate-limit responses against a budget of three
	// retries: eventual success, exactly three calls.
	r := testRetrier(3)
	calls := 0
	err := r.do(context.Background(), "op", func() (*github.Response, error) {
		calls++
		if calls <= 2 {
			return rateLimitedResponse(), errors.New("429 too many requests")
		}
		return &github.Response{Response: &http.Response{StatusCode: 200}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetrier_BudgetExhausted(t *testing.T) {
	r := testRetrier(3)
	calls := 0
	err := r.do(context.Background(), "op", func() (*github.Response, error) {
		calls++
		return rateLimitedResponse(), errors.New("429 too many requests")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	// Exactly budget retries after the first attempt.
	assert.Equal(t, 4, calls)
}

func TestRetrier_FatalNotRetried(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{"not found", http.StatusNotFound, ErrNotFound},
		{"unauthorized", http.StatusUnauthorized, ErrAccessDenied},
		{"forbidden without rate info", http.StatusForbidden, ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRetrier(3)
			calls := 0
			err := r.do(context.Background(), "op", func() (*github.Response, error) {
				calls++
				return &github.Response{
					Response: &http.Response{StatusCode: tt.status},
				}, errors.New("api error")
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, 1, calls, "fatal errors must not be retried")
		})
	}
}

func TestRetrier_ServerErrorsRetried(t *testing.T) {
	r := testRetrier(2)
	calls := 0
	err := r.do(context.Background(), "op", func() (*github.Response, error) {
		calls++
		if calls == 1 {
			return &github.Response{Response: &http.Response{StatusCode: http.StatusBadGateway}}, errors.New("bad gateway")
		}
		return &github.Response{Response: &http.Response{StatusCode: 200}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetrier_UnprocessableNotRetried(t *testing.T) {
	r := testRetrier(3)
	calls := 0
	err := r.do(context.Background(), "op", func() (*github.Response, error) {
		calls++
		return &github.Response{Response: &http.Response{StatusCode: http.StatusUnprocessableEntity}}, errors.New("validation failed")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetrier_CancellationDuringBackoff(t *testing.T) {
	r := newRetrier(config.RetryConfig{
		MaxRetries:        5,
		InitialBackoff:    config.Duration(10 * time.Second),
		MaxBackoff:        config.Duration(10 * time.Second),
		BackoffMultiplier: 2.0,
	}, logging.NewTestLogger().Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := r.do(ctx, "op", func() (*github.Response, error) {
		return &github.Response{Response: &http.Response{StatusCode: http.StatusInternalServerError}}, errors.New("boom")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateLimitBackoff(t *testing.T) {
	maxBackoff := 100 * time.Millisecond

	t.Run("no reset hint uses max", func(t *testing.T) {
		assert.Equal(t, maxBackoff, rateLimitBackoff(nil, maxBackoff))
		assert.Equal(t, maxBackoff, rateLimitBackoff(&github.Response{}, maxBackoff))
	})

	t.Run("reset hint capped at max", func(t *testing.T) {
		resp := &github.Response{}
		resp.Rate.Reset = github.Timestamp{Time: time.Now().Add(time.Hour)}
		assert.Equal(t, maxBackoff, rateLimitBackoff(resp, maxBackoff))
	})

	t.Run("past reset waits briefly", func(t *testing.T) {
		resp := &github.Response{}
		resp.Rate.Reset = github.Timestamp{Time: time.Now().Add(-time.Hour)}
		got := rateLimitBackoff(resp, 10*time.Second)
		assert.Equal(t, time.Second, got)
	})
}

func TestClassifyError(t *testing.T) {
	respWith := func(code int) *github.Response {
		return &github.Response{Response: &http.Response{StatusCode: code}}
	}

	assert.ErrorIs(t, classifyError(errors.New("x"), respWith(http.StatusNotFound)), ErrNotFound)
	assert.ErrorIs(t, classifyError(errors.New("x"), respWith(http.StatusUnauthorized)), ErrAccessDenied)
	assert.ErrorIs(t, classifyError(errors.New("x"), respWith(http.StatusTooManyRequests)), ErrRateLimited)
	assert.ErrorIs(t, classifyError(context.DeadlineExceeded, nil), ErrTimeout)
	assert.NoError(t, classifyError(nil, nil))

	rateResp := respWith(http.StatusForbidden)
	rateResp.Rate.Limit = 5000
	rateResp.Rate.Remaining = 0
	assert.ErrorIs(t, classifyError(errors.New("x"), rateResp), ErrRateLimited)

	var rle *github.RateLimitError
	assert.ErrorIs(t, classifyError(&github.RateLimitError{}, nil), ErrRateLimited)
	assert.False(t, errors.As(classifyError(errors.New("plain"), nil), &rle))
}
