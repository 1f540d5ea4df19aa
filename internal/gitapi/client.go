package gitapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/repoflat/internal/config"
)

// Client resolves trees and fetches blobs from the GitHub API. It implements
// flatten.TreeResolver and flatten.BlobFetcher.
type Client struct {
	gh          *github.Client
	retry       *retrier
	limiter     *rate.Limiter
	concurrency int
	logger      *zap.Logger
}

// NewClient creates an API client. The token is optional; unauthenticated
// clients work for public repositories at a lower rate limit. BaseURL
// overrides the endpoint for tests and Enterprise installs.
func NewClient(ctx context.Context, ghCfg config.GitHubConfig, flattenCfg config.FlattenConfig, retryCfg config.RetryConfig, logger *zap.Logger) (*Client, error) {
	httpClient := oauth2.NewClient(ctx, nil)
	if ghCfg.Token.IsSet() {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: ghCfg.Token.Value()})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	gh := github.NewClient(httpClient)
	if ghCfg.BaseURL != "" {
		base := ghCfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		parsed, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid API base URL %q: %w", ghCfg.BaseURL, err)
		}
		gh.BaseURL = parsed
	}

	concurrency := flattenCfg.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	var limiter *rate.Limiter
	if flattenCfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(flattenCfg.RequestsPerSecond), concurrency)
	}

	return &Client{
		gh:          gh,
		retry:       newRetrier(retryCfg, logger),
		limiter:     limiter,
		concurrency: concurrency,
		logger:      logger,
	}, nil
}

// wait applies request pacing when configured.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}
