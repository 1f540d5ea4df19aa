package gitapi

import (
	"context"
	"sync"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/repoflat/internal/flatten"
	"github.com/fyrsmithlabs/repoflat/internal/metrics"
)

// FetchBlobs retrieves raw content for the given entries under bounded
// concurrency. Each file's failure is isolated into its BlobResult; results
// are keyed by path so callers order independently of arrival. The returned
// error is non-nil only on cancellation, and the settled results remain valid
// for partial reporting.
func (c *Client) FetchBlobs(ctx context.Context, ref flatten.RepoRef, entries []flatten.FileEntry) (map[string]flatten.BlobResult, error) {
	results := make(map[string]flatten.BlobResult, len(entries))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for _, e := range entries {
		e := e
		if ctx.Err() != nil {
			break // cancelled: stop issuing new fetches
		}
		g.Go(func() error {
			data, err := c.fetchBlob(ctx, ref, e)
			if err != nil {
				metrics.Fetches.WithLabelValues("error").Inc()
				c.logger.Warn("blob fetch failed",
					zap.String("repo", ref.String()),
					zap.String("path", e.Path),
					zap.Error(err),
				)
			} else {
				metrics.Fetches.WithLabelValues("ok").Inc()
			}
			mu.Lock()
			results[e.Path] = flatten.BlobResult{Data: data, Err: err}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait() // workers never return errors; failures are per-file results

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// fetchBlob retrieves one blob by content identifier, with the shared backoff
// policy. Abandons quickly when the render is cancelled.
func (c *Client) fetchBlob(ctx context.Context, ref flatten.RepoRef, e flatten.FileEntry) ([]byte, error) {
	var data []byte
	err := c.retry.do(ctx, "get blob", func() (*github.Response, error) {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		var resp *github.Response
		var err error
		data, resp, err = c.gh.Git.GetBlobRaw(ctx, ref.Owner, ref.Name, e.SHA)
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
