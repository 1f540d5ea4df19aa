package flatten

import (
	"context"
	"fmt"
	"sort"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repoflat/internal/metrics"
)

// TreeResolver produces the complete flat file list for a repository ref.
// Implementations must return the whole tree or an error, never a partial
// tree.
type TreeResolver interface {
	ResolveTree(ctx context.Context, ref RepoRef) ([]FileEntry, error)
}

// BlobFetcher retrieves raw content for the included entries. Results are
// keyed by path; each file's failure is isolated in its BlobResult. The
// returned error is non-nil only when the whole batch was cancelled.
type BlobFetcher interface {
	FetchBlobs(ctx context.Context, ref RepoRef, entries []FileEntry) (map[string]BlobResult, error)
}

// Pipeline wires resolver, filter and fetcher into one render pass:
// coordinates -> tree -> filtered list -> fetched/decoded files -> ordered
// document.
type Pipeline struct {
	resolver TreeResolver
	fetcher  BlobFetcher
	filter   *Filter
	logger   *zap.Logger
}

// NewPipeline creates a render pipeline.
func NewPipeline(resolver TreeResolver, fetcher BlobFetcher, filter *Filter, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		resolver: resolver,
		fetcher:  fetcher,
		filter:   filter,
		logger:   logger,
	}
}

// Flatten renders one repository ref into an ordered document. Anything that
// prevents establishing the file set is returned as an error; per-file
// failures are recorded inline and the render completes.
func (p *Pipeline) Flatten(ctx context.Context, ref RepoRef) (*Document, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	entries, err := p.resolver.ResolveTree(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("resolving tree for %s: %w", ref, err)
	}
	p.logger.Info("tree resolved",
		zap.String("repo", ref.String()),
		zap.Int("entries", len(entries)),
	)

	decisions := make(map[string]Decision, len(entries))
	var included []FileEntry
	for _, e := range entries {
		d := p.filter.Classify(e)
		decisions[e.Path] = d
		if d.Included {
			included = append(included, e)
		}
	}

	results, err := p.fetcher.FetchBlobs(ctx, ref, included)
	if err != nil {
		return nil, fmt.Errorf("fetching content for %s: %w", ref, err)
	}

	files := make([]RenderedFile, 0, len(entries))
	for _, e := range entries {
		files = append(files, renderFile(e, decisions[e.Path], results))
	}

	// Deterministic ordering: a pure sort over settled results. Fetch
	// completion order must never reach this point.
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	doc := &Document{Ref: ref, Files: files, Stats: computeStats(files)}

	for reason, n := range doc.Stats.Excluded {
		metrics.FilesSkipped.WithLabelValues(string(reason)).Add(float64(n))
	}
	p.logger.Info("flatten complete",
		zap.String("repo", ref.String()),
		zap.Int("included", doc.Stats.Included),
		zap.Int("skipped", doc.Stats.Total-doc.Stats.Included),
		zap.Int64("bytes", doc.Stats.TotalBytes),
	)
	return doc, nil
}

// renderFile maps one entry plus its fetch outcome to the immutable
// RenderedFile state.
func renderFile(e FileEntry, d Decision, results map[string]BlobResult) RenderedFile {
	rf := RenderedFile{
		Path:     e.Path,
		Size:     e.Size,
		Language: DetectLanguage(e.Path),
	}

	if !d.Included {
		rf.Skip = d.Reason
		return rf
	}

	res, ok := results[e.Path]
	if !ok {
		// Fetch never settled (cancelled before dispatch).
		rf.Skip = ReasonFetchError
		rf.Err = "fetch not attempted"
		return rf
	}
	if res.Err != nil {
		rf.Skip = ReasonFetchError
		rf.Err = res.Err.Error()
		return rf
	}

	// Content sniff: the second stage of binary detection. Binary-like
	// bytes are discarded, not forwarded.
	if SniffBinary(res.Data) {
		rf.Skip = ReasonBinaryContent
		return rf
	}
	if !utf8.Valid(res.Data) {
		rf.Skip = ReasonDecodeError
		rf.Err = "content is not valid UTF-8"
		return rf
	}

	rf.Included = true
	rf.Content = string(res.Data)
	rf.Size = int64(len(res.Data))
	return rf
}

func computeStats(files []RenderedFile) Stats {
	stats := Stats{Total: len(files), Excluded: make(map[Reason]int)}
	for _, f := range files {
		switch {
		case f.Included:
			stats.Included++
			stats.TotalBytes += int64(len(f.Content))
		case f.Skip == ReasonFetchError || f.Skip == ReasonDecodeError:
			stats.Errored++
			stats.Excluded[f.Skip]++
		default:
			stats.Excluded[f.Skip]++
		}
	}
	return stats
}
