package gitapi

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repoflat/internal/flatten"
)

// symlinkMode is the git file mode for symbolic links.
const symlinkMode = "120000"

// ResolveTree returns the complete flat file list for the ref. It first asks
// for a recursive listing; when the API reports a truncated tree it falls
// back to an iterative per-directory walk, accumulating every page before
// returning so callers never see a partial tree.
func (c *Client) ResolveTree(ctx context.Context, ref flatten.RepoRef) ([]flatten.FileEntry, error) {
	treeish := ref.Ref
	if treeish == "" {
		treeish = "HEAD"
	}

	var tree *github.Tree
	err := c.retry.do(ctx, "get tree", func() (*github.Response, error) {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		var resp *github.Response
		var err error
		tree, resp, err = c.gh.Git.GetTree(ctx, ref.Owner, ref.Name, treeish, true)
		return resp, err
	})
	if err != nil {
		return nil, err
	}

	if !tree.GetTruncated() {
		return treeToEntries("", tree), nil
	}

	c.logger.Warn("recursive tree listing truncated, walking subtrees",
		zap.String("repo", ref.String()),
	)
	return c.walkTree(ctx, ref, treeish)
}

// walkTree expands the tree one directory level at a time. Used when the
// recursive listing exceeds the API's entry limit.
func (c *Client) walkTree(ctx context.Context, ref flatten.RepoRef, rootSHA string) ([]flatten.FileEntry, error) {
	type frame struct {
		sha    string
		prefix string
	}

	var entries []flatten.FileEntry
	queue := []frame{{sha: rootSHA}}

	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]

		var tree *github.Tree
		err := c.retry.do(ctx, "get subtree", func() (*github.Response, error) {
			if err := c.wait(ctx); err != nil {
				return nil, err
			}
			var resp *github.Response
			var err error
			tree, resp, err = c.gh.Git.GetTree(ctx, ref.Owner, ref.Name, f.sha, false)
			return resp, err
		})
		if err != nil {
			return nil, fmt.Errorf("walking subtree %q: %w", f.prefix, err)
		}

		for _, te := range tree.Entries {
			if te.GetType() == "tree" {
				queue = append(queue, frame{sha: te.GetSHA(), prefix: f.prefix + te.GetPath() + "/"})
				continue
			}
			if e, ok := entryFromTree(f.prefix, te); ok {
				entries = append(entries, e)
			}
		}
	}
	return entries, nil
}

// treeToEntries flattens a recursive tree response.
func treeToEntries(prefix string, tree *github.Tree) []flatten.FileEntry {
	entries := make([]flatten.FileEntry, 0, len(tree.Entries))
	for _, te := range tree.Entries {
		if e, ok := entryFromTree(prefix, te); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// entryFromTree maps one API tree entry onto the pipeline model. Directory
// entries are dropped (hierarchy is derived from paths); submodules and
// symlinks keep their kind so filtering marks them non-fetchable.
func entryFromTree(prefix string, te *github.TreeEntry) (flatten.FileEntry, bool) {
	kind := flatten.KindFile
	switch te.GetType() {
	case "blob":
		if te.GetMode() == symlinkMode {
			kind = flatten.KindSymlink
		}
	case "commit":
		kind = flatten.KindSubmodule
	default:
		return flatten.FileEntry{}, false
	}

	return flatten.FileEntry{
		Path: prefix + te.GetPath(),
		Size: int64(te.GetSize()),
		SHA:  te.GetSHA(),
		Kind: kind,
	}, true
}
