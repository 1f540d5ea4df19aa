// Package gitapi implements tree resolution and blob fetching against the
// GitHub API for the flattening pipeline.
//
// All remote calls share one explicit retry policy: exponential backoff with
// a bounded budget, honoring the remote rate-limit reset hint when present.
// Tree resolution failures are fatal to a render; per-file fetch failures are
// isolated into result values so one failing file never aborts its siblings.
package gitapi
