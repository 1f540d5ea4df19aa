// Package flatten implements the repository flattening pipeline: it turns a
// resolved remote file tree into one deterministic, ordered sequence of
// rendered files.
//
// The pipeline runs strictly left to right: coordinates -> tree -> filtered
// list -> fetched/decoded files -> ordered document. Tree resolution and
// content fetching are abstracted behind the TreeResolver and BlobFetcher
// interfaces so the pipeline itself stays free of transport concerns and
// tests can substitute fakes.
//
// # Binary detection
//
// Detection is two-stage by design. The pre-fetch stage excludes files by
// declared size and by known-binary extension without fetching them. The
// post-fetch stage sniffs the first content bytes for null bytes or invalid
// UTF-8, catching binary files whose extension was not recognized. Both
// stages are independently testable.
//
// # Ordering
//
// Final ordering is a byte-wise lexicographic sort over full slash paths,
// applied after all fetches settle. This keeps every directory's contents
// contiguous and makes output identical across runs regardless of fetch
// completion timing.
package flatten
