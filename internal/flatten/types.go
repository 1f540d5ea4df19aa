package flatten

import "fmt"

// RepoRef identifies the unit of work: one repository at one ref. Immutable
// once a render starts.
type RepoRef struct {
	Owner string
	Name  string
	Ref   string
}

// String renders the reference as owner/name@ref.
func (r RepoRef) String() string {
	if r.Ref == "" {
		return r.Owner + "/" + r.Name
	}
	return fmt.Sprintf("%s/%s@%s", r.Owner, r.Name, r.Ref)
}

// Validate checks that the reference names a repository.
func (r RepoRef) Validate() error {
	if r.Owner == "" || r.Name == "" {
		return fmt.Errorf("repository reference requires owner and name, got %q/%q", r.Owner, r.Name)
	}
	return nil
}

// EntryKind distinguishes tree entry types. Only files proceed past filtering;
// submodules and symlinks pass through unfetched so the pipeline never
// recurses into foreign trees.
type EntryKind string

const (
	KindFile      EntryKind = "file"
	KindSubmodule EntryKind = "submodule"
	KindSymlink   EntryKind = "symlink"
)

// FileEntry is one entry of a resolved tree. Path is slash-separated and
// repository-root-relative; SHA is the opaque content identifier used to
// fetch the blob later. Paths are unique within one resolved tree and fully
// determine nesting.
type FileEntry struct {
	Path string
	Size int64
	SHA  string
	Kind EntryKind
}

// Reason explains why a file was excluded from rendered content.
type Reason string

const (
	ReasonPathRule      Reason = "path-rule"
	ReasonOversize      Reason = "oversize"
	ReasonBinaryExt     Reason = "binary-extension"
	ReasonBinaryContent Reason = "binary-content"
	ReasonNonFile       Reason = "non-file"
	ReasonFetchError    Reason = "fetch-error"
	ReasonDecodeError   Reason = "decode-error"
)

// Decision is the pre-content inclusion verdict for a file entry. It is a
// pure function of the entry and configuration; the post-fetch content sniff
// may still override an included verdict to binary-content.
type Decision struct {
	Included bool
	Reason   Reason
}

// BlobResult is the isolated outcome of one content fetch.
type BlobResult struct {
	Data []byte
	Err  error
}

// RenderedFile is the immutable per-file output of the pipeline. Exactly one
// of the three states holds: included with decoded Content, excluded with a
// Skip reason, or errored with Skip = fetch-error/decode-error and Err detail.
type RenderedFile struct {
	Path     string
	Size     int64
	Language string
	Included bool
	Content  string
	Skip     Reason
	Err      string
}

// Stats summarizes a flattened document.
type Stats struct {
	Total      int
	Included   int
	Errored    int
	Excluded   map[Reason]int
	TotalBytes int64
}

// Document is the single intermediate model both output encodings derive
// from. Files are in final deterministic order; consumers never re-filter,
// re-fetch or re-order.
type Document struct {
	Ref   RepoRef
	Files []RenderedFile
	Stats Stats
}

// IncludedFiles returns the subset of files carrying rendered content, in
// document order.
func (d *Document) IncludedFiles() []RenderedFile {
	out := make([]RenderedFile, 0, d.Stats.Included)
	for _, f := range d.Files {
		if f.Included {
			out = append(out, f)
		}
	}
	return out
}

// SkippedFiles returns the files excluded or errored, in document order.
func (d *Document) SkippedFiles() []RenderedFile {
	out := make([]RenderedFile, 0, len(d.Files)-d.Stats.Included)
	for _, f := range d.Files {
		if !f.Included {
			out = append(out, f)
		}
	}
	return out
}
