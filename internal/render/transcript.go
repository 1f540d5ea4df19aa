package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/repoflat/internal/flatten"
)

// TranscriptOptions configures the transcript encoding.
type TranscriptOptions struct {
	// SkippedPlaceholders emits one placeholder line per skipped file
	// instead of omitting them entirely. The trailing summary line is
	// always present.
	SkippedPlaceholders bool
}

// Transcript renders the flat, delimiter-wrapped text encoding for language
// model ingestion. Each included file is wrapped in an index-tagged block:
//
//	<document index="3">
//	<source>path/to/file.go</source>
//	<document_content>
//	...content...
//	</document_content index="3">
//	</document>
//
// The closing delimiter carries the document index, so content that merely
// resembles the delimiter cannot terminate a block early. ParseTranscript
// recovers the exact (path, content) pairs.
func Transcript(doc *flatten.Document, opts TranscriptOptions) string {
	var b strings.Builder
	b.Grow(int(doc.Stats.TotalBytes) + 1024)

	b.WriteString("<documents>\n")
	index := 0
	for _, f := range doc.Files {
		if !f.Included {
			continue
		}
		index++
		fmt.Fprintf(&b, "<document index=\"%d\">\n", index)
		fmt.Fprintf(&b, "<source>%s</source>\n", f.Path)
		b.WriteString("<document_content>\n")
		b.WriteString(f.Content)
		fmt.Fprintf(&b, "\n</document_content index=\"%d\">\n", index)
		b.WriteString("</document>\n")
	}
	b.WriteString("</documents>\n")

	skipped := doc.SkippedFiles()
	if opts.SkippedPlaceholders {
		for _, f := range skipped {
			fmt.Fprintf(&b, "<!-- skipped %s (%s) -->\n", f.Path, f.Skip)
		}
	}
	b.WriteString(summaryLine(doc, skipped))
	return b.String()
}

// summaryLine enumerates skip counts by reason, sorted for determinism.
func summaryLine(doc *flatten.Document, skipped []flatten.RenderedFile) string {
	if len(skipped) == 0 {
		return fmt.Sprintf("<!-- summary: %d files included, 0 skipped -->\n", doc.Stats.Included)
	}

	reasons := make([]string, 0, len(doc.Stats.Excluded))
	for r := range doc.Stats.Excluded {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)

	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		parts = append(parts, fmt.Sprintf("%s: %d", r, doc.Stats.Excluded[flatten.Reason(r)]))
	}
	return fmt.Sprintf("<!-- summary: %d files included, %d skipped (%s) -->\n",
		doc.Stats.Included, len(skipped), strings.Join(parts, ", "))
}

// FilePair is one recovered (path, content) pair from a transcript.
type FilePair struct {
	Path    string
	Content string
}

// ParseTranscript splits a transcript back into its (path, content) pairs.
// Documents are consumed sequentially; each content block is terminated only
// by the close delimiter carrying that document's own index, which preserves
// round-trip recoverability when content contains delimiter-like text.
func ParseTranscript(s string) ([]FilePair, error) {
	var pairs []FilePair

	for index := 1; ; index++ {
		open := fmt.Sprintf("<document index=\"%d\">\n<source>", index)
		start := strings.Index(s, open)
		if start < 0 {
			break
		}
		rest := s[start+len(open):]

		srcEnd := strings.Index(rest, "</source>\n<document_content>\n")
		if srcEnd < 0 {
			return nil, fmt.Errorf("document %d: malformed source block", index)
		}
		path := rest[:srcEnd]
		rest = rest[srcEnd+len("</source>\n<document_content>\n"):]

		closeTag := fmt.Sprintf("\n</document_content index=\"%d\">\n</document>", index)
		contentEnd := strings.Index(rest, closeTag)
		if contentEnd < 0 {
			return nil, fmt.Errorf("document %d (%s): missing close delimiter", index, path)
		}

		pairs = append(pairs, FilePair{Path: path, Content: rest[:contentEnd]})
		s = rest[contentEnd+len(closeTag):]
	}
	return pairs, nil
}
