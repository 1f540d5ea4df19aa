package render

import (
	"bytes"
	"fmt"
	"html/template"
	"path"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/fyrsmithlabs/repoflat/internal/flatten"
	"github.com/fyrsmithlabs/repoflat/internal/textutil"
)

// highlightStyle is the chroma style used for all highlighted blocks.
const highlightStyle = "monokai"

// InteractiveDocument is the document model handed to a page renderer: file
// sections with stable anchors and highlighted content, a substring search
// index, and a summary of skipped files. It carries no DOM or theme concerns
// beyond the chroma class definitions.
type InteractiveDocument struct {
	Title       string
	Repo        string
	GeneratedAt time.Time
	Tree        string
	Files       []FileSection
	Skipped     []SkippedFile
	Search      []SearchEntry
	Stats       flatten.Stats
	CSS         template.CSS
}

// FileSection is one included file rendered as a highlighted block addressed
// by a stable per-file anchor.
type FileSection struct {
	Path      string
	Anchor    string
	Language  string
	SizeHuman string
	HTML      template.HTML
}

// SkippedFile is one excluded or errored file listed in the summary section.
type SkippedFile struct {
	Path      string
	Reason    string
	Detail    string
	SizeHuman string
}

// SearchEntry maps a file's searchable text back to its anchor for
// client-side substring lookup.
type SearchEntry struct {
	Anchor string `json:"anchor"`
	Path   string `json:"path"`
	Text   string `json:"text"`
}

// Interactive builds the interactive document model from a flattened
// document. Excluded and errored files appear only in the summary section.
func Interactive(doc *flatten.Document) (*InteractiveDocument, error) {
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}

	var cssBuf bytes.Buffer
	if err := formatter.WriteCSS(&cssBuf, style); err != nil {
		return nil, fmt.Errorf("writing highlight css: %w", err)
	}

	out := &InteractiveDocument{
		Title:       doc.Ref.String(),
		Repo:        doc.Ref.String(),
		GeneratedAt: time.Now().UTC(),
		Stats:       doc.Stats,
		CSS:         template.CSS(cssBuf.String()),
	}

	var treePaths []string
	anchors := newAnchorSet()
	for _, f := range doc.Files {
		treePaths = append(treePaths, f.Path)
		if !f.Included {
			out.Skipped = append(out.Skipped, SkippedFile{
				Path:      f.Path,
				Reason:    string(f.Skip),
				Detail:    f.Err,
				SizeHuman: textutil.HumanBytes(f.Size),
			})
			continue
		}

		anchor := anchors.anchorFor(f.Path)
		highlighted, err := highlight(f.Path, f.Content, formatter, style)
		if err != nil {
			return nil, fmt.Errorf("highlighting %s: %w", f.Path, err)
		}

		out.Files = append(out.Files, FileSection{
			Path:      f.Path,
			Anchor:    anchor,
			Language:  f.Language,
			SizeHuman: textutil.HumanBytes(f.Size),
			HTML:      template.HTML(highlighted),
		})
		out.Search = append(out.Search, SearchEntry{
			Anchor: anchor,
			Path:   f.Path,
			Text:   strings.ToLower(f.Content),
		})
	}
	out.Tree = textutil.DirTree(doc.Ref.Name, treePaths)

	return out, nil
}

// highlight renders one file's content as highlighted HTML using the lexer
// matched from its file name, falling back to plain text.
func highlight(filePath, content string, formatter *chromahtml.Formatter, style *chroma.Style) (string, error) {
	lexer := lexers.Match(path.Base(filePath))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// anchorSet derives stable anchors from paths, disambiguating slug
// collisions ("a/b.txt" and "a-b.txt" slug identically).
type anchorSet struct {
	seen map[string]int
}

func newAnchorSet() *anchorSet {
	return &anchorSet{seen: make(map[string]int)}
}

func (a *anchorSet) anchorFor(filePath string) string {
	slug := "file-" + textutil.Slugify(filePath)
	a.seen[slug]++
	if n := a.seen[slug]; n > 1 {
		return fmt.Sprintf("%s-%d", slug, n)
	}
	return slug
}
