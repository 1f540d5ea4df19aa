package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/repoflat/internal/flatten"
)

func TestInteractive_Sections(t *testing.T) {
	doc := testDocument(
		flatten.RenderedFile{
			Path: "src/main.go", Size: 12, Language: "Go",
			Included: true, Content: "package main",
		},
		includedFile("README.md", "# Demo"),
		skippedFile("logo.png", flatten.ReasonBinaryExt),
		flatten.RenderedFile{Path: "broken.go", Skip: flatten.ReasonFetchError, Err: "blob not found"},
	)

	out, err := Interactive(doc)
	require.NoError(t, err)

	require.Len(t, out.Files, 2)
	assert.Equal(t, "src/main.go", out.Files[0].Path)
	assert.Equal(t, "file-src-main-go", out.Files[0].Anchor)
	assert.Equal(t, "Go", out.Files[0].Language)
	assert.Contains(t, string(out.Files[0].HTML), "main")

	require.Len(t, out.Skipped, 2)
	assert.Equal(t, "logo.png", out.Skipped[0].Path)
	assert.Equal(t, string(flatten.ReasonBinaryExt), out.Skipped[0].Reason)
	assert.Equal(t, "blob not found", out.Skipped[1].Detail)

	// Skipped files appear in the tree but never as sections.
	assert.Contains(t, out.Tree, "logo.png")
	for _, f := range out.Files {
		assert.NotEqual(t, "logo.png", f.Path)
	}

	assert.NotEmpty(t, out.CSS, "chroma class definitions must be embedded")
	assert.Equal(t, "octo/demo@main", out.Title)
}

func TestInteractive_AnchorCollisions(t *testing.T) {
	// "a/b.txt" and "a.b.txt" slug to the same anchor; the second occurrence
	// must be disambiguated so fragment links stay unique.
	doc := testDocument(
		includedFile("a/b.txt", "one"),
		includedFile("a.b.txt", "two"),
	)

	out, err := Interactive(doc)
	require.NoError(t, err)
	require.Len(t, out.Files, 2)
	assert.Equal(t, "file-a-b-txt", out.Files[0].Anchor)
	assert.Equal(t, "file-a-b-txt-2", out.Files[1].Anchor)
}

func TestInteractive_SearchIndex(t *testing.T) {
	doc := testDocument(
		includedFile("notes.md", "Mixed CASE Content"),
		skippedFile("skip.zip", flatten.ReasonBinaryExt),
	)

	out, err := Interactive(doc)
	require.NoError(t, err)

	require.Len(t, out.Search, 1, "only included files are searchable")
	assert.Equal(t, "notes.md", out.Search[0].Path)
	assert.Equal(t, out.Files[0].Anchor, out.Search[0].Anchor)
	assert.Equal(t, "mixed case content", out.Search[0].Text)
}

func TestInteractive_UnknownLanguageFallsBack(t *testing.T) {
	doc := testDocument(includedFile("data.weird", "just text"))

	out, err := Interactive(doc)
	require.NoError(t, err)
	require.Len(t, out.Files, 1)
	assert.Contains(t, string(out.Files[0].HTML), "just text")
}

func TestInteractive_ContentEscaped(t *testing.T) {
	doc := testDocument(includedFile("snippet.txt", `<script>alert("x")</script>`))

	out, err := Interactive(doc)
	require.NoError(t, err)
	html := string(out.Files[0].HTML)
	assert.NotContains(t, html, `<script>alert`)
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestWritePage(t *testing.T) {
	doc := testDocument(
		includedFile("main.go", "package main\n\nfunc main() {}"),
		skippedFile("huge.bin", flatten.ReasonOversize),
	)
	model, err := Interactive(doc)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePage(&buf, model))
	page := buf.String()

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, `id="file-main-go"`)
	assert.Contains(t, page, `href="#file-main-go"`)
	assert.Contains(t, page, "huge.bin")
	assert.Contains(t, page, "oversize")
	// Search index embedded for the client-side script.
	assert.Contains(t, page, `"anchor":"file-main-go"`)
	assert.Contains(t, page, "const index =")
}

func TestWritePage_EmptyDocument(t *testing.T) {
	model, err := Interactive(testDocument())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePage(&buf, model))
	assert.Contains(t, buf.String(), "0 files rendered")
}
