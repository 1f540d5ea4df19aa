package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		ok   bool
	}{
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"comment", "# build junk", false},
		{"negation unsupported", "!keep.txt", false},
		{"bare slash", "/", false},
		{"plain glob", "*.log", true},
		{"directory", "node_modules/", true},
		{"anchored", "/dist", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := compileLine(tt.line)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestPatternMatch(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		path    string
		matches bool
	}{
		{"glob any depth", "*.log", "a/b/c.log", true},
		{"glob top level", "*.log", "c.log", true},
		{"glob wrong ext", "*.log", "c.logs", false},
		{"dir excludes contents", "node_modules/", "node_modules/pkg/index.js", true},
		{"dir at depth", "node_modules/", "web/node_modules/pkg/index.js", true},
		{"dir-only not file", "node_modules/", "docs/node_modules", false},
		{"name matches file", "Thumbs.db", "pics/Thumbs.db", true},
		{"name matches dir subtree", "cache", "cache/entry.bin", true},
		{"anchored only at root", "/dist", "dist/app.js", true},
		{"anchored not nested", "/dist", "web/dist/app.js", false},
		{"slash pattern anchored", "docs/internal", "docs/internal/notes.md", true},
		{"slash pattern not elsewhere", "docs/internal", "x/docs/internal/notes.md", false},
		{"star segment", "build/*/out", "build/linux/out", true},
		{"star single segment only", "build/*/out", "build/linux/amd64/out", false},
		{"doublestar", "**/generated/**", "a/b/generated/c/d.go", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := compileLine(tt.line)
			assert.True(t, ok, "line should compile")
			assert.Equal(t, tt.matches, p.match(tt.path), "line %q vs path %q", tt.line, tt.path)
		})
	}
}

func TestCompilePatterns_Dedup(t *testing.T) {
	patterns := compilePatterns([]string{"*.log", "*.log", "# comment", "", "node_modules/"})
	assert.Len(t, patterns, 2)
}
