package flatten

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/fyrsmithlabs/repoflat/internal/config"
)

// sniffLen bounds how many leading bytes the content sniff inspects.
const sniffLen = 8192

// Filter decides, before any content is fetched, whether a file entry is
// rendered. Rules apply in order, first match wins: path rule, oversize,
// binary extension. Everything else is tentatively included pending the
// post-fetch content sniff.
type Filter struct {
	patterns  []pattern
	maxSize   int64
	binaryExt map[string]bool
}

// NewFilter builds a filter from configuration. Configured exclusion patterns
// extend the built-in defaults; a non-empty binary extension list replaces the
// default list.
func NewFilter(cfg config.FlattenConfig) (*Filter, error) {
	if cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("max file size must be positive, got %d", cfg.MaxFileSize)
	}

	lines := config.DefaultExcludePatterns()
	lines = append(lines, cfg.ExcludePatterns...)

	exts := cfg.BinaryExtensions
	if len(exts) == 0 {
		exts = config.DefaultBinaryExtensions()
	}
	binaryExt := make(map[string]bool, len(exts))
	for _, ext := range exts {
		binaryExt[strings.ToLower(ext)] = true
	}

	return &Filter{
		patterns:  compilePatterns(lines),
		maxSize:   cfg.MaxFileSize,
		binaryExt: binaryExt,
	}, nil
}

// Classify returns the pre-content inclusion decision for an entry. Pure:
// depends only on the entry and the filter's configuration.
func (f *Filter) Classify(e FileEntry) Decision {
	if e.Kind != KindFile {
		return Decision{Reason: ReasonNonFile}
	}
	for _, p := range f.patterns {
		if p.match(e.Path) {
			return Decision{Reason: ReasonPathRule}
		}
	}
	if e.Size > f.maxSize {
		return Decision{Reason: ReasonOversize}
	}
	if f.binaryExt[strings.ToLower(path.Ext(e.Path))] {
		return Decision{Reason: ReasonBinaryExt}
	}
	return Decision{Included: true}
}

// SniffBinary inspects the leading bytes of fetched content for null bytes or
// invalid UTF-8. This is the post-fetch half of the two-stage binary check:
// it catches binary files whose extension the pre-filter did not recognize.
func SniffBinary(data []byte) bool {
	chunk := data
	if len(chunk) > sniffLen {
		chunk = chunk[:sniffLen]
	}
	for _, b := range chunk {
		if b == 0 {
			return true
		}
	}
	if len(chunk) < len(data) {
		// Trim a rune possibly cut at the chunk boundary before the
		// validity check.
		for i := 0; i < utf8.UTFMax && len(chunk) > 0; i++ {
			if r, _ := utf8.DecodeLastRune(chunk); r != utf8.RuneError {
				break
			}
			chunk = chunk[:len(chunk)-1]
		}
	}
	return !utf8.Valid(chunk)
}
