package flatten

import (
	"path"
	"strings"
)

// pattern is one compiled gitignore-style exclusion rule.
type pattern struct {
	segments []string
	dirOnly  bool
}

// compilePatterns parses gitignore-style lines into matchable patterns.
// Comments, blank lines and negations are dropped (negations are not
// supported, matching the rest of the toolchain).
func compilePatterns(lines []string) []pattern {
	var out []pattern
	seen := make(map[string]bool)

	for _, line := range lines {
		p, ok := compileLine(line)
		if !ok {
			continue
		}
		key := strings.Join(p.segments, "/")
		if p.dirOnly {
			key += "/"
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// compileLine parses a single gitignore-style line.
func compileLine(line string) (pattern, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
		return pattern{}, false
	}

	dirOnly := strings.HasSuffix(line, "/")
	line = strings.TrimSuffix(line, "/")

	// A leading slash anchors the pattern to the repository root. A
	// pattern containing a slash is anchored too, per gitignore rules.
	anchored := strings.HasPrefix(line, "/") || strings.Contains(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return pattern{}, false
	}

	if !anchored {
		line = "**/" + line
	}
	return pattern{segments: strings.Split(line, "/"), dirOnly: dirOnly}, true
}

// match reports whether the slash-separated repository path is excluded by
// this pattern. A pattern that matches a directory excludes everything
// beneath it.
func (p pattern) match(filePath string) bool {
	segs := strings.Split(filePath, "/")

	// Try the pattern against every segment prefix: matching a proper
	// prefix means an ancestor directory matched, which excludes the file.
	for i := 1; i <= len(segs); i++ {
		if !matchSegments(p.segments, segs[:i]) {
			continue
		}
		if i < len(segs) {
			return true // matched an ancestor directory
		}
		return !p.dirOnly // dir-only patterns never match the file itself
	}
	return false
}

// matchSegments matches glob pattern segments against path segments, with
// "**" spanning any number of segments.
func matchSegments(pat, segs []string) bool {
	if len(pat) == 0 {
		return len(segs) == 0
	}
	if pat[0] == "**" {
		// "**" matches zero or more leading segments.
		for skip := 0; skip <= len(segs); skip++ {
			if matchSegments(pat[1:], segs[skip:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	ok, err := path.Match(pat[0], segs[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pat[1:], segs[1:])
}
