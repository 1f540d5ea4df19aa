// Package textutil provides small text helpers shared by the renderers.
package textutil

import (
	"fmt"
	"sort"
	"strings"
)

// HumanBytes formats a byte count: integers for bytes, one decimal for KiB
// and above.
func HumanBytes(n int64) string {
	units := []string{"B", "KiB", "MiB", "GiB", "TiB"}
	f := float64(n)
	i := 0
	for f >= 1024.0 && i < len(units)-1 {
		f /= 1024.0
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d %s", n, units[i])
	}
	return fmt.Sprintf("%.1f %s", f, units[i])
}

// Slugify maps a path to an identifier safe for URL fragments and element
// IDs: alphanumerics, dashes and underscores are kept, everything else
// becomes a dash.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
			b.WriteRune(ch)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// treeNode is one directory level of the implied hierarchy.
type treeNode struct {
	children map[string]*treeNode
	isFile   bool
}

// DirTree renders slash-separated paths as an ASCII directory tree rooted at
// root. Directories sort before files at each level, both alphabetically.
func DirTree(root string, paths []string) string {
	top := &treeNode{children: make(map[string]*treeNode)}
	for _, p := range paths {
		node := top
		segs := strings.Split(p, "/")
		for i, seg := range segs {
			child, ok := node.children[seg]
			if !ok {
				child = &treeNode{children: make(map[string]*treeNode)}
				node.children[seg] = child
			}
			if i == len(segs)-1 {
				child.isFile = true
			}
			node = child
		}
	}

	var b strings.Builder
	b.WriteString(root)
	b.WriteByte('\n')
	writeTree(&b, top, "")
	return b.String()
}

func writeTree(b *strings.Builder, node *treeNode, prefix string) {
	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		di := !node.children[names[i]].isFile
		dj := !node.children[names[j]].isFile
		if di != dj {
			return di // directories first
		}
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	for i, name := range names {
		last := i == len(names)-1
		branch, ext := "├── ", "│   "
		if last {
			branch, ext = "└── ", "    "
		}
		b.WriteString(prefix + branch + name + "\n")
		writeTree(b, node.children[name], prefix+ext)
	}
}
