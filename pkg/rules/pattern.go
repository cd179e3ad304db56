package rules

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Pattern is a compiled match pattern.
type Pattern struct {
	raw   string
	globs []glob.Glob
}

// CompilePattern compiles a glob pattern using `/` as the separator.
func CompilePattern(raw string) (*Pattern, error) {
	normalized := NormalizePath(raw)

	variants := expandDoubleStar(normalized)
	globs := make([]glob.Glob, 0, len(variants))
	for _, variant := range variants {
		g, err := glob.Compile(variant, '/')
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}

	return &Pattern{raw: raw, globs: globs}, nil
}

// MustCompilePattern is like CompilePattern but panics on invalid patterns.
// It is meant for built-in defaults.
func MustCompilePattern(raw string) *Pattern {
	p, err := CompilePattern(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether path matches the pattern.
func (p *Pattern) Match(path string) bool {
	candidate := NormalizePath(path)
	for _, g := range p.globs {
		if g.Match(candidate) {
			return true
		}
	}
	return false
}

// String returns the pattern as written.
func (p *Pattern) String() string {
	return p.raw
}

// NormalizePath converts path to the slash-separated form patterns are
// matched against.
func NormalizePath(path string) string {
	path = filepath.ToSlash(path)
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	return path
}

// expandDoubleStar returns pattern plus every variant where one or more
// `**/` segments match zero directories.
func expandDoubleStar(pattern string) []string {
	idx := indexDoubleStarSegment(pattern, 0)
	if idx < 0 {
		return []string{pattern}
	}

	var out []string
	var expand func(p string, from int)
	expand = func(p string, from int) {
		i := indexDoubleStarSegment(p, from)
		if i < 0 {
			out = append(out, p)
			return
		}
		// keep `**/`
		expand(p, i+3)
		// drop `**/`
		expand(p[:i]+p[i+3:], i)
	}
	expand(pattern, 0)
	return out
}

// indexDoubleStarSegment finds `**/` starting a segment at or after from.
func indexDoubleStarSegment(pattern string, from int) int {
	for i := from; i+3 <= len(pattern); i++ {
		if pattern[i:i+3] != "**/" {
			continue
		}
		if i == 0 || pattern[i-1] == '/' {
			return i
		}
	}
	return -1
}
