package ingest

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Filter decides which repository paths take part in an ingestion.
// Patterns use gitignore syntax; paths are relative to the repository root.
type Filter struct {
	ignore  gitignore.Matcher
	include gitignore.Matcher
}

// NewFilter builds a Filter from ignore and include patterns.
// With no include patterns every non-ignored file is included.
func NewFilter(ignorePatterns, includePatterns []string) *Filter {
	f := &Filter{
		ignore: gitignore.NewMatcher(compile(ignorePatterns)),
	}
	if len(includePatterns) > 0 {
		f.include = gitignore.NewMatcher(compile(includePatterns))
	}
	return f
}

func compile(patterns []string) []gitignore.Pattern {
	compiled := make([]gitignore.Pattern, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		compiled = append(compiled, gitignore.ParsePattern(p, nil))
	}
	return compiled
}

// SkipDir reports whether the walk should not descend into dir
func (f *Filter) SkipDir(rel string) bool {
	parts := splitRel(rel)
	if len(parts) > 0 && IgnoreDirs[parts[len(parts)-1]] {
		return true
	}
	return f.ignore.Match(parts, true)
}

// Keep reports whether the file at rel is part of the digest
func (f *Filter) Keep(rel string) bool {
	parts := splitRel(rel)
	if f.ignore.Match(parts, false) {
		return false
	}
	if f.include == nil {
		return true
	}
	return f.include.Match(parts, false)
}

func splitRel(rel string) []string {
	rel = strings.Trim(strings.ReplaceAll(rel, "\\", "/"), "/")
	if rel == "" || rel == "." {
		return nil
	}
	return strings.Split(rel, "/")
}
