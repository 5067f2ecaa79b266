package domain

import (
	"fmt"
	"strings"
)

// PatternType selects whether a request pattern includes or excludes files
type PatternType string

const (
	PatternInclude PatternType = "include"
	PatternExclude PatternType = "exclude"
)

// ParsePatternType validates a raw pattern type string
func ParsePatternType(s string) (PatternType, error) {
	switch PatternType(s) {
	case PatternInclude, PatternExclude:
		return PatternType(s), nil
	default:
		return "", NewValidationError("pattern_type", fmt.Sprintf("invalid pattern type: %s", s))
	}
}

// IngestRequest is the input of a single ingestion
type IngestRequest struct {
	URL         string
	MaxFileSize int // kilobytes
	PatternType PatternType
	Pattern     string
}

// IngestResult is the successful output of a single ingestion
type IngestResult struct {
	Summary  string `json:"summary"`
	Tree     string `json:"tree"`
	Content  string `json:"content"`
	IngestID string `json:"ingest_id"`
}

// Query is a parsed ingestion request, resolved against a repository host
// and a local working directory.
type Query struct {
	ID     string
	Source string // raw input as received

	URL     string // clean clone URL, without tree/blob suffixes
	Host    string
	Owner   string
	Repo    string
	Slug    string // owner-repo
	Branch  string
	Commit  string
	Subpath string

	LocalPath   string // <tmp base>/<id>/<slug>
	MaxFileSize int64  // bytes

	IncludePatterns []string
	IgnorePatterns  []string
}

// Ref returns the commit if set, otherwise the branch
func (q *Query) Ref() string {
	if q.Commit != "" {
		return q.Commit
	}
	return q.Branch
}

// FullName returns owner/repo
func (q *Query) FullName() string {
	return q.Owner + "/" + q.Repo
}

// ArtifactPath returns the path of the text file written after ingestion
func (q *Query) ArtifactPath() string {
	return q.LocalPath + ".txt"
}

// ParseOptions carries the request options into Pipeline.Parse
type ParseOptions struct {
	MaxFileSize     int // kilobytes
	IncludePatterns string
	IgnorePatterns  string
}

// SplitPatterns splits a user pattern string on commas and whitespace
func SplitPatterns(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}
