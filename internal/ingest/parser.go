package ingest

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/quantmind-br/gitingest-go/internal/domain"
	"github.com/quantmind-br/gitingest-go/internal/utils"
)

var (
	commitPattern = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)
	scpPattern    = regexp.MustCompile(`^[\w.-]+@([^:/]+):(.+)$`)
)

// Parser turns raw user input into a domain.Query
type Parser struct {
	tmpBasePath string
	knownHosts  map[string]bool
	newID       func() string
}

// ParserOptions contains options for creating a Parser
type ParserOptions struct {
	TmpBasePath string
	KnownHosts  map[string]bool
}

// NewParser creates a new Parser
func NewParser(opts ParserOptions) *Parser {
	hosts := opts.KnownHosts
	if hosts == nil {
		hosts = KnownHosts
	}
	return &Parser{
		tmpBasePath: opts.TmpBasePath,
		knownHosts:  hosts,
		newID:       uuid.NewString,
	}
}

// Parse accepts repository URLs (optionally pointing at a tree, blob or
// commit), scp-style SSH addresses, host/owner/repo and owner/repo slugs.
func (p *Parser) Parse(source string, opts domain.ParseOptions) (*domain.Query, error) {
	raw := strings.TrimSpace(source)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty input", domain.ErrInvalidURL)
	}

	u, err := url.Parse(normalizeSource(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidURL, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", domain.ErrInvalidURL, u.Scheme)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if !p.knownHosts[host] {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedHost, host)
	}

	segments := splitPath(u.Path)
	if len(segments) < 2 {
		return nil, fmt.Errorf("%w: expected owner/repo in %s", domain.ErrInvalidURL, raw)
	}

	q := &domain.Query{
		ID:     p.newID(),
		Source: source,
		Host:   host,
		Owner:  segments[0],
		Repo:   strings.TrimSuffix(segments[1], ".git"),
	}
	if q.Repo == "" {
		return nil, fmt.Errorf("%w: empty repository name in %s", domain.ErrInvalidURL, raw)
	}

	parseRef(q, segments[2:])
	if q.Subpath == "." {
		q.Subpath = ""
	}
	if q.Subpath == ".." || strings.HasPrefix(q.Subpath, "../") {
		return nil, fmt.Errorf("%w: path escapes repository: %s", domain.ErrInvalidURL, q.Subpath)
	}

	q.URL = fmt.Sprintf("https://%s/%s/%s", host, q.Owner, q.Repo)
	q.Slug = utils.SanitizeFilename(q.Owner + "-" + q.Repo)
	q.LocalPath = filepath.Join(p.tmpBasePath, q.ID, q.Slug)
	q.MaxFileSize = int64(opts.MaxFileSize) * 1024
	q.IncludePatterns = domain.SplitPatterns(opts.IncludePatterns)
	q.IgnorePatterns = domain.SplitPatterns(opts.IgnorePatterns)

	return q, nil
}

// normalizeSource rewrites scp-style and scheme-less input into https URLs
func normalizeSource(raw string) string {
	if m := scpPattern.FindStringSubmatch(raw); m != nil && !strings.Contains(raw, "://") {
		return "https://" + m[1] + "/" + m[2]
	}
	if strings.Contains(raw, "://") {
		return raw
	}

	first := strings.SplitN(strings.TrimPrefix(raw, "/"), "/", 2)[0]
	if strings.Contains(first, ".") {
		return "https://" + raw
	}
	return "https://" + DefaultHost + "/" + strings.TrimPrefix(raw, "/")
}

func splitPath(p string) []string {
	var segments []string
	for _, s := range strings.Split(strings.Trim(p, "/"), "/") {
		if s == "" {
			continue
		}
		if decoded, err := url.PathUnescape(s); err == nil {
			s = decoded
		}
		segments = append(segments, s)
	}
	return segments
}

// parseRef reads the segments following owner/repo:
// GitHub /tree|blob/<ref>/<path>, GitLab /-/tree|blob/<ref>/<path>,
// Bitbucket /src/<ref>/<path>, and /commit/<sha> on all of them.
func parseRef(q *domain.Query, rest []string) {
	if len(rest) > 0 && rest[0] == "-" {
		rest = rest[1:]
	}
	if len(rest) < 2 {
		return
	}

	switch rest[0] {
	case "tree", "blob", "src":
		ref := rest[1]
		if commitPattern.MatchString(ref) {
			q.Commit = strings.ToLower(ref)
		} else {
			q.Branch = ref
		}
		if len(rest) > 2 {
			q.Subpath = path.Clean(strings.Join(rest[2:], "/"))
		}
	case "commit", "commits":
		if commitPattern.MatchString(rest[1]) {
			q.Commit = strings.ToLower(rest[1])
		}
	}
}
