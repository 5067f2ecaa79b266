package ingest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/gitingest-go/internal/domain"
)

func newTestParser(t *testing.T) (*Parser, string) {
	t.Helper()
	tmp := t.TempDir()
	p := NewParser(ParserOptions{TmpBasePath: tmp})
	p.newID = func() string { return "test-id" }
	return p, tmp
}

func TestParser_Parse(t *testing.T) {
	const sha = "0123456789abcdef0123456789abcdef01234567"

	tests := []struct {
		name    string
		source  string
		host    string
		owner   string
		repo    string
		branch  string
		commit  string
		subpath string
	}{
		{name: "plain URL", source: "https://github.com/owner/repo", host: "github.com", owner: "owner", repo: "repo"},
		{name: "git suffix", source: "https://github.com/owner/repo.git", host: "github.com", owner: "owner", repo: "repo"},
		{name: "www prefix", source: "https://www.github.com/owner/repo", host: "github.com", owner: "owner", repo: "repo"},
		{name: "tree with subpath", source: "https://github.com/owner/repo/tree/main/src/pkg", host: "github.com", owner: "owner", repo: "repo", branch: "main", subpath: "src/pkg"},
		{name: "blob", source: "https://github.com/owner/repo/blob/dev/README.md", host: "github.com", owner: "owner", repo: "repo", branch: "dev", subpath: "README.md"},
		{name: "gitlab tree", source: "https://gitlab.com/group/proj/-/tree/dev/docs", host: "gitlab.com", owner: "group", repo: "proj", branch: "dev", subpath: "docs"},
		{name: "bitbucket src", source: "https://bitbucket.org/team/proj/src/master/lib", host: "bitbucket.org", owner: "team", repo: "proj", branch: "master", subpath: "lib"},
		{name: "commit URL", source: "https://github.com/owner/repo/commit/" + sha, host: "github.com", owner: "owner", repo: "repo", commit: sha},
		{name: "tree at commit", source: "https://github.com/owner/repo/tree/0123456789ABCDEF0123456789ABCDEF01234567", host: "github.com", owner: "owner", repo: "repo", commit: sha},
		{name: "scp style", source: "git@github.com:owner/repo.git", host: "github.com", owner: "owner", repo: "repo"},
		{name: "host without scheme", source: "gitlab.com/group/proj", host: "gitlab.com", owner: "group", repo: "proj"},
		{name: "slug", source: "owner/repo", host: "github.com", owner: "owner", repo: "repo"},
		{name: "surrounding whitespace", source: "  https://codeberg.org/owner/repo  ", host: "codeberg.org", owner: "owner", repo: "repo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestParser(t)
			q, err := p.Parse(tt.source, domain.ParseOptions{})
			require.NoError(t, err)

			assert.Equal(t, tt.host, q.Host)
			assert.Equal(t, tt.owner, q.Owner)
			assert.Equal(t, tt.repo, q.Repo)
			assert.Equal(t, tt.branch, q.Branch)
			assert.Equal(t, tt.commit, q.Commit)
			assert.Equal(t, tt.subpath, q.Subpath)
			assert.Equal(t, "https://"+tt.host+"/"+tt.owner+"/"+tt.repo, q.URL)
			assert.Equal(t, tt.source, q.Source)
		})
	}
}

func TestParser_Parse_LocalPathAndOptions(t *testing.T) {
	p, tmp := newTestParser(t)

	q, err := p.Parse("https://github.com/Owner/My.Repo", domain.ParseOptions{
		MaxFileSize:     10,
		IncludePatterns: "*.md, docs/",
		IgnorePatterns:  "",
	})
	require.NoError(t, err)

	assert.Equal(t, "test-id", q.ID)
	assert.Equal(t, "Owner-My.Repo", q.Slug)
	assert.Equal(t, filepath.Join(tmp, "test-id", "Owner-My.Repo"), q.LocalPath)
	assert.Equal(t, filepath.Join(tmp, "test-id", "Owner-My.Repo")+".txt", q.ArtifactPath())
	assert.Equal(t, int64(10240), q.MaxFileSize)
	assert.Equal(t, []string{"*.md", "docs/"}, q.IncludePatterns)
	assert.Nil(t, q.IgnorePatterns)
}

func TestParser_Parse_UniqueIDs(t *testing.T) {
	p := NewParser(ParserOptions{TmpBasePath: t.TempDir()})

	a, err := p.Parse("owner/repo", domain.ParseOptions{})
	require.NoError(t, err)
	b, err := p.Parse("owner/repo", domain.ParseOptions{})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.LocalPath, b.LocalPath)
}

func TestParser_Parse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
	}{
		{name: "empty", source: "   ", want: domain.ErrInvalidURL},
		{name: "unknown host", source: "https://example.com/owner/repo", want: domain.ErrUnsupportedHost},
		{name: "missing repo", source: "https://github.com/owner", want: domain.ErrInvalidURL},
		{name: "bad scheme", source: "ftp://github.com/owner/repo", want: domain.ErrInvalidURL},
		{name: "escaping subpath", source: "https://github.com/owner/repo/tree/main/../../etc", want: domain.ErrInvalidURL},
		{name: "empty repo name", source: "https://github.com/owner/.git", want: domain.ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestParser(t)
			_, err := p.Parse(tt.source, domain.ParseOptions{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, domain.IsClientError(err))
		})
	}
}

func TestParser_CustomKnownHosts(t *testing.T) {
	p := NewParser(ParserOptions{
		TmpBasePath: t.TempDir(),
		KnownHosts:  map[string]bool{"git.example.com": true},
	})

	q, err := p.Parse("https://git.example.com/team/tool", domain.ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "git.example.com", q.Host)

	_, err = p.Parse("https://github.com/owner/repo", domain.ParseOptions{})
	assert.ErrorIs(t, err, domain.ErrUnsupportedHost)
}
