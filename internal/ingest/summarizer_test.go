package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/gitingest-go/internal/domain"
)

// writeRepo creates files (slash-separated path -> content) below a fresh clone directory
func writeRepo(t *testing.T, files map[string]string) *domain.Query {
	t.Helper()
	local := filepath.Join(t.TempDir(), "id", "owner-repo")
	for rel, content := range files {
		p := filepath.Join(local, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return &domain.Query{
		Owner:       "owner",
		Repo:        "repo",
		Slug:        "owner-repo",
		LocalPath:   local,
		MaxFileSize: 1024,
	}
}

func fileBlock(name, body string) string {
	return separator + "\nFILE: " + name + "\n" + separator + "\n" + body + "\n\n"
}

func TestSummarizer_Summarize(t *testing.T) {
	q := writeRepo(t, map[string]string{
		"README.md":          "# Hello",
		"main.go":            "package main",
		".hidden":            "secret",
		"src/util.go":        "package src",
		"node_modules/x.js":  "ignored",
		"logo.png":           "ignored",
		"big.txt":            strings.Repeat("x", 2048),
		"empty/.gitkeep.png": "ignored",
	})
	q.Branch = "main"

	s := NewSummarizer(SummarizerOptions{Workers: 4})
	summary, tree, content, err := s.Summarize(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, "Directory structure:\n"+
		"└── owner-repo/\n"+
		"    ├── README.md\n"+
		"    ├── main.go\n"+
		"    ├── .hidden\n"+
		"    └── src/\n"+
		"        └── util.go\n", tree)

	assert.Equal(t,
		fileBlock("README.md", "# Hello")+
			fileBlock("main.go", "package main")+
			fileBlock(".hidden", "secret")+
			fileBlock("src/util.go", "package src"),
		content)

	assert.True(t, strings.HasPrefix(summary, "Repository: owner/repo\nBranch: main\nFiles analyzed: 4\n\nEstimated tokens: "))
	assert.NotContains(t, summary, "Commit:")
	assert.NotContains(t, summary, "Subpath:")
}

func TestSummarizer_IncludePatterns(t *testing.T) {
	q := writeRepo(t, map[string]string{
		"README.md":   "# Hello",
		"main.go":     "package main",
		"src/util.go": "package src",
		"docs/a.md":   "doc",
	})
	q.IncludePatterns = []string{"*.go"}

	_, tree, content, err := NewSummarizer(SummarizerOptions{}).Summarize(context.Background(), q)
	require.NoError(t, err)

	assert.Contains(t, tree, "main.go")
	assert.Contains(t, tree, "util.go")
	assert.NotContains(t, tree, "README.md")
	assert.NotContains(t, tree, "docs/")
	assert.NotContains(t, content, "# Hello")
}

func TestSummarizer_IgnorePatterns(t *testing.T) {
	q := writeRepo(t, map[string]string{
		"main.go":      "package main",
		"main_test.go": "package main",
		"docs/a.md":    "doc",
	})
	q.IgnorePatterns = []string{"*_test.go", "docs/"}

	summary, tree, _, err := NewSummarizer(SummarizerOptions{}).Summarize(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, "Directory structure:\n└── owner-repo/\n    └── main.go\n", tree)
	assert.Contains(t, summary, "Files analyzed: 1\n")
}

func TestSummarizer_Subpath(t *testing.T) {
	q := writeRepo(t, map[string]string{
		"README.md":   "# Hello",
		"src/util.go": "package src",
	})
	q.Subpath = "src"

	summary, tree, content, err := NewSummarizer(SummarizerOptions{}).Summarize(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, "Directory structure:\n└── owner-repo/\n    └── util.go\n", tree)
	assert.Equal(t, fileBlock("src/util.go", "package src"), content)
	assert.Contains(t, summary, "Subpath: src\n")
}

func TestSummarizer_SubpathFile(t *testing.T) {
	q := writeRepo(t, map[string]string{
		"src/util.go": "package src",
	})
	q.Subpath = "src/util.go"

	_, tree, content, err := NewSummarizer(SummarizerOptions{}).Summarize(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, "Directory structure:\n└── util.go\n", tree)
	assert.Equal(t, fileBlock("src/util.go", "package src"), content)
}

func TestSummarizer_MissingSubpath(t *testing.T) {
	q := writeRepo(t, map[string]string{"main.go": "package main"})
	q.Subpath = "nope"

	_, _, _, err := NewSummarizer(SummarizerOptions{}).Summarize(context.Background(), q)
	require.Error(t, err)

	var validationErr *domain.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestSummarizer_SubpathSymlinkOutsideClone(t *testing.T) {
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("HOST-SECRET"), 0644))

	q := writeRepo(t, map[string]string{"main.go": "package main"})
	require.NoError(t, os.Symlink(outside, filepath.Join(q.LocalPath, "evil")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(q.LocalPath, "leak.txt")))

	for _, subpath := range []string{"evil", "leak.txt"} {
		t.Run(subpath, func(t *testing.T) {
			q.Subpath = subpath
			_, _, content, err := NewSummarizer(SummarizerOptions{}).Summarize(context.Background(), q)
			require.Error(t, err)
			assert.NotContains(t, content, "HOST-SECRET")

			var validationErr *domain.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Contains(t, validationErr.Message, "escapes repository")
		})
	}
}

func TestSummarizer_SubpathSymlinkInsideClone(t *testing.T) {
	q := writeRepo(t, map[string]string{"src/util.go": "package src"})
	require.NoError(t, os.Symlink(filepath.Join(q.LocalPath, "src"), filepath.Join(q.LocalPath, "alias")))
	q.Subpath = "alias"

	_, _, content, err := NewSummarizer(SummarizerOptions{}).Summarize(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, fileBlock("alias/util.go", "package src"), content)
}

func TestSummarizer_ZeroMaxFileSizeSkipsEveryFile(t *testing.T) {
	q := writeRepo(t, map[string]string{
		"main.go": "package main",
		"big.txt": strings.Repeat("x", 1<<20),
	})
	q.MaxFileSize = 0

	summary, tree, content, err := NewSummarizer(SummarizerOptions{}).Summarize(context.Background(), q)
	require.NoError(t, err)

	assert.Empty(t, content)
	assert.Equal(t, "Directory structure:\n└── owner-repo/\n", tree)
	assert.Contains(t, summary, "Files analyzed: 0\n")
}

func TestSummarizer_NonTextFile(t *testing.T) {
	q := writeRepo(t, map[string]string{
		"data.bin":  "ab\x00cd",
		"latin.txt": "caf\xe9",
	})

	_, _, content, err := NewSummarizer(SummarizerOptions{}).Summarize(context.Background(), q)
	require.NoError(t, err)

	assert.Contains(t, content, fileBlock("data.bin", NonTextPlaceholder))
	assert.Contains(t, content, fileBlock("latin.txt", "café"))
}

func TestSummarizer_DisplayCap(t *testing.T) {
	q := writeRepo(t, map[string]string{
		"a.txt": "aaaa",
		"b.txt": "bbbb",
		"c.txt": "cccc",
	})

	summary, tree, content, err := NewSummarizer(SummarizerOptions{MaxDisplaySize: 6}).Summarize(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, fileBlock("a.txt", "aaaa")+fileBlock("b.txt", "bbbb"), content)
	// the tree still lists everything that was walked
	assert.Contains(t, tree, "c.txt")
	assert.Contains(t, summary, "Files analyzed: 3\n")
}

func TestSummarizer_CancelledContext(t *testing.T) {
	q := writeRepo(t, map[string]string{"main.go": "package main"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, _, err := NewSummarizer(SummarizerOptions{}).Summarize(ctx, q)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatTokens(t *testing.T) {
	assert.Equal(t, "0", FormatTokens(0))
	assert.Equal(t, "999", FormatTokens(3999))
	assert.Equal(t, "1.0k", FormatTokens(4000))
	assert.Equal(t, "1.5k", FormatTokens(6000))
	assert.Equal(t, "1.5M", FormatTokens(6_000_000))
}
