package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_NoPatterns(t *testing.T) {
	f := NewFilter(nil, nil)

	assert.True(t, f.Keep("main.go"))
	assert.True(t, f.Keep("docs/guide.md"))
	assert.False(t, f.SkipDir("src"))
	assert.True(t, f.SkipDir("node_modules"))
	assert.True(t, f.SkipDir("web/node_modules"))
	assert.True(t, f.SkipDir(".git"))
}

func TestFilter_Ignore(t *testing.T) {
	f := NewFilter([]string{"*.md", "docs/", "# comment", "  "}, nil)

	assert.False(t, f.Keep("README.md"))
	assert.False(t, f.Keep("pkg/notes.md"))
	assert.True(t, f.Keep("main.go"))
	assert.True(t, f.SkipDir("docs"))
	assert.False(t, f.Keep("docs/api.go"))
	assert.False(t, f.SkipDir("src"))
}

func TestFilter_Include(t *testing.T) {
	f := NewFilter(nil, []string{"*.go"})

	assert.True(t, f.Keep("main.go"))
	assert.True(t, f.Keep("cmd/app/main.go"))
	assert.False(t, f.Keep("README.md"))
	// directories are still walked so nested matches are found
	assert.False(t, f.SkipDir("cmd"))
}

func TestFilter_IgnoreWinsOverInclude(t *testing.T) {
	f := NewFilter([]string{"*_test.go"}, []string{"*.go"})

	assert.True(t, f.Keep("parser.go"))
	assert.False(t, f.Keep("parser_test.go"))
}

func TestFilter_WindowsSeparators(t *testing.T) {
	f := NewFilter([]string{"docs/"}, nil)
	assert.False(t, f.Keep(`docs\guide.txt`))
}
