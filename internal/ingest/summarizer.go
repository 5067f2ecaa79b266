package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/gitingest-go/internal/domain"
	"github.com/quantmind-br/gitingest-go/internal/utils"
)

const separator = "================================================"

// Summarizer renders a cloned repository as summary, tree and content text
type Summarizer struct {
	maxDisplaySize int64
	workers        int
	logger         *utils.Logger
}

// SummarizerOptions contains options for creating a Summarizer
type SummarizerOptions struct {
	MaxDisplaySize int64 // bytes of file content emitted before sampling stops; 0 disables the cap
	Workers        int
	Logger         *utils.Logger
}

// NewSummarizer creates a new Summarizer
func NewSummarizer(opts SummarizerOptions) *Summarizer {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Summarizer{
		maxDisplaySize: opts.MaxDisplaySize,
		workers:        workers,
		logger:         logger,
	}
}

// Summarize walks q.LocalPath (or q.Subpath below it)
func (s *Summarizer) Summarize(ctx context.Context, q *domain.Query) (summary, tree, content string, err error) {
	walkRoot := q.LocalPath
	if q.Subpath != "" {
		walkRoot = filepath.Join(q.LocalPath, filepath.FromSlash(q.Subpath))
	}

	walkRoot, err = resolveWalkRoot(q.LocalPath, walkRoot, q.Subpath)
	if err != nil {
		return "", "", "", err
	}

	info, err := os.Stat(walkRoot)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to access %s: %w", walkRoot, err)
	}

	var root *node
	if info.IsDir() {
		w := &walker{
			filter:      NewFilter(append(append([]string{}, DefaultIgnorePatterns...), q.IgnorePatterns...), q.IncludePatterns),
			maxFileSize: q.MaxFileSize,
			logger:      s.logger,
		}
		root = &node{name: q.Slug, dir: true}
		if err := w.walk(ctx, walkRoot, root, 0); err != nil {
			return "", "", "", err
		}
	} else {
		root = &node{name: info.Name(), rel: info.Name(), size: info.Size()}
	}

	files := root.files()
	tree = renderTree(root)
	content, err = s.renderContent(ctx, walkRoot, info.IsDir(), q.Subpath, files)
	if err != nil {
		return "", "", "", err
	}
	summary = renderSummary(q, len(files), tree, content)

	s.logger.Debug().
		Str("repo", q.FullName()).
		Int("files", len(files)).
		Int("content_bytes", len(content)).
		Msg("Repository summarized")

	return summary, tree, content, nil
}

type walker struct {
	filter      *Filter
	maxFileSize int64
	logger      *utils.Logger
	count       int
}

func (w *walker) walk(ctx context.Context, dir string, parent *node, depth int) error {
	if depth > MaxDirectoryDepth {
		w.logger.Debug().Str("dir", parent.rel).Msg("Max directory depth reached")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, e := range entries {
		if w.count >= MaxFiles {
			w.logger.Warn().Int("max_files", MaxFiles).Msg("Max file count reached, truncating walk")
			break
		}
		if e.Type()&fs.ModeSymlink != 0 {
			continue
		}

		rel := path.Join(parent.rel, e.Name())
		if e.IsDir() {
			if w.filter.SkipDir(rel) {
				continue
			}
			child := &node{name: e.Name(), rel: rel, dir: true}
			if err := w.walk(ctx, filepath.Join(dir, e.Name()), child, depth+1); err != nil {
				return err
			}
			// directories emptied by filtering are dropped
			if len(child.children) > 0 {
				parent.children = append(parent.children, child)
			}
			continue
		}

		if !e.Type().IsRegular() || !w.filter.Keep(rel) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		if fi.Size() > w.maxFileSize {
			w.logger.Debug().Str("file", rel).Int64("size", fi.Size()).Msg("Skipping file over size limit")
			continue
		}
		parent.children = append(parent.children, &node{name: e.Name(), rel: rel, size: fi.Size()})
		w.count++
	}

	sortChildren(parent.children)
	return nil
}

// resolveWalkRoot follows symlinks in walkRoot and rejects targets that
// leave the clone at localPath.
func resolveWalkRoot(localPath, walkRoot, subpath string) (string, error) {
	base, err := filepath.EvalSymlinks(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to access %s: %w", localPath, err)
	}

	target, err := filepath.EvalSymlinks(walkRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.NewValidationError("url",
				fmt.Sprintf("path does not exist in repository: %s", subpath))
		}
		return "", fmt.Errorf("failed to access %s: %w", walkRoot, err)
	}

	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", domain.NewValidationError("url",
			fmt.Sprintf("path escapes repository: %s", subpath))
	}
	return target, nil
}

// renderContent reads files concurrently and joins them in tree order until
// the display cap is reached.
func (s *Summarizer) renderContent(ctx context.Context, walkRoot string, isDir bool, subpath string, files []*node) (string, error) {
	bodies := make([]string, len(files))
	errs := utils.ParallelForEach(ctx, files, s.workers, func(ctx context.Context, idx int, f *node) error {
		p := walkRoot
		if isDir {
			p = filepath.Join(walkRoot, filepath.FromSlash(f.rel))
		}
		bodies[idx] = readBody(p)
		return nil
	})
	if err := utils.FirstError(errs); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var b strings.Builder
	var emitted int64
	for i, f := range files {
		if s.maxDisplaySize > 0 && emitted >= s.maxDisplaySize {
			s.logger.Debug().Int("omitted", len(files)-i).Msg("Display size reached, omitting remaining files")
			break
		}
		name := f.rel
		if isDir && subpath != "" {
			name = path.Join(subpath, f.rel)
		} else if !isDir && subpath != "" {
			name = subpath
		}
		fmt.Fprintf(&b, "%s\nFILE: %s\n%s\n%s\n\n", separator, name, separator, bodies[i])
		emitted += int64(len(bodies[i]))
	}
	return b.String(), nil
}

func readBody(p string) string {
	raw, err := os.ReadFile(p)
	if err != nil {
		return fmt.Sprintf("Error reading file: %v", err)
	}
	if IsBinary(raw) {
		return NonTextPlaceholder
	}
	text, err := DecodeText(raw)
	if err != nil {
		return NonTextPlaceholder
	}
	return text
}

func renderSummary(q *domain.Query, files int, tree, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", q.FullName())
	if q.Branch != "" {
		fmt.Fprintf(&b, "Branch: %s\n", q.Branch)
	}
	if q.Commit != "" {
		fmt.Fprintf(&b, "Commit: %s\n", q.Commit)
	}
	if q.Subpath != "" {
		fmt.Fprintf(&b, "Subpath: %s\n", q.Subpath)
	}
	fmt.Fprintf(&b, "Files analyzed: %d\n", files)
	fmt.Fprintf(&b, "\nEstimated tokens: %s", FormatTokens(len(tree)+len(content)))
	return b.String()
}

// FormatTokens estimates the token count of n characters (four per token)
// and formats it as 950, 1.2k or 3.4M.
func FormatTokens(chars int) string {
	tokens := chars / 4
	switch {
	case tokens >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(tokens)/1_000_000)
	case tokens >= 1_000:
		return fmt.Sprintf("%.1fk", float64(tokens)/1_000)
	default:
		return fmt.Sprintf("%d", tokens)
	}
}
