package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quantmind-br/gitingest-go/internal/domain"
	"github.com/quantmind-br/gitingest-go/internal/git"
	"github.com/quantmind-br/gitingest-go/internal/utils"
)

// Pipeline is the in-process domain.Pipeline: parse, go-git clone, summarize
type Pipeline struct {
	parser       *Parser
	cloner       *git.Cloner
	summarizer   *Summarizer
	cloneTimeout time.Duration
	token        string
	logger       *utils.Logger
}

// PipelineOptions contains options for creating a Pipeline
type PipelineOptions struct {
	TmpBasePath    string
	MaxDisplaySize int64
	Workers        int
	CloneTimeout   time.Duration
	Token          string // defaults to $GITHUB_TOKEN
	GitClient      git.Client
	CloneProgress  io.Writer
	Logger         *utils.Logger
}

var _ domain.Pipeline = (*Pipeline)(nil)

// NewPipeline creates a new Pipeline
func NewPipeline(opts PipelineOptions) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	token := opts.Token
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	return &Pipeline{
		parser: NewParser(ParserOptions{TmpBasePath: opts.TmpBasePath}),
		cloner: git.NewCloner(git.ClonerOptions{
			Client:   opts.GitClient,
			Logger:   logger,
			Progress: opts.CloneProgress,
		}),
		summarizer: NewSummarizer(SummarizerOptions{
			MaxDisplaySize: opts.MaxDisplaySize,
			Workers:        opts.Workers,
			Logger:         logger,
		}),
		cloneTimeout: opts.CloneTimeout,
		token:        token,
		logger:       logger,
	}
}

// Parse resolves source into a Query
func (p *Pipeline) Parse(_ context.Context, source string, opts domain.ParseOptions) (*domain.Query, error) {
	return p.parser.Parse(source, opts)
}

// Clone clones q into q.LocalPath. When q names no branch, the remote
// default branch is recorded on q.
func (p *Pipeline) Clone(ctx context.Context, q *domain.Query) (string, error) {
	if err := os.MkdirAll(filepath.Dir(q.LocalPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create clone directory: %w", err)
	}

	if p.cloneTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cloneTimeout)
		defer cancel()
	}

	start := time.Now()
	branch, err := p.clone(ctx, q)
	if err != nil {
		return "", domain.NewCloneError(q.URL, q.Ref(), err)
	}
	if q.Branch == "" && q.Commit == "" {
		q.Branch = branch
	}

	p.logger.Info().
		Str("repo", q.FullName()).
		Str("ref", q.Ref()).
		Dur("duration", time.Since(start)).
		Msg("Repository cloned")

	return q.LocalPath, nil
}

// clone tries q.Branch and, while the remote reports it missing, extends it
// with leading subpath segments, so /tree/feature/x/docs resolves to branch
// feature/x and subpath docs.
func (p *Pipeline) clone(ctx context.Context, q *domain.Query) (string, error) {
	for {
		branch, err := p.cloner.Clone(ctx, git.CloneRequest{
			URL:       q.URL,
			LocalPath: q.LocalPath,
			Branch:    q.Branch,
			Commit:    q.Commit,
			Token:     p.token,
		})
		if err == nil || q.Commit != "" || q.Branch == "" || q.Subpath == "" || !git.IsMissingReference(err) {
			return branch, err
		}

		head, rest, _ := strings.Cut(q.Subpath, "/")
		p.logger.Debug().
			Str("ref", q.Branch).
			Str("next", q.Branch+"/"+head).
			Msg("Reference not found, extending with subpath")
		if rmErr := os.RemoveAll(q.LocalPath); rmErr != nil {
			return "", rmErr
		}
		q.Branch = q.Branch + "/" + head
		q.Subpath = rest
	}
}

// Summarize renders the cloned repository
func (p *Pipeline) Summarize(ctx context.Context, q *domain.Query) (string, string, string, error) {
	return p.summarizer.Summarize(ctx, q)
}
