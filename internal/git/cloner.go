package git

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/quantmind-br/gitingest-go/internal/utils"
)

// CloneRequest describes what to fetch and where to put it
type CloneRequest struct {
	URL       string
	LocalPath string
	Branch    string // branch or tag name; empty selects the remote HEAD
	Commit    string // full commit hash; takes precedence over Branch
	Token     string // optional HTTP token
}

// Cloner fetches repositories through a Client
type Cloner struct {
	client   Client
	logger   *utils.Logger
	progress io.Writer
}

// ClonerOptions contains options for creating a Cloner
type ClonerOptions struct {
	Client   Client
	Logger   *utils.Logger
	Progress io.Writer
}

// NewCloner creates a Cloner; a nil Client selects go-git
func NewCloner(opts ClonerOptions) *Cloner {
	client := opts.Client
	if client == nil {
		client = NewClient()
	}
	return &Cloner{
		client:   client,
		logger:   opts.Logger,
		progress: opts.Progress,
	}
}

// Clone clones req.URL into req.LocalPath and returns the resolved branch
// (empty when a detached commit was checked out).
func (c *Cloner) Clone(ctx context.Context, req CloneRequest) (string, error) {
	if req.URL == "" {
		return "", errors.New("clone URL is required")
	}
	if req.LocalPath == "" {
		return "", errors.New("clone destination is required")
	}

	if req.Commit != "" {
		return "", c.cloneCommit(ctx, req)
	}

	opts := c.baseOptions(req)
	opts.Depth = 1
	opts.SingleBranch = true

	if req.Branch == "" {
		repo, err := c.client.PlainCloneContext(ctx, req.LocalPath, false, opts)
		if err != nil {
			return "", err
		}
		return headBranch(repo), nil
	}

	opts.ReferenceName = plumbing.NewBranchReferenceName(req.Branch)
	_, err := c.client.PlainCloneContext(ctx, req.LocalPath, false, opts)
	if err == nil {
		return req.Branch, nil
	}
	if !IsMissingReference(err) {
		return "", err
	}

	if c.logger != nil {
		c.logger.Debug().Str("ref", req.Branch).Msg("Branch not found, trying tag")
	}
	opts.ReferenceName = plumbing.NewTagReferenceName(req.Branch)
	if _, err := c.client.PlainCloneContext(ctx, req.LocalPath, false, opts); err != nil {
		return "", fmt.Errorf("reference %q not found: %w", req.Branch, err)
	}
	return req.Branch, nil
}

func (c *Cloner) cloneCommit(ctx context.Context, req CloneRequest) error {
	// A shallow clone cannot reach arbitrary commits, fetch full history
	opts := c.baseOptions(req)
	if req.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(req.Branch)
		opts.SingleBranch = true
	}

	repo, err := c.client.PlainCloneContext(ctx, req.LocalPath, false, opts)
	if err != nil {
		return err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}

	if err := wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(req.Commit)}); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", req.Commit, err)
	}
	return nil
}

func (c *Cloner) baseOptions(req CloneRequest) *git.CloneOptions {
	opts := &git.CloneOptions{
		URL:      req.URL,
		Progress: c.progress,
	}
	if req.Token != "" {
		opts.Auth = &githttp.BasicAuth{
			Username: "token",
			Password: req.Token,
		}
	}
	return opts
}

func headBranch(repo *git.Repository) string {
	if repo == nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	if head.Name().IsBranch() {
		return head.Name().Short()
	}
	return ""
}

// IsMissingReference reports whether err means the requested branch or tag
// does not exist on the remote
func IsMissingReference(err error) bool {
	return errors.Is(err, plumbing.ErrReferenceNotFound) ||
		errors.As(err, new(git.NoMatchingRefSpecError))
}
