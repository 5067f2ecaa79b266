// Package service runs ingestion requests through a domain.Pipeline.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quantmind-br/gitingest-go/internal/domain"
	"github.com/quantmind-br/gitingest-go/internal/utils"
)

// Ingestor validates a request, drives the pipeline and stores the digest
type Ingestor struct {
	pipeline  domain.Pipeline
	artifacts *ArtifactStore
	logger    *utils.Logger
}

// IngestorOptions contains options for creating an Ingestor
type IngestorOptions struct {
	Pipeline  domain.Pipeline
	Artifacts *ArtifactStore
	Logger    *utils.Logger
}

// NewIngestor creates a new Ingestor
func NewIngestor(opts IngestorOptions) *Ingestor {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	artifacts := opts.Artifacts
	if artifacts == nil {
		artifacts = NewArtifactStore(nil, "")
	}
	return &Ingestor{
		pipeline:  opts.Pipeline,
		artifacts: artifacts,
		logger:    logger,
	}
}

// Process runs parse, clone and summarize for req, then writes
// tree + "\n" + content next to the clone.
func (i *Ingestor) Process(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	patternType, err := domain.ParsePatternType(string(req.PatternType))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.URL) == "" {
		return nil, domain.NewValidationError("url", "The 'url' parameter is required.")
	}
	if req.MaxFileSize < 0 {
		return nil, domain.NewValidationError("max_file_size",
			fmt.Sprintf("must not be negative: %d", req.MaxFileSize))
	}

	opts := domain.ParseOptions{MaxFileSize: req.MaxFileSize}
	if patternType == domain.PatternInclude {
		opts.IncludePatterns = req.Pattern
	} else {
		opts.IgnorePatterns = req.Pattern
	}

	start := time.Now()
	q, err := i.pipeline.Parse(ctx, req.URL, opts)
	if err != nil {
		return nil, err
	}
	if q.URL == "" {
		return nil, domain.NewValidationError("url", "The 'url' parameter is required.")
	}

	logger := i.logger.WithIngestID(q.ID)
	logger.Info().Str("repo", q.URL).Str("ref", q.Ref()).Msg("Ingestion started")

	if _, err := i.pipeline.Clone(ctx, q); err != nil {
		return nil, err
	}

	summary, tree, content, err := i.pipeline.Summarize(ctx, q)
	if err != nil {
		return nil, err
	}

	if err := i.artifacts.Write(q.ArtifactPath(), tree+"\n"+content); err != nil {
		return nil, err
	}

	logger.Info().
		Dur("duration", time.Since(start)).
		Int("content_bytes", len(content)).
		Msg("Ingestion completed")

	return &domain.IngestResult{
		Summary:  summary,
		Tree:     tree,
		Content:  content,
		IngestID: q.ID,
	}, nil
}
