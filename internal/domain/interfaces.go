package domain

import "context"

//go:generate mockgen -destination=mocks/mock_pipeline.go -package=mocks . Pipeline

// Pipeline turns a repository reference into an ingestion digest
type Pipeline interface {
	// Parse resolves raw user input into a Query with a fresh ID and local path
	Parse(ctx context.Context, source string, opts ParseOptions) (*Query, error)
	// Clone fetches the repository described by q into q.LocalPath
	Clone(ctx context.Context, q *Query) (string, error)
	// Summarize walks the cloned repository and renders summary, tree and content
	Summarize(ctx context.Context, q *Query) (summary, tree, content string, err error)
}
