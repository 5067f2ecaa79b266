// Package ingest implements the in-process ingestion pipeline.
//
// A raw repository reference goes through three steps:
//   - Parser: URL or slug parsing, host validation, ID and local path assignment
//   - Pipeline.Clone: go-git clone of the requested branch, tag or commit
//   - Summarizer: file discovery, pattern filtering and digest rendering
//
// Usage:
//
//	p := ingest.NewPipeline(ingest.PipelineOptions{TmpBasePath: dir})
//	q, err := p.Parse(ctx, "https://github.com/owner/repo", opts)
//	_, err = p.Clone(ctx, q)
//	summary, tree, content, err := p.Summarize(ctx, q)
package ingest
