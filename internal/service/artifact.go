package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/quantmind-br/gitingest-go/internal/domain"
)

// ArtifactStore reads and writes the per-ingestion text digest below the
// temporary clone root.
type ArtifactStore struct {
	fs   afero.Fs
	root string
}

// NewArtifactStore creates an ArtifactStore; a nil fs selects the OS filesystem
func NewArtifactStore(fs afero.Fs, root string) *ArtifactStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &ArtifactStore{fs: fs, root: root}
}

// Write stores content at path, creating parent directories
func (s *ArtifactStore) Write(path, content string) error {
	if err := s.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	if err := afero.WriteFile(s.fs, path, []byte(content), 0644); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	return nil
}

// Open returns the digest written for the ingestion id, and its file name
func (s *ArtifactStore) Open(id string) (afero.File, string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, "", domain.NewValidationError("ingest_id", fmt.Sprintf("invalid ingest id: %s", id))
	}

	matches, err := afero.Glob(s.fs, filepath.Join(s.root, id, "*.txt"))
	if err != nil {
		return nil, "", err
	}
	if len(matches) == 0 {
		return nil, "", fmt.Errorf("%w: digest %s", domain.ErrNotFound, id)
	}
	sort.Strings(matches)

	f, err := s.fs.Open(matches[0])
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%w: digest %s", domain.ErrNotFound, id)
		}
		return nil, "", err
	}
	return f, filepath.Base(matches[0]), nil
}
