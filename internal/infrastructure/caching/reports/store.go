// Package reports is the filesystem-backed report cache. Each report lives at
// {dir}/{scanId}.pdf and is never rewritten once stored.
package reports

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/AtRiskMedia/compliance-funnel/internal/domain/entities/scan"
)

// Ext is the file extension of stored reports.
const Ext = ".pdf"

// IsTempFile reports whether name is an in-flight write. Temp files are
// renamed into place on success.
func IsTempFile(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".tmp")
}

// Store reads and writes report artifacts in one directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string { return s.dir }

// Path returns the artifact path for scanID.
func (s *Store) Path(scanID string) (string, error) {
	if err := scan.ValidateID(scanID); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, scanID+Ext), nil
}

// Get returns the stored bytes for scanID. A missing artifact is not an error.
func (s *Store) Get(scanID string) ([]byte, bool, error) {
	path, err := s.Path(scanID)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read report %s: %w", scanID, err)
	}
	return data, true, nil
}

// Put stores data for scanID. The write goes to a temp file in the same
// directory and is renamed into place, so readers never see a partial PDF.
func (s *Store) Put(scanID string, data []byte) error {
	path, err := s.Path(scanID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+scanID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write temp report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp report: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp report: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename report into place: %w", err)
	}
	return nil
}
