// Package storage reads uploaded career-card files that may have moved
// between storage roots since they were recorded.
package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// MissingFileError is returned when no candidate location holds the file.
type MissingFileError struct {
	StoredPath string
	Tried      []string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("career card file %q not found (tried %s)", e.StoredPath, strings.Join(e.Tried, ", "))
}

type FileStorageInterface interface {
	Read(ctx context.Context, storedPath string) ([]byte, string, error)
}

type FileStorage struct {
	fs    afero.Fs
	roots []string
}

func NewFileStorage(roots []string) *FileStorage {
	return NewFileStorageWithFs(afero.NewOsFs(), roots)
}

func NewFileStorageWithFs(fs afero.Fs, roots []string) *FileStorage {
	return &FileStorage{fs: fs, roots: roots}
}

// Read returns the file contents and the path they were read from.
func (s *FileStorage) Read(ctx context.Context, storedPath string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	resolved, err := s.Resolve(storedPath)
	if err != nil {
		return nil, "", err
	}
	data, err := afero.ReadFile(s.fs, resolved)
	if err != nil {
		return nil, resolved, fmt.Errorf("read career card file %s: %w", resolved, err)
	}
	return data, resolved, nil
}

// Resolve returns the first existing candidate location for storedPath.
func (s *FileStorage) Resolve(storedPath string) (string, error) {
	candidates := s.candidates(storedPath)
	for _, candidate := range candidates {
		info, err := s.fs.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", &MissingFileError{StoredPath: storedPath, Tried: candidates}
}

// candidates tries the stored path as-is, then relative to each root, then
// with a leading "uploads/" segment dropped, then by base name alone.
func (s *FileStorage) candidates(storedPath string) []string {
	stored := strings.TrimSpace(storedPath)
	if stored == "" {
		return nil
	}

	var out []string
	seen := map[string]bool{}
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	if filepath.IsAbs(stored) {
		add(filepath.Clean(stored))
	}

	rel := path.Clean("/" + filepath.ToSlash(stored))[1:]
	if rel == "" {
		return out
	}
	variants := []string{rel, strings.TrimPrefix(rel, "uploads/"), path.Base(rel)}

	for _, root := range s.roots {
		for _, v := range variants {
			add(filepath.Join(root, filepath.FromSlash(v)))
		}
	}
	if !filepath.IsAbs(stored) {
		add(filepath.Join(".", filepath.FromSlash(rel)))
	}
	return out
}
