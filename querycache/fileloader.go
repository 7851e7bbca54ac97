package querycache

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileLoader resolves query file names against one or more search roots,
// adapted from the teacher's directory-scanning loader (file_loader.go) but
// generalized to the .sql/.sql.tmpl search-path discipline of spec §6
// instead of scanning `-- sql-name:` blocks inside a single file.
type FileLoader struct {
	roots []string
}

// NewFileLoader returns a FileLoader consulting roots in order.
func NewFileLoader(roots ...string) *FileLoader {
	return &FileLoader{roots: roots}
}

// AddRoot appends another search root, consulted after the existing ones.
func (f *FileLoader) AddRoot(root string) {
	f.roots = append(f.roots, root)
}

// Resolve finds name either as a path that already exists or relative to one
// of the configured search roots, returning the first match.
func (f *FileLoader) Resolve(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	for _, root := range f.roots {
		candidate := filepath.Join(root, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("querycache: file %q not found in search roots %v", name, f.roots)
}

// Read resolves name and returns its contents as a string.
func (f *FileLoader) Read(name string) (string, error) {
	path, err := f.Resolve(name)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("querycache: failed to read %q: %w", path, err)
	}
	return string(content), nil
}
