// Package pathcheck validates client-supplied file paths against a project
// root before anything touches the filesystem.
package pathcheck

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath = errors.New("invalid file path")
	ErrOutsideRoot = errors.New("file path outside project")
)

// Validate rejects paths containing null bytes and paths that resolve
// outside root. Paths are interpreted relative to root unless absolute.
func Validate(path, root string) error {
	if path == "" || strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, path)
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(filepath.Clean(root), abs)
	if err != nil {
		return ErrOutsideRoot
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ErrOutsideRoot
	}
	return nil
}
