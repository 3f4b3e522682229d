// Package security confines paths received from MCP clients to the
// server's working directory.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator resolves client paths against a root directory.
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator for root. The root need not exist
// yet; until it does every path is accepted.
func NewPathValidator(root string) (*PathValidator, error) {
	if root == "" {
		return nil, fmt.Errorf("root directory cannot be empty")
	}
	return &PathValidator{root: root}, nil
}

// Root returns the configured root directory.
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve returns the absolute form of path. Relative paths are taken from
// the root. NUL bytes are dropped. Paths escaping the root are rejected.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	ok, err := v.Within(abs)
	if err != nil {
		return "", fmt.Errorf("path validation failed: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("path is outside the working directory: %s", path)
	}
	return abs, nil
}

// ResolveDir is Resolve for directories: an existing path must be a
// directory, a missing one is accepted so it can be created later.
func (v *PathValidator) ResolveDir(dir string) (string, error) {
	abs, err := v.Resolve(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	switch {
	case os.IsNotExist(err):
		return abs, nil
	case err != nil:
		return "", fmt.Errorf("cannot access directory: %w", err)
	case !info.IsDir():
		return "", fmt.Errorf("path is not a directory: %s", dir)
	}
	return abs, nil
}

// Within reports whether path lies inside the root. Symlinks are followed
// on both sides so a link cannot lead out of the root.
func (v *PathValidator) Within(path string) (bool, error) {
	if _, err := os.Stat(v.root); os.IsNotExist(err) {
		return true, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	absRoot, err := filepath.Abs(v.root)
	if err != nil {
		return false, fmt.Errorf("failed to resolve root: %w", err)
	}
	cleanPath, cleanRoot := filepath.Clean(absPath), filepath.Clean(absRoot)

	realPath, err := evalExisting(cleanPath)
	if err != nil {
		return false, err
	}
	realRoot, err := evalExisting(cleanRoot)
	if err != nil {
		return false, err
	}

	inside := func(p string) bool {
		return under(p, cleanRoot) || under(p, realRoot)
	}
	return inside(cleanPath) && inside(realPath), nil
}

func under(path, dir string) bool {
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}

// evalExisting resolves symlinks in the deepest existing ancestor of path
// and appends the missing tail unchanged. A dangling link on the way is an
// error since its target cannot be checked.
func evalExisting(path string) (string, error) {
	var tail []string
	for p := path; ; {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, tail[i])
			}
			return resolved, nil
		}
		if _, lerr := os.Lstat(p); lerr == nil || !os.IsNotExist(lerr) {
			return "", fmt.Errorf("failed to resolve symlinks in %s: %w", p, err)
		}
		parent := filepath.Dir(p)
		if parent == p {
			return path, nil
		}
		tail = append(tail, filepath.Base(p))
		p = parent
	}
}
