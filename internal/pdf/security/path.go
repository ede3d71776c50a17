// Package security confines document paths to a sandbox directory.
package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrOutsideSandbox is returned for paths that resolve outside the sandbox
var ErrOutsideSandbox = errors.New("path is outside configured directory")

// PathValidator confines document paths to a configured directory. A
// validator with an empty directory accepts any path.
type PathValidator struct {
	configuredDirectory string
}

// NewPathValidator creates a new path validator for the given directory. The
// directory does not have to exist yet.
func NewPathValidator(configuredDirectory string) (*PathValidator, error) {
	if strings.ContainsRune(configuredDirectory, 0) {
		return nil, fmt.Errorf("configured directory contains a NUL byte")
	}
	if configuredDirectory == "" {
		return &PathValidator{}, nil
	}

	abs, err := filepath.Abs(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}
	return &PathValidator{configuredDirectory: abs}, nil
}

// Restricted reports whether paths are confined to a directory
func (v *PathValidator) Restricted() bool {
	return v.configuredDirectory != ""
}

// GetConfiguredDirectory returns the absolute sandbox directory, or "" when
// unrestricted
func (v *PathValidator) GetConfiguredDirectory() string {
	return v.configuredDirectory
}

// Resolve returns the absolute, cleaned form of path. Relative paths are
// taken relative to the sandbox directory when one is configured.
func (v *PathValidator) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("path contains a NUL byte")
	}

	if v.Restricted() && !filepath.IsAbs(path) {
		path = filepath.Join(v.configuredDirectory, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	if err := v.ValidatePath(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// ValidatePath checks that path is within the configured directory
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if !v.Restricted() {
		return nil
	}

	isWithin, err := v.IsPathWithinDirectory(path)
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}
	if !isWithin {
		return fmt.Errorf("%w: %s", ErrOutsideSandbox, path)
	}
	return nil
}

// IsPathWithinDirectory checks path against the sandbox both lexically and
// after resolving symlinks, so a link inside the sandbox cannot point out.
func (v *PathValidator) IsPathWithinDirectory(path string) (bool, error) {
	if !v.Restricted() {
		return true, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(v.configuredDirectory)

	realPath := cleanPath
	if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
		realPath = resolved
	}
	realDir := cleanDir
	if resolved, err := filepath.EvalSymlinks(cleanDir); err == nil {
		realDir = resolved
	}

	within := func(p string) bool {
		return isUnder(p, cleanDir) || isUnder(p, realDir)
	}
	return within(cleanPath) && within(realPath), nil
}

// isUnder reports whether p equals dir or lies beneath it
func isUnder(p, dir string) bool {
	if p == dir {
		return true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(p, prefix)
}
