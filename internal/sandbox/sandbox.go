// Package sandbox keeps filesystem mutations inside the project and makes
// them atomic where the platform allows.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidatePath checks that targetPath stays within projectRoot once symlinks
// are resolved. Relative paths are taken relative to projectRoot.
// Returns the resolved absolute path or an error.
func ValidatePath(projectRoot, targetPath string) (string, error) {
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolving project root symlinks: %w", err)
	}

	candidate := targetPath
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(realRoot, targetPath)
	}
	candidate = filepath.Clean(candidate)

	resolved, err := resolveExistingPath(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving target path: %w", err)
	}

	// Trailing separator so "root2" is not accepted for "root".
	rootPrefix := realRoot + string(filepath.Separator)
	if resolved != realRoot && !strings.HasPrefix(resolved, rootPrefix) {
		return "", fmt.Errorf("path '%s' resolves to '%s' which is outside the project root '%s'", targetPath, resolved, realRoot)
	}

	return resolved, nil
}

// resolveExistingPath resolves symlinks for the longest existing prefix of
// the path, then appends the non-existing suffix.
func resolveExistingPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	dir := filepath.Dir(path)
	if dir == path {
		return path, nil
	}

	resolvedDir, err := resolveExistingPath(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedDir, filepath.Base(path)), nil
}

// SafeRemoveAll removes a directory tree that must lie strictly inside
// projectRoot. Removing the root itself is refused.
func SafeRemoveAll(projectRoot, targetPath string) error {
	resolved, err := ValidatePath(projectRoot, targetPath)
	if err != nil {
		return err
	}
	root, err := ValidatePath(projectRoot, ".")
	if err != nil {
		return err
	}
	if resolved == root {
		return fmt.Errorf("refusing to remove project root '%s'", root)
	}
	return os.RemoveAll(resolved)
}
