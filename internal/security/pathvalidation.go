// Package security guards the one filesystem write the CLI performs on a
// user-supplied path: the optional debug chart export.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// validatePathWithinDirectory rejects filePath unless it resolves to a
// location inside safeDir, preventing a -chart argument like
// "../../etc/passwd" from escaping the allowed directories.
func validatePathWithinDirectory(filePath, safeDir string) error {
	cleanPath := filepath.Clean(filePath)

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	absSafeDir, err := filepath.Abs(safeDir)
	if err != nil {
		return fmt.Errorf("failed to resolve safe directory path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(absSafeDir); err == nil {
		absSafeDir = resolved
	}
	// Resolve symlinks in the longest existing prefix of absPath.
	for dir, rest := absPath, ""; ; dir, rest = filepath.Dir(dir), filepath.Join(filepath.Base(dir), rest) {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			absPath = filepath.Join(resolved, rest)
			break
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}

	relPath, err := filepath.Rel(absSafeDir, absPath)
	if err != nil {
		return fmt.Errorf("path is outside safe directory: %w", err)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) || filepath.IsAbs(relPath) {
		return fmt.Errorf("path traversal detected: %s attempts to escape %s", filePath, safeDir)
	}

	return nil
}

// validatePathWithinAllowedDirs accepts filePath if it resolves inside any
// one of allowedDirs.
func validatePathWithinAllowedDirs(filePath string, allowedDirs []string) error {
	if len(allowedDirs) == 0 {
		return fmt.Errorf("no allowed directories specified")
	}
	for _, dir := range allowedDirs {
		if err := validatePathWithinDirectory(filePath, dir); err == nil {
			return nil
		}
	}
	return fmt.Errorf("path must be within one of the allowed directories: %v", allowedDirs)
}

// ValidateExportPath guards the -chart flag: the destination must resolve
// inside either the OS temp directory or the current working directory, so
// a malicious or mistyped path can't write outside those locations.
func ValidateExportPath(filePath string) error {
	tempDir := os.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	return validatePathWithinAllowedDirs(filePath, []string{tempDir, cwd})
}
