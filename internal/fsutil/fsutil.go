// Package fsutil provides file utility functions shared by the persistence
// layers.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// File and directory permissions.
const (
	FilePermissions = 0o600
	DirPermissions  = 0o750
)

const tmpSuffix = ".tmp"

// WriteFileAtomic writes data to a temporary file in the target's directory,
// forces it to stable storage, and renames it over the target path. A crash
// mid-write therefore never leaves a partially-written target behind.
func WriteFileAtomic(path string, data []byte) error {
	dirErr := os.MkdirAll(filepath.Dir(path), DirPermissions)
	if dirErr != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", path, dirErr)
	}

	tmpPath := path + tmpSuffix

	tmpFile, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FilePermissions)
	if err != nil {
		return fmt.Errorf("failed to create temp file '%s': %w", tmpPath, err)
	}

	_, writeErr := tmpFile.Write(data)
	if writeErr != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)

		return fmt.Errorf("failed to write temp file '%s': %w", tmpPath, writeErr)
	}

	syncErr := tmpFile.Sync()
	if syncErr != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)

		return fmt.Errorf("failed to sync temp file '%s': %w", tmpPath, syncErr)
	}

	closeErr := tmpFile.Close()
	if closeErr != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("failed to close temp file '%s': %w", tmpPath, closeErr)
	}

	renameErr := os.Rename(tmpPath, path)
	if renameErr != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("failed to rename '%s' over '%s': %w", tmpPath, path, renameErr)
	}

	return nil
}
