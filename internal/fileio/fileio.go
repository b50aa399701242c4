// Package fileio is a thin pass-through to the local filesystem for files the
// tool reads (kubeconfig) and writes (generated env files).
package fileio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrEmptyPath = errors.New("file path is empty")

// ExpandHome resolves a leading "~/" against the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func Read(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}

	data, err := os.ReadFile(ExpandHome(path))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	return string(data), nil
}

// Write creates parent directories as needed. Files are owner-only since
// they may hold tokens.
func Write(path string, content string) error {
	if path == "" {
		return ErrEmptyPath
	}

	path = ExpandHome(path)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func Exists(path string) bool {
	if path == "" {
		return false
	}

	info, err := os.Stat(ExpandHome(path))
	return err == nil && !info.IsDir()
}
