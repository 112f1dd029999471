package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteFileAtomic replaces path with data. The bytes land in a hidden sibling
// and are renamed over path only after a successful fsync; readers see the
// old content or the new content, never a mix.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.partial")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	steps := []struct {
		what string
		run  func() error
	}{
		{"write", func() error { _, werr := tmp.Write(data); return werr }},
		{"sync", tmp.Sync},
		{"close", tmp.Close},
		{"chmod", func() error { return os.Chmod(tmp.Name(), mode) }},
		{"rename", func() error { return os.Rename(tmp.Name(), path) }},
	}
	for _, step := range steps {
		if err = step.run(); err != nil {
			return fmt.Errorf("%s %s: %w", step.what, path, err)
		}
	}
	return nil
}

// Exists reports whether path exists. Only fs.ErrNotExist counts as absent;
// other stat failures are returned.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
