// Package fileutil provides the filesystem capability set the sprite pipeline
// consumes: list a directory, read and write file bytes, delete a directory
// tree, and ensure a directory exists.
package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FS is the filesystem capability set. Implementations must be safe for
// concurrent use; packers read source files from several goroutines.
type FS interface {
	ReadDir(dir string) ([]fs.DirEntry, error)
	ReadFile(path string) ([]byte, error)
	// WriteFile creates any missing parent directories and then replaces the
	// file's contents.
	WriteFile(path string, data []byte) error
	// RemoveAll deletes path and everything below it. A missing path is not
	// an error.
	RemoveAll(path string) error
	MkdirAll(dir string) error
}

// OS implements FS on the host filesystem.
type OS struct{}

var _ FS = OS{}

func (OS) ReadDir(dir string) ([]fs.DirEntry, error) {
	return os.ReadDir(dir)
}

func (OS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (o OS) WriteFile(path string, data []byte) error {
	if err := o.MkdirAll(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (OS) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

func (OS) MkdirAll(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
