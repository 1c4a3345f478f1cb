package vfs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// OSFS is the FileSystem backed by the host operating system.
type OSFS struct{}

func NewOS() *OSFS { return &OSFS{} }

func (fsys *OSFS) ReadFile(name string) ([]byte, error)         { return os.ReadFile(name) }
func (fsys *OSFS) MkdirAll(name string, perm fs.FileMode) error { return os.MkdirAll(name, perm) }
func (fsys *OSFS) Stat(name string) (fs.FileInfo, error)        { return os.Stat(name) }
func (fsys *OSFS) ReadDir(name string) ([]fs.DirEntry, error)   { return os.ReadDir(name) }

// WriteFile writes data, creating parent directories as needed.
func (fsys *OSFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(name, data, perm)
}

func (fsys *OSFS) Walk(root string, fn func(fullPath string, d fs.DirEntry, err error) error) error {
	if fn == nil {
		return errors.New("nil walk fn")
	}
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		return fn(filepath.ToSlash(p), d, err)
	})
}
