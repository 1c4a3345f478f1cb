// Package vfs abstracts the filesystem the module loader reads sources from
// and the CLI writes rewritten sources to. OSFS backs real runs; MemFS backs
// tests and in-process fixtures.
package vfs

import (
	"io/fs"
	"path"
	"time"
)

// FileSystem abstracts basic filesystem operations.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	MkdirAll(name string, perm fs.FileMode) error
	Stat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	Walk(root string, fn func(fullPath string, d fs.DirEntry, err error) error) error
}

// WatchOp indicates a change operation in the filesystem.
type WatchOp uint32

const (
	OpCreate WatchOp = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// String returns a compact representation such as "CREATE|WRITE".
func (op WatchOp) String() string {
	names := []struct {
		op   WatchOp
		name string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
	}
	out := ""
	for _, n := range names {
		if op&n.op != 0 {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	if out == "" {
		return "NONE"
	}
	return out
}

// Event describes a filesystem change event.
type Event struct {
	Path string
	Op   WatchOp
	Time time.Time
}

// Watcher provides a platform-independent file watching API.
type Watcher interface {
	Events() <-chan Event
	Errors() <-chan error
	Add(name string) error
	Remove(name string) error
	Close() error
}

// Join joins any number of path elements into a single path, using forward slashes.
func Join(elem ...string) string { return path.Join(elem...) }

// Clean returns the shortest path name equivalent to path by purely lexical processing.
func Clean(p string) string { return path.Clean(p) }
