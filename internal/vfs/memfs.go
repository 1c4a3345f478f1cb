package vfs

import (
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

type fileInfo struct {
	name string
	size int64
	mode fs.FileMode
	mod  time.Time
}

func (fi fileInfo) Name() string       { return fi.name }
func (fi fileInfo) Size() int64        { return fi.size }
func (fi fileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi fileInfo) ModTime() time.Time { return fi.mod }
func (fi fileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi fileInfo) Sys() any           { return nil }

// MemFS is an in-memory FileSystem. Paths are slash separated; a leading
// slash is ignored.
type MemFS struct {
	mu   sync.RWMutex
	ents map[string]*memEnt
}

type memEnt struct {
	data []byte
	mode fs.FileMode
	mod  time.Time
	dir  bool
}

func NewMem() *MemFS { return &MemFS{ents: make(map[string]*memEnt)} }

// NewMemFromMap builds a MemFS holding the given files.
func NewMemFromMap(files map[string]string) *MemFS {
	m := NewMem()
	for name, content := range files {
		_ = m.WriteFile(name, []byte(content), 0o644)
	}
	return m
}

func norm(p string) string {
	q := Clean(p)
	q = strings.TrimPrefix(q, "/")
	if q == "." {
		return ""
	}
	return q
}

func (m *MemFS) ensureDir(p string) {
	p = norm(p)
	if p == "" {
		return
	}
	cur := ""
	for _, part := range strings.Split(p, "/") {
		if part == "" {
			continue
		}
		cur = path.Join(cur, part)
		if _, ok := m.ents[cur]; !ok {
			m.ents[cur] = &memEnt{dir: true, mode: fs.ModeDir | 0o755, mod: time.Now()}
		}
	}
}

func (m *MemFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e := m.ents[norm(name)]
	if e == nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	if e.dir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: errors.New("is a directory")}
	}
	return append([]byte(nil), e.data...), nil
}

func (m *MemFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := norm(name)
	if e, ok := m.ents[key]; ok && e.dir {
		return &fs.PathError{Op: "write", Path: name, Err: errors.New("is a directory")}
	}
	m.ensureDir(path.Dir(key))
	m.ents[key] = &memEnt{data: append([]byte(nil), data...), mode: perm, mod: time.Now()}
	return nil
}

func (m *MemFS) MkdirAll(name string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureDir(name)
	return nil
}

func (m *MemFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stat(name)
}

func (m *MemFS) stat(name string) (fs.FileInfo, error) {
	key := norm(name)
	if key == "" {
		return fileInfo{name: ".", mode: fs.ModeDir | 0o755}, nil
	}
	e := m.ents[key]
	if e == nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return fileInfo{name: path.Base(key), size: int64(len(e.data)), mode: e.mode, mod: e.mod}, nil
}

// ReadDir lists the direct children of name sorted by name.
func (m *MemFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefix := norm(name)
	if prefix != "" {
		if e := m.ents[prefix]; e == nil || !e.dir {
			return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
		}
		prefix += "/"
	}
	seen := make(map[string]struct{})
	var out []fs.DirEntry
	for p := range m.ents {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if rest == "" || strings.Contains(rest, "/") {
			continue
		}
		if _, ok := seen[rest]; ok {
			continue
		}
		seen[rest] = struct{}{}
		info, err := m.stat(p)
		if err != nil {
			continue
		}
		out = append(out, fs.FileInfoToDirEntry(info))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

// Walk visits root and everything below it in lexical order.
func (m *MemFS) Walk(root string, fn func(fullPath string, d fs.DirEntry, err error) error) error {
	if fn == nil {
		return errors.New("nil walk fn")
	}
	info, err := m.Stat(root)
	if err != nil {
		return fn(root, nil, err)
	}
	if err := fn(root, fs.FileInfoToDirEntry(info), nil); err != nil {
		if errors.Is(err, fs.SkipDir) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}
	return m.walkDir(root, fn)
}

func (m *MemFS) walkDir(dir string, fn func(fullPath string, d fs.DirEntry, err error) error) error {
	entries, err := m.ReadDir(dir)
	if err != nil {
		return fn(dir, nil, err)
	}
	for _, de := range entries {
		p := path.Join(dir, de.Name())
		if err := fn(p, de, nil); err != nil {
			if errors.Is(err, fs.SkipDir) && de.IsDir() {
				continue
			}
			return err
		}
		if de.IsDir() {
			if err := m.walkDir(p, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
