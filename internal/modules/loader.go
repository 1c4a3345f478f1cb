package modules

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/constprop/constprop/internal/errors"
	"github.com/constprop/constprop/internal/parser"
	"github.com/constprop/constprop/internal/vfs"
)

// DefaultExclude lists directory names never descended into.
var DefaultExclude = []string{"node_modules", ".git", "dist"}

// LoadOptions configures Load
type LoadOptions struct {
	Extensions  []string    // source extensions, DefaultExtensions when empty
	Exclude     []string    // directory names to skip, DefaultExclude when nil
	Concurrency int         // parallel parses, unlimited when <= 0
	Logger      *zap.Logger // nil disables logging
}

// Load walks root on fsys, parses every source file concurrently and
// returns the resulting program. Files that cannot be read or parsed are
// recorded in Program.Failures; only an inaccessible root or cancellation
// fails the load.
func Load(ctx context.Context, fsys vfs.FileSystem, root string, opts LoadOptions) (*Program, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exclude := opts.Exclude
	if exclude == nil {
		exclude = DefaultExclude
	}
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	root = path.Clean(filepath.ToSlash(root))
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, errors.RootNotFound(root, err)
	}
	if !info.IsDir() {
		return nil, errors.RootNotFound(root, stderrors.New("not a directory"))
	}

	var (
		mu       sync.Mutex
		modules  []*Module
		failures []error
	)
	fail := func(err error) {
		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
	}

	var files []string
	walkErr := fsys.Walk(root, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			fail(errors.ReadFailed(full, err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if full != root && skip[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if hasExtension(full, extensions) {
			files = append(files, full)
		}
		return nil
	})
	if walkErr != nil {
		return nil, errors.RootNotFound(root, walkErr)
	}

	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for _, full := range files {
		full := full
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rel := relativePath(root, full)
			data, err := fsys.ReadFile(full)
			if err != nil {
				logger.Warn("skipping unreadable module", zap.String("module", rel), zap.Error(err))
				fail(errors.ReadFailed(rel, err))
				return nil
			}
			src := string(data)
			file, parseErrs := parser.ParseFile(rel, src)
			if len(parseErrs) > 0 {
				logger.Warn("skipping module with syntax errors",
					zap.String("module", rel), zap.Int("count", len(parseErrs)), zap.Error(parseErrs[0]))
				fail(errors.SyntaxError(rel, stderrors.Join(parseErrs...)))
				return nil
			}
			m := NewModule(ModulePath(rel), file, src)
			logger.Debug("parsed module", zap.String("module", rel), zap.Int("count", len(file.Statements)))
			mu.Lock()
			modules = append(modules, m)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(failures, func(i, j int) bool { return failures[i].Error() < failures[j].Error() })
	program := NewProgram(root, extensions, modules...)
	program.Failures = failures
	for _, cycle := range program.Graph.DetectCycles() {
		logger.Debug("import cycle", zap.String("cycle", FormatCycle(cycle)))
	}
	logger.Debug("loaded program",
		zap.String("root", root), zap.Int("count", program.Len()), zap.Stringer("graph", program.Graph))
	return program, nil
}

func hasExtension(name string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func relativePath(root, full string) string {
	if root == "." {
		return path.Clean(full)
	}
	return strings.TrimPrefix(full, root+"/")
}
