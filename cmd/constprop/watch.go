package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/constprop/constprop/internal/modules"
	"github.com/constprop/constprop/internal/vfs"
)

// watch re-runs the transform whenever sources below the root change. Only
// the changed modules and the modules depending on them are re-emitted.
func (a *app) watch(ctx context.Context, program *modules.Program) error {
	skip := make(map[string]bool, len(a.cfg.Exclude))
	for _, name := range a.cfg.Exclude {
		skip[name] = true
	}
	debounce := time.Duration(a.cfg.Debounce)

	var w vfs.Watcher
	fw, err := vfs.NewFSWatcher()
	if err == nil {
		defer fw.Close()
		if err := fw.AddTree(a.root, skip); err != nil {
			return fmt.Errorf("watch %s: %w", a.root, err)
		}
		w = fw
	} else {
		a.logger.Warn("native file watching unavailable, polling instead", zap.Error(err))
		sw := vfs.NewSimpleWatcher(a.fsys)
		defer sw.Close()
		_ = sw.Add(a.root)
		if err := sw.StartPolling(ctx, max(debounce, pollInterval)); err != nil {
			return fmt.Errorf("watch %s: %w", a.root, err)
		}
		w = sw
	}
	a.logger.Info("watching for changes", zap.String("root", a.root))

	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if fw != nil && ev.Op&vfs.OpCreate != 0 {
				if info, err := os.Stat(ev.Path); err == nil && info.IsDir() && !skip[filepath.Base(ev.Path)] {
					if err := fw.AddTree(ev.Path, skip); err != nil {
						a.logger.Warn("cannot watch directory", zap.String("path", ev.Path), zap.Error(err))
					}
					continue
				}
			}
			if !a.isSource(ev.Path) || excluded(a.root, ev.Path, skip) {
				continue
			}
			a.logger.Debug("change detected", zap.String("path", ev.Path), zap.Stringer("op", ev.Op))
			pending[filepath.Clean(ev.Path)] = true
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			fire = timer.C

		case err := <-w.Errors():
			a.logger.Warn("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			changed := a.settle(pending)
			pending = make(map[string]bool)
			if len(changed) == 0 {
				continue
			}
			a.logger.Info("re-running", zap.Int("changed", len(changed)))
			previous := program
			next, _ := a.process(ctx, func(current *modules.Program) []modules.ModulePath {
				return affected(changed, previous, current)
			})
			if next != nil {
				program = next
			}
		}
	}
}

// pollInterval is the minimum period of the polling fallback
const pollInterval = 500 * time.Millisecond

// excluded reports whether p lies below an excluded directory of root.
func excluded(root, p string, skip map[string]bool) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for _, part := range parts[:len(parts)-1] {
		if skip[part] {
			return true
		}
	}
	return false
}

// isSource reports whether p has one of the configured source extensions.
func (a *app) isSource(p string) bool {
	for _, ext := range a.cfg.Extensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

// settle turns the pending file paths into module paths, dropping files
// whose content is exactly what this process last wrote to them.
func (a *app) settle(pending map[string]bool) []modules.ModulePath {
	var out []modules.ModulePath
	for p := range pending {
		if content, ok := a.written[p]; ok {
			data, err := os.ReadFile(p)
			if err == nil && string(data) == content {
				continue
			}
			delete(a.written, p)
		}
		rel, err := filepath.Rel(a.root, p)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		out = append(out, modules.ModulePath(filepath.ToSlash(rel)))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// affected returns the changed modules plus their dependents in either the
// previous or the reloaded program, sorted.
func affected(changed []modules.ModulePath, programs ...*modules.Program) []modules.ModulePath {
	seen := make(map[modules.ModulePath]bool)
	var out []modules.ModulePath
	for _, program := range programs {
		for _, p := range program.Graph.Dependents(changed...) {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
