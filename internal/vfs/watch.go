package vfs

import (
	"context"
	"io/fs"
	"time"
)

// SimpleWatcher is a polling-based watcher portable across OSes and usable
// with any FileSystem. The CLI falls back to it when fsnotify is unavailable.
type SimpleWatcher struct {
	fs    FileSystem
	evCh  chan Event
	erCh  chan error
	stop  context.CancelFunc
	roots []string
}

func NewSimpleWatcher(fs FileSystem) *SimpleWatcher {
	return &SimpleWatcher{fs: fs, evCh: make(chan Event, 64), erCh: make(chan error, 1)}
}

func (w *SimpleWatcher) Events() <-chan Event { return w.evCh }
func (w *SimpleWatcher) Errors() <-chan error { return w.erCh }

// Add registers a root; it must be called before StartPolling.
func (w *SimpleWatcher) Add(name string) error {
	w.roots = append(w.roots, name)
	return nil
}

func (w *SimpleWatcher) Remove(name string) error {
	for i, r := range w.roots {
		if r == name {
			w.roots = append(w.roots[:i], w.roots[i+1:]...)
			break
		}
	}
	return nil
}

func (w *SimpleWatcher) Close() error {
	if w.stop != nil {
		w.stop()
	}
	return nil
}

// snapshot records the modification time of every file below the roots.
func (w *SimpleWatcher) snapshot() (map[string]time.Time, error) {
	out := make(map[string]time.Time)
	for _, root := range w.roots {
		err := w.fs.Walk(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			out[p] = info.ModTime()
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// StartPolling begins a timestamp-based change poll at the given interval.
func (w *SimpleWatcher) StartPolling(ctx context.Context, interval time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	last, err := w.snapshot()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	w.stop = cancel
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(interval):
				cur, err := w.snapshot()
				if err != nil {
					select {
					case w.erCh <- err:
					default:
					}
					continue
				}
				for p, mod := range cur {
					prev, ok := last[p]
					switch {
					case !ok:
						w.emit(ctx, Event{Path: p, Op: OpCreate, Time: time.Now()})
					case mod.After(prev):
						w.emit(ctx, Event{Path: p, Op: OpWrite, Time: time.Now()})
					}
				}
				for p := range last {
					if _, ok := cur[p]; !ok {
						w.emit(ctx, Event{Path: p, Op: OpRemove, Time: time.Now()})
					}
				}
				last = cur
			}
		}
	}()
	return nil
}

func (w *SimpleWatcher) emit(ctx context.Context, ev Event) {
	select {
	case w.evCh <- ev:
	case <-ctx.Done():
	}
}
