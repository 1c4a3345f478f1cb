package constprop

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/constprop/constprop/internal/format"
	"github.com/constprop/constprop/internal/modules"
)

// Options configures Run
type Options struct {
	// Concurrency bounds the number of modules transformed in parallel;
	// unlimited when <= 0.
	Concurrency int
	// Only restricts the run to the listed modules; every module when empty.
	Only []modules.ModulePath
	// Format controls how rewritten files are printed.
	Format format.Options
}

// Result is the outcome for one module
type Result struct {
	Path     modules.ModulePath
	Original string
	Output   string
	Changed  bool
	Metrics  Metrics
}

// TransformModule rewrites one module of graph and returns the printed
// output with the pass metrics.
func TransformModule(graph modules.Accessor, m *modules.Module, opts format.Options) (string, Metrics) {
	pass := NewPass(graph, m)
	file := pass.Run()
	metrics := pass.GetMetrics()
	if !metrics.Changed() {
		return m.Source, metrics
	}
	return format.NewPrinter(opts).PrintFile(file), metrics
}

// Run transforms the modules of program concurrently. Every module is
// resolved against the unmodified program, so results do not depend on
// scheduling. Results are sorted by path.
func Run(ctx context.Context, program *modules.Program, opts Options) ([]Result, Metrics, error) {
	targets := program.Modules()
	if len(opts.Only) > 0 {
		targets = targets[:0:0]
		for _, path := range opts.Only {
			if m, ok := program.Module(path); ok {
				targets = append(targets, m)
			}
		}
	}

	var (
		mu      sync.Mutex
		results = make([]Result, 0, len(targets))
	)

	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for _, m := range targets {
		m := m
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			output, metrics := TransformModule(program, m, opts.Format)
			mu.Lock()
			results = append(results, Result{
				Path:     m.Path,
				Original: m.Source,
				Output:   output,
				Changed:  output != m.Source,
				Metrics:  metrics,
			})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Metrics{}, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	total := Metrics{PassName: PassName}
	changed := 0
	for _, r := range results {
		total.Add(r.Metrics)
		if r.Changed {
			changed++
		}
	}
	Logger().Info("constant propagation finished",
		zap.Int("count", len(results)),
		zap.Int("changed", changed),
		zap.Int("inlined", total.ConstantsInlined),
		zap.Int("imports_removed", total.ImportsRemoved),
		zap.Int("imports_shrunk", total.ImportsShrunk),
		zap.Int("reexports_rewritten", total.ReExportsRewritten))
	return results, total, nil
}
