// Command constprop inlines imported and re-exported constants across the
// modules of a TypeScript/JavaScript project.
//
// Flags:
//
//	-w      write rewritten files in place.
//	-o dir  write every module, rewritten or not, into an output tree.
//	-l      list files whose output differs from their source.
//	-diff   print a diff of every rewritten file (-mode unified|context).
//	-watch  re-run on source changes until interrupted.
//
// Without -w, -o, -l or -diff the rewritten files are printed to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/constprop/constprop/internal/cli"
	"github.com/constprop/constprop/internal/constprop"
	"github.com/constprop/constprop/internal/diagnostic"
	"github.com/constprop/constprop/internal/format"
	"github.com/constprop/constprop/internal/modules"
	"github.com/constprop/constprop/internal/vfs"
)

const toolName = "constprop"

const maxReportedErrors = 50

type options struct {
	write      bool
	list       bool
	showDiff   bool
	watch      bool
	version    bool
	jsonOutput bool
	verbose    bool
	debug      bool
	outDir     string
	diffMode   string
	configPath string
	jobs       int
}

var commandInfo = cli.CommandInfo{
	Name:        toolName,
	Usage:       "constprop [flags] [dir]",
	Description: "inline constants imported or re-exported across modules",
	Flags: []cli.FlagInfo{
		{Name: "w", Usage: "write rewritten files in place"},
		{Name: "o", Arg: "dir", Usage: "write the rewritten tree into dir"},
		{Name: "l", Usage: "list files that would be rewritten"},
		{Name: "diff", Usage: "print diffs instead of rewritten files"},
		{Name: "mode", Arg: "name", Usage: "diff mode: unified or context", Default: "unified"},
		{Name: "watch", Usage: "re-run when sources change"},
		{Name: "config", Arg: "file", Usage: "configuration file", Default: "<dir>/" + cli.DefaultConfigFile},
		{Name: "j", Arg: "N", Usage: "number of modules processed in parallel", Default: "GOMAXPROCS"},
		{Name: "v", Usage: "verbose logging"},
		{Name: "debug", Usage: "debug logging"},
		{Name: "version", Usage: "print version information (-json for JSON)"},
	},
	Examples: []string{
		"constprop -l src",
		"constprop -diff -mode context .",
		"constprop -o build/inlined src",
		"constprop -w -watch src",
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options
	flags := flag.NewFlagSet(toolName, flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { cli.PrintUsage(stderr, commandInfo) }
	flags.BoolVar(&opts.write, "w", false, "write rewritten files in place")
	flags.StringVar(&opts.outDir, "o", "", "write the rewritten tree into this directory")
	flags.BoolVar(&opts.list, "l", false, "list files that would be rewritten")
	flags.BoolVar(&opts.showDiff, "diff", false, "print diffs instead of rewritten files")
	flags.StringVar(&opts.diffMode, "mode", "unified", "diff mode: unified, context")
	flags.BoolVar(&opts.watch, "watch", false, "re-run when sources change")
	flags.StringVar(&opts.configPath, "config", "", "configuration file")
	flags.IntVar(&opts.jobs, "j", 0, "number of modules processed in parallel")
	flags.BoolVar(&opts.verbose, "v", false, "verbose logging")
	flags.BoolVar(&opts.debug, "debug", false, "debug logging")
	flags.BoolVar(&opts.version, "version", false, "print version information")
	flags.BoolVar(&opts.jsonOutput, "json", false, "print version information as JSON")
	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}

	if opts.version {
		cli.PrintVersion(stdout, toolName, opts.jsonOutput)
		return 0
	}
	if flags.NArg() > 1 {
		fmt.Fprintln(stderr, "Error: at most one directory may be given")
		return 1
	}
	root := "."
	if flags.NArg() == 1 {
		root = flags.Arg(0)
	}
	configPath := opts.configPath
	if configPath == "" {
		configPath = filepath.Join(root, cli.DefaultConfigFile)
	}
	cfg, err := cli.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	applyFlags(flags, &opts, root, cfg)
	if opts.write && opts.outDir != "" {
		fmt.Fprintln(stderr, "Error: -w and -o cannot be combined")
		return 1
	}

	mode, err := format.ParseDiffMode(opts.diffMode)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	diffOptions := format.DefaultDiffOptions()
	diffOptions.Mode = mode

	logger := cli.NewLogger(stderr, cfg.Verbose, cfg.Debug)
	defer func() { _ = logger.Sync() }()
	constprop.SetLogger(logger)

	a := &app{
		stdout:      stdout,
		stderr:      stderr,
		fsys:        vfs.NewOS(),
		root:        root,
		cfg:         cfg,
		opts:        opts,
		diffOptions: diffOptions,
		color:       useColor(stdout),
		logger:      logger,
		written:     make(map[string]string),
	}

	program, code := a.process(ctx, nil)
	if !opts.watch || program == nil {
		return code
	}
	if err := a.watch(ctx, program); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// applyFlags lets explicitly set flags override configuration file values.
func applyFlags(flags *flag.FlagSet, opts *options, root string, cfg *cli.Config) {
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":
			cfg.Verbose = opts.verbose
		case "debug":
			cfg.Debug = opts.debug
		case "o":
			cfg.OutDir = opts.outDir
		case "j":
			cfg.Concurrency = opts.jobs
		}
	})
	opts.outDir = cfg.OutDir
	if opts.outDir != "" {
		if rel, err := filepath.Rel(root, opts.outDir); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			cfg.Exclude = append(cfg.Exclude, strings.Split(filepath.ToSlash(rel), "/")[0])
		}
	}
}

type app struct {
	stdout      io.Writer
	stderr      io.Writer
	fsys        vfs.FileSystem
	root        string
	cfg         *cli.Config
	opts        options
	diffOptions format.DiffOptions
	color       bool
	logger      *zap.Logger

	// written remembers the content last written per file so the watch
	// loop can ignore its own writes.
	written map[string]string
}

// process loads the program, transforms the modules selected by only
// (every module when nil) and emits the results. It returns the loaded
// program, nil when loading failed, and the exit code.
func (a *app) process(ctx context.Context, only func(*modules.Program) []modules.ModulePath) (*modules.Program, int) {
	start := time.Now()
	program, err := modules.Load(ctx, a.fsys, a.root, modules.LoadOptions{
		Extensions:  a.cfg.Extensions,
		Exclude:     a.cfg.Exclude,
		Concurrency: a.cfg.Concurrency,
		Logger:      a.logger,
	})
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return nil, 1
	}

	code := 0
	if len(program.Failures) > 0 {
		a.report(program.Failures)
		code = 1
	}

	var selected []modules.ModulePath
	if only != nil {
		if selected = only(program); len(selected) == 0 {
			return program, code
		}
	}
	results, metrics, err := constprop.Run(ctx, program, constprop.Options{
		Concurrency: a.cfg.Concurrency,
		Only:        selected,
		Format:      format.DefaultOptions(),
	})
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return program, 1
	}

	for _, r := range results {
		if err := a.emit(r); err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			code = 1
		}
	}
	a.logger.Info("run complete",
		zap.Int("count", len(results)),
		zap.Stringer("metrics", metrics),
		zap.Duration("elapsed", time.Since(start)))
	return program, code
}

// report prints load failures with source excerpts.
func (a *app) report(failures []error) {
	engine := diagnostic.NewDiagnosticEngine(diagnostic.DiagnosticConfig{
		MaxErrors: maxReportedErrors,
		Source: func(file string) (string, bool) {
			data, err := a.fsys.ReadFile(filepath.Join(a.root, filepath.FromSlash(file)))
			return string(data), err == nil
		},
	})
	for _, failure := range failures {
		engine.AddError(failure)
	}
	fmt.Fprint(a.stderr, engine.FormatDiagnostics())
}

// emit handles the output of one module according to the selected mode.
func (a *app) emit(r constprop.Result) error {
	source := filepath.Join(a.root, filepath.FromSlash(string(r.Path)))

	switch {
	case a.opts.outDir != "":
		return a.writeFile(filepath.Join(a.opts.outDir, filepath.FromSlash(string(r.Path))), r.Output)
	case !r.Changed:
		return nil
	case a.opts.list:
		fmt.Fprintln(a.stdout, source)
	case a.opts.showDiff:
		diff := format.Diff(filepath.ToSlash(source), r.Original, r.Output, a.diffOptions)
		if a.color {
			diff = colorize(diff)
		}
		fmt.Fprint(a.stdout, diff)
	case a.opts.write:
		return a.writeFile(source, r.Output)
	default:
		fmt.Fprintf(a.stdout, "// %s\n%s", filepath.ToSlash(source), r.Output)
	}
	return nil
}

func (a *app) writeFile(name, content string) error {
	if err := a.fsys.WriteFile(name, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	a.written[filepath.Clean(name)] = content
	a.logger.Debug("wrote module", zap.String("module", name))
	return nil
}

var (
	baseStyle    = lipgloss.NewStyle().TabWidth(lipgloss.NoTabConversion)
	addedStyle   = baseStyle.Foreground(lipgloss.Color("#98FB98"))
	removedStyle = baseStyle.Foreground(lipgloss.Color("#FF6B6B"))
	changedStyle = baseStyle.Foreground(lipgloss.Color("#FFD866"))
	hunkStyle    = baseStyle.Foreground(lipgloss.Color("#87CEEB"))
	headerStyle  = baseStyle.Bold(true)
)

// useColor reports whether diffs written to w should be colored.
func useColor(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// colorize styles the lines of a unified or context diff.
func colorize(diff string) string {
	lines := strings.SplitAfter(diff, "\n")
	var b strings.Builder
	for _, line := range lines {
		body := strings.TrimSuffix(line, "\n")
		nl := line[len(body):]
		var style *lipgloss.Style
		switch {
		case strings.HasPrefix(body, "+++"), strings.HasPrefix(body, "---"), strings.HasPrefix(body, "***"):
			style = &headerStyle
		case strings.HasPrefix(body, "@@"):
			style = &hunkStyle
		case strings.HasPrefix(body, "+"):
			style = &addedStyle
		case strings.HasPrefix(body, "-"):
			style = &removedStyle
		case strings.HasPrefix(body, "!"):
			style = &changedStyle
		}
		if style == nil || body == "" {
			b.WriteString(line)
			continue
		}
		b.WriteString(style.Render(body))
		b.WriteString(nl)
	}
	return b.String()
}
