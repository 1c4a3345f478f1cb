// Package cli holds the pieces of the constprop command line that are not
// tied to flag parsing: version reporting, configuration, logging setup and
// usage output.
package cli

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/constprop/constprop/internal/errors"
	"github.com/constprop/constprop/internal/modules"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-16"
	CommitSHA = "unknown" // Will be set during build
)

// DefaultConfigFile is looked up in the project root when -config is not given
const DefaultConfigFile = "constprop.json"

// DefaultDebounce is the quiet period the watch loop waits for before re-running
const DefaultDebounce = 200 * time.Millisecond

// VersionInfo contains version and build information
type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
	CommitSHA string `json:"commit_sha"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Arch      string `json:"arch"`
}

// GetVersionInfo returns structured version information
func GetVersionInfo() *VersionInfo {
	return &VersionInfo{
		Version:   Version,
		BuildDate: BuildDate,
		CommitSHA: CommitSHA,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// PrintVersion prints version information in a consistent format
func PrintVersion(w io.Writer, toolName string, jsonOutput bool) {
	info := GetVersionInfo()

	if jsonOutput {
		data, err := json.MarshalIndent(map[string]interface{}{
			"tool":         toolName,
			"version_info": info,
		}, "", "  ")
		if err == nil {
			fmt.Fprintln(w, string(data))
			return
		}
		fmt.Fprintf(os.Stderr, "Error: Failed to marshal version info to JSON: %v\n", err)
	}

	fmt.Fprintf(w, "%s v%s\n", toolName, info.Version)
	fmt.Fprintf(w, "Build Date: %s\n", info.BuildDate)
	if info.CommitSHA != "unknown" && info.CommitSHA != "" {
		fmt.Fprintf(w, "Commit: %s\n", info.CommitSHA)
	}
	fmt.Fprintf(w, "Go Version: %s\n", info.GoVersion)
	fmt.Fprintf(w, "Platform: %s/%s\n", info.Platform, info.Arch)
}

// ExitWithError prints an error message and exits with code 1
func ExitWithError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// NewLogger builds the zap logger used by the command line: warnings only by
// default, info with verbose, everything with debug.
func NewLogger(w io.Writer, verbose, debug bool) *zap.Logger {
	level := zapcore.WarnLevel
	switch {
	case debug:
		level = zapcore.DebugLevel
	case verbose:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if !debug {
		encoderConfig.CallerKey = ""
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), level)
	opts := []zap.Option{}
	if debug {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...)
}

// Duration is a time.Duration decoded from "250ms"-style strings or from a
// number of milliseconds.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var ms float64
	if err := json.Unmarshal(data, &ms); err == nil {
		*d = Duration(time.Duration(ms * float64(time.Millisecond)))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string or a number of milliseconds: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Config represents the constprop configuration file
type Config struct {
	Verbose     bool     `json:"verbose"`
	Debug       bool     `json:"debug"`
	Extensions  []string `json:"extensions,omitempty"`
	Exclude     []string `json:"exclude,omitempty"`
	OutDir      string   `json:"out_dir,omitempty"`
	Concurrency int      `json:"concurrency,omitempty"`
	Debounce    Duration `json:"debounce,omitempty"`
	Requires    string   `json:"requires,omitempty"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	return &Config{
		Extensions:  append([]string(nil), modules.DefaultExtensions...),
		Exclude:     append([]string(nil), modules.DefaultExclude...),
		Concurrency: runtime.GOMAXPROCS(0),
		Debounce:    Duration(DefaultDebounce),
	}
}

// LoadConfig loads configuration from file. A missing file yields the
// defaults; fields absent from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return nil, errors.ReadFailed(configPath, err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.InvalidConfig(configPath, "malformed JSON").WithCause(err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WriteFailed(configPath, err)
	}

	return nil
}

// Validate checks field values and the version requirement
func (c *Config) Validate() error {
	if c.Concurrency < 0 {
		return errors.InvalidConfig("concurrency", "must not be negative")
	}
	if c.Debounce < 0 {
		return errors.InvalidConfig("debounce", "must not be negative")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return errors.InvalidConfig("extensions", fmt.Sprintf("%q must look like \".ts\"", ext))
		}
	}
	if c.Requires != "" {
		return CheckRequires(c.Requires, Version)
	}
	return nil
}

// CheckRequires verifies that version satisfies the semver constraint
func CheckRequires(constraint, version string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.InvalidConfig("requires", err.Error())
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.InvalidConfig("version", err.Error())
	}
	if !c.Check(v) {
		return errors.VersionMismatch(constraint, version)
	}
	return nil
}

// FlagInfo represents information about a command flag
type FlagInfo struct {
	Name    string
	Arg     string
	Usage   string
	Default string
}

// CommandInfo represents information about a CLI command
type CommandInfo struct {
	Name        string
	Usage       string
	Description string
	Examples    []string
	Flags       []FlagInfo
}

// PrintUsage prints a standardized usage message
func PrintUsage(w io.Writer, cmd CommandInfo) {
	fmt.Fprintf(w, "%s - %s\n\n", cmd.Name, cmd.Description)
	fmt.Fprintf(w, "USAGE:\n")
	fmt.Fprintf(w, "    %s\n\n", cmd.Usage)

	if len(cmd.Flags) > 0 {
		fmt.Fprintf(w, "OPTIONS:\n")
		for _, flag := range cmd.Flags {
			flagStr := "    -" + flag.Name
			if flag.Arg != "" {
				flagStr += " " + flag.Arg
			}
			fmt.Fprintf(w, "%-20s %s\n", flagStr, flag.Usage)
			if flag.Default != "" {
				fmt.Fprintf(w, "%-20s Default: %s\n", "", flag.Default)
			}
		}
		fmt.Fprintf(w, "\n")
	}

	if len(cmd.Examples) > 0 {
		fmt.Fprintf(w, "EXAMPLES:\n")
		for _, example := range cmd.Examples {
			fmt.Fprintf(w, "    %s\n", example)
		}
		fmt.Fprintf(w, "\n")
	}
}

// ValidateArgs validates command line arguments
func ValidateArgs(args []string, minArgs int, usage string) error {
	if len(args) < minArgs {
		return fmt.Errorf("insufficient arguments\nUsage: %s", usage)
	}
	return nil
}
