// Diagnostic reporting for modules that could not be loaded.
// Turns loader failures into positioned messages with source excerpts.

package diagnostic

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/constprop/constprop/internal/errors"
	"github.com/constprop/constprop/internal/lexer"
	"github.com/constprop/constprop/internal/parser"
	"github.com/constprop/constprop/internal/position"
)

// DiagnosticLevel represents the severity level of a diagnostic message.
type DiagnosticLevel int

const (
	DiagnosticError DiagnosticLevel = iota
	DiagnosticWarning
	DiagnosticInfo
)

func (dl DiagnosticLevel) String() string {
	switch dl {
	case DiagnosticError:
		return "error"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic codes
const (
	CodeSyntax   = "E0001"
	CodeLexical  = "E0002"
	CodeIO       = "E0003"
	CodeTooMany  = "E0004"
	CodeInternal = "E0005"
)

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Code     string
	Title    string
	Message  string
	File     string
	Span     position.Span // zero when the failure has no position
	Level    DiagnosticLevel
	Category errors.ErrorCategory
}

// DiagnosticBuilder helps construct diagnostic messages with fluent API.
type DiagnosticBuilder struct {
	diagnostic *Diagnostic
}

// NewDiagnostic creates a new diagnostic builder.
func NewDiagnostic() *DiagnosticBuilder {
	return &DiagnosticBuilder{diagnostic: &Diagnostic{}}
}

func (db *DiagnosticBuilder) Error() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticError
	return db
}

func (db *DiagnosticBuilder) Warning() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticWarning
	return db
}

func (db *DiagnosticBuilder) Category(category errors.ErrorCategory) *DiagnosticBuilder {
	db.diagnostic.Category = category
	return db
}

func (db *DiagnosticBuilder) Code(code string) *DiagnosticBuilder {
	db.diagnostic.Code = code
	return db
}

func (db *DiagnosticBuilder) Title(title string) *DiagnosticBuilder {
	db.diagnostic.Title = title
	return db
}

func (db *DiagnosticBuilder) Message(message string) *DiagnosticBuilder {
	db.diagnostic.Message = message
	return db
}

func (db *DiagnosticBuilder) File(file string) *DiagnosticBuilder {
	db.diagnostic.File = file
	return db
}

// Span sets the position; the file is taken from the span when present.
func (db *DiagnosticBuilder) Span(span position.Span) *DiagnosticBuilder {
	db.diagnostic.Span = span
	if span.Start.Filename != "" {
		db.diagnostic.File = span.Start.Filename
	}
	return db
}

func (db *DiagnosticBuilder) Build() *Diagnostic {
	return db.diagnostic
}

// FromError converts a loader failure into diagnostics, one per parse
// error it carries.
func FromError(err error) []*Diagnostic {
	var se *errors.StandardError
	if !stderrors.As(err, &se) {
		return []*Diagnostic{NewDiagnostic().Error().Code(CodeInternal).Title(err.Error()).Build()}
	}
	file, _ := se.Context["file"].(string)

	var out []*Diagnostic
	for _, cause := range flatten(se.Cause) {
		var (
			parseErr *parser.ParseError
			lexErr   *lexer.Error
		)
		switch {
		case stderrors.As(cause, &parseErr):
			out = append(out, NewDiagnostic().Error().Category(errors.CategorySyntax).Code(CodeSyntax).
				File(file).Span(pointSpan(parseErr.Position)).
				Title(parseErr.Message).Message(contextMessage(parseErr.Context)).Build())
		case stderrors.As(cause, &lexErr):
			out = append(out, NewDiagnostic().Error().Category(errors.CategorySyntax).Code(CodeLexical).
				File(file).Span(pointSpan(lexErr.Position)).
				Title(lexErr.Message).Build())
		}
	}
	if len(out) > 0 {
		return out
	}

	code := CodeInternal
	if se.Category == errors.CategoryIO {
		code = CodeIO
	}
	message := ""
	if se.Cause != nil {
		message = se.Cause.Error()
	}
	return []*Diagnostic{NewDiagnostic().Error().Category(se.Category).Code(code).
		File(file).Title(se.Message).Message(message).Build()}
}

// flatten expands joined errors.
func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}

func pointSpan(pos position.Position) position.Span {
	return position.Span{Start: pos, End: pos}
}

func contextMessage(context string) string {
	if context == "" {
		return ""
	}
	return "while parsing " + context
}

// DiagnosticEngine collects diagnostics and renders them.
type DiagnosticEngine struct {
	diagnostics []Diagnostic
	config      DiagnosticConfig
	truncated   bool
}

// DiagnosticConfig controls diagnostic behavior.
type DiagnosticConfig struct {
	MaxErrors int // unlimited when <= 0
	// Source returns the content of a file for excerpts; excerpts are
	// omitted when nil or when the file is unknown.
	Source func(file string) (string, bool)
}

// NewDiagnosticEngine creates a new diagnostic engine.
func NewDiagnosticEngine(config DiagnosticConfig) *DiagnosticEngine {
	return &DiagnosticEngine{
		diagnostics: make([]Diagnostic, 0),
		config:      config,
	}
}

// AddDiagnostic adds a diagnostic to the engine.
func (de *DiagnosticEngine) AddDiagnostic(diagnostic *Diagnostic) {
	if de.truncated {
		return
	}

	de.diagnostics = append(de.diagnostics, *diagnostic)

	if de.config.MaxErrors > 0 && len(de.GetErrors()) >= de.config.MaxErrors {
		truncationDiag := NewDiagnostic().
			Error().
			Code(CodeTooMany).
			Title("Too many errors").
			Message(fmt.Sprintf("Stopping after %d errors", de.config.MaxErrors)).
			Build()
		de.diagnostics = append(de.diagnostics, *truncationDiag)
		de.truncated = true
	}
}

// AddError adds the diagnostics derived from err.
func (de *DiagnosticEngine) AddError(err error) {
	for _, d := range FromError(err) {
		de.AddDiagnostic(d)
	}
}

// GetDiagnostics returns all diagnostics.
func (de *DiagnosticEngine) GetDiagnostics() []Diagnostic {
	return de.diagnostics
}

// GetErrors returns only error-level diagnostics.
func (de *DiagnosticEngine) GetErrors() []Diagnostic {
	return de.filter(DiagnosticError)
}

// GetWarnings returns only warning-level diagnostics.
func (de *DiagnosticEngine) GetWarnings() []Diagnostic {
	return de.filter(DiagnosticWarning)
}

func (de *DiagnosticEngine) filter(level DiagnosticLevel) []Diagnostic {
	out := make([]Diagnostic, 0)
	for _, diag := range de.diagnostics {
		if diag.Level == level {
			out = append(out, diag)
		}
	}
	return out
}

// HasErrors returns true if there are any errors.
func (de *DiagnosticEngine) HasErrors() bool {
	return len(de.GetErrors()) > 0
}

// SortDiagnostics sorts diagnostics by position and severity. The
// truncation notice stays last.
func (de *DiagnosticEngine) SortDiagnostics() {
	n := len(de.diagnostics)
	if de.truncated {
		n--
	}
	sort.SliceStable(de.diagnostics[:n], func(i, j int) bool {
		a, b := de.diagnostics[i], de.diagnostics[j]

		if a.File != b.File {
			return a.File < b.File
		}
		if a.Span.Start.Line != b.Span.Start.Line {
			return a.Span.Start.Line < b.Span.Start.Line
		}
		if a.Span.Start.Column != b.Span.Start.Column {
			return a.Span.Start.Column < b.Span.Start.Column
		}
		return a.Level < b.Level
	})
}

// FormatDiagnostics returns a formatted string representation of all diagnostics.
func (de *DiagnosticEngine) FormatDiagnostics() string {
	if len(de.diagnostics) == 0 {
		return ""
	}

	de.SortDiagnostics()

	var result strings.Builder
	for i := range de.diagnostics {
		if i > 0 {
			result.WriteString("\n")
		}
		result.WriteString(de.formatSingleDiagnostic(&de.diagnostics[i]))
	}
	result.WriteString(de.formatSummary())
	return result.String()
}

func (de *DiagnosticEngine) formatSingleDiagnostic(diag *Diagnostic) string {
	var result strings.Builder

	location := diag.File
	if diag.Span.Start.Line > 0 {
		location = fmt.Sprintf("%s:%d:%d", diag.File, diag.Span.Start.Line, diag.Span.Start.Column)
	}
	if location != "" {
		location += ": "
	}
	result.WriteString(fmt.Sprintf("%s%s[%s]: %s\n", location, diag.Level, diag.Code, diag.Title))

	if diag.Message != "" {
		result.WriteString(fmt.Sprintf("  %s\n", diag.Message))
	}
	result.WriteString(de.excerpt(diag))
	return result.String()
}

// excerpt renders the offending line with a caret under the column.
func (de *DiagnosticEngine) excerpt(diag *Diagnostic) string {
	if de.config.Source == nil || diag.Span.Start.Line < 1 {
		return ""
	}
	content, ok := de.config.Source(diag.File)
	if !ok {
		return ""
	}
	line := position.NewSourceFile(diag.File, content).Line(diag.Span.Start.Line)
	if line == "" {
		return ""
	}

	gutter := fmt.Sprintf("%d", diag.Span.Start.Line)
	pad := strings.Repeat(" ", len(gutter))
	col := diag.Span.Start.Column - 1
	if col < 0 {
		col = 0
	}
	if col > len(line) {
		col = len(line)
	}
	// keep tabs so the caret lines up with the source
	indent := strings.Map(func(r rune) rune {
		if r == '\t' {
			return '\t'
		}
		return ' '
	}, line[:col])

	return fmt.Sprintf("  %s | %s\n  %s | %s^\n", gutter, line, pad, indent)
}

func (de *DiagnosticEngine) formatSummary() string {
	errorCount := len(de.GetErrors())
	warningCount := len(de.GetWarnings())

	var parts []string
	if errorCount > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", errorCount))
	}
	if warningCount > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", warningCount))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("\nFound %s.\n", strings.Join(parts, ", "))
}
