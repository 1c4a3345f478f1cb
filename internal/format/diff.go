package format

import (
	"fmt"
	"strings"
)

// DiffMode represents the type of diff output.
type DiffMode int

const (
	DiffModeUnified DiffMode = iota // Unified diff format (default)
	DiffModeContext                 // Context diff format
)

func (m DiffMode) String() string {
	if m == DiffModeContext {
		return "context"
	}
	return "unified"
}

// ParseDiffMode maps a mode name to a DiffMode.
func ParseDiffMode(name string) (DiffMode, error) {
	switch strings.ToLower(name) {
	case "", "unified", "u":
		return DiffModeUnified, nil
	case "context", "c":
		return DiffModeContext, nil
	}
	return DiffModeUnified, fmt.Errorf("unknown diff mode %q (want unified or context)", name)
}

// DiffOptions controls diff generation.
type DiffOptions struct {
	Mode        DiffMode // Diff output format
	Context     int      // Number of context lines to show
	IgnoreSpace bool     // Ignore trailing whitespace differences
	TabWidth    int      // Tab width used when IgnoreSpace is set
}

// DefaultDiffOptions returns default diff options.
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{
		Mode:     DiffModeUnified,
		Context:  3,
		TabWidth: 4,
	}
}

// DiffResult represents the result of a diff operation.
type DiffResult struct {
	Hunks      []Hunk
	Stats      DiffStat
	HasChanges bool
}

// Hunk represents a contiguous block of changes.
type Hunk struct {
	Header        string
	Lines         []Line
	OriginalStart int
	OriginalCount int
	ModifiedStart int
	ModifiedCount int
}

// Line represents a single line in a diff.
type Line struct {
	Content string
	Type    LineType
	Number  int // line number in the original, or in the modified text for added lines
}

// LineType represents the type of a diff line.
type LineType int

const (
	LineTypeContext LineType = iota // Unchanged context line
	LineTypeAdded                   // Added line (+)
	LineTypeRemoved                 // Removed line (-)
)

// DiffStat contains statistics about changes.
type DiffStat struct {
	FilesChanged int // Number of files changed
	LinesAdded   int // Number of lines added
	LinesRemoved int // Number of lines removed
}

// DiffFormatter generates formatted diffs between source files.
type DiffFormatter struct {
	options DiffOptions
}

// NewDiffFormatter creates a new diff formatter.
func NewDiffFormatter(options DiffOptions) *DiffFormatter {
	if options.Context < 0 {
		options.Context = 0
	}
	return &DiffFormatter{options: options}
}

// Diff renders the difference between original and modified, or "" when
// they are equal.
func Diff(filename, original, modified string, options DiffOptions) string {
	if original == modified {
		return ""
	}
	df := NewDiffFormatter(options)
	return df.FormatDiff(filename, df.GenerateDiff(filename, original, modified))
}

// GenerateDiff creates a diff between original and modified source.
func (df *DiffFormatter) GenerateDiff(filename, original, modified string) *DiffResult {
	originalLines := splitLines(original)
	modifiedLines := splitLines(modified)

	a, b := originalLines, modifiedLines
	if df.options.IgnoreSpace {
		a = df.normalizeWhitespace(a)
		b = df.normalizeWhitespace(b)
	}

	edits := computeEdits(a, b)
	hunks := df.generateHunks(edits, originalLines, modifiedLines)

	return &DiffResult{
		HasChanges: len(hunks) > 0,
		Hunks:      hunks,
		Stats:      calculateStats(hunks),
	}
}

// FormatDiff formats a diff result as a string.
func (df *DiffFormatter) FormatDiff(filename string, result *DiffResult) string {
	if !result.HasChanges {
		return ""
	}

	var output strings.Builder

	switch df.options.Mode {
	case DiffModeContext:
		output.WriteString(fmt.Sprintf("*** %s\t(original)\n", filename))
		output.WriteString(fmt.Sprintf("--- %s\t(rewritten)\n", filename))
	default:
		output.WriteString(fmt.Sprintf("--- %s\t(original)\n", filename))
		output.WriteString(fmt.Sprintf("+++ %s\t(rewritten)\n", filename))
	}

	for _, hunk := range result.Hunks {
		switch df.options.Mode {
		case DiffModeContext:
			formatContextHunk(&output, hunk)
		default:
			formatUnifiedHunk(&output, hunk)
		}
	}

	return output.String()
}

// splitLines splits text into lines without their terminators.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// normalizeWhitespace normalizes whitespace for comparison.
func (df *DiffFormatter) normalizeWhitespace(lines []string) []string {
	normalized := make([]string, len(lines))
	for i, line := range lines {
		expanded := strings.ReplaceAll(line, "\t", strings.Repeat(" ", df.options.TabWidth))
		normalized[i] = strings.TrimRight(expanded, " \t")
	}
	return normalized
}

// edit is one step of an edit script. a and b are 0-based positions in the
// original and modified line lists.
type edit struct {
	kind LineType
	a, b int
}

// computeEdits returns a shortest edit script from a to b. Common prefix
// and suffix are matched directly; the remainder is solved with a longest
// common subsequence table.
func computeEdits(a, b []string) []edit {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix && a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	var edits []edit
	for i := 0; i < prefix; i++ {
		edits = append(edits, edit{kind: LineTypeContext, a: i, b: i})
	}

	midA := a[prefix : len(a)-suffix]
	midB := b[prefix : len(b)-suffix]
	n, m := len(midA), len(midB)

	// lcs[i][j] is the LCS length of midA[i:] and midB[j:]
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if midA[i] == midB[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && midA[i] == midB[j]:
			edits = append(edits, edit{kind: LineTypeContext, a: prefix + i, b: prefix + j})
			i++
			j++
		case j < m && (i == n || lcs[i][j+1] > lcs[i+1][j]):
			edits = append(edits, edit{kind: LineTypeAdded, a: prefix + i, b: prefix + j})
			j++
		default:
			edits = append(edits, edit{kind: LineTypeRemoved, a: prefix + i, b: prefix + j})
			i++
		}
	}

	for k := 0; k < suffix; k++ {
		edits = append(edits, edit{kind: LineTypeContext, a: len(a) - suffix + k, b: len(b) - suffix + k})
	}
	return edits
}

// generateHunks groups changes separated by at most twice the context size
// into hunks surrounded by context lines.
func (df *DiffFormatter) generateHunks(edits []edit, original, modified []string) []Hunk {
	context := df.options.Context
	var hunks []Hunk

	prevEnd := 0
	i := 0
	for i < len(edits) {
		for i < len(edits) && edits[i].kind == LineTypeContext {
			i++
		}
		if i == len(edits) {
			break
		}

		start := max(prevEnd, i-context)
		end := i
		for {
			for end < len(edits) && edits[end].kind != LineTypeContext {
				end++
			}
			k := end
			for k < len(edits) && edits[k].kind == LineTypeContext {
				k++
			}
			if k < len(edits) && k-end <= 2*context {
				end = k
				continue
			}
			end = min(len(edits), end+context)
			break
		}

		hunks = append(hunks, buildHunk(edits[start:end], original, modified))
		prevEnd = end
		i = end
	}
	return hunks
}

func buildHunk(edits []edit, original, modified []string) Hunk {
	hunk := Hunk{
		OriginalStart: edits[0].a + 1,
		ModifiedStart: edits[0].b + 1,
	}
	for _, e := range edits {
		switch e.kind {
		case LineTypeContext:
			hunk.Lines = append(hunk.Lines, Line{Type: LineTypeContext, Number: e.a + 1, Content: original[e.a]})
			hunk.OriginalCount++
			hunk.ModifiedCount++
		case LineTypeRemoved:
			hunk.Lines = append(hunk.Lines, Line{Type: LineTypeRemoved, Number: e.a + 1, Content: original[e.a]})
			hunk.OriginalCount++
		case LineTypeAdded:
			hunk.Lines = append(hunk.Lines, Line{Type: LineTypeAdded, Number: e.b + 1, Content: modified[e.b]})
			hunk.ModifiedCount++
		}
	}
	// an empty side points at the line before the change
	if hunk.OriginalCount == 0 {
		hunk.OriginalStart--
	}
	if hunk.ModifiedCount == 0 {
		hunk.ModifiedStart--
	}
	hunk.Header = fmt.Sprintf("@@ -%d,%d +%d,%d @@",
		hunk.OriginalStart, hunk.OriginalCount, hunk.ModifiedStart, hunk.ModifiedCount)
	return hunk
}

// formatUnifiedHunk formats a hunk in unified diff format.
func formatUnifiedHunk(output *strings.Builder, hunk Hunk) {
	output.WriteString(hunk.Header + "\n")

	for _, line := range hunk.Lines {
		var prefix string

		switch line.Type {
		case LineTypeContext:
			prefix = " "
		case LineTypeAdded:
			prefix = "+"
		case LineTypeRemoved:
			prefix = "-"
		}

		output.WriteString(prefix + line.Content + "\n")
	}
}

// formatContextHunk formats a hunk in context diff format.
func formatContextHunk(output *strings.Builder, hunk Hunk) {
	output.WriteString("***************\n")
	output.WriteString(fmt.Sprintf("*** %s ****\n", lineRange(hunk.OriginalStart, hunk.OriginalCount)))

	for _, line := range hunk.Lines {
		switch line.Type {
		case LineTypeRemoved:
			output.WriteString("- " + line.Content + "\n")
		case LineTypeContext:
			output.WriteString("  " + line.Content + "\n")
		}
	}

	output.WriteString(fmt.Sprintf("--- %s ----\n", lineRange(hunk.ModifiedStart, hunk.ModifiedCount)))

	for _, line := range hunk.Lines {
		switch line.Type {
		case LineTypeAdded:
			output.WriteString("+ " + line.Content + "\n")
		case LineTypeContext:
			output.WriteString("  " + line.Content + "\n")
		}
	}
}

func lineRange(start, count int) string {
	if count <= 1 {
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d,%d", start, start+count-1)
}

// calculateStats calculates statistics for the diff.
func calculateStats(hunks []Hunk) DiffStat {
	stats := DiffStat{}
	if len(hunks) > 0 {
		stats.FilesChanged = 1
	}

	for _, hunk := range hunks {
		for _, line := range hunk.Lines {
			switch line.Type {
			case LineTypeAdded:
				stats.LinesAdded++
			case LineTypeRemoved:
				stats.LinesRemoved++
			}
		}
	}

	return stats
}
