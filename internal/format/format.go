// Package format prints rewritten syntax trees back to source text and
// renders differences between the original and rewritten files.
package format

import "strings"

// Options controls printing style.
type Options struct {
	// PreserveNewlineStyle: when true, synthesized lines follow the CRLF
	// style of the input; else LF.
	PreserveNewlineStyle bool
}

// DefaultOptions returns sane defaults.
func DefaultOptions() Options {
	return Options{PreserveNewlineStyle: true}
}

// usesCRLF reports whether text contains a CRLF line ending.
func usesCRLF(text string) bool {
	return strings.Contains(text, "\r\n")
}

// toCRLF converts bare LF line endings in text to CRLF.
func toCRLF(text string) string {
	if !strings.Contains(text, "\n") {
		return text
	}
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' && (i == 0 || text[i-1] != '\r') {
			b.WriteByte('\r')
		}
		b.WriteByte(text[i])
	}
	return b.String()
}
