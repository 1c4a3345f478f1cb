package format

import (
	"strings"

	"github.com/constprop/constprop/internal/ast"
)

// Printer serializes statement forests. Parsed statements print their
// original text and trivia unchanged; synthesized statements are generated.
type Printer struct {
	options Options
	crlf    bool
	buffer  strings.Builder
}

// NewPrinter creates a printer with the given options
func NewPrinter(options Options) *Printer {
	return &Printer{options: options}
}

// Print renders file with the default options.
func Print(file *ast.File) string {
	return NewPrinter(DefaultOptions()).PrintFile(file)
}

// PrintFile renders a whole file
func (p *Printer) PrintFile(file *ast.File) string {
	p.buffer.Reset()
	p.crlf = p.options.PreserveNewlineStyle && fileUsesCRLF(file)
	p.printStatements(file.Statements)
	p.buffer.WriteString(file.Trailing)
	return p.buffer.String()
}

func (p *Printer) printStatements(stmts []ast.Statement) {
	for _, stmt := range stmts {
		base := stmt.Base()
		leading := base.Leading
		if base.Synthesized && p.crlf {
			leading = toCRLF(leading)
		}
		p.buffer.WriteString(leading)

		if block, ok := stmt.(*ast.BlockStatement); ok {
			p.buffer.WriteString(block.Header)
			p.printStatements(block.Statements)
			p.buffer.WriteString(block.Footer)
			continue
		}
		p.buffer.WriteString(stmt.String())
	}
}

// fileUsesCRLF inspects the original trivia of a file for CRLF endings.
func fileUsesCRLF(file *ast.File) bool {
	if usesCRLF(file.Trailing) {
		return true
	}
	for _, stmt := range file.Statements {
		base := stmt.Base()
		if base.Synthesized {
			continue
		}
		if usesCRLF(base.Leading) || usesCRLF(base.Text) {
			return true
		}
	}
	return false
}
