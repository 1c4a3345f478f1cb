// Command constprop-dump prints how constprop sees one source file: its
// tokens, its top-level statements, or its export and local tables.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/constprop/constprop/internal/ast"
	"github.com/constprop/constprop/internal/lexer"
	"github.com/constprop/constprop/internal/modules"
	"github.com/constprop/constprop/internal/parser"
)

func main() {
	var (
		tokens  bool
		exports bool
		expr    string
	)
	flag.BoolVar(&tokens, "tokens", false, "print tokens instead of statements")
	flag.BoolVar(&exports, "exports", false, "print the export and local tables")
	flag.StringVar(&expr, "e", "", "source text to inspect instead of a file")
	flag.Parse()

	name, src := "<input>", expr
	if expr == "" {
		if flag.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "Usage: constprop-dump [-tokens|-exports] <file>")
			fmt.Fprintln(os.Stderr, "       constprop-dump [-tokens|-exports] -e <source>")
			os.Exit(1)
		}
		name = flag.Arg(0)
		data, err := os.ReadFile(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		src = string(data)
	}

	var err error
	switch {
	case tokens:
		err = dumpTokens(os.Stdout, name, src)
	case exports:
		err = dumpTables(os.Stdout, name, src)
	default:
		err = dumpStatements(os.Stdout, name, src)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func dumpTokens(w io.Writer, name, src string) error {
	toks, errs := lexer.Tokenize(src, name)
	for _, tok := range toks {
		nl := ""
		if tok.NewlineBefore {
			nl = " (newline before)"
		}
		fmt.Fprintf(w, "%d:%d\t%s\t%q%s\n", tok.Span.Start.Line, tok.Span.Start.Column, tok.Type, tok.Literal, nl)
	}
	return firstError(errs)
}

func dumpStatements(w io.Writer, name, src string) error {
	file, errs := parser.ParseFile(name, src)
	printStatements(w, file.Statements, 0)
	return firstError(errs)
}

func printStatements(w io.Writer, stmts []ast.Statement, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, stmt := range stmts {
		fmt.Fprintf(w, "%s%s\t%s\t%q\n", indent, stmt.GetSpan().Start, kindOf(stmt), firstLine(stmt.String()))
		if block, ok := stmt.(*ast.BlockStatement); ok {
			printStatements(w, block.Statements, depth+1)
		}
	}
}

func dumpTables(w io.Writer, name, src string) error {
	file, errs := parser.ParseFile(name, src)
	if err := firstError(errs); err != nil {
		return err
	}
	m := modules.NewModule(modules.ModulePath(name), file, src)
	fmt.Fprintln(w, "exports:")
	for _, export := range m.ExportNames() {
		decl, _ := m.Export(export)
		fmt.Fprintf(w, "  %s\t%s\n", export, describe(decl))
	}
	if len(m.Specifiers) > 0 {
		fmt.Fprintln(w, "specifiers:")
		for _, spec := range m.Specifiers {
			fmt.Fprintf(w, "  %s\n", spec)
		}
	}
	return nil
}

func kindOf(stmt ast.Statement) string {
	switch s := stmt.(type) {
	case *ast.ImportDeclaration:
		return "import"
	case *ast.ExportFromDeclaration:
		return "export-from"
	case *ast.ExportClauseDeclaration:
		return "export-clause"
	case *ast.ExportAllDeclaration:
		return "export-all"
	case *ast.ExportDefaultDeclaration:
		return "export-default"
	case *ast.VariableDeclaration:
		return s.Kind.String()
	case *ast.NamedDeclaration:
		return s.Kind.String()
	case *ast.BlockStatement:
		return "block"
	default:
		return "raw"
	}
}

func describe(decl modules.Declaration) string {
	switch d := decl.(type) {
	case modules.LocalConst:
		if lit, ok := ast.AsLiteral(d.Init); ok {
			return "const " + lit.Raw
		}
		return "const (not a literal)"
	case modules.LocalBareReExport:
		return "local " + d.Local
	case modules.ReExportFrom:
		return fmt.Sprintf("re-export %s from %q", d.Source, d.Specifier)
	case modules.ImportFrom:
		return fmt.Sprintf("import %s from %q", d.Source, d.Specifier)
	case modules.Other:
		return "other: " + d.Reason
	}
	return "unknown"
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

func firstError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}
