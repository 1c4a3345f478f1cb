package diagnostic

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/constprop/constprop/internal/errors"
	"github.com/constprop/constprop/internal/parser"
	"github.com/constprop/constprop/internal/position"
)

func syntaxFailure(t *testing.T, file, src string) error {
	t.Helper()
	_, errs := parser.ParseFile(file, src)
	if len(errs) == 0 {
		t.Fatalf("expected parse errors for %q", src)
	}
	return errors.SyntaxError(file, stderrors.Join(errs...))
}

func TestFromSyntaxError(t *testing.T) {
	diags := FromError(syntaxFailure(t, "a.ts", "import { from \"./a\";\n"))
	if len(diags) == 0 {
		t.Fatal("no diagnostics")
	}
	d := diags[0]
	if d.Code != CodeSyntax || d.Category != errors.CategorySyntax || d.Level != DiagnosticError {
		t.Errorf("unexpected diagnostic %+v", d)
	}
	if d.File != "a.ts" || d.Span.Start.Line != 1 {
		t.Errorf("unexpected location %s %v", d.File, d.Span)
	}
}

func TestFromOtherErrors(t *testing.T) {
	d := FromError(errors.ReadFailed("b.ts", stderrors.New("permission denied")))
	if len(d) != 1 || d[0].Code != CodeIO || d[0].File != "b.ts" || d[0].Message != "permission denied" {
		t.Errorf("unexpected diagnostics %+v", d)
	}

	d = FromError(stderrors.New("boom"))
	if len(d) != 1 || d[0].Code != CodeInternal || d[0].Title != "boom" {
		t.Errorf("unexpected diagnostics %+v", d)
	}
}

func TestFormatDiagnostics(t *testing.T) {
	sources := map[string]string{"b.ts": "let a = 1;\n\tconst = 2;\n"}
	engine := NewDiagnosticEngine(DiagnosticConfig{
		Source: func(file string) (string, bool) {
			s, ok := sources[file]
			return s, ok
		},
	})
	engine.AddDiagnostic(NewDiagnostic().Error().Code(CodeSyntax).Title("expected identifier").
		Span(position.Span{Start: position.Position{Filename: "b.ts", Line: 2, Column: 8}}).Build())
	engine.AddDiagnostic(NewDiagnostic().Warning().Code("W0001").Title("first").File("a.ts").Build())

	out := engine.FormatDiagnostics()
	want := []string{
		"a.ts: warning[W0001]: first\n",
		"b.ts:2:8: error[E0001]: expected identifier\n",
		"  2 | \tconst = 2;\n",
		"    | \t      ^\n",
		"Found 1 error(s), 1 warning(s).",
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
	if strings.Index(out, "a.ts") > strings.Index(out, "b.ts") {
		t.Errorf("diagnostics not sorted by file:\n%s", out)
	}
	if !engine.HasErrors() {
		t.Errorf("HasErrors = false")
	}
}

func TestEngineConfig(t *testing.T) {
	engine := NewDiagnosticEngine(DiagnosticConfig{MaxErrors: 2})
	engine.AddDiagnostic(NewDiagnostic().Warning().Code("W0001").File("a.ts").Build())
	engine.AddDiagnostic(NewDiagnostic().Error().Code(CodeSyntax).File("c.ts").Build())
	engine.AddDiagnostic(NewDiagnostic().Error().Code(CodeSyntax).File("b.ts").Build())
	engine.AddDiagnostic(NewDiagnostic().Error().Code(CodeSyntax).File("d.ts").Build())

	diags := engine.GetDiagnostics()
	if len(diags) != 4 {
		t.Fatalf("expected 4 diagnostics, got %d", len(diags))
	}
	if diags[3].Code != CodeTooMany {
		t.Errorf("missing truncation notice: %+v", diags[3])
	}
	if len(engine.GetWarnings()) != 1 {
		t.Errorf("expected one warning")
	}
	engine.SortDiagnostics()
	if engine.GetDiagnostics()[3].Code != CodeTooMany {
		t.Errorf("truncation notice moved by sorting")
	}
}
