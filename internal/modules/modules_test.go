package modules

import (
	"testing"

	"github.com/constprop/constprop/internal/ast"
	"github.com/constprop/constprop/internal/parser"
)

func parseModule(t *testing.T, path, src string) *Module {
	t.Helper()
	file, errs := parser.ParseFile(path, src)
	if len(errs) > 0 {
		t.Fatalf("parse %s: %v", path, errs)
	}
	return NewModule(ModulePath(path), file, src)
}

func TestExportTable(t *testing.T) {
	src := `import { a, b as c, type T } from "./dep";
import d, * as ns from "./other";
const local = "v";
let mutable = 1;
export const pub = 42, computed = f();
export { local as renamed, c };
export { x as y } from "./far";
export type { U } from "./types";
export * from "./star";
export * as all from "./star";
export function fn() {}
export default class {}
`
	m := parseModule(t, "main.ts", src)

	tests := []struct {
		name string
		want Declaration
	}{
		{"pub", LocalConst{Name: "pub"}},
		{"renamed", LocalBareReExport{Local: "local"}},
		{"c", LocalBareReExport{Local: "c"}},
		{"y", ReExportFrom{Specifier: "./far", Source: "x"}},
		{"U", Other{}},
		{"all", Other{}},
		{"fn", Other{}},
		{"default", Other{}},
		{"computed", LocalConst{Name: "computed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.Export(tt.name)
			if !ok {
				t.Fatalf("export %q missing", tt.name)
			}
			assertSameVariant(t, got, tt.want)
		})
	}

	if _, ok := m.Export("local"); ok {
		t.Errorf("unexported const should not be in the export table")
	}
	if _, ok := m.Export("mutable"); ok {
		t.Errorf("unexported let should not be in the export table")
	}
}

func assertSameVariant(t *testing.T, got, want Declaration) {
	t.Helper()
	switch w := want.(type) {
	case LocalConst:
		g, ok := got.(LocalConst)
		if !ok || g.Name != w.Name {
			t.Errorf("got %#v, want LocalConst %q", got, w.Name)
		}
	case LocalBareReExport:
		if g, ok := got.(LocalBareReExport); !ok || g != w {
			t.Errorf("got %#v, want %#v", got, w)
		}
	case ReExportFrom:
		if g, ok := got.(ReExportFrom); !ok || g != w {
			t.Errorf("got %#v, want %#v", got, w)
		}
	case ImportFrom:
		if g, ok := got.(ImportFrom); !ok || g != w {
			t.Errorf("got %#v, want %#v", got, w)
		}
	case Other:
		if _, ok := got.(Other); !ok {
			t.Errorf("got %#v, want Other", got)
		}
	}
}

func TestLocalTable(t *testing.T) {
	src := `import { a, b as c, type T } from "./dep";
import type { V } from "./dep";
import d, * as ns from "./other";
const local = "v";
let mutable = 1;
const { p, q } = obj;
declare const ambient: string;
namespace N.M {}
`
	m := parseModule(t, "main.ts", src)

	tests := []struct {
		name string
		want Declaration
	}{
		{"a", ImportFrom{Specifier: "./dep", Source: "a"}},
		{"c", ImportFrom{Specifier: "./dep", Source: "b"}},
		{"T", Other{}},
		{"V", Other{}},
		{"d", Other{}},
		{"ns", Other{}},
		{"local", LocalConst{Name: "local"}},
		{"mutable", Other{}},
		{"p", Other{}},
		{"ambient", Other{}},
		{"N", Other{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.Local(tt.name)
			if !ok {
				t.Fatalf("local %q missing", tt.name)
			}
			assertSameVariant(t, got, tt.want)
		})
	}

	if !m.HasBinding("local") || m.HasBinding("missing") {
		t.Errorf("HasBinding mismatch")
	}
}

func TestLocalConstInitializer(t *testing.T) {
	m := parseModule(t, "a.ts", `export const x = "constantvalue";`)
	d, _ := m.Export("x")
	lc, ok := d.(LocalConst)
	if !ok {
		t.Fatalf("expected LocalConst, got %#v", d)
	}
	lit, ok := ast.AsLiteral(lc.Init)
	if !ok || lit.Raw != `"constantvalue"` {
		t.Errorf("unexpected initializer %#v", lc.Init)
	}
}

func TestSpecifiers(t *testing.T) {
	src := `import { a } from "./a";
import "./side";
export { b } from "./a";
export * from "./c";
`
	m := parseModule(t, "main.ts", src)
	want := []string{"./a", "./side", "./c"}
	if len(m.Specifiers) != len(want) {
		t.Fatalf("Specifiers = %v, want %v", m.Specifiers, want)
	}
	for i := range want {
		if m.Specifiers[i] != want[i] {
			t.Errorf("Specifiers[%d] = %q, want %q", i, m.Specifiers[i], want[i])
		}
	}
}

func TestExportNamesSorted(t *testing.T) {
	m := parseModule(t, "a.ts", "export const b = 1;\nexport const a = 2;\n")
	names := m.ExportNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("ExportNames = %v", names)
	}
}
