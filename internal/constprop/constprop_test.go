package constprop

import (
	"context"
	"testing"

	"github.com/constprop/constprop/internal/format"
	"github.com/constprop/constprop/internal/modules"
	"github.com/constprop/constprop/internal/vfs"
)

func loadProgram(t *testing.T, files map[string]string) *modules.Program {
	t.Helper()
	program, err := modules.Load(context.Background(), vfs.NewMemFromMap(files), ".", modules.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(program.Failures) > 0 {
		t.Fatalf("load failures: %v", program.Failures)
	}
	return program
}

func runProgram(t *testing.T, files map[string]string) map[modules.ModulePath]Result {
	t.Helper()
	results, _, err := Run(context.Background(), loadProgram(t, files), Options{Concurrency: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := make(map[modules.ModulePath]Result, len(results))
	for _, r := range results {
		out[r.Path] = r
	}
	return out
}

func TestPropagation(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  map[modules.ModulePath]string // expected output of changed modules
	}{
		{
			name: "import removed",
			files: map[string]string{
				"file1.ts": "export const x = \"v\";\n",
				"file2.ts": "import { x } from \"./file1\";\nconsole.log(x);\n",
			},
			want: map[modules.ModulePath]string{
				"file2.ts": "const x = \"v\";\nconsole.log(x);\n",
			},
		},
		{
			name: "import shrunk",
			files: map[string]string{
				"file1.ts": "export const x = \"v\";\nexport function y() {}\n",
				"file2.ts": "import { x, y } from \"./file1\";\ny(x);\n",
			},
			want: map[modules.ModulePath]string{
				"file2.ts": "import { y } from \"./file1\";\nconst x = \"v\";\ny(x);\n",
			},
		},
		{
			name: "three hop chain",
			files: map[string]string{
				"file1.ts": "const x = \"v\";\nexport { x };\n",
				"file2.ts": "export { x } from \"./file1\";\n",
				"file3.ts": "import { x } from \"./file2\";\n",
			},
			want: map[modules.ModulePath]string{
				"file2.ts": "const x = \"v\";\nexport { x };\n",
				"file3.ts": "const x = \"v\";\n",
			},
		},
		{
			name: "aliased double hop",
			files: map[string]string{
				"file1.ts": "export const y = \"v\";\n",
				"file2.ts": "import { y as z } from \"./file1\";\nexport { z as x };\n",
				"file3.ts": "import { x } from \"./file2\";\n",
			},
			want: map[modules.ModulePath]string{
				"file2.ts": "const z = \"v\";\nexport { z as x };\n",
				"file3.ts": "const x = \"v\";\n",
			},
		},
		{
			name: "partial re-export",
			files: map[string]string{
				"file1.ts": "export const x = \"constantvalue\";\nexport function y() {}\n",
				"file2.ts": "export { x, y } from './file1';\n",
			},
			want: map[modules.ModulePath]string{
				"file2.ts": "export { y } from './file1';\nconst x = \"constantvalue\";\nexport { x };\n",
			},
		},
		{
			name: "aliased re-export",
			files: map[string]string{
				"a.ts": "export const x = 42;\n",
				"b.ts": "export { x as answer } from \"./a\";\n",
			},
			want: map[modules.ModulePath]string{
				"b.ts": "const answer = 42;\nexport { answer };\n",
			},
		},
		{
			name: "aliased import",
			files: map[string]string{
				"a.ts": "export const x = true;\n",
				"b.ts": "import {x as y} from \"./a\";\nconsole.log(y);\n",
			},
			want: map[modules.ModulePath]string{
				"b.ts": "const y = true;\nconsole.log(y);\n",
			},
		},
		{
			name: "bare export of aliased local",
			files: map[string]string{
				"a.ts": "const x = null;\nconst y = 1;\nexport { x as z, y };\n",
				"b.ts": "import { z, y } from \"./a\";\n",
			},
			want: map[modules.ModulePath]string{
				"b.ts": "const z = null;\nconst y = 1;\n",
			},
		},
		{
			name: "non literal left alone",
			files: map[string]string{
				"a.ts": "export const x = 1 + 1;\nexport const y = `t`;\nexport let z = 1;\n",
				"b.ts": "import { x, y, z } from \"./a\";\n",
			},
		},
		{
			name: "default exports ignored",
			files: map[string]string{
				"a.ts": "export default \"v\";\n",
				"b.ts": "import d from \"./a\";\nimport { default as e } from \"./a\";\n",
			},
		},
		{
			name: "default binding kept",
			files: map[string]string{
				"a.ts": "export default function f() {}\nexport const x = \"v\";\n",
				"b.ts": "import d, { x } from \"./a\";\n",
			},
			want: map[modules.ModulePath]string{
				"b.ts": "import d from \"./a\";\nconst x = \"v\";\n",
			},
		},
		{
			name: "cycle terminates",
			files: map[string]string{
				"a.ts": "export { x } from \"./b\";\n",
				"b.ts": "export { x } from \"./a\";\n",
				"c.ts": "import { x } from \"./a\";\n",
			},
		},
		{
			name: "export star passes through",
			files: map[string]string{
				"a.ts": "export const x = 1;\n",
				"b.ts": "export * from \"./a\";\n",
				"c.ts": "import { x } from \"./b\";\n",
			},
		},
		{
			name: "type only",
			files: map[string]string{
				"a.ts": "export const x = 1;\nexport const y = 2;\n",
				"b.ts": "import type { x } from \"./a\";\nimport { type x as t, y } from \"./a\";\n",
			},
			want: map[modules.ModulePath]string{
				"b.ts": "import type { x } from \"./a\";\nimport { type x as t } from \"./a\";\nconst y = 2;\n",
			},
		},
		{
			name: "attributes preserved",
			files: map[string]string{
				"a.ts": "export const x = 1;\nexport function f() {}\n",
				"b.ts": "import { x, f } from \"./a\" with { type: \"ts\" };\n",
			},
			want: map[modules.ModulePath]string{
				"b.ts": "import { f } from \"./a\" with { type: \"ts\" };\nconst x = 1;\n",
			},
		},
		{
			name: "re-export colliding with local binding",
			files: map[string]string{
				"a.ts": "export const x = 1;\n",
				"b.ts": "const x = 2;\nexport { x } from \"./a\";\n",
			},
		},
		{
			name: "unresolved specifier",
			files: map[string]string{
				"b.ts": "import { x } from \"./missing\";\nimport { y } from \"pkg\";\n",
			},
		},
		{
			name: "nested namespace",
			files: map[string]string{
				"a.ts": "export const x = \"v\";\n",
				"b.ts": "namespace N {\n  import { x } from \"./a\";\n  export const y = x;\n}\n",
			},
			want: map[modules.ModulePath]string{
				"b.ts": "namespace N {\n  const x = \"v\";\n  export const y = x;\n}\n",
			},
		},
		{
			name: "js twin specifier",
			files: map[string]string{
				"lib/a.ts":  "export const x = 'v';\n",
				"lib/b.mts": "import { x } from \"./a.js\";\n",
			},
			want: map[modules.ModulePath]string{
				"lib/b.mts": "const x = 'v';\n",
			},
		},
		{
			name: "cycle through imports and bare exports",
			files: map[string]string{
				"a.ts": "import { x } from \"./b\";\nexport { x };\n",
				"b.ts": "import { x } from \"./a\";\nexport { x };\n",
				"c.ts": "import { x } from \"./a\";\n",
			},
		},
		{
			name: "jsx components",
			files: map[string]string{
				"a.ts":  "export const title = \"Hello\";\n",
				"c.tsx": "import { title } from \"./a\";\nexport function App() {\n  return <h1 className=\"t\">{title}</h1>;\n}\n",
				"d.tsx": "export const id = <T,>(v: T) => v;\n",
				"e.jsx": "import { title } from \"./a\";\nexport const P = () => <p>don't {title}</p>;\n",
			},
			want: map[modules.ModulePath]string{
				"c.tsx": "const title = \"Hello\";\nexport function App() {\n  return <h1 className=\"t\">{title}</h1>;\n}\n",
				"e.jsx": "const title = \"Hello\";\nexport const P = () => <p>don't {title}</p>;\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := runProgram(t, tt.files)
			if len(results) != len(tt.files) {
				t.Fatalf("expected %d results, got %d", len(tt.files), len(results))
			}
			for path, r := range results {
				want, changed := tt.want[path]
				if !changed {
					want = tt.files[string(path)]
				}
				if r.Changed != changed {
					t.Errorf("%s: Changed = %v, want %v\n%s", path, r.Changed, changed, r.Output)
				}
				if r.Output != want {
					t.Errorf("%s:\nwant %q\ngot  %q", path, want, r.Output)
				}
			}
		})
	}
}

func TestPropagationIdempotent(t *testing.T) {
	files := map[string]string{
		"file1.ts": "const x = \"v\";\nexport { x };\n",
		"file2.ts": "export { x } from \"./file1\";\n",
		"file3.ts": "import { x } from \"./file2\";\nexport const y = x;\n",
	}
	first := runProgram(t, files)

	next := make(map[string]string)
	for path, r := range first {
		next[string(path)] = r.Output
	}
	for path, r := range runProgram(t, next) {
		if r.Changed {
			t.Errorf("%s changed on second run:\n%s", path, r.Output)
		}
	}
}

func TestRunMetrics(t *testing.T) {
	program := loadProgram(t, map[string]string{
		"a.ts": "export const x = 1;\nexport const y = 2;\nexport function f() {}\n",
		"b.ts": "import { x, f } from \"./a\";\n",
		"c.ts": "import { x, y } from \"./a\";\n",
		"d.ts": "export { x, f } from \"./a\";\n",
	})
	results, total, err := Run(context.Background(), program, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Path >= results[i].Path {
			t.Errorf("results not sorted: %s before %s", results[i-1].Path, results[i].Path)
		}
	}
	if total.PassName != PassName {
		t.Errorf("PassName = %q", total.PassName)
	}
	if total.ImportsShrunk != 1 || total.ImportsRemoved != 1 || total.ReExportsRewritten != 1 {
		t.Errorf("unexpected metrics: %s", total)
	}
	if total.ConstantsInlined != 4 {
		t.Errorf("ConstantsInlined = %d, want 4", total.ConstantsInlined)
	}
	if results[0].Metrics.Changed() {
		t.Errorf("a.ts should not change")
	}
}

func TestRunOnly(t *testing.T) {
	program := loadProgram(t, map[string]string{
		"a.ts": "export const x = 1;\n",
		"b.ts": "import { x } from \"./a\";\n",
		"c.ts": "import { x } from \"./a\";\n",
	})
	results, _, err := Run(context.Background(), program, Options{Only: []modules.ModulePath{"c.ts", "missing.ts"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Path != "c.ts" || !results[0].Changed {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestRunCancelled(t *testing.T) {
	program := loadProgram(t, map[string]string{"a.ts": "export const x = 1;\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Run(ctx, program, Options{}); err == nil {
		t.Errorf("expected an error from a cancelled context")
	}
}

func TestPassLeavesModuleUntouched(t *testing.T) {
	src := "namespace N {\n  import { x } from \"./a\";\n}\nimport { x } from \"./a\";\n"
	program := loadProgram(t, map[string]string{
		"a.ts": "export const x = 1;\n",
		"b.ts": src,
	})
	m, _ := program.Module("b.ts")
	pass := NewPass(program, m)
	file := pass.Run()

	if got := format.Print(m.File); got != src {
		t.Errorf("module file was modified:\n%q", got)
	}
	want := "namespace N {\n  const x = 1;\n}\nconst x = 1;\n"
	if got := format.Print(file); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if pass.GetName() != PassName {
		t.Errorf("GetName = %q", pass.GetName())
	}
	if n := pass.GetMetrics().ImportsRemoved; n != 2 {
		t.Errorf("ImportsRemoved = %d, want 2", n)
	}
}
