package modules

import "testing"

func TestResolveSpecifier(t *testing.T) {
	existing := map[ModulePath]bool{
		"src/a.ts":         true,
		"src/b.tsx":        true,
		"src/lib/index.ts": true,
		"src/util.mts":     true,
		"src/plain.js":     true,
		"shared/consts.ts": true,
	}
	exists := func(p ModulePath) bool { return existing[p] }

	tests := []struct {
		from      ModulePath
		specifier string
		want      ModulePath
		ok        bool
	}{
		{"src/main.ts", "./a", "src/a.ts", true},
		{"src/main.ts", "./a.ts", "src/a.ts", true},
		{"src/main.ts", "./a.js", "src/a.ts", true},
		{"src/main.ts", "./b", "src/b.tsx", true},
		{"src/main.ts", "./b.js", "src/b.tsx", true},
		{"src/main.ts", "./lib", "src/lib/index.ts", true},
		{"src/main.ts", "./util.mjs", "src/util.mts", true},
		{"src/main.ts", "./plain.js", "src/plain.js", true},
		{"src/main.ts", "../shared/consts", "shared/consts.ts", true},
		{"src/deep/x.ts", "/shared/consts", "shared/consts.ts", true},
		{"src/main.ts", "./a?raw", "src/a.ts", true},
		{"src/main.ts", "lodash", "", false},
		{"src/main.ts", "@scope/pkg", "", false},
		{"src/main.ts", "./missing", "", false},
		{"main.ts", "../outside", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+" "+tt.specifier, func(t *testing.T) {
			got, ok := ResolveSpecifier(tt.from, tt.specifier, DefaultExtensions, exists)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ResolveSpecifier = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestIsRelative(t *testing.T) {
	for spec, want := range map[string]bool{
		"./a": true, "../a": true, "/a": true, ".": true,
		"a": false, "@s/p": false, "node:fs": false,
	} {
		if got := IsRelative(spec); got != want {
			t.Errorf("IsRelative(%q) = %v, want %v", spec, got, want)
		}
	}
}
