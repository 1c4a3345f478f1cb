package modules

import (
	"path"
	"strings"
)

// DefaultExtensions lists the source file extensions loaded when none are
// configured, in resolution order.
var DefaultExtensions = []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"}

// typeScriptTwins maps emitted JavaScript extensions to the TypeScript
// sources they are compiled from, so "./a.js" finds "a.ts".
var typeScriptTwins = map[string][]string{
	".js":  {".ts", ".tsx"},
	".jsx": {".tsx"},
	".mjs": {".mts"},
	".cjs": {".cts"},
}

// IsRelative reports whether a specifier is resolved against the importing
// module rather than through a package lookup.
func IsRelative(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") ||
		specifier == "." || specifier == ".." || strings.HasPrefix(specifier, "/")
}

// ResolveSpecifier maps a specifier written in module from to the path of an
// existing module. Bare specifiers and paths outside the project root are
// unreachable.
func ResolveSpecifier(from ModulePath, specifier string, extensions []string, exists func(ModulePath) bool) (ModulePath, bool) {
	if !IsRelative(specifier) {
		return "", false
	}
	// drop query and fragment suffixes used by some bundlers
	if i := strings.IndexAny(specifier, "?#"); i >= 0 {
		specifier = specifier[:i]
	}

	var base string
	if strings.HasPrefix(specifier, "/") {
		base = path.Clean(strings.TrimPrefix(specifier, "/"))
	} else {
		base = path.Join(path.Dir(string(from)), specifier)
	}
	if base == ".." || strings.HasPrefix(base, "../") {
		return "", false
	}

	for _, candidate := range candidates(base, extensions) {
		if exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// candidates lists the paths tried for base, in order: the exact path, the
// TypeScript twin of a JavaScript path, base plus each extension, and the
// index file of a directory.
func candidates(base string, extensions []string) []ModulePath {
	var out []ModulePath
	if base != "." {
		out = append(out, ModulePath(base))
		ext := path.Ext(base)
		for _, twin := range typeScriptTwins[ext] {
			out = append(out, ModulePath(strings.TrimSuffix(base, ext)+twin))
		}
		for _, e := range extensions {
			out = append(out, ModulePath(base+e))
		}
	}
	for _, e := range extensions {
		out = append(out, ModulePath(path.Join(base, "index"+e)))
	}
	return out
}
