package format

import (
	"strings"
	"testing"
)

func TestDiffNoChanges(t *testing.T) {
	if got := Diff("a.ts", "x\n", "x\n", DefaultDiffOptions()); got != "" {
		t.Errorf("expected empty diff, got %q", got)
	}
	result := NewDiffFormatter(DefaultDiffOptions()).GenerateDiff("a.ts", "x\ny\n", "x\ny\n")
	if result.HasChanges || result.Stats.FilesChanged != 0 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestDiffUnified(t *testing.T) {
	original := "import { x } from \"./a\";\nlet y = x;\n"
	modified := "const x = \"v\";\nlet y = x;\n"

	got := Diff("b.ts", original, modified, DefaultDiffOptions())
	want := strings.Join([]string{
		"--- b.ts\t(original)",
		"+++ b.ts\t(rewritten)",
		"@@ -1,2 +1,2 @@",
		"-import { x } from \"./a\";",
		"+const x = \"v\";",
		" let y = x;",
		"",
	}, "\n")
	if got != want {
		t.Errorf("unified diff mismatch:\n%s\nwant:\n%s", got, want)
	}
}

func TestDiffContext(t *testing.T) {
	opts := DefaultDiffOptions()
	opts.Mode = DiffModeContext
	got := Diff("b.ts", "a\nb\n", "a\nc\n", opts)
	want := strings.Join([]string{
		"*** b.ts\t(original)",
		"--- b.ts\t(rewritten)",
		"***************",
		"*** 1,2 ****",
		"  a",
		"- b",
		"--- 1,2 ----",
		"  a",
		"+ c",
		"",
	}, "\n")
	if got != want {
		t.Errorf("context diff mismatch:\n%s\nwant:\n%s", got, want)
	}
}

func TestDiffHunkSplitting(t *testing.T) {
	var a, b []string
	for i := 0; i < 20; i++ {
		line := "line" + string(rune('a'+i))
		a = append(a, line)
		b = append(b, line)
	}
	b[1] = "changed1"
	b[18] = "changed18"

	opts := DefaultDiffOptions()
	result := NewDiffFormatter(opts).GenerateDiff("f", strings.Join(a, "\n")+"\n", strings.Join(b, "\n")+"\n")
	if len(result.Hunks) != 2 {
		t.Fatalf("expected 2 hunks, got %d", len(result.Hunks))
	}
	if result.Stats.LinesAdded != 2 || result.Stats.LinesRemoved != 2 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if result.Hunks[0].Header != "@@ -1,5 +1,5 @@" {
		t.Errorf("first header = %s", result.Hunks[0].Header)
	}
	if result.Hunks[1].Header != "@@ -16,5 +16,5 @@" {
		t.Errorf("second header = %s", result.Hunks[1].Header)
	}

	opts.Context = 10
	merged := NewDiffFormatter(opts).GenerateDiff("f", strings.Join(a, "\n")+"\n", strings.Join(b, "\n")+"\n")
	if len(merged.Hunks) != 1 {
		t.Errorf("expected hunks to merge with wide context, got %d", len(merged.Hunks))
	}
}

func TestDiffInsertionOnly(t *testing.T) {
	result := NewDiffFormatter(DefaultDiffOptions()).GenerateDiff("f", "", "a\nb\n")
	if len(result.Hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(result.Hunks))
	}
	if result.Hunks[0].Header != "@@ -0,0 +1,2 @@" {
		t.Errorf("header = %s", result.Hunks[0].Header)
	}
}

func TestDiffIgnoreSpace(t *testing.T) {
	opts := DefaultDiffOptions()
	opts.IgnoreSpace = true
	if got := Diff("f", "a  \n", "a\n", opts); got != "" {
		t.Errorf("expected whitespace-only change to be ignored, got %q", got)
	}
}

func TestParseDiffMode(t *testing.T) {
	for name, want := range map[string]DiffMode{"": DiffModeUnified, "unified": DiffModeUnified, "context": DiffModeContext, "C": DiffModeContext} {
		got, err := ParseDiffMode(name)
		if err != nil || got != want {
			t.Errorf("ParseDiffMode(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseDiffMode("side"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
