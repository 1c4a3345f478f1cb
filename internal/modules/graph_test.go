package modules

import "testing"

func TestDependents(t *testing.T) {
	dg := NewDependencyGraph()
	dg.AddDependency("b.ts", "a.ts")
	dg.AddDependency("c.ts", "b.ts")
	dg.AddDependency("d.ts", "x.ts")

	got := dg.Dependents("a.ts")
	want := []ModulePath{"a.ts", "b.ts", "c.ts"}
	if len(got) != len(want) {
		t.Fatalf("Dependents = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Dependents[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDetectCycles(t *testing.T) {
	dg := NewDependencyGraph()
	dg.AddDependency("a.ts", "b.ts")
	dg.AddDependency("b.ts", "a.ts")
	dg.AddDependency("c.ts", "a.ts")

	cycles := dg.DetectCycles()
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %v", cycles)
	}
	if got := FormatCycle(cycles[0]); got != "a.ts -> b.ts -> a.ts" {
		t.Errorf("cycle = %s", got)
	}
}

func TestDetectCyclesAcyclic(t *testing.T) {
	dg := NewDependencyGraph()
	dg.AddDependency("a.ts", "b.ts")
	dg.AddDependency("a.ts", "b.ts")
	if cycles := dg.DetectCycles(); len(cycles) != 0 {
		t.Errorf("unexpected cycles %v", cycles)
	}
	if len(dg.GetDependencies("a.ts")) != 1 {
		t.Errorf("duplicate edge recorded")
	}
	if dg.String() != "2 modules, 1 edges" {
		t.Errorf("String() = %q", dg.String())
	}
}
