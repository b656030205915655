//go:build !integration

package graph

import (
	"reflect"
	"sort"
	"testing"
)

type fakeRequirer struct {
	id       SubjectID
	sources  []SourceDep
	tools    []ToolDep
	pkgs     []string
	tasks    []TaskDep
}

func (f *fakeRequirer) SubjectID() SubjectID     { return f.id }
func (f *fakeRequirer) Kind() Kind               { return f.id.Kind }
func (f *fakeRequirer) SourceDeps() []SourceDep  { return f.sources }
func (f *fakeRequirer) ToolDeps() []ToolDep      { return f.tools }
func (f *fakeRequirer) PkgDeps() []string        { return f.pkgs }
func (f *fakeRequirer) TaskDeps() []TaskDep      { return f.tasks }

type fakeLookup struct {
	sources map[string]Requirer
	stages  map[string][]Requirer
}

func (l *fakeLookup) Source(name string) (Requirer, bool) {
	r, ok := l.sources[name]
	return r, ok
}

func (l *fakeLookup) ToolStages(tool string) []Requirer { return l.stages[tool] }

func (l *fakeLookup) ToolStage(tool, stage string) (Requirer, bool) {
	for _, st := range l.stages[tool] {
		if st.SubjectID().Stage == stage {
			return st, true
		}
	}
	return nil, false
}

func TestResolveSourceDepsTransitsOnlyRecursive(t *testing.T) {
	cRoot := &fakeRequirer{id: SubjectID{Kind: KindSource, Name: "c"}}
	lookup := &fakeLookup{sources: map[string]Requirer{"c": cRoot}}

	root := &fakeRequirer{sources: []SourceDep{
		{Name: "a", Recursive: false},
		{Name: "b", Recursive: true},
	}}
	lookup.sources["b"] = &fakeRequirer{sources: []SourceDep{{Name: "c", Recursive: false}}}

	got := ResolveSourceDeps(root, lookup)
	sort.Strings(got)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveSourceDeps = %v, want %v", got, want)
	}
}

func TestResolveToolDepsExposedOnly(t *testing.T) {
	gccStage := &fakeRequirer{id: SubjectID{Kind: KindToolStage, Name: "gcc"}}
	binutilsStage := &fakeRequirer{id: SubjectID{Kind: KindToolStage, Name: "binutils"}}
	lookup := &fakeLookup{stages: map[string][]Requirer{
		"gcc":      {gccStage},
		"binutils": {binutilsStage},
	}}

	root := &fakeRequirer{tools: []ToolDep{
		{Tool: "gcc", Expose: true},
		{Tool: "binutils", Expose: false},
	}}

	got := ResolveToolDeps(root, lookup, true)
	if len(got) != 1 || got[0].Name != "gcc" {
		t.Errorf("expected only gcc exposed, got %v", got)
	}

	gotAll := ResolveToolDeps(root, lookup, false)
	if len(gotAll) != 2 {
		t.Errorf("expected both tools when exposedOnly=false, got %v", gotAll)
	}
}

func TestTraverseGraphVisitsEachKeyOnce(t *testing.T) {
	visits := make(map[int]int)
	neighbors := map[int][]int{1: {2, 3}, 2: {3}, 3: {1}}
	TraverseGraph([]int{1}, func(n int) string { return string(rune('a' + n)) }, func(n int) []int {
		visits[n]++
		return neighbors[n]
	})
	for n, c := range visits {
		if c != 1 {
			t.Errorf("node %d visited %d times, want 1", n, c)
		}
	}
	if len(visits) != 3 {
		t.Errorf("expected 3 nodes visited, got %d", len(visits))
	}
}
