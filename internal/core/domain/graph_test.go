package domain_test

import (
	"errors"
	"testing"

	"go.trai.ch/soup/internal/core/domain"
	"go.trai.ch/zerr"
)

func titles(g *domain.Graph) []string {
	var out []string
	for n := range g.Walk() {
		out = append(out, n.Title)
	}
	return out
}

func TestGraph_Walk_ChildrenFirst(t *testing.T) {
	leaf := &domain.BuildStepNode{Title: "leaf"}
	mid := &domain.BuildStepNode{Title: "mid", Children: []*domain.BuildStepNode{leaf}}
	root := &domain.BuildStepNode{Title: "root", Children: []*domain.BuildStepNode{mid}}

	g := domain.NewGraph(root)
	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := titles(g)
	want := []string{"leaf", "mid", "root"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}

func TestGraph_Walk_Diamond(t *testing.T) {
	// A -> B, A -> C, B -> D, C -> D
	d := &domain.BuildStepNode{Title: "D"}
	b := &domain.BuildStepNode{Title: "B", Children: []*domain.BuildStepNode{d}}
	c := &domain.BuildStepNode{Title: "C", Children: []*domain.BuildStepNode{d}}
	a := &domain.BuildStepNode{Title: "A", Children: []*domain.BuildStepNode{b, c}}

	g := domain.NewGraph(a, d)
	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.NodeCount() != 4 {
		t.Fatalf("expected 4 distinct nodes, got %d", g.NodeCount())
	}

	seen := map[string]int{}
	for _, title := range titles(g) {
		seen[title]++
	}
	if seen["D"] != 1 {
		t.Errorf("expected shared child to be walked once, got %d", seen["D"])
	}

	parents := g.Dependents(d)
	if len(parents) != 2 {
		t.Errorf("expected D to have 2 dependents, got %d", len(parents))
	}
	if len(g.Dependents(a)) != 0 {
		t.Errorf("expected root to have no dependents")
	}
}

func TestGraph_Dependents_RepeatedChild(t *testing.T) {
	c := &domain.BuildStepNode{Title: "C"}
	d := &domain.BuildStepNode{Title: "D", Children: []*domain.BuildStepNode{c}}
	p := &domain.BuildStepNode{Title: "P", Children: []*domain.BuildStepNode{c, d, c}}

	g := domain.NewGraph(p)
	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(g.Dependents(c)); got != 2 {
		t.Errorf("expected 2 distinct dependents, got %d", got)
	}
	if got := len(domain.UniqueChildren(p)); got != 2 {
		t.Errorf("expected 2 unique children, got %d", got)
	}
}

func TestGraph_Validate_Cycle(t *testing.T) {
	a := &domain.BuildStepNode{Title: "A"}
	b := &domain.BuildStepNode{Title: "B", Children: []*domain.BuildStepNode{a}}
	a.Children = []*domain.BuildStepNode{b}

	err := domain.NewGraph(a).Validate()
	if err == nil {
		t.Fatal("expected error for cycle, got nil")
	}
	if !errors.Is(err, domain.ErrCycleDetected) {
		t.Errorf("expected ErrCycleDetected, got %v", err)
	}

	zErr, ok := err.(*zerr.Error)
	if !ok {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
	if cycle, ok := zErr.Metadata()["cycle"].(string); !ok || cycle != "A -> B -> A" {
		t.Errorf("expected cycle metadata %q, got %v", "A -> B -> A", zErr.Metadata()["cycle"])
	}
}

func TestGraph_Validate_NilChild(t *testing.T) {
	a := &domain.BuildStepNode{Title: "A", Children: []*domain.BuildStepNode{nil}}
	if err := domain.NewGraph(a).Validate(); !errors.Is(err, domain.ErrInvalidNode) {
		t.Errorf("expected ErrInvalidNode, got %v", err)
	}
}

func TestGraph_Empty(t *testing.T) {
	g := domain.NewGraph()
	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.NodeCount() != 0 {
		t.Errorf("expected empty graph, got %d nodes", g.NodeCount())
	}
}

func TestBuildStepNode_ResolvePath(t *testing.T) {
	n := &domain.BuildStepNode{WorkingDirectory: "/work"}
	tests := []struct {
		in   string
		want string
	}{
		{"main.c", "/work/main.c"},
		{"obj/../main.o", "/work/main.o"},
		{"/abs/file", "/abs/file"},
	}
	for _, tt := range tests {
		if got := n.ResolvePath(tt.in); got != tt.want {
			t.Errorf("ResolvePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	bare := &domain.BuildStepNode{}
	if got := bare.ResolvePath("./x"); got != "x" {
		t.Errorf("expected cleaned relative path, got %q", got)
	}
}
