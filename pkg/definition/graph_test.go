package definition

import (
	"errors"
	"testing"

	sgerr "github.com/matzehuels/scopegraph/pkg/errors"
	"github.com/matzehuels/scopegraph/pkg/scope"
)

func mustNode(t *testing.T, g *Graph, name string) *Node {
	t.Helper()
	n, err := g.Node(name)
	if err != nil {
		t.Fatalf("Node(%q): %v", name, err)
	}
	return n
}

func TestNodeIdempotent(t *testing.T) {
	g := New(nil)
	for _, name := range []string{"app", "core.lib", "plugins/x"} {
		first := mustNode(t, g, name)
		second := mustNode(t, g, name)
		if first != second {
			t.Errorf("Node(%q) returned different instances", name)
		}
	}
	if g.Len() != 3 {
		t.Errorf("Len = %d, want 3", g.Len())
	}
}

func TestAddNodeDuplicate(t *testing.T) {
	g := New(nil)
	if _, err := g.AddNode("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddNode("a"); !sgerr.Is(err, sgerr.ErrCodeGraphStructure) {
		t.Errorf("duplicate AddNode: err = %v", err)
	}
}

func TestInvalidNodeName(t *testing.T) {
	g := New(nil)
	for _, name := range []string{"", "has space", "tab\tname"} {
		if _, err := g.Node(name); !sgerr.Is(err, sgerr.ErrCodeInvalidName) {
			t.Errorf("Node(%q): err = %v, want INVALID_NODE_NAME", name, err)
		}
	}
}

func TestNodesSortedAndLookup(t *testing.T) {
	g := New(nil)
	mustNode(t, g, "c")
	mustNode(t, g, "a")
	mustNode(t, g, "b")

	var names []string
	for _, n := range g.Nodes() {
		names = append(names, n.Name())
	}
	if len(names) != 3 || names[0] != "a" || names[2] != "c" {
		t.Errorf("Nodes = %v", names)
	}
	if _, ok := g.Lookup("missing"); ok {
		t.Error("Lookup should not create nodes")
	}
	if n, ok := g.Lookup("a"); !ok || n.Graph() != g {
		t.Error("Lookup(a) failed")
	}
}

func TestAddSourceOrderedUnique(t *testing.T) {
	g := New(nil)
	n := mustNode(t, g, "n")
	if err := n.AddSource("/b/", "/a/", "/b/"); err != nil {
		t.Fatal(err)
	}
	if err := n.AddSource("/c/", "/a/"); err != nil {
		t.Fatal(err)
	}
	got := n.Sources()
	want := []string{"/b/", "/a/", "/c/"}
	if len(got) != len(want) {
		t.Fatalf("Sources = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sources[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if err := n.AddSource("  "); !sgerr.Is(err, sgerr.ErrCodeInvalidInput) {
		t.Errorf("blank source: err = %v", err)
	}
}

func TestSetParentForeignGraph(t *testing.T) {
	g1, g2 := New(nil), New(nil)
	a := mustNode(t, g1, "a")
	foreign := mustNode(t, g2, "b")

	if err := a.SetParent(foreign); !sgerr.Is(err, sgerr.ErrCodeGraphStructure) {
		t.Errorf("foreign parent: err = %v", err)
	}
	if err := a.AddChildNode(foreign); !sgerr.Is(err, sgerr.ErrCodeGraphStructure) {
		t.Errorf("foreign child: err = %v", err)
	}
	if err := a.ImportUnits(foreign, "x.*"); !sgerr.Is(err, sgerr.ErrCodeGraphStructure) {
		t.Errorf("foreign import: err = %v", err)
	}

	// Same name, different graph: still foreign.
	impostor := mustNode(t, g2, "a")
	if err := mustNode(t, g1, "c").SetParent(impostor); err == nil {
		t.Error("node with a colliding name from another graph should be rejected")
	}

	if err := a.SetParent(nil); err != nil || a.Parent() != nil {
		t.Errorf("SetParent(nil) = %v", err)
	}
}

func TestAddChild(t *testing.T) {
	g := New(nil)
	root := mustNode(t, g, "root")
	child, err := root.AddChild("child")
	if err != nil {
		t.Fatal(err)
	}
	if child.Parent() != root {
		t.Error("AddChild should set the child's parent")
	}
	if n, _ := g.Lookup("child"); n != child {
		t.Error("AddChild should create the node in the graph")
	}

	other := mustNode(t, g, "other")
	if err := root.AddChildNode(other); err != nil || other.Parent() != root {
		t.Errorf("AddChildNode = %v", err)
	}
}

func TestStrategies(t *testing.T) {
	g := New(nil)
	n := mustNode(t, g, "n")

	if n.EffectiveStrategy() != scope.Default {
		t.Errorf("EffectiveStrategy = %v, want default", n.EffectiveStrategy())
	}
	if err := g.SetDefaultStrategyName("pis"); err != nil {
		t.Fatal(err)
	}
	if n.EffectiveStrategy() != scope.Strategy(scope.PIS) {
		t.Errorf("EffectiveStrategy = %v, want PIS", n.EffectiveStrategy())
	}
	if err := n.SetStrategyName("ISP"); err != nil {
		t.Fatal(err)
	}
	if n.Strategy() != scope.Strategy(scope.ISP) {
		t.Errorf("Strategy = %v, want ISP", n.Strategy())
	}
	if err := n.SetStrategyName(""); err != nil || n.Strategy() != nil {
		t.Errorf("SetStrategyName(\"\") = %v, strategy %v", err, n.Strategy())
	}

	if err := n.SetStrategyName("com.example.Custom"); !sgerr.Is(err, sgerr.ErrCodeInvalidStrategy) {
		t.Errorf("unknown strategy: err = %v", err)
	}
	if err := g.SetDefaultStrategyName("nope"); !sgerr.Is(err, sgerr.ErrCodeInvalidStrategy) {
		t.Errorf("unknown default strategy: err = %v", err)
	}
	if err := g.SetDefaultStrategy(nil); err == nil {
		t.Error("nil default strategy should be rejected")
	}
}

func TestImports(t *testing.T) {
	g := New(nil)
	x := mustNode(t, g, "x")

	if err := x.ImportUnitsFrom("y", "pkg.*"); err != nil {
		t.Fatal(err)
	}
	if err := x.ImportResourcesFrom("y", "conf/**"); err != nil {
		t.Fatal(err)
	}
	y, ok := g.Lookup("y")
	if !ok {
		t.Fatal("ImportUnitsFrom should create the target node")
	}

	units := x.UnitImports()
	if len(units) != 1 || units[0].Target != y || units[0].Pattern != "pkg.*" {
		t.Fatalf("UnitImports = %+v", units)
	}
	if !units[0].Matcher.Accepts("pkg.One") || units[0].Matcher.Accepts("pkg.Sub.Two") {
		t.Error("unit import should use '.' segments")
	}
	res := x.ResourceImports()
	if len(res) != 1 || !res[0].Matcher.Accepts("conf/a/b.toml") {
		t.Errorf("ResourceImports = %+v", res)
	}

	err := x.ImportUnits(y, "pkg.*.Impl")
	var patternErr *sgerr.InvalidPatternError
	if !errors.As(err, &patternErr) || patternErr.Pattern != "pkg.*.Impl" {
		t.Errorf("bad pattern: err = %v", err)
	}
	if len(x.UnitImports()) != 1 {
		t.Error("rejected import must not be recorded")
	}
}

func TestFreeze(t *testing.T) {
	g := New(nil)
	n := mustNode(t, g, "n")
	g.Freeze()

	if !g.Frozen() {
		t.Fatal("Frozen = false after Freeze")
	}
	checks := map[string]error{
		"AddNode":   func() error { _, err := g.AddNode("m"); return err }(),
		"AddSource": n.AddSource("/x/"),
		"SetParent": n.SetParent(nil),
		"Strategy":  n.SetStrategy(scope.PIS),
		"Import":    n.ImportUnits(n, "a.*"),
		"SetRoot":   g.SetRoot(nil),
	}
	for name, err := range checks {
		if !sgerr.Is(err, sgerr.ErrCodeGraphStructure) {
			t.Errorf("%s after Freeze: err = %v", name, err)
		}
	}
	if n2, err := g.Node("n"); err != nil || n2 != n {
		t.Error("Node of an existing name must still work on a frozen graph")
	}
}
