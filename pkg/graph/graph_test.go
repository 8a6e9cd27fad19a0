package graph

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const eps = 1e-9

func vecNear(a, b r3.Vec) bool {
	return r3.Norm(r3.Sub(a, b)) < 1e-6
}

// addPanel registers a named panel with three square layers under parent.
func addPanel(g *DesignGraph, parent NodeID, name string, tr Transform) NodeID {
	id := NewNodeID("panel/" + name)
	ring := []r3.Vec{{}, {Y: 10}, {X: 10, Y: 10}, {X: 10}}
	var layers []NodeID
	for _, role := range []LayerRole{LayerTop, LayerMid, LayerBottom} {
		lid := NewNodeID("layer/" + name + "/" + role.String())
		g.AddNode(&Node{ID: lid, Kind: NodeLayer, Data: LayerData{Role: role, Ring: ring}})
		layers = append(layers, lid)
	}
	g.AddNode(&Node{
		ID: id, Kind: NodePanel, Name: name, Transform: tr, Children: layers,
		Data: PanelData{Width: 10, Height: 10, Thickness: 1},
	})
	if parent.IsZero() {
		g.AddRoot(id)
	} else if err := g.AddChild(parent, id); err != nil {
		panic(err)
	}
	return id
}

func TestNewDesignGraph(t *testing.T) {
	g := New()
	if g.Nodes == nil || g.NameIndex == nil {
		t.Fatal("maps should be initialized")
	}
	if g.Defaults.Units != "mm" {
		t.Errorf("default units = %q, want %q", g.Defaults.Units, "mm")
	}
	if g.NodeCount() != 0 {
		t.Errorf("empty graph should have 0 nodes, got %d", g.NodeCount())
	}
}

func TestNodeIDsAreStable(t *testing.T) {
	a, b := NewNodeID("panel/upper"), NewNodeID("panel/upper")
	if a != b {
		t.Errorf("ids differ for the same path: %s vs %s", a, b)
	}
	if a == NewNodeID("panel/bottom") {
		t.Error("different paths share an id")
	}
	if len(a.Short()) != 8 {
		t.Errorf("Short() = %q", a.Short())
	}
	if !NodeID("").IsZero() {
		t.Error("empty id should be zero")
	}
}

func TestAddNodeAndLookup(t *testing.T) {
	g := New()
	id := addPanel(g, "", "bottom", Transform{})

	found := g.Lookup("bottom")
	if found == nil || found.ID != id {
		t.Fatal("Lookup('bottom') failed")
	}
	if g.MustLookup("bottom").ID != id {
		t.Error("MustLookup returned wrong node")
	}
	if g.Lookup("nonexistent") != nil {
		t.Error("Lookup should return nil for missing name")
	}
	if len(g.Roots) != 1 || g.Roots[0] != id {
		t.Errorf("roots = %v", g.Roots)
	}
	if n := len(g.ChildrenOfKind(found, NodeLayer)); n != 3 {
		t.Errorf("layer children = %d, want 3", n)
	}
}

func TestMustLookupPanics(t *testing.T) {
	g := New()
	defer func() {
		if recover() == nil {
			t.Error("MustLookup should panic on a missing name")
		}
	}()
	g.MustLookup("missing")
}

func TestPanelsKeepConstructionOrder(t *testing.T) {
	g := New()
	names := []string{"bottomLeft", "bottom", "bottomRight", "belowFront", "upperFront", "upper"}
	for _, n := range names {
		addPanel(g, "", n, Transform{})
	}
	for i := 0; i < 5; i++ {
		panels := g.Panels()
		for j, p := range panels {
			if p.Name != names[j] {
				t.Fatalf("panel %d = %q, want %q", j, p.Name, names[j])
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Hinge paths
// ---------------------------------------------------------------------------

func TestResolveHingePath(t *testing.T) {
	g := New()
	front := addPanel(g, "", "belowFront", Transform{})
	upper := addPanel(g, front, "upper", Transform{Position: r3.Vec{Y: 60}})

	n, err := g.Resolve("belowFront/upper")
	if err != nil || n.ID != upper {
		t.Fatalf("Resolve = %v, %v", n, err)
	}
	if got := g.PathOf(upper); got != "belowFront/upper" {
		t.Errorf("PathOf = %q", got)
	}
	if g.Parent(upper).ID != front {
		t.Error("Parent(upper) should be belowFront")
	}

	for _, bad := range []string{"missing", "belowFront/missing", "upper/belowFront"} {
		if _, err := g.Resolve(bad); !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve(%q) err = %v, want ErrNotFound", bad, err)
		}
	}
}

func TestSetHinge(t *testing.T) {
	g := New()
	id := addPanel(g, "", "belowFront", Transform{})
	v := g.Version

	if err := g.SetHinge(id, AxisX, 45); err != nil {
		t.Fatal(err)
	}
	if got := g.Hinge(id, AxisX); got != 45 {
		t.Errorf("hinge = %f, want 45", got)
	}
	if g.Version != v+1 {
		t.Error("SetHinge should bump the version")
	}
	if err := g.SetHinge(NewNodeID("nope"), AxisY, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// Transforms
// ---------------------------------------------------------------------------

func TestTransformRotations(t *testing.T) {
	tests := []struct {
		name string
		rot  r3.Vec
		in   r3.Vec
		want r3.Vec
	}{
		{"identity", r3.Vec{}, r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 1, Y: 2, Z: 3}},
		{"x90 maps y to z", r3.Vec{X: 90}, r3.Vec{Y: 1}, r3.Vec{Z: 1}},
		{"y90 maps x to -z", r3.Vec{Y: 90}, r3.Vec{X: 1}, r3.Vec{Z: -1}},
		{"z90 maps x to y", r3.Vec{Z: 90}, r3.Vec{X: 1}, r3.Vec{Y: 1}},
		{"xy90 maps x to y", r3.Vec{X: 90, Y: 90}, r3.Vec{X: 1}, r3.Vec{Y: 1}},
		{"xy90 maps y to z", r3.Vec{X: 90, Y: 90}, r3.Vec{Y: 1}, r3.Vec{Z: 1}},
		{"z180 flips", r3.Vec{Z: 180}, r3.Vec{X: 1, Y: 1}, r3.Vec{X: -1, Y: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transform{Rotation: tt.rot}.Apply(tt.in)
			if !vecNear(got, tt.want) {
				t.Errorf("Apply(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWorldComposesParents(t *testing.T) {
	g := New()
	front := addPanel(g, "", "belowFront", Transform{Rotation: r3.Vec{X: 90}})
	upper := addPanel(g, front, "upper", Transform{Position: r3.Vec{Y: 60}})

	// upper's origin sits at the parent's local (0,60,0), which x90 maps to (0,0,60).
	got := g.World(upper).Apply(r3.Vec{})
	if !vecNear(got, r3.Vec{Z: 60}) {
		t.Errorf("upper origin = %v, want (0,0,60)", got)
	}

	// A point along upper's local y follows the parent's rotation.
	got = g.World(upper).Apply(r3.Vec{Y: 10})
	if !vecNear(got, r3.Vec{Z: 70}) {
		t.Errorf("upper (0,10) = %v, want (0,0,70)", got)
	}

	if d := g.World(upper).Direction(r3.Vec{Y: 1}); math.Abs(d.Z-1) > eps {
		t.Errorf("direction = %v", d)
	}
}

func TestLayerWalls(t *testing.T) {
	ld := LayerData{Ring: []r3.Vec{{}, {Y: 1}, {X: 1, Y: 1}, {X: 1}}, Depth: 2}
	walls := ld.Walls()
	if len(walls) != 4 {
		t.Fatalf("walls = %d, want 4", len(walls))
	}
	if walls[0][2].Z != 2 || walls[0][0].Z != 0 {
		t.Errorf("wall spans wrong depth: %v", walls[0])
	}
	if (LayerData{Ring: ld.Ring}).Walls() != nil {
		t.Error("flat layer should have no walls")
	}
	if ld.BackCap()[1].Z != 2 {
		t.Error("back cap not offset by depth")
	}
}
