package graph

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// ErrNotFound is returned when a name or path does not resolve.
var ErrNotFound = errors.New("graph: node not found")

// PathSep separates panel names in a hinge path ("belowFront/upper").
const PathSep = "/"

// GlobalDefaults contains graph-wide settings.
type GlobalDefaults struct {
	Units string `json:"units"` // "mm" only
}

// DesignGraph is the node hierarchy of one assembly. Structure is fixed
// once an assembler returns it; only hinge rotations change afterwards,
// through SetHinge.
type DesignGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Defaults  GlobalDefaults    `json:"defaults"`
	Version   uint64            `json:"version"`

	order   []NodeID
	parents map[NodeID]NodeID
}

// New creates an empty DesignGraph with default settings.
func New() *DesignGraph {
	return &DesignGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Defaults:  GlobalDefaults{Units: "mm"},
		parents:   make(map[NodeID]NodeID),
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *DesignGraph) AddNode(n *Node) {
	if _, ok := g.Nodes[n.ID]; !ok {
		g.order = append(g.order, n.ID)
	}
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
	for _, c := range n.Children {
		g.parents[c] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph.
func (g *DesignGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// AddChild attaches child under parent. Both nodes must exist.
func (g *DesignGraph) AddChild(parent, child NodeID) error {
	p, ok := g.Nodes[parent]
	if !ok {
		return fmt.Errorf("parent %s: %w", parent.Short(), ErrNotFound)
	}
	if _, ok := g.Nodes[child]; !ok {
		return fmt.Errorf("child %s: %w", child.Short(), ErrNotFound)
	}
	p.Children = append(p.Children, child)
	g.parents[child] = parent
	return nil
}

// Lookup returns the node with the given name, or nil.
func (g *DesignGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *DesignGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *DesignGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Parent returns the parent of id, or nil for roots.
func (g *DesignGraph) Parent(id NodeID) *Node {
	pid, ok := g.parents[id]
	if !ok {
		return nil
	}
	return g.Nodes[pid]
}

// Ordered returns all nodes in insertion order.
func (g *DesignGraph) Ordered() []*Node {
	return lo.FilterMap(g.order, func(id NodeID, _ int) (*Node, bool) {
		n, ok := g.Nodes[id]
		return n, ok
	})
}

// Panels returns all panel nodes in construction order.
func (g *DesignGraph) Panels() []*Node {
	return lo.Filter(g.Ordered(), func(n *Node, _ int) bool {
		return n.Kind == NodePanel
	})
}

// Children returns the child nodes of the given node.
func (g *DesignGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// ChildrenOfKind returns the children of n with the given kind.
func (g *DesignGraph) ChildrenOfKind(n *Node, kind NodeKind) []*Node {
	return lo.Filter(g.Children(n), func(c *Node, _ int) bool {
		return c.Kind == kind
	})
}

// NodeCount returns the total number of nodes.
func (g *DesignGraph) NodeCount() int {
	return len(g.Nodes)
}

// World returns the frame mapping id's local coordinates to world space.
func (g *DesignGraph) World(id NodeID) Frame {
	var chain []*Node
	for n := g.Nodes[id]; n != nil; n = g.Parent(n.ID) {
		chain = append(chain, n)
	}
	f := Identity()
	for i := len(chain) - 1; i >= 0; i-- {
		f = f.Then(chain[i].Transform)
	}
	return f
}

// PathOf returns the hinge path of a panel: the names of its panel
// ancestors and itself joined by PathSep.
func (g *DesignGraph) PathOf(id NodeID) string {
	var names []string
	for n := g.Nodes[id]; n != nil; n = g.Parent(n.ID) {
		if n.Kind == NodePanel {
			names = append(names, n.Name)
		}
	}
	slices.Reverse(names)
	return strings.Join(names, PathSep)
}

// Resolve finds a panel by hinge path. Each segment after the first must
// name a direct panel child of the previous one. A single segment is a
// plain name lookup.
func (g *DesignGraph) Resolve(path string) (*Node, error) {
	parts := strings.Split(path, PathSep)
	n := g.Lookup(parts[0])
	if n == nil {
		return nil, fmt.Errorf("%q: %w", parts[0], ErrNotFound)
	}
	for _, name := range parts[1:] {
		next, ok := lo.Find(g.Children(n), func(c *Node) bool {
			return c.Kind == NodePanel && c.Name == name
		})
		if !ok {
			return nil, fmt.Errorf("%q under %q: %w", name, n.Name, ErrNotFound)
		}
		n = next
	}
	return n, nil
}

// Hinge returns a panel's rotation about axis in degrees.
func (g *DesignGraph) Hinge(id NodeID, axis Axis) float64 {
	n := g.Nodes[id]
	if n == nil {
		return 0
	}
	return n.Transform.Component(axis)
}

// SetHinge sets a panel's rotation about axis in degrees and bumps the
// graph version.
func (g *DesignGraph) SetHinge(id NodeID, axis Axis, deg float64) error {
	n, ok := g.Nodes[id]
	if !ok {
		return fmt.Errorf("hinge %s: %w", id.Short(), ErrNotFound)
	}
	n.Transform = n.Transform.withComponent(axis, deg)
	g.Version++
	return nil
}
