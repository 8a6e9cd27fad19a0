package graph

// NodeKind enumerates the types of nodes in the hinge hierarchy.
type NodeKind int

const (
	NodeGroup      NodeKind = iota // assembly root
	NodePanel                      // hinged panel (face or flap)
	NodeLayer                      // top, mid or bottom layer geometry
	NodeBevel                      // rounded fold along a panel edge
	NodeAnnotation                 // dimension line with a label
)

func (k NodeKind) String() string {
	switch k {
	case NodeGroup:
		return "group"
	case NodePanel:
		return "panel"
	case NodeLayer:
		return "layer"
	case NodeBevel:
		return "bevel"
	case NodeAnnotation:
		return "annotation"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the hierarchy. Transform is relative
// to the parent node; layer and bevel geometry is already expressed in
// the owning panel's frame so their transforms stay at identity.
type Node struct {
	ID        NodeID    `json:"id"`
	Kind      NodeKind  `json:"kind"`
	Name      string    `json:"name,omitempty"`
	Children  []NodeID  `json:"children,omitempty"`
	Transform Transform `json:"transform"`
	Data      NodeData  `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
