package graph

import "github.com/google/uuid"

// NodeID identifies a node. IDs are name-based UUIDs derived from the
// node's construction path, so rebuilding the same assembly yields the
// same IDs.
type NodeID string

// idSpace namespaces carton node ids.
var idSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://carton.invalid/node"))

// NewNodeID derives a stable ID from a construction path such as
// "panel/upper" or "layer/upper/top".
func NewNodeID(path string) NodeID {
	return NodeID(uuid.NewSHA1(idSpace, []byte(path)).String())
}

// IsZero reports whether the ID is unset.
func (id NodeID) IsZero() bool {
	return id == ""
}

// Short returns the first 8 characters for log output.
func (id NodeID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

func (id NodeID) String() string {
	return string(id)
}
