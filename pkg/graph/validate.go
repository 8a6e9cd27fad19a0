package graph

import "fmt"

// ValidationSeverity indicates whether a validation finding blocks evaluation
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// Validate runs all Tier 1 structural checks on the hierarchy and returns
// the findings. An empty slice means the graph is valid. It never mutates
// the graph.
func Validate(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateSingleParent(g)...)
	errs = append(errs, validateLayers(g)...)
	return errs
}

// ValidateAll runs the structural and geometric tiers and separates
// blocking errors from warnings.
func ValidateAll(g *DesignGraph) ValidationResult {
	tier1 := Validate(g)
	tier2Errs, tier2Warnings := validateGeometry(g)

	var result ValidationResult
	for _, e := range tier1 {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}

	result.Errors = append(result.Errors, tier2Errs...)
	result.Warnings = append(result.Warnings, tier2Warnings...)

	return result
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
func validateDAG(g *DesignGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray

		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}

		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}

		color[id] = black
		return false
	}

	for _, id := range g.order {
		if color[id] == white {
			if visit(id) {
				break
			}
		}
	}

	return errs
}

// validateReferences checks that every child ID points to an existing node.
func validateReferences(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Ordered() {
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// validateNames checks that the NameIndex is injective and that every
// entry points to an existing node.
func validateNames(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	nameToNodes := make(map[string][]NodeID)
	for _, node := range g.Ordered() {
		if node.Name != "" {
			nameToNodes[node.Name] = append(nameToNodes[node.Name], node.ID)
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateRoots checks that every root exists and warns about nodes that
// are unreachable from any root.
func validateRoots(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}

	if len(g.Nodes) == 0 {
		return errs
	}

	reachable := make(map[NodeID]bool)
	queue := make([]NodeID, 0, len(g.Roots))
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; ok && !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Nodes[current]
		if node == nil {
			continue
		}
		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	for _, node := range g.Ordered() {
		if !reachable[node.ID] {
			name := node.Name
			if name == "" {
				name = node.ID.Short()
			}
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", name),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}

// validateSingleParent checks that the hierarchy is a tree: a panel hinges
// on exactly one parent.
func validateSingleParent(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	seen := make(map[NodeID]NodeID)

	for _, node := range g.Ordered() {
		for _, childID := range node.Children {
			if first, ok := seen[childID]; ok && first != node.ID {
				errs = append(errs, ValidationError{
					NodeID:   childID,
					Message:  fmt.Sprintf("node has two parents: %s and %s", first.Short(), node.ID.Short()),
					Severity: SeverityError,
				})
				continue
			}
			seen[childID] = node.ID
		}
	}

	return errs
}

// validateLayers checks that every panel owns exactly one top, mid and
// bottom layer and that all three rings have the same vertex count.
func validateLayers(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, panel := range g.Panels() {
		layers := g.ChildrenOfKind(panel, NodeLayer)
		if len(layers) != 3 {
			errs = append(errs, ValidationError{
				NodeID:   panel.ID,
				Message:  fmt.Sprintf("panel %q has %d layers, want 3", panel.Name, len(layers)),
				Severity: SeverityError,
			})
			continue
		}

		roles := make(map[LayerRole]bool)
		count := -1
		for _, l := range layers {
			ld, ok := l.Data.(LayerData)
			if !ok {
				errs = append(errs, ValidationError{
					NodeID:   l.ID,
					Message:  "layer node carries no layer data",
					Severity: SeverityError,
				})
				continue
			}
			roles[ld.Role] = true
			if count >= 0 && len(ld.Ring) != count {
				errs = append(errs, ValidationError{
					NodeID:   panel.ID,
					Message:  fmt.Sprintf("panel %q layer %s has %d vertices, want %d", panel.Name, ld.Role, len(ld.Ring), count),
					Severity: SeverityError,
				})
			}
			count = len(ld.Ring)
		}
		if len(roles) != 3 {
			errs = append(errs, ValidationError{
				NodeID:   panel.ID,
				Message:  fmt.Sprintf("panel %q repeats a layer role", panel.Name),
				Severity: SeverityError,
			})
		}
	}

	return errs
}
