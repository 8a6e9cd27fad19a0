package graph

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Tier 2: geometric validation (errors and warnings)
// ---------------------------------------------------------------------------

// flatEps is the largest depth coordinate tolerated on a flat panel.
const flatEps = 1e-9

// validateGeometry runs all Tier 2 geometric checks.
func validateGeometry(g *DesignGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validatePanelDimensions(g)...)
	errs = append(errs, validateRings(g)...)
	errs = append(errs, validateFlatPanels(g)...)

	warnings = append(warnings, validateBevelRadius(g)...)
	warnings = append(warnings, validateAnnotations(g)...)

	return errs, warnings
}

// validatePanelDimensions checks width, height > 0 and thickness >= 0.
func validatePanelDimensions(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Panels() {
		pd, ok := node.Data.(PanelData)
		if !ok {
			continue
		}
		if pd.Width <= 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("panel %q width is %.4f, must be positive", node.Name, pd.Width),
				Severity: SeverityError,
			})
		}
		if pd.Height <= 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("panel %q height is %.4f, must be positive", node.Name, pd.Height),
				Severity: SeverityError,
			})
		}
		if pd.Thickness < 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("panel %q thickness is %.4f, must not be negative", node.Name, pd.Thickness),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateRings checks that layer rings are polygons with finite
// coordinates.
func validateRings(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Ordered() {
		ld, ok := node.Data.(LayerData)
		if !ok {
			continue
		}
		if len(ld.Ring) < 3 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s layer ring has %d vertices, need at least 3", ld.Role, len(ld.Ring)),
				Severity: SeverityError,
			})
		}
		for i, p := range ld.Ring {
			if !finite(p) {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("%s layer vertex %d is not finite", ld.Role, i),
					Severity: SeverityError,
				})
				break
			}
		}
	}

	return errs
}

// validateFlatPanels checks that dieline panels have no depth.
func validateFlatPanels(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, panel := range g.Panels() {
		pd, ok := panel.Data.(PanelData)
		if !ok || !pd.Flat {
			continue
		}
		for _, l := range g.ChildrenOfKind(panel, NodeLayer) {
			ld := l.Data.(LayerData)
			if ld.Depth != 0 {
				errs = append(errs, ValidationError{
					NodeID:   l.ID,
					Message:  fmt.Sprintf("flat panel %q %s layer has depth %.4f", panel.Name, ld.Role, ld.Depth),
					Severity: SeverityError,
				})
			}
			for _, p := range ld.Ring {
				if math.Abs(p.Z) > flatEps {
					errs = append(errs, ValidationError{
						NodeID:   l.ID,
						Message:  fmt.Sprintf("flat panel %q %s layer has z=%.4f", panel.Name, ld.Role, p.Z),
						Severity: SeverityError,
					})
					break
				}
			}
		}
	}

	return errs
}

// validateBevelRadius warns when a fold bevel is wider than its panel.
func validateBevelRadius(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, panel := range g.Panels() {
		pd, ok := panel.Data.(PanelData)
		if !ok {
			continue
		}
		for _, b := range g.ChildrenOfKind(panel, NodeBevel) {
			bd := b.Data.(BevelData)
			if 2*bd.Radius > math.Min(pd.Width, pd.Height) {
				warnings = append(warnings, ValidationWarning{
					NodeID:  b.ID,
					Message: fmt.Sprintf("bevel on %q edge %s (r=%.2f) is wider than the panel", panel.Name, bd.Edge, bd.Radius),
				})
			}
		}
	}

	return warnings
}

// validateAnnotations warns about zero-length dimension lines.
func validateAnnotations(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Ordered() {
		ad, ok := node.Data.(AnnotationData)
		if !ok {
			continue
		}
		if r3.Norm(r3.Sub(ad.To, ad.From)) == 0 {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("annotation %q has zero length", ad.Label),
			})
		}
	}

	return warnings
}

func finite(p r3.Vec) bool {
	for _, v := range []float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
