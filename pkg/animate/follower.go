package animate

import (
	"fmt"

	"github.com/chazu/carton/pkg/graph"
)

// LerpFactor is the fraction of the remaining angle covered per frame.
const LerpFactor = 0.01

// Target is a hinge angle a Follower eases toward.
type Target struct {
	Path     string
	Axis     graph.Axis
	AngleDeg float64
}

type follow struct {
	Target
	id graph.NodeID
}

// Follower eases hinges toward fixed targets by a constant fraction each
// frame. It approaches its targets asymptotically and never settles.
type Follower struct {
	g       *graph.DesignGraph
	factor  float64
	targets []follow
}

// NewFollower resolves targets against g.
func NewFollower(g *graph.DesignGraph, targets ...Target) (*Follower, error) {
	if g == nil || len(g.Panels()) == 0 {
		return nil, ErrNoPanels
	}
	f := &Follower{g: g, factor: LerpFactor}
	for _, t := range targets {
		n, err := g.Resolve(t.Path)
		if err != nil {
			return nil, fmt.Errorf("follow %q: %w", t.Path, err)
		}
		f.targets = append(f.targets, follow{Target: t, id: n.ID})
	}
	return f, nil
}

// Frame moves every hinge one lerp step toward its target.
func (f *Follower) Frame() error {
	for _, t := range f.targets {
		cur := f.g.Hinge(t.id, t.Axis)
		if err := f.g.SetHinge(t.id, t.Axis, cur+(t.AngleDeg-cur)*f.factor); err != nil {
			return err
		}
	}
	return nil
}

// Settled always reports false; a follower has no end.
func (f *Follower) Settled() bool {
	return false
}
