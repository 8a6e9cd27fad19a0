package animate

import (
	"errors"
	"fmt"

	"github.com/chazu/carton/pkg/graph"
)

var (
	// ErrNoPanels is returned when starting against a graph without panels.
	ErrNoPanels = errors.New("no panels to animate")
	// ErrNotIdle is returned when starting a sequencer twice.
	ErrNotIdle = errors.New("sequencer already started")
)

// State is the sequencer lifecycle.
type State int

const (
	Idle State = iota
	Animating
	Settled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Animating:
		return "animating"
	case Settled:
		return "settled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// track is an interval bound to a resolved hinge. The starting angle is
// captured when the interval first becomes active.
type track struct {
	Interval
	id      graph.NodeID
	from    float64
	started bool
}

// Sequencer plays a timeline against a graph's hinges with linear
// easing. It is single-use: a rebuilt assembly needs a new sequencer.
type Sequencer struct {
	g      *graph.DesignGraph
	tl     *Timeline
	state  State
	clock  float64
	tracks []track
}

// NewSequencer binds tl to g. Nothing moves until Start.
func NewSequencer(g *graph.DesignGraph, tl *Timeline) *Sequencer {
	return &Sequencer{g: g, tl: tl}
}

// State returns the current lifecycle state.
func (s *Sequencer) State() State { return s.state }

// Clock returns the elapsed timeline time.
func (s *Sequencer) Clock() float64 { return s.clock }

// Start resolves every step target and begins playback. Targets are
// looked up by hinge path, so a missing panel fails here rather than
// mid-animation.
func (s *Sequencer) Start() error {
	if s.state != Idle {
		return fmt.Errorf("start in state %s: %w", s.state, ErrNotIdle)
	}
	if s.g == nil || len(s.g.Panels()) == 0 {
		return ErrNoPanels
	}
	tracks := make([]track, 0, s.tl.Len())
	for _, iv := range s.tl.Intervals() {
		n, err := s.g.Resolve(iv.Target)
		if err != nil {
			return fmt.Errorf("step %q: %w", iv.Target, err)
		}
		tracks = append(tracks, track{Interval: iv, id: n.ID})
	}
	s.tracks = tracks
	s.state = Animating
	if s.tl.Duration() == 0 {
		return s.apply()
	}
	return nil
}

// Advance moves the clock forward by dt and updates every active hinge.
// It is the per-frame callback; calls before Start or after settling do
// nothing.
func (s *Sequencer) Advance(dt float64) (State, error) {
	if s.state != Animating {
		return s.state, nil
	}
	if dt > 0 {
		s.clock += dt
	}
	return s.state, s.apply()
}

// Run advances in fixed frames until settled, calling frame after each.
func (s *Sequencer) Run(dt float64, frame func(clock float64) error) error {
	if dt <= 0 {
		return fmt.Errorf("frame step %g must be positive", dt)
	}
	if s.state == Idle {
		if err := s.Start(); err != nil {
			return err
		}
	}
	for s.state == Animating {
		if _, err := s.Advance(dt); err != nil {
			return err
		}
		if frame != nil {
			if err := frame(s.clock); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Sequencer) apply() error {
	for i := range s.tracks {
		tr := &s.tracks[i]
		if s.clock < tr.Begin {
			continue
		}
		if !tr.started {
			tr.from = s.g.Hinge(tr.id, tr.Axis)
			tr.started = true
		}
		p := 1.0
		if span := tr.End - tr.Begin; span > 0 {
			p = min((s.clock-tr.Begin)/span, 1)
		}
		angle := tr.from + (tr.AngleDeg-tr.from)*p
		if err := s.g.SetHinge(tr.id, tr.Axis, angle); err != nil {
			return err
		}
	}
	if s.clock >= s.tl.Duration() {
		s.state = Settled
	}
	return nil
}
