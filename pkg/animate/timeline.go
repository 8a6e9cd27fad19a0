// Package animate drives hinge angles over time. A Timeline is a fixed
// list of fold steps laid out on a clock; a Sequencer plays one against a
// design graph. Follower is the frame-driven alternative that eases hinges
// toward fixed targets and never finishes.
package animate

import (
	"fmt"

	"github.com/chazu/carton/pkg/graph"
)

// Start says when a step begins relative to the step before it.
type Start int

const (
	AfterPrevious Start = iota // begins when the previous step ends
	WithPrevious               // begins together with the previous step
)

func (s Start) String() string {
	switch s {
	case AfterPrevious:
		return "after"
	case WithPrevious:
		return "with"
	default:
		return fmt.Sprintf("Start(%d)", int(s))
	}
}

// Step rotates one hinge to an absolute angle. Target is a hinge path
// such as "belowFront/upper".
type Step struct {
	Target   string
	Axis     graph.Axis
	AngleDeg float64
	Duration float64
	Start    Start
}

// Interval is a step placed on the timeline clock.
type Interval struct {
	Step
	Begin float64
	End   float64
}

// Timeline is an immutable, ordered schedule of steps.
type Timeline struct {
	intervals []Interval
	duration  float64
}

// NewTimeline lays steps out on the clock. The first step begins at 0
// regardless of its Start.
func NewTimeline(steps ...Step) *Timeline {
	tl := &Timeline{intervals: make([]Interval, 0, len(steps))}
	var prevBegin, prevEnd float64
	for i, s := range steps {
		begin := prevEnd
		if s.Start == WithPrevious && i > 0 {
			begin = prevBegin
		}
		iv := Interval{Step: s, Begin: begin, End: begin + max(s.Duration, 0)}
		tl.intervals = append(tl.intervals, iv)
		tl.duration = max(tl.duration, iv.End)
		prevBegin, prevEnd = iv.Begin, iv.End
	}
	return tl
}

// Intervals returns a copy of the scheduled steps in order.
func (tl *Timeline) Intervals() []Interval {
	return append([]Interval(nil), tl.intervals...)
}

// Duration is the time at which the last interval ends.
func (tl *Timeline) Duration() float64 {
	return tl.duration
}

// Len returns the number of steps.
func (tl *Timeline) Len() int {
	return len(tl.intervals)
}
