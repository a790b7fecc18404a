// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	ts "github.com/samuelfneumann/craft2d/timestep"
)

// Ender determines when an episode ends. End returns whether the
// argument TimeStep is the last in its episode and, if so, changes its
// StepType to timestep.Last and sets its EndType.
type Ender interface {
	End(t *ts.TimeStep) bool
}

// Environment implements a simulated environment, which includes a
// Task to complete. Environments must be Reset before the first Step
// of each episode.
type Environment interface {
	Reset() (ts.TimeStep, error)
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)
	CurrentTimeStep() ts.TimeStep

	RewardSpec() Spec
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}
