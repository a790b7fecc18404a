// Package wrappers provides wrappers for environments
package wrappers

import (
	"fmt"

	env "github.com/samuelfneumann/craft2d/environment"
	ts "github.com/samuelfneumann/craft2d/timestep"
	"gonum.org/v1/gonum/mat"
)

// TimeLimit wraps an environment and ends episodes after a fixed number
// of steps. Episodes cut off by the limit end with EndType
// timestep.Timeout. Episodes which end on their own are left untouched.
type TimeLimit struct {
	env.Environment
	limit       env.StepLimit
	currentStep ts.TimeStep
}

// NewTimeLimit returns a new TimeLimit which ends episodes of e after
// steps steps
func NewTimeLimit(e env.Environment, steps int) (*TimeLimit, error) {
	if steps < 1 {
		return nil, fmt.Errorf("newTimeLimit: step limit must be positive, "+
			"have %d", steps)
	}
	return &TimeLimit{
		Environment: e,
		limit:       env.NewStepLimit(steps),
	}, nil
}

// Reset resets the wrapped environment
func (t *TimeLimit) Reset() (ts.TimeStep, error) {
	step, err := t.Environment.Reset()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
	}
	t.currentStep = step
	return step, nil
}

// Step takes a step in the wrapped environment, ending the episode if
// the step limit has been reached
func (t *TimeLimit) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	step, _, err := t.Environment.Step(action)
	if err != nil {
		return ts.TimeStep{}, false, err
	}

	last := t.limit.End(&step)
	t.currentStep = step
	return step, last, nil
}

// CurrentTimeStep returns the last TimeStep returned by the wrapper,
// which may have been cut off by the step limit
func (t *TimeLimit) CurrentTimeStep() ts.TimeStep {
	return t.currentStep
}

// Limit returns the maximum number of steps per episode
func (t *TimeLimit) Limit() int {
	return t.limit.Steps()
}
