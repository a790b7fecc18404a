// Package agent defines an agent interface
package agent

import (
	ts "github.com/samuelfneumann/craft2d/timestep"
	"gonum.org/v1/gonum/mat"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns action values, and a
// Policy which chooses actions in each state. The Policy chooses which
// actions are taken, and the Learner uses these actions to update the
// Policy.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm that defines how action
// values are updated.
type Learner interface {
	// Step performs a single update to the learner
	Step() error

	// Observe records that an action lead to some timestep
	Observe(action *mat.VecDense, nextObs ts.TimeStep) error

	// ObserveFirst records the first timestep in an episode
	ObserveFirst(ts.TimeStep) error

	// EndEpisode performs cleanup at the end of an episode
	EndEpisode()
}

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions. Agents usually have a
// target and behaviour policy. For a given agent, the Policy and
// Learner share the same action values so that any changes the learner
// makes are reflected in the actions the Policy chooses.
type Policy interface {
	SelectAction(t ts.TimeStep) *mat.VecDense
	Eval()        // Set policy to evaluation mode
	Train()       // Set policy to training mode
	IsEval() bool // Indicates if in evaluation mode
}

// Saver is an Agent whose learned values can be written to disk
type Saver interface {
	Agent
	Save(filename string) error
}
