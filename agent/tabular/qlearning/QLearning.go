// Package qlearning implements the tabular Q-Learning algorithm with an
// ε-greedy behaviour policy.
//
// Action values are stored in a Table keyed by the observation vector
// of each state, so the algorithm is suited to small environments with
// discrete observations, such as the Craft environments.
package qlearning

import (
	"fmt"

	env "github.com/samuelfneumann/craft2d/environment"
	ts "github.com/samuelfneumann/craft2d/timestep"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// QLearning implements the tabular Q-Learning algorithm. Transitions
// ending in a terminal state use the reward as their target; all other
// transitions, including those cut off by a step limit, bootstrap from
// the greedy value of the next state.
type QLearning struct {
	table        *Table
	actions      int
	epsilon      float64
	learningRate float64
	source       rand.Source
	eval         bool

	// Current transition
	state    string
	action   int
	reward   float64
	discount float64
	next     string
	terminal bool
	pending  bool
}

// New creates a new QLearning agent for environment e
func New(e env.Environment, c Config, seed uint64) (*QLearning, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: invalid config: %w", err)
	}

	actions, err := e.ActionSpec().NumActions()
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return &QLearning{
		table:        NewTable(actions, c.InitialValue),
		actions:      actions,
		epsilon:      c.Epsilon,
		learningRate: c.LearningRate,
		source:       rand.NewSource(seed),
	}, nil
}

// SelectAction selects an action from the ε-greedy policy in training
// mode, and from the greedy policy in evaluation mode. Ties between
// greedy actions are broken by the lowest action index.
func (q *QLearning) SelectAction(t ts.TimeStep) *mat.VecDense {
	values := q.table.Values(Key(t.Observation))
	greedy := floats.MaxIdx(values)

	if q.eval || q.epsilon == 0 {
		return mat.NewVecDense(1, []float64{float64(greedy)})
	}

	// Calculate the ε probability of choosing any action at random
	prob := q.epsilon / float64(q.actions)
	probs := make([]float64, q.actions)
	for i := range probs {
		probs[i] = prob
	}
	probs[greedy] += 1.0 - q.epsilon

	dist := distuv.NewCategorical(probs, q.source)
	return mat.NewVecDense(1, []float64{dist.Rand()})
}

// ObserveFirst records the first timestep in an episode
func (q *QLearning) ObserveFirst(t ts.TimeStep) error {
	if !t.First() {
		return fmt.Errorf("observeFirst: timestep is not the first in an "+
			"episode, have %v", t.StepType)
	}
	q.state = Key(t.Observation)
	q.pending = false
	return nil
}

// Observe records that an action lead to some timestep
func (q *QLearning) Observe(action *mat.VecDense, next ts.TimeStep) error {
	if action.Len() != 1 {
		return fmt.Errorf("observe: actions must be 1-dimensional")
	}
	a := int(action.AtVec(0))
	if a < 0 || a >= q.actions {
		return fmt.Errorf("observe: action %d ∉ [0, %d)", a, q.actions)
	}

	q.action = a
	q.reward = next.Reward
	q.discount = next.Discount
	q.next = Key(next.Observation)
	q.terminal = next.Last() && next.EndType() == ts.TerminalStateReached
	q.pending = true
	return nil
}

// Step updates the action value of the last observed transition. In
// evaluation mode, no update is performed.
func (q *QLearning) Step() error {
	if !q.pending {
		return fmt.Errorf("step: no transition observed")
	}

	if !q.eval {
		target := q.reward
		if !q.terminal {
			target += q.discount * q.table.Max(q.next)
		}
		q.table.Update(q.state, q.action, target, q.learningRate)
	}

	q.state = q.next
	q.pending = false
	return nil
}

// EndEpisode performs cleanup at the end of an episode
func (q *QLearning) EndEpisode() {
	q.state, q.next = "", ""
	q.pending = false
}

// Eval sets the agent to evaluation mode
func (q *QLearning) Eval() { q.eval = true }

// Train sets the agent to training mode
func (q *QLearning) Train() { q.eval = false }

// IsEval returns whether the agent is in evaluation mode
func (q *QLearning) IsEval() bool { return q.eval }

// Table returns the action-value table of the agent
func (q *QLearning) Table() *Table {
	return q.table
}

// Save saves the action-value table of the agent
func (q *QLearning) Save(filename string) error {
	return q.table.Save(filename)
}

// Load replaces the action-value table of the agent with one read from
// a file
func (q *QLearning) Load(filename string) error {
	table, err := LoadTable(filename)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if table.actions != q.actions {
		return fmt.Errorf("load: table has %d actions, agent has %d",
			table.actions, q.actions)
	}
	q.table = table
	return nil
}
