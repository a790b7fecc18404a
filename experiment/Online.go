package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-errors"
	"github.com/samuelfneumann/craft2d/agent"
	env "github.com/samuelfneumann/craft2d/environment"
	"github.com/samuelfneumann/craft2d/experiment/checkpointer"
	"github.com/samuelfneumann/craft2d/experiment/trackers"
	ts "github.com/samuelfneumann/craft2d/timestep"
)

// Evaluation summarizes a single greedy evaluation episode
type Evaluation struct {
	Return float64
	Steps  int
	End    ts.EndType
}

// Success returns whether the evaluation episode completed its task
func (e Evaluation) Success() bool {
	return e.End == ts.TerminalStateReached
}

// Online is an Experiment that trains an agent online for a fixed
// number of episodes. After each training episode, the greedy policy
// of the agent can be evaluated for a limited number of steps. The
// agent does not learn from evaluation episodes.
type Online struct {
	environment env.Environment
	agent       agent.Agent
	maxEpisodes int
	episodes    int
	evalSteps   int
	lastEval    Evaluation

	trackers      []trackers.Tracker
	evalTrackers  []trackers.Tracker
	checkpointers []checkpointer.Checkpointer
	logger        *slog.Logger
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The episodes parameter determines how
// many episodes the experiment is run for, and t and check determine
// what data is tracked and which objects are checkpointed.
func NewOnline(e env.Environment, a agent.Agent, episodes int,
	t []trackers.Tracker, check []checkpointer.Checkpointer) *Online {
	return &Online{
		environment:   e,
		agent:         a,
		maxEpisodes:   episodes,
		trackers:      t,
		checkpointers: check,
		logger:        slog.Default(),
	}
}

// SetLogger sets the logger used to report finished episodes
func (o *Online) SetLogger(l *slog.Logger) {
	o.logger = l
}

// SetEvalSteps sets the step budget of the evaluation episode run
// after each training episode. Zero disables evaluation.
func (o *Online) SetEvalSteps(steps int) {
	o.evalSteps = steps
}

// Register registers a Tracker with the experiment so that data from
// training episodes can be tracked and saved
func (o *Online) Register(t trackers.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RegisterEval registers a Tracker of the evaluation episodes
func (o *Online) RegisterEval(t trackers.Tracker) {
	o.evalTrackers = append(o.evalTrackers, t)
}

// AddCheckpointer adds a Checkpointer to the experiment
func (o *Online) AddCheckpointer(c checkpointer.Checkpointer) {
	o.checkpointers = append(o.checkpointers, c)
}

// Agent returns the agent of the experiment
func (o *Online) Agent() agent.Agent {
	return o.agent
}

// Episodes returns the number of training episodes run so far
func (o *Online) Episodes() int {
	return o.episodes
}

// LastEvaluation returns the result of the most recent evaluation
// episode
func (o *Online) LastEvaluation() Evaluation {
	return o.lastEval
}

// RunEpisode runs a single training episode of the experiment,
// followed by an evaluation episode if enabled
func (o *Online) RunEpisode(ctx context.Context) (bool, error) {
	if o.episodes >= o.maxEpisodes {
		return true, nil
	}
	o.agent.Train()

	step, err := o.environment.Reset()
	if err != nil {
		return false, fmt.Errorf("runEpisode: %w", err)
	}
	if err := o.agent.ObserveFirst(step); err != nil {
		return false, fmt.Errorf("runEpisode: %w", err)
	}
	if err := track(o.trackers, step); err != nil {
		return false, fmt.Errorf("runEpisode: %w", err)
	}

	var ret float64
	for !step.Last() {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		action := o.agent.SelectAction(step)
		step, _, err = o.environment.Step(action)
		if err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}
		ret += step.Reward

		if err := track(o.trackers, step); err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}
		if err := o.agent.Observe(action, step); err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}
		if err := o.agent.Step(); err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}
		if err := o.checkpoint(step); err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}
	}
	o.agent.EndEpisode()
	o.episodes++

	o.logger.DebugContext(ctx, "episode finished", "episode", o.episodes,
		"steps", step.Number, "return", ret, "end", step.EndType())

	if o.evalSteps > 0 {
		eval, err := o.Evaluate(ctx, o.evalSteps)
		if err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}
		o.lastEval = eval
	}

	return o.episodes >= o.maxEpisodes, nil
}

// Evaluate runs one episode of the greedy policy of the agent, ending
// the episode after at most steps steps. The agent is returned to
// training mode afterwards.
func (o *Online) Evaluate(ctx context.Context, steps int) (Evaluation,
	error) {
	if steps < 1 {
		return Evaluation{}, fmt.Errorf("evaluate: step budget must be "+
			"positive, have %d", steps)
	}
	o.agent.Eval()
	defer o.agent.Train()
	limit := env.NewStepLimit(steps)

	step, err := o.environment.Reset()
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluate: %w", err)
	}
	if err := track(o.evalTrackers, step); err != nil {
		return Evaluation{}, fmt.Errorf("evaluate: %w", err)
	}

	var eval Evaluation
	for !step.Last() {
		if err := ctx.Err(); err != nil {
			return Evaluation{}, err
		}

		step, _, err = o.environment.Step(o.agent.SelectAction(step))
		if err != nil {
			return Evaluation{}, fmt.Errorf("evaluate: %w", err)
		}
		limit.End(&step)
		eval.Return += step.Reward

		if err := track(o.evalTrackers, step); err != nil {
			return Evaluation{}, fmt.Errorf("evaluate: %w", err)
		}
	}
	eval.Steps = step.Number
	eval.End = step.EndType()

	o.logger.DebugContext(ctx, "evaluation finished", "episode", o.episodes,
		"steps", eval.Steps, "return", eval.Return, "end", eval.End)
	return eval, nil
}

// Run runs the experiment until all episodes have been run or the
// context is cancelled
func (o *Online) Run(ctx context.Context) error {
	for {
		done, err := o.RunEpisode(ctx)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		if done {
			o.logger.InfoContext(ctx, "experiment finished",
				"episodes", o.episodes)
			return nil
		}
	}
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	el := errors.NewErrorList()
	for _, t := range o.trackers {
		el.Add(t.Save())
	}
	for _, t := range o.evalTrackers {
		el.Add(t.Save())
	}
	if err := el.Err(); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// checkpoint sends the current timestep to each Checkpointer
func (o *Online) checkpoint(t ts.TimeStep) error {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(t); err != nil {
			return err
		}
	}
	return nil
}

// track sends the current timestep to each Tracker
func track(t []trackers.Tracker, step ts.TimeStep) error {
	for _, tracker := range t {
		if err := tracker.Track(step); err != nil {
			return err
		}
	}
	return nil
}
