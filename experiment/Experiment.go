// Package experiment implements functionality for running an experiment
package experiment

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/samuelfneumann/craft2d/agent"
	"github.com/samuelfneumann/craft2d/agent/tabular/qlearning"
	"github.com/samuelfneumann/craft2d/environment/craft"
	"github.com/samuelfneumann/craft2d/environment/wrappers"
	"github.com/samuelfneumann/craft2d/experiment/checkpointer"
	"github.com/samuelfneumann/craft2d/experiment/trackers"
	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"
)

// Experiment outlines structs that can run experiments. Experiments
// send each environment TimeStep to their Trackers, which cache the
// data in RAM until Save is called. Run runs all episodes until the
// episode budget is used or the context is cancelled, and RunEpisode
// runs a single episode.
type Experiment interface {
	Run(ctx context.Context) error

	// RunEpisode returns whether the experiment has finished
	RunEpisode(ctx context.Context) (bool, error)

	// Save all tracked data to disk
	Save() error

	// Register adds a new Tracker to the (possibly already running)
	// experiment
	Register(t trackers.Tracker)
}

// Type is the type of an experiment
type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Config represents a configuration of an experiment: an agent
// learning a single task of a Craft world
type Config struct {
	Type Type `yaml:"type"`

	// World is the name of a built-in world or the path to a world
	// configuration file
	World string `yaml:"world"`
	Task  string `yaml:"task"`

	Discount     float64 `yaml:"discount"`
	Episodes     int     `yaml:"episodes"`
	EpisodeSteps int     `yaml:"episodesteps"`

	// EvalSteps is the step budget of the greedy evaluation run after
	// each training episode. Zero disables evaluation.
	EvalSteps int `yaml:"evalsteps"`

	Agent agent.TypedConfig `yaml:"agent"`
}

// DefaultConfig returns the configuration of the reference Q-Learning
// experiment on the basic world
func DefaultConfig() Config {
	return Config{
		Type:         OnlineExp,
		World:        "basic",
		Task:         "get-wood",
		Discount:     0.999,
		Episodes:     1000,
		EpisodeSteps: 5000,
		EvalSteps:    30,
		Agent:        agent.NewTypedConfig(qlearning.DefaultConfig()),
	}
}

// LoadConfig reads an experiment configuration from a YAML file
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var c Config
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("loadConfig: %v: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}
	return c, nil
}

// Validate returns an error describing every problem with the
// configuration
func (c Config) Validate() error {
	el := errors.NewErrorList()

	if c.Type != OnlineExp {
		el.Add(fmt.Errorf("no such experiment type %q", c.Type))
	}
	if c.World == "" {
		el.Add(fmt.Errorf("world must be specified"))
	}
	if c.Discount < 0 || c.Discount > 1 {
		el.Add(fmt.Errorf("discount %v ∉ [0, 1]", c.Discount))
	}
	if c.Episodes < 1 {
		el.Add(fmt.Errorf("episodes must be positive, have %d", c.Episodes))
	}
	if c.EpisodeSteps < 1 {
		el.Add(fmt.Errorf("episode steps must be positive, have %d",
			c.EpisodeSteps))
	}
	if c.EvalSteps < 0 {
		el.Add(fmt.Errorf("evaluation steps cannot be negative, have %d",
			c.EvalSteps))
	}
	if c.Agent.Config == nil {
		el.Add(fmt.Errorf("agent must be specified"))
	} else if err := c.Agent.Validate(); err != nil {
		el.Add(fmt.Errorf("agent: %w", err))
	}

	if err := el.Err(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

// CreateEnv creates the Craft world of the experiment with its task
// selected, and the step-limited environment that the agent acts in
func (c Config) CreateEnv(seed uint64) (*craft.Craft, *wrappers.TimeLimit,
	error) {
	world, err := craft.LoadWorld(c.World)
	if err != nil {
		return nil, nil, fmt.Errorf("createEnv: %w", err)
	}

	e, err := craft.New(world, c.Discount, rand.NewSource(seed))
	if err != nil {
		return nil, nil, fmt.Errorf("createEnv: %w", err)
	}
	if c.Task != "" {
		if _, err := e.ResetTask(c.Task); err != nil {
			return nil, nil, fmt.Errorf("createEnv: %w", err)
		}
	}

	limited, err := wrappers.NewTimeLimit(e, c.EpisodeSteps)
	if err != nil {
		return nil, nil, fmt.Errorf("createEnv: %w", err)
	}
	return e, limited, nil
}

// CreateExp creates the experiment described by the configuration
func (c Config) CreateExp(seed uint64, t []trackers.Tracker,
	check []checkpointer.Checkpointer) (*Online, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}

	_, e, err := c.CreateEnv(seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}

	a, err := c.Agent.CreateAgent(e, seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create agent: %w", err)
	}

	o := NewOnline(e, a, c.Episodes, t, check)
	o.SetEvalSteps(c.EvalSteps)
	return o, nil
}
