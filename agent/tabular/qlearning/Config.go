package qlearning

import (
	"fmt"

	"github.com/samuelfneumann/craft2d/agent"
	env "github.com/samuelfneumann/craft2d/environment"
)

func init() {
	// Register Config type so that it can be typed using
	// agent.TypedConfig to help with serialization/deserialization.
	agent.Register(agent.EGreedyQLearningTabular, Config{})
}

// Config represents a configuration for the QLearning agent
type Config struct {
	Epsilon      float64 `yaml:"epsilon"` // epsilon for behaviour policy
	LearningRate float64 `yaml:"learningrate"`

	// InitialValue is the action value of unvisited state-action pairs
	InitialValue float64 `yaml:"initialvalue"`
}

// DefaultConfig returns the configuration used to train the reference
// agent
func DefaultConfig() Config {
	return Config{
		Epsilon:      0.5,
		LearningRate: 0.01,
	}
}

// CreateAgent creates the agent from the Config
func (c Config) CreateAgent(e env.Environment,
	seed uint64) (agent.Agent, error) {
	return New(e, c, seed)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*QLearning)
	return ok
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("validate: epsilon must be in [0, 1], have %v",
			c.Epsilon)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("validate: learning rate must be positive, have %v",
			c.LearningRate)
	}
	return nil
}

// Type returns the type of the agent constructed by the Config
func (c Config) Type() agent.Type {
	return agent.EGreedyQLearningTabular
}
