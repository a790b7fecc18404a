package agent

import (
	"fmt"
	"reflect"
	"sort"

	env "github.com/samuelfneumann/craft2d/environment"
	"gopkg.in/yaml.v3"
)

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes
	CreateAgent(e env.Environment, seed uint64) (Agent, error)

	// ValidAgent returns whether the argument agent is valid for the
	// Config
	ValidAgent(Agent) bool

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error

	// Type returns the type of agent the Config creates
	Type() Type
}

// Type represents a specific type of an agent Config. Config's with
// this type can create Agents of the corresponding type.
type Type string

const (
	EGreedyQLearningTabular Type = "EGreedyQLearning-Tabular"
)

// Registered types with the package. Once a Type has been registered
// with this map, a TypedConfig with that type can be decoded.
//
// Each package is in charge of registering its own Type to avoid
// circular imports.
var registeredTypes = make(map[Type]reflect.Type)

// Register registers an agent's Type with a concrete Config type so
// that TypedConfigs of that type are decoded into the concrete Config
func Register(agentType Type, config Config) {
	registeredTypes[agentType] = reflect.TypeOf(config)
}

// RegisteredTypes returns the registered agent types in sorted order
func RegisteredTypes() []Type {
	types := make([]Type, 0, len(registeredTypes))
	for t := range registeredTypes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// TypedConfig wraps a Config so that it can be encoded to and decoded
// from YAML without knowing the underlying concrete type:
//
//	type: EGreedyQLearning-Tabular
//	config:
//	  epsilon: 0.5
//	  learningrate: 0.01
type TypedConfig struct {
	Type
	Config
}

// NewTypedConfig returns a new TypedConfig wrapping c
func NewTypedConfig(c Config) TypedConfig {
	return TypedConfig{Type: c.Type(), Config: c}
}

// typedConfigYAML is the YAML layout of a TypedConfig
type typedConfigYAML struct {
	Type   Type      `yaml:"type"`
	Config yaml.Node `yaml:"config"`
}

// UnmarshalYAML implements the yaml.Unmarshaler interface
func (t *TypedConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw typedConfigYAML
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("unmarshalYAML: %w", err)
	}

	ty, ok := registeredTypes[raw.Type]
	if !ok {
		return fmt.Errorf("unmarshalYAML: unregistered agent type %q",
			raw.Type)
	}

	config := reflect.New(ty)
	if raw.Config.Kind != 0 {
		if err := raw.Config.Decode(config.Interface()); err != nil {
			return fmt.Errorf("unmarshalYAML: %v: %w", raw.Type, err)
		}
	}

	t.Type = raw.Type
	t.Config = config.Elem().Interface().(Config)
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface
func (t TypedConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Type   Type   `yaml:"type"`
		Config Config `yaml:"config"`
	}{t.Type, t.Config}, nil
}
