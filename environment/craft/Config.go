package craft

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

// Behaviour tags what happens when the agent uses a cell holding some
// object kind
type Behaviour string

const (
	// Harvest kinds are removed from the grid and add one of their
	// yielded item to the inventory
	Harvest Behaviour = "harvest"

	// Bridgeable kinds consume one item from the inventory and turn
	// into another kind
	Bridgeable Behaviour = "bridgeable"

	// Station kinds resolve a crafting recipe against the inventory
	Station Behaviour = "station"

	// Terrain kinds cannot be interacted with
	Terrain Behaviour = "terrain"
)

// Position is a (row, column) cell in the grid
type Position struct {
	Row int `yaml:"row" json:"row"`
	Col int `yaml:"col" json:"col"`
}

// Config describes a Craft world: the grid, the object and item
// registries, the recipe table, and the tasks which can be selected at
// reset. Configs are loaded once at construction.
type Config struct {
	Name    string         `yaml:"name"`
	Rows    int            `yaml:"rows"`
	Cols    int            `yaml:"cols"`
	Padded  bool           `yaml:"padded"`
	Start   Position       `yaml:"start"`
	Objects []ObjectConfig `yaml:"objects"`
	Items   []string       `yaml:"items"`
	Recipes []RecipeConfig `yaml:"recipes,omitempty"`
	Tasks   []TaskConfig   `yaml:"tasks"`
}

// ObjectConfig describes a single environment-object kind
type ObjectConfig struct {
	Name        string    `yaml:"name"`
	Behaviour   Behaviour `yaml:"behaviour"`
	Count       int       `yaml:"count,omitempty"` // 0 means 1
	Exempt      bool      `yaml:"exempt,omitempty"`
	Traversable bool      `yaml:"traversable,omitempty"`
	Yields      string    `yaml:"yields,omitempty"`
	Consumes    string    `yaml:"consumes,omitempty"`
	Becomes     string    `yaml:"becomes,omitempty"`
	Surround    string    `yaml:"surround,omitempty"`
}

// RecipeConfig describes a single crafting recipe. If Requires is
// empty, the recipe requires exactly what it consumes.
type RecipeConfig struct {
	Name     string         `yaml:"name"`
	Requires map[string]int `yaml:"requires,omitempty"`
	Consumes map[string]int `yaml:"consumes"`
	Produces map[string]int `yaml:"produces"`
}

// TaskConfig describes a task which is completed once the inventory
// holds Target of Item
type TaskConfig struct {
	Name   string `yaml:"name"`
	Item   string `yaml:"item"`
	Target int    `yaml:"target"`
}

// LoadConfig reads, schema-checks, and validates a YAML world
// configuration
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}
	c, err := ParseConfig(raw)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %v: %w", path, err)
	}
	return c, nil
}

// ParseConfig parses and validates a YAML world configuration
func ParseConfig(raw []byte) (Config, error) {
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Config{}, fmt.Errorf("parseConfig: %w", err)
	}

	// The schema validator works on JSON values
	jsonRaw, err := json.Marshal(doc)
	if err != nil {
		return Config{}, fmt.Errorf("parseConfig: %w", err)
	}
	var jsonDoc interface{}
	if err := json.Unmarshal(jsonRaw, &jsonDoc); err != nil {
		return Config{}, fmt.Errorf("parseConfig: %w", err)
	}
	if err := validateSchema(jsonDoc); err != nil {
		return Config{}, fmt.Errorf("parseConfig: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("parseConfig: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate ensures that the Config describes a world that can be built
// and populated. Structural problems are all reported together. A
// structurally valid Config whose placements cannot fit in the grid
// returns an error wrapping ErrPlacementInfeasible.
func (c Config) Validate() error {
	el := errors.NewErrorList()

	if c.Rows <= 0 || c.Cols <= 0 {
		el.Add(fmt.Errorf("grid must have positive dimensions, have (%d, %d)",
			c.Rows, c.Cols))
	}
	if c.Start.Row < 0 || c.Start.Row >= c.Rows || c.Start.Col < 0 ||
		c.Start.Col >= c.Cols {
		el.Add(fmt.Errorf("start %v out of bounds", c.Start))
	}

	items := make(map[string]bool, len(c.Items))
	for _, item := range c.Items {
		if item == "" {
			el.Add(fmt.Errorf("item names cannot be empty"))
		} else if items[item] {
			el.Add(fmt.Errorf("duplicate item %q", item))
		}
		items[item] = true
	}

	if len(c.Objects) == 0 {
		el.Add(fmt.Errorf("at least one object kind is required"))
	}
	kinds := make(map[string]ObjectConfig, len(c.Objects))
	for _, o := range c.Objects {
		if o.Name == "" {
			el.Add(fmt.Errorf("object names cannot be empty"))
			continue
		}
		if _, ok := kinds[o.Name]; ok {
			el.Add(fmt.Errorf("duplicate object %q", o.Name))
		}
		kinds[o.Name] = o
	}

	for _, o := range c.Objects {
		el.Add(o.validate(kinds, items, c.Padded))
	}
	for _, r := range c.Recipes {
		el.Add(r.validate(items))
	}

	if len(c.Tasks) == 0 {
		el.Add(fmt.Errorf("at least one task is required"))
	}
	tasks := make(map[string]bool, len(c.Tasks))
	for _, t := range c.Tasks {
		if t.Name == "" {
			el.Add(fmt.Errorf("task names cannot be empty"))
		} else if tasks[t.Name] {
			el.Add(fmt.Errorf("duplicate task %q", t.Name))
		}
		tasks[t.Name] = true

		if !items[t.Item] {
			el.Add(fmt.Errorf("task %q: unknown item %q", t.Name, t.Item))
		}
		if t.Target < 1 {
			el.Add(fmt.Errorf("task %q: target must be at least 1", t.Name))
		}
	}

	if err := el.Err(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	if demand, capacity := c.placements()+1, c.capacity(); demand > capacity {
		return fmt.Errorf("validate: %w: %d placements and the start cell "+
			"need %d spaced cells, grid holds %d", ErrPlacementInfeasible,
			c.placements(), demand, capacity)
	}
	return nil
}

// validate checks a single object kind against the other kinds and
// the items of a Config
func (o ObjectConfig) validate(kinds map[string]ObjectConfig,
	items map[string]bool, padded bool) error {
	if o.Name == "" {
		return nil
	}
	el := errors.NewErrorList()

	if o.Count < 0 {
		el.Add(fmt.Errorf("object %q: count cannot be negative", o.Name))
	}

	switch o.Behaviour {
	case Harvest:
		if !items[o.Yields] {
			el.Add(fmt.Errorf("object %q: unknown yielded item %q", o.Name,
				o.Yields))
		}

	case Bridgeable:
		if !items[o.Consumes] {
			el.Add(fmt.Errorf("object %q: unknown consumed item %q", o.Name,
				o.Consumes))
		}
		if becomes, ok := kinds[o.Becomes]; !ok {
			el.Add(fmt.Errorf("object %q: unknown kind %q", o.Name, o.Becomes))
		} else if becomes.Name == o.Name {
			el.Add(fmt.Errorf("object %q: cannot become itself", o.Name))
		}

	case Station, Terrain:

	default:
		el.Add(fmt.Errorf("object %q: unknown behaviour %q", o.Name,
			o.Behaviour))
	}

	if o.Surround != "" {
		surround, ok := kinds[o.Surround]
		switch {
		case !ok:
			el.Add(fmt.Errorf("object %q: unknown surround kind %q", o.Name,
				o.Surround))
		case !surround.Exempt:
			el.Add(fmt.Errorf("object %q: surround kind %q must be "+
				"placement-exempt", o.Name, o.Surround))
		case surround.Name == o.Name:
			el.Add(fmt.Errorf("object %q: cannot surround itself", o.Name))
		}
		if !padded {
			el.Add(fmt.Errorf("object %q: derived terrain requires padded "+
				"placement", o.Name))
		}
		if o.Exempt {
			el.Add(fmt.Errorf("object %q: placement-exempt kinds cannot "+
				"anchor terrain", o.Name))
		}
	}

	return el.Err()
}

// validate checks a single recipe against the items of a Config
func (r RecipeConfig) validate(items map[string]bool) error {
	el := errors.NewErrorList()

	if r.Name == "" {
		el.Add(fmt.Errorf("recipe names cannot be empty"))
	}
	if len(r.Produces) == 0 {
		el.Add(fmt.Errorf("recipe %q: must produce at least one item", r.Name))
	}

	check := func(field string, counts map[string]int) {
		for item, n := range counts {
			if !items[item] {
				el.Add(fmt.Errorf("recipe %q: %v: unknown item %q", r.Name,
					field, item))
			}
			if n < 1 {
				el.Add(fmt.Errorf("recipe %q: %v: count of %q must be "+
					"positive", r.Name, field, item))
			}
		}
	}
	check("requires", r.Requires)
	check("consumes", r.Consumes)
	check("produces", r.Produces)

	// Consuming more than is required would drive counts negative
	requires := r.requirements()
	for item, n := range r.Consumes {
		if n > requires[item] {
			el.Add(fmt.Errorf("recipe %q: consumes %d %v but requires %d",
				r.Name, n, item, requires[item]))
		}
	}

	return el.Err()
}

// requirements returns the minimum inventory counts needed to apply
// the recipe
func (r RecipeConfig) requirements() map[string]int {
	if len(r.Requires) == 0 {
		return r.Consumes
	}
	return r.Requires
}

// count returns the number of instances of the object to place
func (o ObjectConfig) count() int {
	if o.Count == 0 {
		return 1
	}
	return o.Count
}

// placements returns the number of independently placed objects
func (c Config) placements() int {
	n := 0
	for _, o := range c.Objects {
		if !o.Exempt {
			n += o.count()
		}
	}
	return n
}

// capacity returns the number of objects, counting the agent's start
// cell, which a layout is guaranteed to hold. In padded mode, objects
// lie at least three rows or columns apart, and the lattice of every
// third row and column through the start cell always holds a layout.
func (c Config) capacity() int {
	if !c.Padded {
		return c.Rows * c.Cols
	}
	return latticeLen(c.Rows, c.Start.Row) * latticeLen(c.Cols, c.Start.Col)
}

// latticeLen returns the number of indices in [0, n) which are a
// multiple of three away from offset
func latticeLen(n, offset int) int {
	return (n - offset%3 + 2) / 3
}

// TaskNames returns the names of the configured tasks in order
func (c Config) TaskNames() []string {
	names := make([]string, len(c.Tasks))
	for i, t := range c.Tasks {
		names[i] = t.Name
	}
	return names
}
