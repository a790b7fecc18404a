package craft

import "fmt"

// Reference grid dimensions
const (
	DefaultRows int = 10
	DefaultCols int = 10
)

// BasicConfig returns the configuration of the basic world: a tree, a
// stone, and some grass placed anywhere on the grid
func BasicConfig() Config {
	return Config{
		Name: "basic",
		Rows: DefaultRows,
		Cols: DefaultCols,
		Objects: []ObjectConfig{
			{Name: "tree", Behaviour: Harvest, Yields: "wood"},
			{Name: "stone", Behaviour: Harvest, Yields: "stone"},
			{Name: "grass", Behaviour: Harvest, Yields: "grass"},
		},
		Items: []string{"wood", "stone", "grass"},
		Tasks: []TaskConfig{
			{Name: "get-wood", Item: "wood", Target: 1},
			{Name: "get-stone", Item: "stone", Target: 1},
			{Name: "get-grass", Item: "grass", Target: 1},
		},
	}
}

// TableConfig returns the configuration of the crafting world, which
// adds a crafting table and the recipes for sticks, rope, and a basic
// weapon
func TableConfig() Config {
	return Config{
		Name:   "table",
		Rows:   DefaultRows,
		Cols:   DefaultCols,
		Padded: true,
		Objects: []ObjectConfig{
			{Name: "tree", Behaviour: Harvest, Count: 2, Yields: "wood"},
			{Name: "stone", Behaviour: Harvest, Yields: "stone"},
			{Name: "grass", Behaviour: Harvest, Yields: "grass"},
			{Name: "crafting-table", Behaviour: Station},
		},
		Items: []string{"wood", "stone", "grass", "sticks", "rope",
			"weapon-basic"},
		Recipes: []RecipeConfig{
			{
				Name:     "weapon-basic",
				Consumes: map[string]int{"sticks": 1, "stone": 1},
				Produces: map[string]int{"weapon-basic": 1},
			},
			{
				Name:     "rope",
				Consumes: map[string]int{"grass": 1},
				Produces: map[string]int{"rope": 1},
			},
			{
				Name:     "sticks",
				Consumes: map[string]int{"wood": 1},
				Produces: map[string]int{"sticks": 1},
			},
		},
		Tasks: []TaskConfig{
			{Name: "get-wood", Item: "wood", Target: 1},
			{Name: "get-stone", Item: "stone", Target: 1},
			{Name: "get-grass", Item: "grass", Target: 1},
			{Name: "make-sticks", Item: "sticks", Target: 1},
			{Name: "make-rope", Item: "rope", Target: 1},
			{Name: "make-weapon", Item: "weapon-basic", Target: 1},
		},
	}
}

// IslandConfig returns the configuration of the island world, which
// adds a gem surrounded by water. Water is crossed by building bridges,
// and the gem is needed for the advanced weapon.
func IslandConfig() Config {
	return Config{
		Name:   "island",
		Rows:   DefaultRows,
		Cols:   DefaultCols,
		Padded: true,
		Objects: []ObjectConfig{
			{Name: "tree", Behaviour: Harvest, Count: 3, Yields: "wood"},
			{Name: "stone", Behaviour: Harvest, Yields: "stone"},
			{Name: "grass", Behaviour: Harvest, Count: 2, Yields: "grass"},
			{Name: "crafting-table", Behaviour: Station},
			{Name: "water", Behaviour: Bridgeable, Exempt: true,
				Consumes: "bridge", Becomes: "bridge"},
			{Name: "gem", Behaviour: Harvest, Yields: "gem",
				Surround: "water"},
			{Name: "bridge", Behaviour: Terrain, Exempt: true,
				Traversable: true},
		},
		Items: []string{"wood", "stone", "grass", "sticks", "rope", "bridge",
			"weapon-basic", "gem", "weapon-advanced"},
		Recipes: []RecipeConfig{
			{
				Name:     "weapon-advanced",
				Consumes: map[string]int{"weapon-basic": 1, "gem": 1},
				Produces: map[string]int{"weapon-advanced": 1},
			},
			{
				Name:     "weapon-basic",
				Consumes: map[string]int{"sticks": 1, "stone": 1},
				Produces: map[string]int{"weapon-basic": 1},
			},
			{
				Name:     "bridge",
				Consumes: map[string]int{"wood": 1, "rope": 1},
				Produces: map[string]int{"bridge": 1},
			},
			{
				Name:     "rope",
				Consumes: map[string]int{"grass": 1},
				Produces: map[string]int{"rope": 1},
			},
			{
				Name:     "sticks",
				Consumes: map[string]int{"wood": 1},
				Produces: map[string]int{"sticks": 1},
			},
		},
		Tasks: []TaskConfig{
			{Name: "get-wood", Item: "wood", Target: 1},
			{Name: "get-stone", Item: "stone", Target: 1},
			{Name: "get-grass", Item: "grass", Target: 1},
			{Name: "make-sticks", Item: "sticks", Target: 1},
			{Name: "make-rope", Item: "rope", Target: 1},
			{Name: "make-bridge", Item: "bridge", Target: 1},
			{Name: "make-weapon", Item: "weapon-basic", Target: 1},
			{Name: "get-gem", Item: "gem", Target: 1},
			{Name: "make-advanced-weapon", Item: "weapon-advanced",
				Target: 1},
		},
	}
}

// Worlds returns the built-in world configurations by name
func Worlds() map[string]Config {
	return map[string]Config{
		"basic":  BasicConfig(),
		"table":  TableConfig(),
		"island": IslandConfig(),
	}
}

// LoadWorld returns the built-in world with the argument name, or
// loads the world configuration at path nameOrPath
func LoadWorld(nameOrPath string) (Config, error) {
	if c, ok := Worlds()[nameOrPath]; ok {
		return c, nil
	}
	c, err := LoadConfig(nameOrPath)
	if err != nil {
		return Config{}, fmt.Errorf("loadWorld: %w", err)
	}
	return c, nil
}
