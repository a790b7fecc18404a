package craft

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	for name, want := range Worlds() {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join("..", "..", "configs", name+".yaml")
			have, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, want, have, "%v differs from the built-in world",
				path)
		})
	}
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "loadConfig")
}

func TestParseConfigSchema(t *testing.T) {
	tests := map[string]string{
		"unknown field": `
rows: 2
cols: 2
colour: red
objects: [{name: tree, behaviour: harvest, yields: wood}]
items: [wood]
tasks: [{name: get-wood, item: wood, target: 1}]
`,
		"unknown behaviour": `
rows: 2
cols: 2
objects: [{name: tree, behaviour: explode}]
items: [wood]
tasks: [{name: get-wood, item: wood, target: 1}]
`,
		"empty grid": `
rows: 0
cols: 2
objects: [{name: tree, behaviour: harvest, yields: wood}]
items: [wood]
tasks: [{name: get-wood, item: wood, target: 1}]
`,
		"missing tasks": `
rows: 2
cols: 2
objects: [{name: tree, behaviour: harvest, yields: wood}]
items: [wood]
`,
		"empty tasks": `
rows: 2
cols: 2
objects: [{name: tree, behaviour: harvest, yields: wood}]
items: [wood]
tasks: []
`,
		"zero target": `
rows: 2
cols: 2
objects: [{name: tree, behaviour: harvest, yields: wood}]
items: [wood]
tasks: [{name: get-wood, item: wood, target: 0}]
`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(raw))
			assert.ErrorContains(t, err, "validateSchema")
		})
	}
}

func TestParseConfig(t *testing.T) {
	raw := `
name: tiny
rows: 3
cols: 3
start: {row: 1, col: 1}
objects:
  - {name: tree, behaviour: harvest, count: 2, yields: wood}
  - {name: bench, behaviour: station}
items: [wood, plank]
recipes:
  - name: plank
    requires: {wood: 2}
    consumes: {wood: 1}
    produces: {plank: 1}
tasks:
  - {name: make-plank, item: plank, target: 1}
`
	c, err := ParseConfig([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "tiny", c.Name, "name")
	assert.Equal(t, 3, c.Rows, "rows")
	assert.Equal(t, Position{1, 1}, c.Start, "start")
	assert.Equal(t, 2, len(c.Objects), "objects")
	assert.Equal(t, 2, c.Objects[0].count(), "tree count")
	assert.Equal(t, 1, c.Objects[1].count(), "bench count")
	assert.Equal(t, Station, c.Objects[1].Behaviour, "bench behaviour")
	assert.Equal(t, 2, c.Recipes[0].requirements()["wood"], "requires")
	assert.Equal(t, 1, len(c.TaskNames()), "tasks")
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		modify func(c *Config)
		exp    string
	}{
		"unknown yield": {
			modify: func(c *Config) { c.Objects[0].Yields = "plank" },
			exp:    `unknown yielded item "plank"`,
		},
		"duplicate object": {
			modify: func(c *Config) { c.Objects[1].Name = "tree" },
			exp:    `duplicate object "tree"`,
		},
		"duplicate item": {
			modify: func(c *Config) { c.Items = append(c.Items, "wood") },
			exp:    `duplicate item "wood"`,
		},
		"start out of bounds": {
			modify: func(c *Config) { c.Start = Position{10, 0} },
			exp:    "start",
		},
		"unpadded surround": {
			modify: func(c *Config) { c.Padded = false },
			exp:    "derived terrain requires padded placement",
		},
		"surround not exempt": {
			modify: func(c *Config) { c.Objects[4].Exempt = false },
			exp:    `surround kind "water" must be placement-exempt`,
		},
		"unknown becomes": {
			modify: func(c *Config) { c.Objects[4].Becomes = "road" },
			exp:    `unknown kind "road"`,
		},
		"over-consuming recipe": {
			modify: func(c *Config) {
				c.Recipes[0].Requires = map[string]int{"weapon-basic": 1,
					"gem": 1}
				c.Recipes[0].Consumes = map[string]int{"gem": 2}
			},
			exp: "consumes 2 gem but requires 1",
		},
		"unknown recipe item": {
			modify: func(c *Config) {
				c.Recipes[1].Produces = map[string]int{"axe": 1}
			},
			exp: `unknown item "axe"`,
		},
		"no tasks": {
			modify: func(c *Config) { c.Tasks = nil },
			exp:    "at least one task is required",
		},
		"unknown task item": {
			modify: func(c *Config) { c.Tasks[0].Item = "diamond" },
			exp:    `unknown item "diamond"`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := IslandConfig()
			tt.modify(&c)
			err := c.Validate()
			assert.ErrorContains(t, err, tt.exp)
			assert.False(t, errors.Is(err, ErrPlacementInfeasible),
				"structural error reported as infeasible")
		})
	}
}

func TestValidateBuiltin(t *testing.T) {
	for name, c := range Worlds() {
		assert.NoError(t, c.Validate(), name)
	}
}

func TestLoadWorld(t *testing.T) {
	c, err := LoadWorld("table")
	require.NoError(t, err)
	assert.Equal(t, "table", c.Name, "name")

	c, err = LoadWorld(filepath.Join("..", "..", "configs", "island.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "island", c.Name, "name")

	_, err = LoadWorld("volcano")
	assert.ErrorContains(t, err, "loadWorld")
}
