package craft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCookbook(t *testing.T, c Config) (Cookbook, *Registry) {
	t.Helper()
	reg, err := NewRegistry(c)
	require.NoError(t, err)
	book, err := NewCookbook(c, reg)
	require.NoError(t, err)
	return book, reg
}

func inventoryOf(t *testing.T, reg *Registry, counts map[string]int) Inventory {
	t.Helper()
	inv := make(Inventory, reg.NumItems())
	for name, n := range counts {
		i, ok := reg.ItemByName(name)
		require.True(t, ok, "no item %q", name)
		inv[i] = n
	}
	return inv
}

func TestCookbookOrder(t *testing.T) {
	book, _ := newCookbook(t, IslandConfig())

	var names []string
	for _, r := range book.Recipes() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"weapon-advanced", "weapon-basic", "bridge",
		"rope", "sticks"}, names)
	assert.Equal(t, "Cookbook | weapon-advanced > weapon-basic > bridge > "+
		"rope > sticks", book.String())
}

func TestCookbookFirstMatch(t *testing.T) {
	book, reg := newCookbook(t, IslandConfig())

	tests := []struct {
		name   string
		inv    map[string]int
		recipe string
		ok     bool
	}{
		{"empty", nil, "", false},
		{"wood", map[string]int{"wood": 3}, "sticks", true},
		{"wood and grass", map[string]int{"wood": 1, "grass": 1}, "rope",
			true},
		{"wood and rope", map[string]int{"wood": 1, "rope": 1}, "bridge", true},
		{"basic over bridge", map[string]int{"wood": 1, "rope": 1,
			"sticks": 1, "stone": 1}, "weapon-basic", true},
		{"advanced over all", map[string]int{"wood": 1, "grass": 1,
			"sticks": 1, "stone": 1, "weapon-basic": 1, "gem": 1},
			"weapon-advanced", true},
		{"gem alone", map[string]int{"gem": 1}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := book.Resolve(inventoryOf(t, reg, tt.inv))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.recipe, r.Name)
		})
	}
}

func TestCookbookCraftAppliesOne(t *testing.T) {
	book, reg := newCookbook(t, TableConfig())
	inv := inventoryOf(t, reg, map[string]int{"wood": 2, "grass": 1})

	name, ok := book.Craft(inv)
	require.True(t, ok)
	assert.Equal(t, "rope", name)
	assert.Equal(t, inventoryOf(t, reg, map[string]int{"wood": 2, "rope": 1}),
		inv)

	name, ok = book.Craft(inv)
	require.True(t, ok)
	assert.Equal(t, "sticks", name)
	assert.Equal(t, inventoryOf(t, reg, map[string]int{"wood": 1, "rope": 1,
		"sticks": 1}), inv)
}

func TestRecipeRequiresMoreThanConsumed(t *testing.T) {
	c := TableConfig()
	c.Recipes = []RecipeConfig{{
		Name:     "sticks",
		Requires: map[string]int{"wood": 2},
		Consumes: map[string]int{"wood": 1},
		Produces: map[string]int{"sticks": 4},
	}}
	book, reg := newCookbook(t, c)

	inv := inventoryOf(t, reg, map[string]int{"wood": 1})
	_, ok := book.Craft(inv)
	assert.False(t, ok, "one wood does not meet the requirement")

	inv = inventoryOf(t, reg, map[string]int{"wood": 2})
	_, ok = book.Craft(inv)
	require.True(t, ok)
	assert.Equal(t, inventoryOf(t, reg, map[string]int{"wood": 1,
		"sticks": 4}), inv)
}
