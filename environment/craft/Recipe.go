package craft

import (
	"fmt"
	"sort"
	"strings"
)

// ItemCount is a number of some item
type ItemCount struct {
	Item  Item
	Count int
}

// Recipe converts inventory items into other inventory items at a
// crafting station. A Recipe can be applied when the inventory holds
// at least Requires; applying it removes Consumes and adds Produces.
type Recipe struct {
	Name     string
	Requires []ItemCount
	Consumes []ItemCount
	Produces []ItemCount
}

// Satisfied returns whether the inventory meets the recipe's
// requirements
func (r Recipe) Satisfied(inv Inventory) bool {
	for _, req := range r.Requires {
		if inv[req.Item] < req.Count {
			return false
		}
	}
	return true
}

// Apply consumes and produces the recipe's items. Apply does not check
// whether the recipe is satisfied.
func (r Recipe) Apply(inv Inventory) {
	for _, c := range r.Consumes {
		inv[c.Item] -= c.Count
	}
	for _, p := range r.Produces {
		inv[p.Item] += p.Count
	}
}

// Cookbook is an ordered recipe table. Earlier recipes take priority
// over later ones.
type Cookbook struct {
	recipes []Recipe
}

// NewCookbook resolves the recipes of a Config against a Registry,
// keeping their configured order
func NewCookbook(c Config, reg *Registry) (Cookbook, error) {
	recipes := make([]Recipe, 0, len(c.Recipes))

	for _, rc := range c.Recipes {
		requires, err := resolveCounts(reg, rc.requirements())
		if err != nil {
			return Cookbook{}, fmt.Errorf("newCookbook: recipe %q: %w",
				rc.Name, err)
		}
		consumes, err := resolveCounts(reg, rc.Consumes)
		if err != nil {
			return Cookbook{}, fmt.Errorf("newCookbook: recipe %q: %w",
				rc.Name, err)
		}
		produces, err := resolveCounts(reg, rc.Produces)
		if err != nil {
			return Cookbook{}, fmt.Errorf("newCookbook: recipe %q: %w",
				rc.Name, err)
		}

		recipes = append(recipes, Recipe{
			Name:     rc.Name,
			Requires: requires,
			Consumes: consumes,
			Produces: produces,
		})
	}

	return Cookbook{recipes}, nil
}

// Resolve returns the first recipe satisfied by the inventory
func (b Cookbook) Resolve(inv Inventory) (Recipe, bool) {
	for _, r := range b.recipes {
		if r.Satisfied(inv) {
			return r, true
		}
	}
	return Recipe{}, false
}

// Craft applies the first recipe satisfied by the inventory, returning
// the name of the applied recipe. At most one recipe is applied.
func (b Cookbook) Craft(inv Inventory) (string, bool) {
	r, ok := b.Resolve(inv)
	if !ok {
		return "", false
	}
	r.Apply(inv)
	return r.Name, true
}

// Recipes returns the recipes in priority order
func (b Cookbook) Recipes() []Recipe {
	recipes := make([]Recipe, len(b.recipes))
	copy(recipes, b.recipes)
	return recipes
}

// String returns the recipe table in priority order
func (b Cookbook) String() string {
	names := make([]string, len(b.recipes))
	for i, r := range b.recipes {
		names[i] = r.Name
	}
	return "Cookbook | " + strings.Join(names, " > ")
}

// resolveCounts converts item names into item indices, sorted by index
// so that recipes are applied identically regardless of map order
func resolveCounts(reg *Registry, counts map[string]int) ([]ItemCount, error) {
	resolved := make([]ItemCount, 0, len(counts))
	for name, n := range counts {
		i, ok := reg.ItemByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown item %q", name)
		}
		resolved = append(resolved, ItemCount{i, n})
	}

	sort.Slice(resolved, func(i, j int) bool {
		return resolved[i].Item < resolved[j].Item
	})
	return resolved, nil
}
