package craft

import "fmt"

// Kind indexes an environment-object kind in a Registry
type Kind int

// NoKind marks an empty grid cell
const NoKind Kind = -1

// Item indexes an inventory-item kind in a Registry
type Item int

// NoItem marks the absence of an item
const NoItem Item = -1

// KindDef is the resolved definition of an environment-object kind.
// The Behaviour determines which fields are meaningful:
//
//	Behaviour	Fields
//	harvest		Yields
//	bridgeable	Consumes, Becomes
//	station		(none)
//	terrain		(none)
type KindDef struct {
	Name        string
	Behaviour   Behaviour
	Count       int
	Exempt      bool
	Traversable bool
	Yields      Item
	Consumes    Item
	Becomes     Kind
	Surround    Kind
}

// Registry holds the ordered lists of environment-object kinds and
// inventory-item kinds of a world. Indices are assigned in
// configuration order and never change.
type Registry struct {
	kinds     []KindDef
	items     []string
	kindIndex map[string]Kind
	itemIndex map[string]Item
}

// NewRegistry creates a Registry from a Config
func NewRegistry(c Config) (*Registry, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newRegistry: %w", err)
	}

	r := &Registry{
		kinds:     make([]KindDef, len(c.Objects)),
		items:     make([]string, len(c.Items)),
		kindIndex: make(map[string]Kind, len(c.Objects)),
		itemIndex: make(map[string]Item, len(c.Items)),
	}

	for i, item := range c.Items {
		r.items[i] = item
		r.itemIndex[item] = Item(i)
	}
	for i, o := range c.Objects {
		r.kindIndex[o.Name] = Kind(i)
	}

	for i, o := range c.Objects {
		r.kinds[i] = KindDef{
			Name:        o.Name,
			Behaviour:   o.Behaviour,
			Count:       o.count(),
			Exempt:      o.Exempt,
			Traversable: o.Traversable,
			Yields:      r.item(o.Yields),
			Consumes:    r.item(o.Consumes),
			Becomes:     r.kind(o.Becomes),
			Surround:    r.kind(o.Surround),
		}
	}

	return r, nil
}

// item returns the index of an item name, or NoItem
func (r *Registry) item(name string) Item {
	if i, ok := r.itemIndex[name]; ok {
		return i
	}
	return NoItem
}

// kind returns the index of a kind name, or NoKind
func (r *Registry) kind(name string) Kind {
	if k, ok := r.kindIndex[name]; ok {
		return k
	}
	return NoKind
}

// NumKinds returns the number of environment-object kinds
func (r *Registry) NumKinds() int { return len(r.kinds) }

// NumItems returns the number of inventory-item kinds
func (r *Registry) NumItems() int { return len(r.items) }

// Kind returns the definition of kind k. Kind panics if k is not in
// the Registry.
func (r *Registry) Kind(k Kind) KindDef {
	if k < 0 || int(k) >= len(r.kinds) {
		panic(fmt.Sprintf("kind: no such kind %d", k))
	}
	return r.kinds[k]
}

// KindByName returns the index of the kind with the argument name
func (r *Registry) KindByName(name string) (Kind, bool) {
	k, ok := r.kindIndex[name]
	return k, ok
}

// ItemByName returns the index of the item with the argument name
func (r *Registry) ItemByName(name string) (Item, bool) {
	i, ok := r.itemIndex[name]
	return i, ok
}

// ItemName returns the name of item i
func (r *Registry) ItemName(i Item) string {
	if i < 0 || int(i) >= len(r.items) {
		return ""
	}
	return r.items[i]
}

// KindName returns the name of kind k, or the empty string for NoKind
func (r *Registry) KindName(k Kind) string {
	if k < 0 || int(k) >= len(r.kinds) {
		return ""
	}
	return r.kinds[k].Name
}

// Kinds returns a copy of the ordered kind definitions
func (r *Registry) Kinds() []KindDef {
	kinds := make([]KindDef, len(r.kinds))
	copy(kinds, r.kinds)
	return kinds
}

// Items returns a copy of the ordered item names
func (r *Registry) Items() []string {
	items := make([]string, len(r.items))
	copy(items, r.items)
	return items
}

// Placeable returns the kinds placed independently at reset, in
// registry order
func (r *Registry) Placeable() []Kind {
	var kinds []Kind
	for i, k := range r.kinds {
		if !k.Exempt {
			kinds = append(kinds, Kind(i))
		}
	}
	return kinds
}

// Passable returns whether the agent may move into a cell holding k
func (r *Registry) Passable(k Kind) bool {
	return k == NoKind || r.kinds[k].Traversable
}
