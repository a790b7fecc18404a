package craft

// interaction applies the effect of using a cell holding an object of
// the argument kind
type interaction func(c *Craft, cell Position, def KindDef)

// interactions dispatches the use action on the behaviour of the kind
// in the interaction cell. Terrain has no entry: using it is a no-op.
var interactions = map[Behaviour]interaction{
	Harvest:    (*Craft).harvest,
	Bridgeable: (*Craft).bridge,
	Station:    (*Craft).craft,
}

// transition applies a single action to the World State
func (c *Craft) transition(a Action) {
	if a.Move() {
		c.move(a)
		return
	}
	c.use()
}

// move faces the agent in the direction of a and moves it one cell in
// that direction if the cell is in bounds and passable
func (c *Craft) move(a Action) {
	c.facing = facings[a]

	candidate := c.ahead()
	if c.reg.Passable(c.grid.At(candidate)) {
		c.position = candidate
	}
}

// use interacts with the cell ahead of the agent
func (c *Craft) use() {
	if c.facing == None {
		return
	}

	cell := c.ahead()
	k := c.grid.At(cell)
	if k == NoKind {
		return
	}

	def := c.reg.Kind(k)
	if interact, ok := interactions[def.Behaviour]; ok {
		interact(c, cell, def)
	}
}

// ahead returns the cell one step in the facing direction, clamped to
// the grid. At the boundary, this is the agent's own cell.
func (c *Craft) ahead() Position {
	dRow, dCol := c.facing.Offset()
	return c.grid.Clamp(Position{c.position.Row + dRow, c.position.Col + dCol})
}

func (c *Craft) harvest(cell Position, def KindDef) {
	c.inventory[def.Yields]++
	c.grid.Clear(cell)
}

func (c *Craft) bridge(cell Position, def KindDef) {
	if c.inventory[def.Consumes] < 1 {
		return
	}
	c.inventory[def.Consumes]--
	c.grid.Set(cell, def.Becomes)
}

func (c *Craft) craft(_ Position, _ KindDef) {
	c.book.Craft(c.inventory)
}
