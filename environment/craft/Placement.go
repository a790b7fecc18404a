package craft

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Starter produces the grid layout at the start of each episode
type Starter interface {
	Start() *Grid
}

// Placer is a Starter which places the configured number of each
// placeable kind uniformly at random, without overlap, then derives
// terrain around anchor kinds.
//
// The agent's start cell and every placement claim a cell, and in
// padded mode their whole 3×3 neighbourhood. A candidate is accepted
// only if it is unclaimed and, in padded mode, its neighbourhood is
// unclaimed too, so that objects are never adjacent to each other, to
// the start cell, or to another object's derived terrain. Each cell is
// drawn uniformly from the cells which can be accepted.
//
// A layout which runs out of acceptable cells is discarded and drawn
// again. After maxLayoutAttempts discarded layouts, placements are
// drawn from the lattice of every third row and column through the
// start cell, which configuration validation guarantees can hold every
// placement.
type Placer struct {
	reg    *Registry
	padded bool
	start  Position
	src    rand.Source
	r, c   int
}

// maxLayoutAttempts is the number of random layouts drawn before
// falling back to lattice placement
const maxLayoutAttempts = 100

// NewPlacer returns a new Placer for the world described by c, drawing
// positions using the random source src
func NewPlacer(c Config, reg *Registry, src rand.Source) (*Placer, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newPlacer: %w", err)
	}

	return &Placer{
		reg:    reg,
		padded: c.Padded,
		start:  c.Start,
		src:    src,
		r:      c.Rows,
		c:      c.Cols,
	}, nil
}

// Start generates a new layout
func (p *Placer) Start() *Grid {
	anywhere := func(Position) bool { return true }
	for i := 0; i < maxLayoutAttempts; i++ {
		if grid, ok := p.layout(anywhere); ok {
			return grid
		}
	}

	grid, ok := p.layout(p.onLattice)
	if !ok {
		panic("start: lattice cannot hold the configured placements")
	}
	return grid
}

// layout places every placeable kind on a new grid, drawing each
// position uniformly from the acceptable cells for which allowed
// returns true. If some placement has no acceptable cell, layout
// returns false.
func (p *Placer) layout(allowed func(Position) bool) (*Grid, bool) {
	grid := NewGrid(p.r, p.c)
	claimed := make(map[Position]bool)
	p.claim(grid, claimed, p.start)

	for _, k := range p.reg.Placeable() {
		for i := 0; i < p.reg.Kind(k).Count; i++ {
			free := p.free(grid, claimed, allowed)
			if len(free) == 0 {
				return nil, false
			}

			pos := free[p.pick(len(free))]
			grid.Set(pos, k)
			p.claim(grid, claimed, pos)
		}
	}

	surround(grid, p.reg)
	return grid, true
}

// free returns the cells, in row-major order, at which an object may
// be placed
func (p *Placer) free(g *Grid, claimed map[Position]bool,
	allowed func(Position) bool) []Position {
	var cells []Position
	for row := 0; row < p.r; row++ {
		for col := 0; col < p.c; col++ {
			pos := Position{row, col}
			if allowed(pos) && p.acceptable(g, claimed, pos) {
				cells = append(cells, pos)
			}
		}
	}
	return cells
}

// acceptable returns whether pos, and in padded mode its neighbourhood,
// is unclaimed
func (p *Placer) acceptable(g *Grid, claimed map[Position]bool,
	pos Position) bool {
	if !p.padded {
		return !claimed[pos]
	}
	for _, n := range g.Neighbourhood(pos) {
		if claimed[n] {
			return false
		}
	}
	return true
}

// onLattice returns whether pos lies on a row and a column a multiple
// of three cells away from the start cell. In unpadded mode every cell
// is on the lattice.
func (p *Placer) onLattice(pos Position) bool {
	if !p.padded {
		return true
	}
	return mod3(pos.Row-p.start.Row) == 0 && mod3(pos.Col-p.start.Col) == 0
}

// pick draws an index in [0, n) uniformly at random
func (p *Placer) pick(n int) int {
	return int(distuv.NewCategorical(uniform(n), p.src).Rand())
}

// claim marks a cell, and in padded mode its neighbourhood, as
// unavailable for later placements
func (p *Placer) claim(g *Grid, claimed map[Position]bool, pos Position) {
	if !p.padded {
		claimed[pos] = true
		return
	}
	for _, n := range g.Neighbourhood(pos) {
		claimed[n] = true
	}
}

func mod3(v int) int {
	return ((v % 3) + 3) % 3
}

// surround places derived terrain in the neighbourhood of every anchor
// kind on the grid
func surround(g *Grid, reg *Registry) {
	r, c := g.Dims()

	var anchors []Position
	for row := 0; row < r; row++ {
		for col := 0; col < c; col++ {
			pos := Position{row, col}
			if k := g.At(pos); k != NoKind && reg.Kind(k).Surround != NoKind {
				anchors = append(anchors, pos)
			}
		}
	}

	for _, anchor := range anchors {
		terrain := reg.Kind(g.At(anchor)).Surround
		for _, n := range g.Neighbourhood(anchor) {
			if n != anchor {
				g.Set(n, terrain)
			}
		}
	}
}

// uniform returns the weights of a uniform categorical distribution
// over n values
func uniform(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0 / float64(n)
	}
	return weights
}

// FixedStart is a Starter which always produces the same layout
type FixedStart struct {
	grid *Grid
}

// NewFixedStart returns a Starter which places the named kinds at the
// argument positions on every reset. Derived terrain is not added.
func NewFixedStart(c Config, reg *Registry,
	layout map[Position]string) (*FixedStart, error) {
	grid := NewGrid(c.Rows, c.Cols)

	for pos, name := range layout {
		if !grid.InBounds(pos) {
			return nil, fmt.Errorf("newFixedStart: position %v out of bounds",
				pos)
		}
		if pos == c.Start {
			return nil, fmt.Errorf("newFixedStart: cannot place %q on the "+
				"start cell %v", name, pos)
		}
		k, ok := reg.KindByName(name)
		if !ok {
			return nil, fmt.Errorf("newFixedStart: unknown kind %q", name)
		}
		grid.Set(pos, k)
	}

	return &FixedStart{grid}, nil
}

// Start returns a copy of the fixed layout
func (f *FixedStart) Start() *Grid {
	return f.grid.Clone()
}
