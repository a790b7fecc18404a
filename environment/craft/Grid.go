package craft

import "fmt"

// Grid is the occupancy map of a Craft world. Each cell holds at most
// one object kind, so the [row][col][kind] occupancy tensor is stored
// as a single kind per cell.
type Grid struct {
	rows, cols int
	cells      []Kind
}

// NewGrid returns an empty grid with r rows and c columns
func NewGrid(r, c int) *Grid {
	if r <= 0 || c <= 0 {
		panic(fmt.Sprintf("newGrid: illegal dimensions (%d, %d)", r, c))
	}

	cells := make([]Kind, r*c)
	for i := range cells {
		cells[i] = NoKind
	}
	return &Grid{r, c, cells}
}

// Dims returns the rows and columns of the grid
func (g *Grid) Dims() (r, c int) {
	return g.rows, g.cols
}

// InBounds returns whether p lies within the grid
func (g *Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.rows && p.Col >= 0 && p.Col < g.cols
}

// At returns the kind occupying p, or NoKind if p is empty
func (g *Grid) At(p Position) Kind {
	return g.cells[g.index(p)]
}

// Set places kind k at p, replacing whatever was there
func (g *Grid) Set(p Position, k Kind) {
	g.cells[g.index(p)] = k
}

// Clear empties the cell at p
func (g *Grid) Clear(p Position) {
	g.cells[g.index(p)] = NoKind
}

// Empty returns whether p holds no object
func (g *Grid) Empty(p Position) bool {
	return g.At(p) == NoKind
}

// Clamp moves p to the closest cell in the grid
func (g *Grid) Clamp(p Position) Position {
	return Position{
		Row: clamp(p.Row, 0, g.rows-1),
		Col: clamp(p.Col, 0, g.cols-1),
	}
}

// Neighbourhood returns the in-bounds cells of the 3×3 neighbourhood
// centred at p, including p itself
func (g *Grid) Neighbourhood(p Position) []Position {
	cells := make([]Position, 0, 9)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			n := Position{p.Row + dr, p.Col + dc}
			if g.InBounds(n) {
				cells = append(cells, n)
			}
		}
	}
	return cells
}

// Clone returns a deep copy of the grid
func (g *Grid) Clone() *Grid {
	cells := make([]Kind, len(g.cells))
	copy(cells, g.cells)
	return &Grid{g.rows, g.cols, cells}
}

func (g *Grid) index(p Position) int {
	if !g.InBounds(p) {
		panic(fmt.Sprintf("index: position %v out of bounds (%d, %d)", p,
			g.rows, g.cols))
	}
	return p.Row*g.cols + p.Col
}

// Inventory holds the count of each item kind, indexed by Item
type Inventory []int

// Count returns the number of item i held
func (inv Inventory) Count(i Item) int {
	return inv[i]
}

// Clone returns a copy of the inventory
func (inv Inventory) Clone() Inventory {
	c := make(Inventory, len(inv))
	copy(c, inv)
	return c
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
