package craft

import (
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Observation is a read-only snapshot of the World State. Observations
// share no memory with the environment which produced them.
type Observation struct {
	Rows, Cols int
	Kinds      int
	Cells      []Kind
	Inventory  Inventory
	Position   Position
	Facing     Facing
}

// newObservation copies the argument state into a new Observation
func newObservation(g *Grid, kinds int, inv Inventory, pos Position,
	facing Facing) Observation {
	r, c := g.Dims()
	cells := make([]Kind, len(g.cells))
	copy(cells, g.cells)

	return Observation{
		Rows:      r,
		Cols:      c,
		Kinds:     kinds,
		Cells:     cells,
		Inventory: inv.Clone(),
		Position:  pos,
		Facing:    facing,
	}
}

// At returns the kind occupying p, or NoKind if p is empty
func (o Observation) At(p Position) Kind {
	return o.Cells[p.Row*o.Cols+p.Col]
}

// Occupied returns whether cell p holds kind k. This is the value of
// the [row][col][kind] occupancy tensor.
func (o Observation) Occupied(p Position, k Kind) bool {
	return o.At(p) == k
}

// Count returns the number of item i held
func (o Observation) Count(i Item) int {
	return o.Inventory[i]
}

// VecLen returns the length of the vector encoding of an observation
// over a grid with r rows, c columns, and the argument number of
// object and item kinds
func VecLen(r, c, kinds, items int) int {
	return r*c*kinds + items + 3
}

// Vec returns the observation as a flat vector with layout:
//
//	[0, rows·cols·kinds)	one-hot occupancy, index (row·cols + col)·kinds + kind
//	next len(Inventory)	inventory counts
//	next 3			row, col, facing
func (o Observation) Vec() *mat.VecDense {
	n := VecLen(o.Rows, o.Cols, o.Kinds, len(o.Inventory))
	vec := mat.NewVecDense(n, nil)

	for i, k := range o.Cells {
		if k != NoKind {
			vec.SetVec(i*o.Kinds+int(k), 1.0)
		}
	}

	offset := len(o.Cells) * o.Kinds
	for i, count := range o.Inventory {
		vec.SetVec(offset+i, float64(count))
	}
	offset += len(o.Inventory)

	vec.SetVec(offset, float64(o.Position.Row))
	vec.SetVec(offset+1, float64(o.Position.Col))
	vec.SetVec(offset+2, float64(o.Facing))

	return vec
}

// Key returns a hashable encoding of the observation. Within one
// world, two observations have equal keys if and only if they are equal.
func (o Observation) Key() string {
	var b strings.Builder
	b.Grow(len(o.Cells)*2 + len(o.Inventory)*2 + 8)

	for _, k := range o.Cells {
		b.WriteString(strconv.Itoa(int(k)))
		b.WriteByte(',')
	}
	b.WriteByte('|')
	for _, count := range o.Inventory {
		b.WriteString(strconv.Itoa(count))
		b.WriteByte(',')
	}
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(o.Position.Row))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(o.Position.Col))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(int(o.Facing)))

	return b.String()
}
