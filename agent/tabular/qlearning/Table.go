package qlearning

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Table is a tabular action-value function. States are keyed by a
// sparse encoding of their observation vectors; unvisited states have
// every action value equal to the table's initial value.
type Table struct {
	actions int
	initial float64
	values  map[string][]float64
}

// NewTable returns a new, empty Table over the argument number of
// actions
func NewTable(actions int, initial float64) *Table {
	if actions < 1 {
		panic(fmt.Sprintf("newTable: must have at least 1 action, have %d",
			actions))
	}
	return &Table{
		actions: actions,
		initial: initial,
		values:  make(map[string][]float64),
	}
}

// Key returns the state key of an observation vector. Only nonzero
// elements are encoded.
func Key(obs mat.Vector) string {
	var b strings.Builder
	for i := 0; i < obs.Len(); i++ {
		v := obs.AtVec(i)
		if v == 0 {
			continue
		}
		b.WriteString(strconv.Itoa(i))
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		b.WriteByte(',')
	}
	return b.String()
}

// Values returns the action values of a state. The returned slice must
// not be modified.
func (t *Table) Values(key string) []float64 {
	if v, ok := t.values[key]; ok {
		return v
	}
	v := make([]float64, t.actions)
	for i := range v {
		v[i] = t.initial
	}
	return v
}

// At returns the value of action a in a state
func (t *Table) At(key string, a int) float64 {
	return t.Values(key)[a]
}

// Update moves the value of action a in a state toward target by step
// size lr
func (t *Table) Update(key string, a int, target, lr float64) {
	v, ok := t.values[key]
	if !ok {
		v = t.Values(key)
		t.values[key] = v
	}
	v[a] += lr * (target - v[a])
}

// Max returns the maximum action value in a state
func (t *Table) Max(key string) float64 {
	best := math.Inf(-1)
	for _, v := range t.Values(key) {
		if v > best {
			best = v
		}
	}
	return best
}

// Len returns the number of visited states
func (t *Table) Len() int {
	return len(t.values)
}

// Has returns whether a state has been updated
func (t *Table) Has(key string) bool {
	_, ok := t.values[key]
	return ok
}

// tableData is the serialized form of a Table
type tableData struct {
	Actions int
	Initial float64
	Values  map[string][]float64
}

// Save writes the table to a file
func (t *Table) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not create file: %w", err)
	}
	defer file.Close()

	enc := gob.NewEncoder(file)
	if err := enc.Encode(tableData{t.actions, t.initial, t.values}); err != nil {
		return fmt.Errorf("save: could not encode table: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("save: could not close file: %w", err)
	}
	return nil
}

// LoadTable reads a table written by Save
func LoadTable(filename string) (*Table, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadTable: could not open file: %w", err)
	}
	defer file.Close()

	var data tableData
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("loadTable: could not decode table: %w", err)
	}
	if data.Values == nil {
		data.Values = make(map[string][]float64)
	}
	return &Table{data.Actions, data.Initial, data.Values}, nil
}
