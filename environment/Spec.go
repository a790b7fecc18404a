package environment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SpecType determines what a Spec describes
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
	Reward
)

// Cardinality determines whether the values of a Spec are discrete or
// continuous
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec describes the shape, bounds, and cardinality of the actions,
// observations, discounts, or rewards of an environment
type Spec struct {
	Shape      *mat.VecDense
	Type       SpecType
	LowerBound *mat.VecDense
	UpperBound *mat.VecDense
	Cardinality
}

// NewSpec constructs a new environment specification. NewSpec panics
// if the bounds do not have the length of shape.
func NewSpec(shape *mat.VecDense, t SpecType, lowerBound,
	upperBound *mat.VecDense, cardinality Cardinality) Spec {
	if shape.Len() != lowerBound.Len() {
		panic(fmt.Sprintf("newSpec: shape length %v must match lower "+
			"bounds length %v", shape.Len(), lowerBound.Len()))
	}
	if shape.Len() != upperBound.Len() {
		panic(fmt.Sprintf("newSpec: shape length %v must match upper "+
			"bounds length %v", shape.Len(), upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}

// Contains returns an error describing the first element of v which
// lies outside the bounds of the Spec. Discrete Specs also require
// every element to be an integer.
func (s Spec) Contains(v mat.Vector) error {
	if v.Len() != s.Shape.Len() {
		return fmt.Errorf("contains: want length %d, have %d", s.Shape.Len(),
			v.Len())
	}
	for i := 0; i < v.Len(); i++ {
		x := v.AtVec(i)
		if x < s.LowerBound.AtVec(i) || x > s.UpperBound.AtVec(i) {
			return fmt.Errorf("contains: element %d = %v ∉ [%v, %v]", i, x,
				s.LowerBound.AtVec(i), s.UpperBound.AtVec(i))
		}
		if s.Cardinality == Discrete && x != math.Trunc(x) {
			return fmt.Errorf("contains: element %d = %v is not discrete",
				i, x)
		}
	}
	return nil
}

// NumActions returns the number of discrete actions described by a
// 1-dimensional discrete action Spec
func (s Spec) NumActions() (int, error) {
	if s.Type != Action {
		return 0, fmt.Errorf("numActions: spec is not an action spec")
	}
	if s.Cardinality != Discrete || s.Shape.Len() != 1 {
		return 0, fmt.Errorf("numActions: actions must be discrete and " +
			"1-dimensional")
	}
	return int(s.UpperBound.AtVec(0)-s.LowerBound.AtVec(0)) + 1, nil
}
