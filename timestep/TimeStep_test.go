package timestep

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestStepTypes(t *testing.T) {
	obs := mat.NewVecDense(2, []float64{1, 0})

	first := New(First, 0, 1, obs, 0)
	if !first.First() || first.Mid() || first.Last() {
		t.Errorf("first: want First only, have %v", first.StepType)
	}

	last := New(Last, 1, 1, obs, 3)
	if !last.Last() {
		t.Errorf("last: want Last, have %v", last.StepType)
	}
	if last.EndType() != Unended {
		t.Errorf("last: want end type %v, have %v", Unended, last.EndType())
	}

	last.SetEnd(Timeout)
	if last.EndType() != Timeout {
		t.Errorf("setEnd: want %v, have %v", Timeout, last.EndType())
	}
}

func TestSetEndPanicsOnMid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("setEnd: expected panic on Mid timestep")
		}
	}()

	step := New(Mid, 0, 1, mat.NewVecDense(1, nil), 1)
	step.SetEnd(TerminalStateReached)
}
