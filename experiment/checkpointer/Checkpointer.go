// Package checkpointer implements checkpointing of objects during an
// experiment
package checkpointer

import ts "github.com/samuelfneumann/craft2d/timestep"

// Serializable is an object that can be saved to a file
type Serializable interface {
	Save(filename string) error
}

// Checkpointer checkpoints/saves Serializable objects based on
// timestep.TimeSteps
type Checkpointer interface {
	Checkpoint(ts.TimeStep) error
}
