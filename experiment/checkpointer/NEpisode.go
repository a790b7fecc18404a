package checkpointer

import (
	"fmt"

	ts "github.com/samuelfneumann/craft2d/timestep"
)

// nEpisode implements checkpointing every N episodes
type nEpisode struct {
	interval int
	episodes int
	object   Serializable

	// filename returns the name of the file to save the object in. Use
	// FilenameEnumerator to save each checkpoint in a separately
	// numbered file, FileTimer to save each in a timestamped file, or
	// Overwrite to keep only the latest checkpoint.
	filename func() string
}

// NewNEpisode returns a checkpointer that checkpoints object at the
// end of every n-th episode
func NewNEpisode(n int, object Serializable,
	filename func() string) Checkpointer {
	if n < 1 {
		panic(fmt.Sprintf("newNEpisode: interval must be positive, have %d",
			n))
	}
	return &nEpisode{
		interval: n,
		object:   object,
		filename: filename,
	}
}

// Checkpoint checkpoints the tracked object by calling its Save()
// method if t ends the n-th episode since the last checkpoint
func (n *nEpisode) Checkpoint(t ts.TimeStep) error {
	if !t.Last() {
		return nil
	}

	n.episodes++
	if n.episodes%n.interval != 0 {
		return nil
	}
	if err := n.object.Save(n.filename()); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}
