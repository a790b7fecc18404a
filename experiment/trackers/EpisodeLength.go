package trackers

import (
	"fmt"

	ts "github.com/samuelfneumann/craft2d/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes in an
// experiment. An episode must finish for its length to be saved.
type EpisodeLength struct {
	episodeLengths []int
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength Tracker which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track caches the episode length if the timestep passed to it is the
// last timestep in the episode
func (e *EpisodeLength) Track(t ts.TimeStep) error {
	if t.Last() {
		e.episodeLengths = append(e.episodeLengths, t.Number)
	}
	return nil
}

// Lengths returns the lengths of all finished episodes
func (e *EpisodeLength) Lengths() []int {
	return append([]int(nil), e.episodeLengths...)
}

// Save saves the data tracked by the EpisodeLength Tracker to disk
func (e *EpisodeLength) Save() error {
	if err := saveGob(e.filename, e.episodeLengths); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
