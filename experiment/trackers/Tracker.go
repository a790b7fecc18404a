// Package trackers implements Trackers, which track and save data
// generated in an experiment
package trackers

import (
	"encoding/gob"
	"fmt"
	"os"

	ts "github.com/samuelfneumann/craft2d/timestep"
)

// Tracker keeps track of experiment data and saves the data after the
// experiment has finished. Track must be called on every timestep of
// the experiment, in order.
type Tracker interface {
	Track(t ts.TimeStep) error
	Save() error
}

// saveGob encodes data to the file filename
func saveGob(filename string, data interface{}) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not open save file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return fmt.Errorf("could not encode data: %w", err)
	}
	return file.Close()
}

// LoadData loads and returns the data saved by a Return Tracker
func LoadData(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadData: could not open data file: %w", err)
	}
	defer file.Close()

	var data []float64
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("loadData: could not decode data: %w", err)
	}
	return data, nil
}

// LoadLengths loads and returns the data saved by an EpisodeLength
// Tracker
func LoadLengths(filename string) ([]int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadLengths: could not open data file: %w",
			err)
	}
	defer file.Close()

	var data []int
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("loadLengths: could not decode data: %w", err)
	}
	return data, nil
}
