package trackers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	ts "github.com/samuelfneumann/craft2d/timestep"
)

// Record is a single timestep logged by a Trajectory Tracker
type Record struct {
	Episode     int       `json:"episode"`
	Step        int       `json:"step"`
	Type        string    `json:"type"`
	Reward      float64   `json:"reward"`
	Discount    float64   `json:"discount"`
	End         string    `json:"end,omitempty"`
	Observation []float64 `json:"observation,omitempty"`
}

// Trajectory logs every tracked timestep as one JSON line of a
// zstd-compressed file. Lines are written as they are tracked; Save
// flushes and closes the file, after which nothing more can be tracked.
type Trajectory struct {
	observations bool
	episode      int

	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// NewTrajectory creates the file at path and returns a Trajectory
// Tracker logging to it. If observations is true, the observation
// vector of each timestep is logged as well.
func NewTrajectory(path string, observations bool) (*Trajectory, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("newTrajectory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("newTrajectory: could not create file: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("newTrajectory: %w", err)
	}

	return &Trajectory{
		observations: observations,
		f:            f,
		enc:          enc,
		w:            bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

// Track writes the timestep to the log
func (t *Trajectory) Track(step ts.TimeStep) error {
	if t.w == nil {
		return fmt.Errorf("track: trajectory already saved")
	}

	r := Record{
		Episode:  t.episode,
		Step:     step.Number,
		Type:     step.StepType.String(),
		Reward:   step.Reward,
		Discount: step.Discount,
	}
	if step.Last() {
		r.End = step.EndType().String()
		t.episode++
	}
	if t.observations && step.Observation != nil {
		r.Observation = append([]float64(nil), step.Observation.RawVector().Data...)
	}

	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("track: %w", err)
	}
	if _, err := t.w.Write(b); err != nil {
		return fmt.Errorf("track: %w", err)
	}
	if err := t.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("track: %w", err)
	}
	return nil
}

// Save flushes the log and closes its file
func (t *Trajectory) Save() error {
	if t.w == nil {
		return nil
	}

	var err error
	if flushErr := t.w.Flush(); flushErr != nil {
		err = flushErr
	}
	if closeErr := t.enc.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if closeErr := t.f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	t.w, t.enc, t.f = nil, nil, nil

	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// LoadTrajectory reads all records logged by a Trajectory Tracker
func LoadTrajectory(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loadTrajectory: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("loadTrajectory: %w", err)
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	var records []Record
	for sc.Scan() {
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			return nil, fmt.Errorf("loadTrajectory: line %d: %w",
				len(records)+1, err)
		}
		records = append(records, r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("loadTrajectory: %w", err)
	}
	return records, nil
}
