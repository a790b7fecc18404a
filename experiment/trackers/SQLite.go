package trackers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	ts "github.com/samuelfneumann/craft2d/timestep"
)

// Episode is a summary of a single finished episode
type Episode struct {
	Run     string
	Episode int
	Task    string
	Return  float64
	Length  int
	End     string
}

// SQLite tracks a summary of each finished episode and saves the
// summaries as rows of the episodes table of an SQLite database. Many
// runs may share one database; rows are keyed by a run id and the
// index of the episode within the run.
type SQLite struct {
	path string
	run  string
	task string

	currentReturn float64
	episodes      []Episode
	saved         int
}

// NewSQLite returns a new SQLite Tracker saving to the database at
// path. If run is empty, a random run id is generated.
func NewSQLite(path, run, task string) *SQLite {
	if run == "" {
		run = uuid.NewString()
	}
	return &SQLite{path: path, run: run, task: task}
}

// Run returns the run id of the Tracker
func (s *SQLite) Run() string {
	return s.run
}

// Track accumulates the return of the current episode, caching the
// episode summary when the episode ends
func (s *SQLite) Track(t ts.TimeStep) error {
	if t.First() {
		s.currentReturn = 0
	}
	s.currentReturn += t.Reward
	if !t.Last() {
		return nil
	}

	s.episodes = append(s.episodes, Episode{
		Run:     s.run,
		Episode: len(s.episodes),
		Task:    s.task,
		Return:  s.currentReturn,
		Length:  t.Number,
		End:     t.EndType().String(),
	})
	s.currentReturn = 0
	return nil
}

// Save writes all episodes not yet saved to the database
func (s *SQLite) Save() error {
	db, err := openEpisodes(s.path)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save: could not begin transaction: %w", err)
	}
	for _, e := range s.episodes[s.saved:] {
		_, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO episodes
			(run_id, episode, task, ep_return, length, end_type)
			VALUES (?, ?, ?, ?, ?, ?)`,
			e.Run, e.Episode, e.Task, e.Return, e.Length, e.End)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("save: could not insert episode %d: %w",
				e.Episode, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save: could not commit: %w", err)
	}

	s.saved = len(s.episodes)
	return nil
}

// LoadEpisodes returns the episodes of run saved in the database at
// path, in order
func LoadEpisodes(path, run string) ([]Episode, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("loadEpisodes: %w", err)
	}
	db, err := openEpisodes(path)
	if err != nil {
		return nil, fmt.Errorf("loadEpisodes: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT run_id, episode, task, ep_return, length,
		end_type FROM episodes WHERE run_id = ? ORDER BY episode`, run)
	if err != nil {
		return nil, fmt.Errorf("loadEpisodes: could not query: %w", err)
	}
	defer rows.Close()

	var out []Episode
	for rows.Next() {
		var e Episode
		if err := rows.Scan(&e.Run, &e.Episode, &e.Task, &e.Return,
			&e.Length, &e.End); err != nil {
			return nil, fmt.Errorf("loadEpisodes: could not scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loadEpisodes: %w", err)
	}
	return out, nil
}

// openEpisodes opens the database at path, creating the episodes table
// if needed
func openEpisodes(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS episodes (
			run_id TEXT NOT NULL,
			episode INTEGER NOT NULL,
			task TEXT NOT NULL,
			ep_return REAL NOT NULL,
			length INTEGER NOT NULL,
			end_type TEXT NOT NULL,
			PRIMARY KEY (run_id, episode)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("could not initialize database: %w", err)
		}
	}
	return db, nil
}
