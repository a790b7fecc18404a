// Command train trains a tabular Q-Learning agent on a single task of a
// Craft world, evaluating its greedy policy after every episode.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/samuelfneumann/craft2d/agent"
	"github.com/samuelfneumann/craft2d/experiment"
	"github.com/samuelfneumann/craft2d/experiment/checkpointer"
	"github.com/samuelfneumann/craft2d/experiment/trackers"
	"github.com/samuelfneumann/craft2d/utils/progressbar"
)

func main() {
	var (
		configPath = flag.String("config", "", "experiment config path (default: built-in Q-Learning experiment)")
		world      = flag.String("world", "", "built-in world name or world config path (overrides config)")
		task       = flag.String("task", "", "task to learn (overrides config)")
		episodes   = flag.Int("episodes", 0, "number of training episodes (overrides config)")
		seed       = flag.Uint64("seed", 1, "random seed")
		outDir     = flag.String("out", "./results", "output directory")
		every      = flag.Int("checkpoint", 0, "checkpoint the Q table every n episodes (0 to disable)")
		trajectory = flag.Bool("trajectory", false, "log every training timestep to a compressed trajectory file")
		verbose    = flag.Bool("v", false, "log every episode")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: level})))

	if err := run(*configPath, *world, *task, *episodes, *seed, *outDir,
		*every, *trajectory); err != nil {
		slog.Error("training failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, world, task string, episodes int, seed uint64,
	outDir string, every int, trajectory bool) error {
	c := experiment.DefaultConfig()
	if configPath != "" {
		var err error
		if c, err = experiment.LoadConfig(configPath); err != nil {
			return err
		}
	}
	if world != "" {
		c.World = world
	}
	if task != "" {
		c.Task = task
	}
	if episodes > 0 {
		c.Episodes = episodes
	}
	if err := c.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}
	index := trackers.NewSQLite(filepath.Join(outDir, "episodes.sqlite"), "",
		c.Task)
	t := []trackers.Tracker{
		trackers.NewReturn(filepath.Join(outDir, "return.bin")),
		trackers.NewEpisodeLength(filepath.Join(outDir, "length.bin")),
		index,
	}
	if trajectory {
		traj, err := trackers.NewTrajectory(filepath.Join(outDir,
			index.Run()+".jsonl.zst"), false)
		if err != nil {
			return err
		}
		t = append(t, traj)
	}

	exp, err := c.CreateExp(seed, t, nil)
	if err != nil {
		return err
	}
	exp.RegisterEval(trackers.NewReturn(filepath.Join(outDir,
		"eval_return.bin")))

	saver, ok := exp.Agent().(agent.Saver)
	if !ok {
		return fmt.Errorf("agent %v cannot be saved", c.Agent.Type)
	}
	if every > 0 {
		exp.AddCheckpointer(checkpointer.NewNEpisode(every, saver,
			checkpointer.FilenameEnumerator(0, filepath.Join(outDir, "q_"),
				".gob")))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer stop()

	slog.InfoContext(ctx, "training", "world", c.World, "task", c.Task,
		"episodes", c.Episodes, "run", index.Run())

	bar := progressbar.New(os.Stderr, 40, c.Episodes)
	successes := 0
	for {
		done, err := exp.RunEpisode(ctx)
		if err != nil {
			bar.Close()
			slog.WarnContext(ctx, "training stopped", "error", err)
			break
		}
		bar.Increment()
		if c.EvalSteps > 0 {
			if exp.LastEvaluation().Success() {
				successes++
			}
			bar.Describe("eval success: %.3f",
				float64(successes)/float64(exp.Episodes()))
		}
		bar.Display()
		if done {
			bar.Close()
			break
		}
	}

	if err := exp.Save(); err != nil {
		return err
	}
	if err := saver.Save(filepath.Join(outDir, "q.gob")); err != nil {
		return err
	}

	slog.Info("training finished", "episodes", exp.Episodes(),
		"run", index.Run(), "out", outDir)
	return nil
}
