package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/samuelfneumann/craft2d/agent/tabular/qlearning"
	"github.com/samuelfneumann/craft2d/environment/craft"
	"github.com/samuelfneumann/craft2d/environment/wrappers"
	"github.com/samuelfneumann/craft2d/experiment"
	"github.com/samuelfneumann/craft2d/experiment/trackers"
	"golang.org/x/exp/rand"
)

func main() {
	if err := run(); err != nil {
		slog.Error("craft2d", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var seed uint64 = 192382

	// Create the environment
	c := craft.BasicConfig()
	e, err := craft.New(c, 0.999, rand.NewSource(seed))
	if err != nil {
		return err
	}
	if _, err := e.ResetTask("get-wood"); err != nil {
		return err
	}
	limited, err := wrappers.NewTimeLimit(e, 5000)
	if err != nil {
		return err
	}

	// Create the learning algorithm
	args := qlearning.Config{Epsilon: 0.5, LearningRate: 0.01}
	q, err := qlearning.New(limited, args, seed)
	if err != nil {
		return err
	}

	// Experiment
	tracker := trackers.NewReturn("./data.bin")
	exp := experiment.NewOnline(limited, q, 1000,
		[]trackers.Tracker{tracker}, nil)
	exp.SetEvalSteps(30)
	if err := exp.Run(context.Background()); err != nil {
		return err
	}
	if err := exp.Save(); err != nil {
		return err
	}

	data, err := trackers.LoadData("./data.bin")
	if err != nil {
		return err
	}
	fmt.Println(data[len(data)-10:])
	fmt.Println(exp.LastEvaluation())
	return nil
}
