// Command craft plays a Craft world on the terminal. Arrow keys or
// w, a, s, d move, space or e uses the faced cell, digits 0 to 4 select
// actions by their code, r starts a new episode, and q quits.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	env "github.com/samuelfneumann/craft2d/environment"
	"github.com/samuelfneumann/craft2d/environment/craft"
	"github.com/samuelfneumann/craft2d/environment/wrappers"
	"github.com/samuelfneumann/craft2d/render"
	ts "github.com/samuelfneumann/craft2d/timestep"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func main() {
	var (
		world  = flag.String("world", "basic", "built-in world name or world config path")
		task   = flag.String("task", "", "task to play (default: first task of the world)")
		seed   = flag.Uint64("seed", 1, "random seed")
		steps  = flag.Int("steps", 0, "step limit per episode (0 for none)")
		frames = flag.String("frames", "", "directory to save a PNG frame of each step in (optional)")
	)
	flag.Parse()

	if err := run(*world, *task, *seed, *steps, *frames); err != nil {
		slog.Error("craft", "error", err)
		os.Exit(1)
	}
}

// game is a single human-played session
type game struct {
	craft   *craft.Craft
	env     env.Environment
	term    *render.Terminal
	frames  string
	frame   int
	step    ts.TimeStep
	ret     float64
	message string
}

func run(world, task string, seed uint64, steps int, frames string) error {
	c, err := craft.LoadWorld(world)
	if err != nil {
		return err
	}
	e, err := craft.New(c, 1.0, rand.NewSource(seed))
	if err != nil {
		return err
	}
	if task != "" {
		if err := e.SetTask(task); err != nil {
			return err
		}
	}
	if _, err := e.Reset(); err != nil {
		return err
	}

	g := &game{craft: e, env: e, frames: frames}
	if steps > 0 {
		if g.env, err = wrappers.NewTimeLimit(e, steps); err != nil {
			return err
		}
	}
	if frames != "" {
		if err := os.MkdirAll(frames, 0o755); err != nil {
			return err
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	g.term = render.NewTerminal(screen, e.Registry())

	if err := g.reset(); err != nil {
		return err
	}
	for {
		g.draw()

		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				ev.Rune() == 'q' {
				return nil
			}
			if ev.Rune() == 'r' {
				if err := g.reset(); err != nil {
					return err
				}
				continue
			}
			if a, ok := render.ActionForKey(ev); ok {
				if err := g.act(a); err != nil {
					return err
				}
			}
		}
	}
}

func (g *game) reset() error {
	step, err := g.env.Reset()
	if err != nil {
		return err
	}
	g.step, g.ret, g.message = step, 0, ""
	return g.save()
}

func (g *game) act(a craft.Action) error {
	if g.step.Last() {
		g.message = "episode over, press r to play again"
		return nil
	}

	step, _, err := g.env.Step(mat.NewVecDense(1, []float64{float64(a)}))
	if err != nil {
		return err
	}
	g.step = step
	g.ret += step.Reward
	g.message = fmt.Sprintf("last action: %v", a)
	if step.Last() {
		g.message = fmt.Sprintf("episode over (%v), press r to play again",
			step.EndType())
	}
	return g.save()
}

func (g *game) draw() {
	g.term.Draw(g.craft.Observe(),
		fmt.Sprintf("task: %v  |  step: %d  |  return: %.0f",
			g.craft.Task().Name(), g.step.Number, g.ret),
		g.message,
		"arrows/wasd move, space uses, r resets, q quits")
}

// save saves a PNG frame of the current state if frames are enabled
func (g *game) save() error {
	if g.frames == "" {
		return nil
	}
	g.frame++
	path := filepath.Join(g.frames, fmt.Sprintf("frame%05d.png", g.frame))
	return render.SavePNG(path, g.craft.Observe(), g.craft.Registry(), 32)
}
