// Package craft implements the Craft2D environment: a deterministic
// grid world in which a single agent moves, harvests resources, and
// crafts items at crafting stations.
//
// A world is described by a Config, which lists the object kinds on the
// grid, the inventory items, the recipe table, and the tasks which can
// be selected at reset. Every version of the world (basic resources, a
// crafting table, a gem island surrounded by water) is a Config; the
// transition rules never change.
package craft

import (
	"fmt"
	"math"
	"strings"

	env "github.com/samuelfneumann/craft2d/environment"
	ts "github.com/samuelfneumann/craft2d/timestep"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Craft implements the Craft2D environment. A Craft must be reset
// before it is stepped. Craft is not safe for concurrent use.
type Craft struct {
	config  Config
	reg     *Registry
	book    Cookbook
	tasks   map[string]Task
	task    Task
	starter Starter

	actionSpec env.Spec

	discount float64

	// World State
	grid      *Grid
	inventory Inventory
	position  Position
	facing    Facing

	initialized bool
	currentStep ts.TimeStep
}

// New creates a new Craft environment for the world described by c.
// Layouts are drawn from src at each reset. The returned environment
// must be reset before it is stepped.
func New(c Config, discount float64, src rand.Source) (*Craft, error) {
	reg, err := NewRegistry(c)
	if err != nil {
		return nil, fmt.Errorf("new: could not create registry: %w", err)
	}

	book, err := NewCookbook(c, reg)
	if err != nil {
		return nil, fmt.Errorf("new: could not create cookbook: %w", err)
	}

	tasks, err := NewTasks(c, reg)
	if err != nil {
		return nil, fmt.Errorf("new: could not create tasks: %w", err)
	}

	placer, err := NewPlacer(c, reg, src)
	if err != nil {
		return nil, fmt.Errorf("new: could not create placer: %w", err)
	}

	e := &Craft{
		config:   c,
		reg:      reg,
		book:     book,
		tasks:    tasks,
		starter:  placer,
		discount: discount,
	}
	e.actionSpec = e.ActionSpec()
	return e, nil
}

// SetStarter sets the Starter which produces the layout at each reset
func (c *Craft) SetStarter(s Starter) {
	c.starter = s
}

// SetTask selects the named task without restarting the episode in
// progress. The task scores every later step.
func (c *Craft) SetTask(name string) error {
	task, ok := c.tasks[name]
	if !ok {
		return fmt.Errorf("setTask: %w: %q", ErrUnknownTask, name)
	}
	c.task = task
	return nil
}

// ResetTask selects the named task and starts a new episode
func (c *Craft) ResetTask(name string) (ts.TimeStep, error) {
	if err := c.SetTask(name); err != nil {
		return ts.TimeStep{}, fmt.Errorf("resetTask: %w", err)
	}
	return c.Reset()
}

// Reset starts a new episode of the current task. If no task has been
// selected, the first configured task is used.
func (c *Craft) Reset() (ts.TimeStep, error) {
	if c.task == nil {
		if len(c.config.Tasks) == 0 {
			return ts.TimeStep{}, fmt.Errorf("reset: %w: no tasks configured",
				ErrUnknownTask)
		}
		c.task = c.tasks[c.config.Tasks[0].Name]
	}

	grid := c.starter.Start()
	if r, cols := grid.Dims(); r != c.config.Rows || cols != c.config.Cols {
		return ts.TimeStep{}, fmt.Errorf("reset: starter produced a (%d, %d) "+
			"grid, expected (%d, %d)", r, cols, c.config.Rows, c.config.Cols)
	}

	c.grid = grid
	c.inventory = make(Inventory, c.reg.NumItems())
	c.position = c.config.Start
	c.facing = None
	c.initialized = true

	step := ts.New(ts.First, 0, c.discount, c.Observe().Vec(), 0)
	c.currentStep = step
	return step, nil
}

// Step takes a single environmental step given a 1-dimensional action
// vector holding the integer code of an Action
func (c *Craft) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if !c.initialized {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w", ErrNotInitialized)
	}
	if action == nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w: no action",
			ErrInvalidAction)
	}
	if err := c.actionSpec.Contains(action); err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w: %v",
			ErrInvalidAction, err)
	}
	return c.Act(Action(action.AtVec(0)))
}

// Act takes a single environmental step with action a
func (c *Craft) Act(a Action) (ts.TimeStep, bool, error) {
	if !c.initialized {
		return ts.TimeStep{}, false, fmt.Errorf("act: %w", ErrNotInitialized)
	}
	if a < Right || a > Use {
		return ts.TimeStep{}, false, fmt.Errorf("act: %w: %v", ErrInvalidAction,
			a)
	}

	state := c.Observe()
	c.transition(a)
	next := c.Observe()

	reward := c.task.GetReward(state, next)
	step := ts.New(ts.Mid, reward, c.discount, next.Vec(),
		c.currentStep.Number+1)

	if c.task.AtGoal(next) {
		step.StepType = ts.Last
		step.SetEnd(ts.TerminalStateReached)
	}

	c.currentStep = step
	return step, step.Last(), nil
}

// Observe returns a copy of the current World State. Observe panics if
// the environment has not been reset.
func (c *Craft) Observe() Observation {
	if !c.initialized {
		panic("observe: environment not initialized")
	}
	return newObservation(c.grid, c.reg.NumKinds(), c.inventory, c.position,
		c.facing)
}

// Initialized returns whether the environment has been reset
func (c *Craft) Initialized() bool {
	return c.initialized
}

// CurrentTimeStep returns the last TimeStep that occurred in the
// environment
func (c *Craft) CurrentTimeStep() ts.TimeStep {
	return c.currentStep
}

// Registry returns the object and item registry of the world
func (c *Craft) Registry() *Registry {
	return c.reg
}

// Cookbook returns the recipe table of the world
func (c *Craft) Cookbook() Cookbook {
	return c.book
}

// Task returns the current task, or nil if none has been selected
func (c *Craft) Task() Task {
	return c.task
}

// Tasks returns the names of the tasks which can be selected
func (c *Craft) Tasks() []string {
	return c.config.TaskNames()
}

// Config returns the configuration of the world
func (c *Craft) Config() Config {
	return c.config
}

// ActionSpec returns the action specification of the environment
func (c *Craft) ActionSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{float64(Right)})
	upperBound := mat.NewVecDense(1, []float64{float64(Use)})

	return env.NewSpec(shape, env.Action, lowerBound, upperBound, env.Discrete)
}

// ObservationSpec returns the observation specification of the
// environment. Inventory counts are unbounded above.
func (c *Craft) ObservationSpec() env.Spec {
	r, cols := c.config.Rows, c.config.Cols
	kinds, items := c.reg.NumKinds(), c.reg.NumItems()
	n := VecLen(r, cols, kinds, items)

	shape := mat.NewVecDense(n, nil)
	lowerBound := mat.NewVecDense(n, nil)
	upperBound := mat.NewVecDense(n, nil)

	occupancy := r * cols * kinds
	for i := 0; i < occupancy; i++ {
		upperBound.SetVec(i, 1.0)
	}
	for i := 0; i < items; i++ {
		upperBound.SetVec(occupancy+i, math.Inf(1))
	}
	upperBound.SetVec(n-3, float64(r-1))
	upperBound.SetVec(n-2, float64(cols-1))
	upperBound.SetVec(n-1, float64(FacingDown))

	return env.NewSpec(shape, env.Observation, lowerBound, upperBound,
		env.Discrete)
}

// DiscountSpec returns the discount specification of the environment
func (c *Craft) DiscountSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	bound := mat.NewVecDense(1, []float64{c.discount})

	return env.NewSpec(shape, env.Discount, bound, bound, env.Continuous)
}

// RewardSpec returns the reward specification of the environment
func (c *Craft) RewardSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{StepReward})
	upperBound := mat.NewVecDense(1, []float64{SuccessReward})

	return env.NewSpec(shape, env.Reward, lowerBound, upperBound,
		env.Continuous)
}

func (c *Craft) String() string {
	if !c.initialized {
		return fmt.Sprintf("Craft | %v | not initialized", c.config.Name)
	}

	held := make([]string, 0, len(c.inventory))
	for i, count := range c.inventory {
		if count > 0 {
			held = append(held, fmt.Sprintf("%v: %d",
				c.reg.ItemName(Item(i)), count))
		}
	}

	str := "Craft | %v | Task: %v  |  At: (%d, %d) facing %v  |  " +
		"Inventory: {%v}"
	return fmt.Sprintf(str, c.config.Name, c.task.Name(), c.position.Row,
		c.position.Col, c.facing, strings.Join(held, ", "))
}
