package craft

import "fmt"

const (
	// SuccessReward is the reward for completing a task
	SuccessReward float64 = 1.0

	// StepReward is the reward for every other transition
	StepReward float64 = 0.0
)

// Task determines the reward and termination of each transition in a
// Craft environment. Tasks see only observations, so new tasks can be
// added without changing the transition rules.
type Task interface {
	// Name returns the name the task is selected by
	Name() string

	// GetReward returns the reward for the transition from state to
	// next
	GetReward(state, next Observation) float64

	// AtGoal returns whether the task is complete in the argument state
	AtGoal(state Observation) bool

	// Min and Max return the bounds on the reward of a single
	// transition
	Min() float64
	Max() float64
}

// Collect is a Task which is completed once the inventory holds at
// least Target of some item. The single success reward is given on the
// transition which first reaches the target.
type Collect struct {
	name   string
	item   Item
	label  string
	target int
}

// NewCollect returns a new Collect task
func NewCollect(name string, item Item, label string, target int) *Collect {
	if target < 1 {
		panic(fmt.Sprintf("newCollect: target must be positive, have %d",
			target))
	}
	return &Collect{name, item, label, target}
}

// Name returns the name of the task
func (c *Collect) Name() string {
	return c.name
}

// GetReward returns SuccessReward if the transition first reaches the
// target count, and StepReward otherwise
func (c *Collect) GetReward(state, next Observation) float64 {
	if !c.AtGoal(state) && c.AtGoal(next) {
		return SuccessReward
	}
	return StepReward
}

// AtGoal returns whether the target count has been reached
func (c *Collect) AtGoal(state Observation) bool {
	return state.Count(c.item) >= c.target
}

// Min returns the minimum possible reward
func (c *Collect) Min() float64 {
	return StepReward
}

// Max returns the maximum possible reward
func (c *Collect) Max() float64 {
	return SuccessReward
}

// Target returns the item and count which complete the task
func (c *Collect) Target() (Item, int) {
	return c.item, c.target
}

func (c *Collect) String() string {
	return fmt.Sprintf("Collect | %v: %d %v", c.name, c.target, c.label)
}

// NewTasks creates the tasks of a Config, keyed by name
func NewTasks(c Config, reg *Registry) (map[string]Task, error) {
	tasks := make(map[string]Task, len(c.Tasks))
	for _, tc := range c.Tasks {
		item, ok := reg.ItemByName(tc.Item)
		if !ok {
			return nil, fmt.Errorf("newTasks: task %q: unknown item %q",
				tc.Name, tc.Item)
		}
		tasks[tc.Name] = NewCollect(tc.Name, item, tc.Item, tc.Target)
	}
	return tasks, nil
}
