package craft

import (
	"errors"
	"testing"

	env "github.com/samuelfneumann/craft2d/environment"
	ts "github.com/samuelfneumann/craft2d/timestep"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

var _ env.Environment = (*Craft)(nil)

// newFixed returns an environment reset on task with a fixed layout
func newFixed(t *testing.T, c Config, layout map[Position]string,
	task string) *Craft {
	t.Helper()

	e, err := New(c, 0.99, rand.NewSource(1))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	start, err := NewFixedStart(c, e.Registry(), layout)
	if err != nil {
		t.Fatalf("newFixedStart: %v", err)
	}
	e.SetStarter(start)

	if _, err := e.ResetTask(task); err != nil {
		t.Fatalf("resetTask: %v", err)
	}
	return e
}

// act takes the argument actions, failing the test on any error
func act(t *testing.T, e *Craft, actions ...Action) (ts.TimeStep, bool) {
	t.Helper()

	var (
		step ts.TimeStep
		last bool
		err  error
	)
	for _, a := range actions {
		step, last, err = e.Act(a)
		if err != nil {
			t.Fatalf("act %v: %v", a, err)
		}
	}
	return step, last
}

func mustItem(t *testing.T, e *Craft, name string) Item {
	t.Helper()
	i, ok := e.Registry().ItemByName(name)
	if !ok {
		t.Fatalf("no item %q", name)
	}
	return i
}

func mustKind(t *testing.T, e *Craft, name string) Kind {
	t.Helper()
	k, ok := e.Registry().KindByName(name)
	if !ok {
		t.Fatalf("no kind %q", name)
	}
	return k
}

func TestGetWoodScenario(t *testing.T) {
	e := newFixed(t, BasicConfig(), map[Position]string{{3, 3}: "tree"},
		"get-wood")

	obs := e.Observe()
	if obs.Position != (Position{0, 0}) || obs.Facing != None {
		t.Errorf("reset: want (0, 0) facing none, have %v facing %v",
			obs.Position, obs.Facing)
	}

	actions := []Action{Down, Down, Down, Right, Right, Right}
	for i, a := range actions {
		step, last, err := e.Act(a)
		if err != nil {
			t.Fatalf("act %v: %v", a, err)
		}
		if last || step.Reward != StepReward {
			t.Errorf("step %d: want reward %v and not last, have %v and %v",
				i, StepReward, step.Reward, last)
		}
		if step.Number != i+1 {
			t.Errorf("step %d: want number %d, have %d", i, i+1, step.Number)
		}
	}

	step, last := act(t, e, Use)
	obs = e.Observe()

	if obs.Position != (Position{3, 2}) {
		t.Errorf("position: want (3, 2), have %v", obs.Position)
	}
	if obs.Facing != FacingRight {
		t.Errorf("facing: want right, have %v", obs.Facing)
	}
	if k := obs.At(Position{3, 3}); k != NoKind {
		t.Errorf("tree cell: want empty, have %v", e.Registry().KindName(k))
	}
	if wood := obs.Count(mustItem(t, e, "wood")); wood != 1 {
		t.Errorf("wood: want 1, have %d", wood)
	}
	if !last || step.Reward != SuccessReward {
		t.Errorf("use: want reward %v and last, have %v and %v",
			SuccessReward, step.Reward, last)
	}
	if end := step.EndType(); end != ts.TerminalStateReached {
		t.Errorf("end type: want %v, have %v", ts.TerminalStateReached, end)
	}
}

func TestMoveAtBoundary(t *testing.T) {
	e := newFixed(t, BasicConfig(), nil, "get-wood")

	for i := 0; i < 3; i++ {
		act(t, e, Up)
		obs := e.Observe()
		if obs.Position != (Position{0, 0}) {
			t.Errorf("up %d: want (0, 0), have %v", i, obs.Position)
		}
		if obs.Facing != FacingUp {
			t.Errorf("up %d: want facing up, have %v", i, obs.Facing)
		}
	}

	act(t, e, Left)
	obs := e.Observe()
	if obs.Position != (Position{0, 0}) || obs.Facing != FacingLeft {
		t.Errorf("left: want (0, 0) facing left, have %v facing %v",
			obs.Position, obs.Facing)
	}

	for i := 0; i < 20; i++ {
		act(t, e, Down)
	}
	obs = e.Observe()
	if obs.Position != (Position{DefaultRows - 1, 0}) {
		t.Errorf("down: want (%d, 0), have %v", DefaultRows-1, obs.Position)
	}
}

func TestMoveBlocked(t *testing.T) {
	e := newFixed(t, TableConfig(),
		map[Position]string{{0, 1}: "crafting-table"}, "make-sticks")

	act(t, e, Right)
	obs := e.Observe()
	if obs.Position != (Position{0, 0}) {
		t.Errorf("want blocked at (0, 0), have %v", obs.Position)
	}
	if obs.Facing != FacingRight {
		t.Errorf("want facing right after blocked move, have %v", obs.Facing)
	}
}

func TestHarvestOneShot(t *testing.T) {
	e := newFixed(t, BasicConfig(), map[Position]string{{0, 1}: "stone"},
		"get-wood")
	stone := mustItem(t, e, "stone")

	act(t, e, Right, Use)
	obs := e.Observe()
	if obs.Count(stone) != 1 {
		t.Errorf("harvest: want 1 stone, have %d", obs.Count(stone))
	}
	if !obs.Occupied(Position{0, 1}, NoKind) {
		t.Errorf("harvest: want cell cleared")
	}
	for i, count := range obs.Inventory {
		if Item(i) != stone && count != 0 {
			t.Errorf("harvest: item %v changed to %d",
				e.Registry().ItemName(Item(i)), count)
		}
	}

	before := e.Observe().Key()
	act(t, e, Use)
	if after := e.Observe().Key(); after != before {
		t.Errorf("second use: want no-op")
	}
}

func TestUseWithoutFacing(t *testing.T) {
	e := newFixed(t, BasicConfig(), map[Position]string{{0, 1}: "tree"},
		"get-wood")

	before := e.Observe().Key()
	step, last := act(t, e, Use)
	if e.Observe().Key() != before {
		t.Errorf("use before facing: want no-op")
	}
	if last || step.Reward != StepReward {
		t.Errorf("use before facing: want no reward")
	}
}

func TestUseAtBoundary(t *testing.T) {
	e := newFixed(t, BasicConfig(), map[Position]string{{1, 0}: "tree"},
		"get-wood")

	// Facing up at row 0, the interaction cell is the agent's own
	act(t, e, Up, Use)
	if wood := e.Observe().Count(mustItem(t, e, "wood")); wood != 0 {
		t.Errorf("use at boundary: want 0 wood, have %d", wood)
	}

	_, last := act(t, e, Down, Use)
	if !last {
		t.Errorf("use facing tree: want task complete")
	}
}

func TestRecipePriority(t *testing.T) {
	e := newFixed(t, IslandConfig(),
		map[Position]string{{0, 1}: "crafting-table"}, "make-advanced-weapon")

	for _, name := range []string{"weapon-basic", "gem", "sticks", "stone",
		"wood", "grass"} {
		e.inventory[mustItem(t, e, name)] = 1
	}

	act(t, e, Right, Use)
	want := map[string]int{
		"weapon-advanced": 1, "weapon-basic": 0, "gem": 0, "sticks": 1,
		"stone": 1, "wood": 1, "grass": 1, "rope": 0, "bridge": 0,
	}
	checkInventory(t, e, "weapon-advanced", want)

	act(t, e, Use)
	want["weapon-basic"], want["sticks"], want["stone"] = 1, 0, 0
	checkInventory(t, e, "weapon-basic", want)

	act(t, e, Use)
	want["rope"], want["grass"] = 1, 0
	checkInventory(t, e, "rope", want)

	act(t, e, Use)
	want["bridge"], want["rope"], want["wood"] = 1, 0, 0
	checkInventory(t, e, "bridge", want)

	// Nothing left to craft
	before := e.Observe().Key()
	act(t, e, Use)
	if e.Observe().Key() != before {
		t.Errorf("use without ingredients: want no-op")
	}
}

func checkInventory(t *testing.T, e *Craft, recipe string,
	want map[string]int) {
	t.Helper()
	for name, count := range want {
		if have := e.inventory[mustItem(t, e, name)]; have != count {
			t.Errorf("%v: %v: want %d, have %d", recipe, name, count, have)
		}
	}
}

func TestBridgePermanence(t *testing.T) {
	e := newFixed(t, IslandConfig(), map[Position]string{
		{0, 1}: "water",
		{0, 2}: "gem",
		{1, 1}: "water",
	}, "get-gem")
	water, bridge := mustKind(t, e, "water"), mustKind(t, e, "bridge")

	// Without a bridge item, water blocks and cannot be crossed
	act(t, e, Right, Use)
	if !e.Observe().Occupied(Position{0, 1}, water) {
		t.Fatalf("use without bridge: want water")
	}
	if e.Observe().Position != (Position{0, 0}) {
		t.Fatalf("water: want blocked")
	}

	e.inventory[mustItem(t, e, "bridge")] = 1
	act(t, e, Use)
	obs := e.Observe()
	if !obs.Occupied(Position{0, 1}, bridge) {
		t.Fatalf("use with bridge: want bridge, have %v",
			e.Registry().KindName(obs.At(Position{0, 1})))
	}
	if n := obs.Count(mustItem(t, e, "bridge")); n != 0 {
		t.Errorf("use with bridge: want 0 bridges held, have %d", n)
	}

	for i := 0; i < 5; i++ {
		act(t, e, Right)
		if p := e.Observe().Position; p != (Position{0, 1}) {
			t.Fatalf("crossing %d: want (0, 1), have %v", i, p)
		}
		act(t, e, Left)
		if p := e.Observe().Position; p != (Position{0, 0}) {
			t.Fatalf("returning %d: want (0, 0), have %v", i, p)
		}
		if !e.Observe().Occupied(Position{0, 1}, bridge) {
			t.Fatalf("crossing %d: bridge reverted", i)
		}
	}

	// Other water is still impassable
	act(t, e, Right, Down)
	if p := e.Observe().Position; p != (Position{0, 1}) {
		t.Errorf("down onto water: want (0, 1), have %v", p)
	}

	step, last := act(t, e, Right, Use)
	if !last || step.Reward != SuccessReward {
		t.Errorf("gem: want task complete from the bridge")
	}
}

func TestBoundsAndExclusivity(t *testing.T) {
	e, err := New(IslandConfig(), 1.0, rand.NewSource(11))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := e.ResetTask("make-advanced-weapon"); err != nil {
		t.Fatalf("resetTask: %v", err)
	}

	rng := rand.New(rand.NewSource(3))
	kinds := e.Registry().NumKinds()
	for i := 0; i < 5000; i++ {
		step, _, err := e.Step(mat.NewVecDense(1,
			[]float64{float64(rng.Intn(NumActions))}))
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}

		obs := e.Observe()
		p := obs.Position
		if p.Row < 0 || p.Row >= obs.Rows || p.Col < 0 || p.Col >= obs.Cols {
			t.Fatalf("step %d: position %v out of bounds", i, p)
		}

		// Each cell of the one-hot tensor has at most one kind
		vec := step.Observation
		for cell := 0; cell < obs.Rows*obs.Cols; cell++ {
			sum := 0.0
			for k := 0; k < kinds; k++ {
				sum += vec.AtVec(cell*kinds + k)
			}
			if sum > 1 {
				t.Fatalf("step %d: cell %d holds %v kinds", i, cell, sum)
			}
		}

		for j, count := range obs.Inventory {
			if count < 0 {
				t.Fatalf("step %d: item %d count %d", i, j, count)
			}
		}
	}
}

func TestStepBeforeReset(t *testing.T) {
	e, err := New(BasicConfig(), 0.99, rand.NewSource(1))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	_, _, err = e.Step(mat.NewVecDense(1, []float64{0}))
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("step: want %v, have %v", ErrNotInitialized, err)
	}
	_, _, err = e.Act(Use)
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("act: want %v, have %v", ErrNotInitialized, err)
	}
}

func TestInvalidAction(t *testing.T) {
	e := newFixed(t, BasicConfig(), nil, "get-wood")

	tests := map[string]*mat.VecDense{
		"too large":     mat.NewVecDense(1, []float64{5}),
		"negative":      mat.NewVecDense(1, []float64{-1}),
		"fractional":    mat.NewVecDense(1, []float64{1.5}),
		"2-dimensional": mat.NewVecDense(2, []float64{0, 1}),
		"nil":           nil,
	}
	for name, action := range tests {
		t.Run(name, func(t *testing.T) {
			before := e.CurrentTimeStep()
			_, _, err := e.Step(action)
			if !errors.Is(err, ErrInvalidAction) {
				t.Errorf("want %v, have %v", ErrInvalidAction, err)
			}
			if e.CurrentTimeStep().Number != before.Number {
				t.Errorf("invalid action changed the step number")
			}
		})
	}
}

func TestUnknownTask(t *testing.T) {
	e, err := New(BasicConfig(), 0.99, rand.NewSource(1))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := e.ResetTask("make-weapon"); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("want %v, have %v", ErrUnknownTask, err)
	}
	if e.Initialized() {
		t.Errorf("failed reset initialized the environment")
	}
}

func TestSetTask(t *testing.T) {
	e := newFixed(t, TableConfig(), map[Position]string{{0, 1}: "tree"},
		"get-wood")
	act(t, e, Right)

	if err := e.SetTask("make-sticks"); err != nil {
		t.Fatalf("setTask: %v", err)
	}
	if n := e.CurrentTimeStep().Number; n != 1 {
		t.Errorf("setTask: changed the current episode, step %d", n)
	}

	// Later steps of the episode are scored by the new task
	step, last := act(t, e, Use)
	if last || step.Reward != StepReward {
		t.Errorf("use: harvesting wood completed make-sticks")
	}

	if err := e.SetTask("get-gem"); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("setTask: want %v, have %v", ErrUnknownTask, err)
	}
	if name := e.Task().Name(); name != "make-sticks" {
		t.Errorf("task: want make-sticks, have %v", name)
	}

	step, err := e.Reset()
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !step.First() || e.Task().Name() != "make-sticks" {
		t.Errorf("reset: want the first step of make-sticks")
	}
}

func TestResetDefaultsToFirstTask(t *testing.T) {
	e, err := New(TableConfig(), 0.99, rand.NewSource(1))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	step, err := e.Reset()
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !step.First() || step.Number != 0 {
		t.Errorf("reset: want first step 0, have %v step %d", step.StepType,
			step.Number)
	}
	if name := e.Task().Name(); name != "get-wood" {
		t.Errorf("task: want get-wood, have %v", name)
	}

	if _, err := e.ResetTask("make-rope"); err != nil {
		t.Fatalf("resetTask: %v", err)
	}
	if _, err := e.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if name := e.Task().Name(); name != "make-rope" {
		t.Errorf("task after reset: want make-rope, have %v", name)
	}
}

func TestResetDiscardsState(t *testing.T) {
	e := newFixed(t, BasicConfig(), map[Position]string{{0, 1}: "tree"},
		"get-stone")
	act(t, e, Right, Use, Down, Down)

	if _, err := e.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	obs := e.Observe()
	if obs.Position != (Position{0, 0}) || obs.Facing != None {
		t.Errorf("reset: want (0, 0) facing none, have %v facing %v",
			obs.Position, obs.Facing)
	}
	for i, count := range obs.Inventory {
		if count != 0 {
			t.Errorf("reset: item %d count %d", i, count)
		}
	}
	if obs.At(Position{0, 1}) != mustKind(t, e, "tree") {
		t.Errorf("reset: want tree restored")
	}
	if n := e.CurrentTimeStep().Number; n != 0 {
		t.Errorf("reset: want step 0, have %d", n)
	}
}

func TestObservationIsCopy(t *testing.T) {
	e := newFixed(t, BasicConfig(), map[Position]string{{0, 1}: "tree"},
		"get-wood")

	obs := e.Observe()
	obs.Cells[1] = NoKind
	obs.Inventory[0] = 10
	obs.Position = Position{5, 5}

	fresh := e.Observe()
	if fresh.At(Position{0, 1}) == NoKind || fresh.Inventory[0] != 0 ||
		fresh.Position != (Position{0, 0}) {
		t.Errorf("mutating an observation changed the environment")
	}
}

func TestObservationVec(t *testing.T) {
	e := newFixed(t, BasicConfig(), map[Position]string{{0, 1}: "tree"},
		"get-stone")
	act(t, e, Down, Up, Right)

	obs := e.Observe()
	vec := obs.Vec()
	spec := e.ObservationSpec()
	if vec.Len() != spec.Shape.Len() {
		t.Fatalf("vec: want length %d, have %d", spec.Shape.Len(), vec.Len())
	}

	kinds := e.Registry().NumKinds()
	tree := mustKind(t, e, "tree")
	if v := vec.AtVec(1*kinds + int(tree)); v != 1 {
		t.Errorf("vec: want tree at (0, 1), have %v", v)
	}

	n := vec.Len()
	if r, c, f := vec.AtVec(n-3), vec.AtVec(n-2), vec.AtVec(n-1); r != 0 ||
		c != 0 || f != float64(FacingRight) {
		t.Errorf("vec: want (0, 0, right), have (%v, %v, %v)", r, c, f)
	}

	if err := spec.Contains(vec); err != nil {
		t.Errorf("vec: %v", err)
	}
	if err := e.ActionSpec().Contains(mat.NewVecDense(1, []float64{5})); err == nil {
		t.Errorf("contains: want action 5 out of bounds")
	}

	if !mat.Equal(vec, e.CurrentTimeStep().Observation) {
		t.Errorf("vec: want the current timestep observation")
	}
}

func TestActionSpec(t *testing.T) {
	e := newFixed(t, BasicConfig(), nil, "get-wood")

	n, err := e.ActionSpec().NumActions()
	if err != nil {
		t.Fatalf("numActions: %v", err)
	}
	if n != NumActions {
		t.Errorf("numActions: want %d, have %d", NumActions, n)
	}
}
