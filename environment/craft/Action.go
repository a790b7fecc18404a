package craft

import "fmt"

// Action is a discrete action in the Craft environment. The integer
// encoding is stable:
//
//	Action	Meaning
//	  0		Move right
//	  1		Move left
//	  2		Move up
//	  3		Move down
//	  4		Use the cell being faced
type Action int

const (
	Right Action = iota
	Left
	Up
	Down
	Use

	// NumActions is the number of legal actions
	NumActions int = 5
)

// ParseAction converts an integer action code into an Action
func ParseAction(code int) (Action, error) {
	if code < int(Right) || code > int(Use) {
		return 0, fmt.Errorf("parseAction: %w: %d ∉ [0, %d]",
			ErrInvalidAction, code, NumActions-1)
	}
	return Action(code), nil
}

// Move returns whether the action is a movement action
func (a Action) Move() bool {
	return a >= Right && a <= Down
}

func (a Action) String() string {
	switch a {
	case Right:
		return "right"
	case Left:
		return "left"
	case Up:
		return "up"
	case Down:
		return "down"
	case Use:
		return "use"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Facing is the cardinal direction the agent currently faces. Agents
// face None from the start of an episode until their first movement
// action.
type Facing int

const (
	None Facing = iota
	FacingRight
	FacingLeft
	FacingUp
	FacingDown
)

// facings maps movement actions to the direction they face the agent
var facings = map[Action]Facing{
	Right: FacingRight,
	Left:  FacingLeft,
	Up:    FacingUp,
	Down:  FacingDown,
}

// Offset returns the row and column offset of one step in the facing
// direction
func (f Facing) Offset() (dRow, dCol int) {
	switch f {
	case FacingRight:
		return 0, 1
	case FacingLeft:
		return 0, -1
	case FacingUp:
		return -1, 0
	case FacingDown:
		return 1, 0
	}
	return 0, 0
}

func (f Facing) String() string {
	switch f {
	case FacingRight:
		return "right"
	case FacingLeft:
		return "left"
	case FacingUp:
		return "up"
	case FacingDown:
		return "down"
	}
	return "none"
}
