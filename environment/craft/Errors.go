package craft

import "errors"

var (
	// ErrInvalidAction is returned when an action code is not one of
	// the actions defined in this package
	ErrInvalidAction = errors.New("invalid action")

	// ErrNotInitialized is returned when stepping an environment that
	// has never been reset
	ErrNotInitialized = errors.New("environment not initialized")

	// ErrPlacementInfeasible is returned when a configuration asks for
	// more placements than the grid can hold
	ErrPlacementInfeasible = errors.New("placement infeasible")

	// ErrUnknownTask is returned when resetting with a task that was
	// not configured
	ErrUnknownTask = errors.New("unknown task")
)
