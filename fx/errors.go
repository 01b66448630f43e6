package fx

import "errors"

var (
	// ErrInvalidConfig is returned when an effect is configured with values
	// that cannot be resolved, e.g. a delta on a colour property.
	ErrInvalidConfig = errors.New("fx: invalid configuration")

	// ErrTargetType is returned when a target does not expose the property or
	// geometry an effect needs.
	ErrTargetType = errors.New("fx: unsupported target")

	// ErrAlreadyStarted is returned by Start on an animation that has already
	// been started. Animations are not restartable.
	ErrAlreadyStarted = errors.New("fx: animation already started")
)
