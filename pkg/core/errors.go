// pkg/core/errors.go
package core

import "errors"

// Error kinds returned by session operations. Callers match them with errors.Is.
var (
	// ErrSessionUninitialized is returned by every operation other than a load
	// until a preset has been loaded.
	ErrSessionUninitialized = errors.New("session uninitialized: load a preset first")

	// ErrInvalidTelemetry means a snapshot was missing a field or carried a
	// value of the wrong shape. Nothing was applied.
	ErrInvalidTelemetry = errors.New("invalid telemetry")

	// ErrUnknownShapeType means the collision shape discriminant was not
	// box, sphere or cylinder.
	ErrUnknownShapeType = errors.New("unknown collision shape type")

	// ErrSessionPoisoned means an earlier operation faulted while holding
	// exclusive access. Only a fresh load clears it.
	ErrSessionPoisoned = errors.New("session poisoned: reload a preset")
)
