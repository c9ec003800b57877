package particles

import "errors"

var (
	// ErrInvalidCapacity is returned when a pool is requested with no slots.
	ErrInvalidCapacity = errors.New("particles: invalid pool capacity")

	// ErrNotInitialized is returned by Manager methods called before a
	// successful Initialize or after Shutdown.
	ErrNotInitialized = errors.New("particles: manager not initialized")

	// ErrUploadFailed marks a failed instance buffer update. Devices wrap
	// their own errors with it.
	ErrUploadFailed = errors.New("particles: instance upload failed")
)
