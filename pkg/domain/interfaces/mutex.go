package interfaces

import "context"

// AdvisoryMutex is a named, fleet-wide, non-blocking mutual exclusion
// primitive backed by the shared store. It is used purely for coordination
// and is not tied to any particular record. Failing to acquire is not an
// error: it means another replica holds the lock.
type AdvisoryMutex interface {
	// TryLock attempts a non-blocking acquisition of the named lock.
	// Returns true if acquired, false if another holder has it.
	TryLock(ctx context.Context, key string) (bool, error)

	// Unlock releases the named lock held by this instance
	Unlock(ctx context.Context, key string) error
}
