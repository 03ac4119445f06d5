package scheduler

import "time"

// NextAlignedTime returns the next wall-clock instant aligned to the given
// interval, at or after now. Alignment keeps a fleet of replicas firing at
// the same instants, so the advisory lock decides one winner per tick
// instead of each replica running on its own phase.
func NextAlignedTime(now time.Time, interval time.Duration) time.Time {
	t := now.Truncate(interval)
	if !t.Before(now) {
		return t
	}
	return t.Add(interval)
}
