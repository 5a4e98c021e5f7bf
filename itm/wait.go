package itm

// WaitFunc waits for a stimulus port FIFO to become ready. It returns true
// once ready returns true, or false to give up; a false return makes the
// pending write be dropped silently.
//
// The wait strategy is injectable so a test harness can bound the spin
// against a simulated always-full port. The production default is
// SpinForever.
type WaitFunc func(ready func() bool) bool

// SpinForever busy-waits with no timeout. This is the hardware contract: a
// permanently full FIFO (probe not draining) blocks the calling context
// indefinitely, and the only escape is external intervention.
func SpinForever(ready func() bool) bool {
	for !ready() {
	}
	return true
}

// PollLimit returns a WaitFunc that polls at most n times and gives up.
// Intended for test harnesses; using it on hardware trades the unbounded
// block for silent data loss.
func PollLimit(n int) WaitFunc {
	return func(ready func() bool) bool {
		for j := 0; j < n; j++ {
			if ready() {
				return true
			}
		}
		return false
	}
}
