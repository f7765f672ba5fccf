package scheduler

// TickSource supplies the monotonic 32-bit tick counter that drives
// every scheduling decision. Implementations must treat wrap-around as
// tolerated: comparisons are done with unsigned semantics (Go's native
// uint32 comparison already gives this), and are strictly correct only
// within half the counter's range of active deadlines.
type TickSource interface {
	Now() uint32
}

// Sleeper is invoked when nothing is runnable in a dispatcher iteration
// (the time queue is empty or its head deadline hasn't arrived yet),
// AutoSleep is enabled, and no idle hook is installed. Optional: a nil
// Sleeper simply means the dispatcher does nothing extra in that case.
type Sleeper interface {
	Sleep()
}

// IdleHookFunc is invoked once per dispatcher iteration when nothing is
// runnable: the time queue is empty or its head deadline hasn't arrived
// yet. When an idle hook is installed it is called instead of the
// Sleeper.
type IdleHookFunc func(currentTick, lastIdleTick uint32)

// tickSourceFunc adapts a plain function to TickSource, for hosts and
// tests that only need a closure rather than a named type.
type tickSourceFunc func() uint32

func (f tickSourceFunc) Now() uint32 { return f() }

// TickSourceFunc adapts a func() uint32 into a TickSource.
func TickSourceFunc(f func() uint32) TickSource {
	return tickSourceFunc(f)
}

// sleeperFunc adapts a plain function to Sleeper.
type sleeperFunc func()

func (f sleeperFunc) Sleep() { f() }

// SleeperFunc adapts a func() into a Sleeper.
func SleeperFunc(f func()) Sleeper {
	return sleeperFunc(f)
}
