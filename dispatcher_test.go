package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartLoopRunsUntilEndLoop(t *testing.T) {
	s, clk := newTestScheduler(t, Config{TaskCapacity: 1, IdleHookEnabled: true})
	clk.set(0)

	iterations := 0
	s.RegisterIdle(func(current, last uint32) {
		iterations++
		if iterations >= 3 {
			s.EndLoop()
		}
	})

	s.StartLoop()
	assert.Equal(t, 3, iterations)
	assert.False(t, s.looping)
}

func TestStartLoopIsNoOpWhenAlreadyLooping(t *testing.T) {
	s, _ := newTestScheduler(t, Config{TaskCapacity: 1, IdleHookEnabled: true})

	var nestedCalls int
	s.RegisterIdle(func(current, last uint32) {
		nestedCalls++
		s.StartLoop() // re-entrant call while already looping: must be a no-op
		s.EndLoop()
	})
	s.StartLoop()
	assert.Equal(t, 1, nestedCalls)
}

func TestRegisterIdleNoOpWhenDisabled(t *testing.T) {
	s, _ := newTestScheduler(t, Config{TaskCapacity: 1})
	called := false
	s.RegisterIdle(func(current, last uint32) { called = true })
	s.RunOnce()
	assert.False(t, called, "idle hook must not fire unless IdleHookEnabled")
}

func TestIdleHookFiresWhenEnabled(t *testing.T) {
	cfg := Config{TaskCapacity: 1, IdleHookEnabled: true}
	s, clk := newTestScheduler(t, cfg)
	clk.set(5)

	var seenCurrent, seenLast uint32
	s.RegisterIdle(func(current, last uint32) {
		seenCurrent, seenLast = current, last
	})
	s.RunOnce()
	assert.EqualValues(t, 5, seenCurrent)
	assert.EqualValues(t, 0, seenLast)
}

func TestAutoSleepInvokesSleeperWhenQueueEmpty(t *testing.T) {
	cfg := Config{TaskCapacity: 2, EventCapacity: 1, AutoSleep: true}
	clk := &manualTick{}
	called := false
	s := New(cfg, WithTickSource(clk), WithLogger(noopLogger{}),
		WithSleeper(SleeperFunc(func() { called = true })))

	// Kill the reserved watcher task to empty the time queue entirely,
	// isolating the "queue empty" branch of idleOrSleep from the
	// watcher's own interval=1 deadline.
	require.True(t, s.Kill(s.watcher))
	s.RunOnce()
	assert.True(t, called)
}

func TestDelayWatcherRedispatchesDelayedEventTask(t *testing.T) {
	s, clk := newTestScheduler(t, Config{TaskCapacity: 2, EventCapacity: 1})
	ev, ok := s.CreateEvent()
	require.True(t, ok)

	invokes := 0
	delayedOnce := false
	h, ok := s.AddEventTask(func(ctx *TaskContext, value uint32, signal uint16) {
		invokes++
		if !delayedOnce {
			delayedOnce = true
			ctx.Delay(4, 0)
		}
	}, ev, 7)
	require.True(t, ok)

	clk.set(0)
	require.True(t, s.SetEvent(ev, 7, 1))
	s.RunOnce() // Phase A delivers; body requests a 4-tick delay
	assert.Equal(t, 1, invokes)
	assert.NotEqualValues(t, 0, s.tasks[h].delayUntil)

	// A second publication while still delayed must NOT re-dispatch via
	// Phase A: a non-zero delay_until gates the subscriber out.
	clk.set(2)
	require.True(t, s.SetEvent(ev, 7, 2))
	s.RunOnce()
	assert.Equal(t, 1, invokes)

	// Advance ticks until the delay-watcher's interval=1 task catches the
	// elapsed delay and redispatches it directly.
	for tick := uint32(3); tick <= 10 && invokes < 2; tick++ {
		clk.set(tick)
		s.RunOnce()
	}
	assert.Equal(t, 2, invokes)
	assert.EqualValues(t, 0, s.tasks[h].delayUntil)
}

// A redispatched event task that closes (or suspends) itself during
// the delay-watcher's invocation must not leak its CLOSE/SUSPEND bit
// back into the watcher's own pending flag word: the watcher's own
// dispatch decision has to see its own request (none), not the
// redispatched task's.
func TestDelayWatcherRedispatchSurvivesTaskCloseDuringRedispatch(t *testing.T) {
	s, clk := newTestScheduler(t, Config{TaskCapacity: 2, EventCapacity: 2})
	ev, ok := s.CreateEvent()
	require.True(t, ok)

	invokes := 0
	h, ok := s.AddEventTask(func(ctx *TaskContext, value uint32, signal uint16) {
		invokes++
		if invokes == 1 {
			ctx.Delay(4, 0)
			return
		}
		ctx.Close()
	}, ev, 7)
	require.True(t, ok)

	clk.set(0)
	require.True(t, s.SetEvent(ev, 7, 1))
	s.RunOnce()
	require.Equal(t, 1, invokes)

	for tick := uint32(1); tick <= 10 && invokes < 2; tick++ {
		clk.set(tick)
		s.RunOnce()
	}
	require.Equal(t, 2, invokes)
	assert.False(t, s.validateTask(h), "event task should have been freed by its own Close")
	require.True(t, s.validateTask(s.watcher), "delay-watcher must survive a redispatched task's Close")

	// Prove the watcher is still actually functioning, not merely
	// present: another delayed event task must still get redispatched.
	ev2, ok := s.CreateEvent()
	require.True(t, ok)
	invokes2 := 0
	_, ok = s.AddEventTask(func(ctx *TaskContext, value uint32, signal uint16) {
		invokes2++
		if invokes2 == 1 {
			ctx.Delay(2, 0)
		}
	}, ev2, 3)
	require.True(t, ok)

	clk.set(11)
	require.True(t, s.SetEvent(ev2, 3, 5))
	s.RunOnce()
	require.Equal(t, 1, invokes2)

	for tick := uint32(12); tick <= 20 && invokes2 < 2; tick++ {
		clk.set(tick)
		s.RunOnce()
	}
	assert.Equal(t, 2, invokes2)
}

// A redispatched event task that suspends itself during the delay-
// watcher's invocation must not leave the SUSPEND bit set on the
// watcher's own flag word afterward, which would have unlinked the
// watcher from the time queue with no re-insertion path.
func TestDelayWatcherRedispatchSurvivesTaskSuspendDuringRedispatch(t *testing.T) {
	s, clk := newTestScheduler(t, Config{TaskCapacity: 2, EventCapacity: 1})
	ev, ok := s.CreateEvent()
	require.True(t, ok)

	invokes := 0
	h, ok := s.AddEventTask(func(ctx *TaskContext, value uint32, signal uint16) {
		invokes++
		if invokes == 1 {
			ctx.Delay(4, 0)
			return
		}
		ctx.Suspend(0)
	}, ev, 7)
	require.True(t, ok)

	clk.set(0)
	require.True(t, s.SetEvent(ev, 7, 1))
	s.RunOnce()
	require.Equal(t, 1, invokes)

	for tick := uint32(1); tick <= 10 && invokes < 2; tick++ {
		clk.set(tick)
		s.RunOnce()
	}
	require.Equal(t, 2, invokes)
	require.True(t, s.validateTask(h))
	assert.True(t, s.tasks[h].suspend, "event task should be suspended by its own Suspend")
	assert.True(t, s.validateTask(s.watcher), "delay-watcher must survive a redispatched task's Suspend")

	// The watcher must still be scheduled in the time queue, not
	// unlinked by a leaked SUSPEND bit.
	foundWatcher := false
	for cur := s.timeHead; cur != noHandle; cur = s.tasks[cur].next {
		if cur == s.watcher {
			foundWatcher = true
			break
		}
	}
	assert.True(t, foundWatcher, "delay-watcher must remain in the time queue")
}

func TestRunOnceDrainsFireQueueBeforeTimeDispatch(t *testing.T) {
	s, clk := newTestScheduler(t, Config{TaskCapacity: 2, EventCapacity: 1})
	ev, ok := s.CreateEvent()
	require.True(t, ok)

	var order []string
	_, ok = s.AddEventTask(func(ctx *TaskContext, a uint32, b uint16) {
		order = append(order, "event")
	}, ev, 1)
	require.True(t, ok)

	clk.set(1) // watcher's deadline (interval=1) is also due this tick
	require.True(t, s.SetEvent(ev, 1, 0))
	s.RunOnce()

	require.NotEmpty(t, order)
	assert.Equal(t, "event", order[0], "Phase A precedes Phase B within a tick")
}
