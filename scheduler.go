// Package scheduler implements a tiny soft-real-time cooperative
// scheduler for resource-constrained embedded devices: a single
// execution context drives a bounded set of cooperatively-scheduled
// tasks off a monotonic tick counter supplied by the host.
//
// The package exposes three task flavors (periodic, one-shot, and
// event-triggered), a lightweight publish/subscribe event facility,
// and per-task operations (yield, delay, suspend, resume, kill) usable
// both from inside a running task (via *TaskContext) and from outside
// (via methods on *Scheduler).
package scheduler

import "context"

// backgroundCtx is used by the bool-returning control-API methods
// (which keep plain bool/nil-handle return signatures) when they need
// a context.Context to emit an observability event.
var backgroundCtx = context.Background()

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithLogger sets the Logger used for diagnostics.
func WithLogger(l Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEventEmitter sets the EventEmitter used for observability events.
func WithEventEmitter(e EventEmitter) Option {
	return func(s *Scheduler) {
		s.emitter = e
	}
}

// WithTickSource sets the host-provided monotonic tick accessor. Until
// a tick source is set (here or via SetTickSource), the scheduler reads
// the current tick as 0.
func WithTickSource(t TickSource) Option {
	return func(s *Scheduler) {
		s.tick = t
	}
}

// WithSleeper sets the optional sleep hook invoked when nothing is
// runnable, AutoSleep is enabled, and no idle hook is installed.
func WithSleeper(sl Sleeper) Option {
	return func(s *Scheduler) {
		s.sleeper = sl
	}
}

// WithIdleHook registers the optional idle-hook callback.
func WithIdleHook(fn IdleHookFunc) Option {
	return func(s *Scheduler) {
		s.idleHook = fn
	}
}

// Scheduler owns the task table, time queue, event table, fire queue,
// and dispatch loop. It is a plain value (no package-level globals):
// the host constructs one with New and drives it with StartLoop/EndLoop
// or RunOnce.
type Scheduler struct {
	cfg Config

	tasks    []taskSlot
	timeHead Handle

	events    []eventRecord
	fireQueue []Handle
	fqLen     int

	currentExec Handle
	flag        taskFlag

	looping      bool
	lastIdleTick uint32

	watcher Handle // noHandle when events are disabled

	tick     TickSource
	sleeper  Sleeper
	idleHook IdleHookFunc

	logger  Logger
	emitter EventEmitter
}

// New constructs a Scheduler from cfg, applying opts. It panics if cfg
// fails Validate: capacity misconfiguration is a programmer error
// discovered at construction, not a runtime condition the bool-based
// control API needs to report.
func New(cfg Config, opts ...Option) *Scheduler {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	fqCap := cfg.FireQueueCapacity
	if fqCap == 0 {
		fqCap = cfg.EventCapacity
	}

	s := &Scheduler{
		cfg:         cfg,
		tasks:       make([]taskSlot, cfg.TaskCapacity),
		timeHead:    noHandle,
		events:      make([]eventRecord, cfg.EventCapacity),
		fireQueue:   make([]Handle, fqCap),
		currentExec: noHandle,
		watcher:     noHandle,
	}
	for i := range s.tasks {
		s.tasks[i].index = Handle(i)
		s.tasks[i].next = noHandle
		s.tasks[i].eventRef = noHandle
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	if !cfg.IdleHookEnabled {
		s.idleHook = nil
	}

	if cfg.EventsEnabled() {
		h, ok := s.allocateTask(Periodic, s.watchDelayedEventTasks)
		if !ok {
			panic("scheduler: task capacity too small to reserve the delay-watcher slot")
		}
		s.watcher = h
		s.tasks[h].interval = 1
		s.tasks[h].nextRunTime = s.now() + 1
		s.insertTimeQueue(h)
	}

	return s
}

// now reads the configured tick source, defaulting to 0 if none was
// supplied (a scheduler with no tick source can still be used to build
// and inspect tasks/events before a host wires one in).
func (s *Scheduler) now() uint32 {
	if s.tick == nil {
		return 0
	}
	return s.tick.Now()
}

// SetTickSource installs the host's tick accessor after construction.
func (s *Scheduler) SetTickSource(t TickSource) { s.tick = t }

// RegisterIdle installs the optional idle-hook callback. A no-op when
// the construction-time IdleHookEnabled toggle is off, matching the
// build-time feature gating a resource-constrained host would apply
// to this path.
func (s *Scheduler) RegisterIdle(fn IdleHookFunc) {
	if !s.cfg.IdleHookEnabled {
		s.logger.Debug("scheduler: register idle rejected", "reason", "idle_hook_disabled")
		return
	}
	s.idleHook = fn
}

// AddPeriodic creates a new periodic task, invoked every interval ticks
// starting interval ticks from now. Returns (noHandle, false) when the
// task table is full.
func (s *Scheduler) AddPeriodic(body TaskFunc, interval uint32) (Handle, bool) {
	h, ok := s.allocateTask(Periodic, body)
	if !ok {
		s.logger.Debug("scheduler: add periodic rejected", "reason", string(reasonFull))
		return noHandle, false
	}
	s.tasks[h].interval = interval
	s.tasks[h].nextRunTime = s.now() + interval
	s.insertTimeQueue(h)
	s.emitEventCtx(EventTypeTaskCreated, map[string]interface{}{"task": int(h), "kind": "periodic"})
	return h, true
}

// AddOneShot creates a new one-shot task, invoked once interval ticks
// from now.
func (s *Scheduler) AddOneShot(body TaskFunc, interval uint32) (Handle, bool) {
	h, ok := s.allocateTask(OneShot, body)
	if !ok {
		s.logger.Debug("scheduler: add oneshot rejected", "reason", string(reasonFull))
		return noHandle, false
	}
	s.tasks[h].nextRunTime = s.now() + interval
	s.insertTimeQueue(h)
	s.emitEventCtx(EventTypeTaskCreated, map[string]interface{}{"task": int(h), "kind": "oneshot"})
	return h, true
}

// AddEventTask subscribes body to event, listening for signal (which
// must be nonzero). Returns (noHandle, false) for an invalid event
// handle, a zero signal, or a full task table.
func (s *Scheduler) AddEventTask(body TaskFunc, event Handle, signal uint16) (Handle, bool) {
	if signal == 0 || !s.validateEvent(event) {
		return noHandle, false
	}
	h, ok := s.allocateTask(Event, body)
	if !ok {
		s.logger.Debug("scheduler: add event task rejected", "reason", string(reasonFull))
		return noHandle, false
	}
	s.tasks[h].eventRef = event
	s.tasks[h].signal = signal
	s.subscribeEvent(event, h)
	s.emitEventCtx(EventTypeTaskCreated, map[string]interface{}{"task": int(h), "kind": "event", "event": int(event)})
	return h, true
}
