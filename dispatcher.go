package scheduler

// StartLoop begins the dispatch loop. If already looping, it returns
// immediately. The loop runs RunOnce repeatedly until EndLoop clears
// the looping flag.
func (s *Scheduler) StartLoop() {
	if s.looping {
		s.logger.Debug("scheduler: start loop rejected", "error", ErrAlreadyLooping)
		return
	}
	s.looping = true
	s.lastIdleTick = s.now()
	s.emitEventCtx(EventTypeLoopStarted, nil)
	for s.looping {
		s.RunOnce()
	}
}

// EndLoop stops the dispatch loop after the current iteration.
func (s *Scheduler) EndLoop() {
	if !s.looping {
		return
	}
	s.looping = false
	s.emitEventCtx(EventTypeLoopStopped, nil)
}

// RunOnce performs a single dispatcher iteration: Phase A (event
// delivery), then Phase B (time dispatch). Hosts that want to drive the
// scheduler without a blocking loop (e.g. from their own main loop, or
// in tests) call this directly.
func (s *Scheduler) RunOnce() {
	s.runPhaseA()
	s.runPhaseB()
}

// runPhaseA walks the fire queue from index 0 until the queue is
// exhausted, delivering each listed event's current publication to
// every matching, non-suspended, non-delayed subscriber.
func (s *Scheduler) runPhaseA() {
	for i := 0; i < s.fqLen; i++ {
		e := s.fireQueue[i]
		s.deliverEvent(e)
	}
	s.truncateFireQueue()
}

func (s *Scheduler) deliverEvent(e Handle) {
	evt := &s.events[e]
	ci := evt.subHead
	for ci != noHandle {
		t := &s.tasks[ci]
		next := t.next
		if !t.suspend && t.delayUntil == 0 && t.signal == evt.signal {
			s.invokeEventTask(ci, evt.value, evt.signal)
			// invokeEventTask may have unlinked ci (on CLOSE); the
			// chain cursor must already have been advanced before
			// that happens.
			s.emitEventCtx(EventTypeEventDelivered, map[string]interface{}{"event": int(e), "task": int(ci), "signal": evt.signal})
		}
		ci = next
	}
	evt.signal = 0
}

// invokeEventTask runs one event task's body and applies its deferred
// self-request. ci.next has already been captured by the caller before
// this runs, so unlinking ci here (on CLOSE) cannot corrupt the
// delivery walk's cursor.
func (s *Scheduler) invokeEventTask(h Handle, value uint32, signal uint16) {
	prevExec := s.currentExec
	prevFlag := s.flag
	s.currentExec = h
	s.flag = 0
	s.tasks[h].delayUntil = 0
	s.tasks[h].body(&TaskContext{s: s, self: h}, value, signal)
	flag := s.flag
	s.currentExec = prevExec
	s.flag = prevFlag

	switch {
	case flag.has(flagClose):
		s.unlinkEventTask(h)
	case flag.has(flagSuspend):
		s.tasks[h].suspend = true
	case flag.has(flagDelay):
		s.tasks[h].delayUntil = s.now() + uint32(flag.delayTicks())
	}
}

// runPhaseB services the time queue head if its deadline has arrived;
// otherwise invokes the idle hook or sleep hook.
func (s *Scheduler) runPhaseB() {
	if s.timeHead == noHandle {
		s.idleOrSleep()
		return
	}
	head := s.timeHead
	if s.now() < s.tasks[head].nextRunTime {
		s.idleOrSleep()
		return
	}

	s.timeHead = s.tasks[head].next
	s.currentExec = head
	s.flag = 0

	switch s.tasks[head].kind {
	case Periodic:
		s.dispatchPeriodic(head)
	case OneShot:
		s.dispatchOneShot(head)
	}
	s.currentExec = noHandle
}

func (s *Scheduler) dispatchPeriodic(h Handle) {
	t := &s.tasks[h]
	t.body(&TaskContext{s: s, self: h}, t.count, t.execState)
	flag := s.flag

	switch {
	case flag.has(flagClose):
		s.freeTask(h)
		return
	case flag.has(flagSuspend):
		// Leave allocated but outside any list; execState preserved.
		t.next = noHandle
		return
	case flag.has(flagDelay):
		t.nextRunTime += uint32(flag.delayTicks())
	default:
		t.count++
		t.nextRunTime += t.interval
		t.execState = 0
	}
	s.insertTimeQueue(h)
}

func (s *Scheduler) dispatchOneShot(h Handle) {
	t := &s.tasks[h]
	t.body(&TaskContext{s: s, self: h}, 0, t.execState)
	flag := s.flag

	if flag.has(flagDelay) && !flag.has(flagClose) {
		t.nextRunTime += uint32(flag.delayTicks())
		s.insertTimeQueue(h)
		return
	}
	// CLOSE, SUSPEND, or no request: a one-shot task is freed either way.
	s.freeTask(h)
}

func (s *Scheduler) idleOrSleep() {
	now := s.now()
	if s.idleHook != nil {
		s.idleHook(now, s.lastIdleTick)
		s.lastIdleTick = now
		return
	}
	if s.cfg.AutoSleep && s.sleeper != nil {
		s.sleeper.Sleep()
	}
}
