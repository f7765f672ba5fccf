package scheduler

// taskSlot is one entry of the fixed-capacity task table. Go has no
// tagged unions, so the kind-specific payload fields below simply sit
// unused for the inactive kind.
type taskSlot struct {
	index     Handle   // stable, written once at table initialization
	kind      TaskKind
	body      TaskFunc // nil marks the slot free
	next      Handle   // next node in whatever list this slot belongs to, or noHandle
	execState uint16   // continuation state carried across invocations

	// Periodic / OneShot payload.
	interval    uint32
	nextRunTime uint32
	count       uint32 // Periodic only

	// Event payload.
	eventRef   Handle // index into the event table, or noHandle
	signal     uint16 // signal this task listens for
	suspend    bool
	delayUntil uint32 // 0 = not delayed
}

func (t *taskSlot) free() bool { return t.body == nil }

// clear resets a slot to the free state: body=nil, next=noHandle,
// payload zeroed. index is never touched: it is invariant for the
// lifetime of the table.
func (t *taskSlot) clear() {
	t.kind = Periodic
	t.body = nil
	t.next = noHandle
	t.execState = 0
	t.interval = 0
	t.nextRunTime = 0
	t.count = 0
	t.eventRef = noHandle
	t.signal = 0
	t.suspend = false
	t.delayUntil = 0
}

// allocateTask scans the task table for a free slot and installs a body of
// the given kind. Scan direction is not part of the observable
// contract; this implementation scans front-to-back.
func (s *Scheduler) allocateTask(kind TaskKind, body TaskFunc) (Handle, bool) {
	for i := range s.tasks {
		if s.tasks[i].free() {
			s.tasks[i].clear()
			s.tasks[i].kind = kind
			s.tasks[i].body = body
			return s.tasks[i].index, true
		}
	}
	return noHandle, false
}

// freeTask returns a slot to the free state.
func (s *Scheduler) freeTask(h Handle) {
	s.tasks[h].clear()
}

// validateTask rejects a null handle, an out-of-range handle, or a
// handle whose slot has no body installed.
func (s *Scheduler) validateTask(h Handle) bool {
	if h == noHandle {
		return false
	}
	if int(h) >= len(s.tasks) {
		return false
	}
	return s.tasks[h].body != nil
}
