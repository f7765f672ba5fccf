package scheduler

// watchDelayedEventTasks is the reserved periodic task that re-dispatches
// delayed event tasks. Delivery only triggers on fresh publications, so
// an event task that requested a delay cannot be re-dispatched by some
// future publication's delivery (its delay_until gates it out). This
// single interval=1 task scans the event table and each subscriber chain for
// any event task whose delay_until is non-zero and due, dispatches
// at most one such task per invocation, and yields to record its scan cursor
// in execState — guaranteeing eventual service of delayed event tasks
// without unbounded per-tick work.
//
// count is unused (the signature matches every Periodic task body);
// state carries the event-table index to resume scanning from.
func (s *Scheduler) watchDelayedEventTasks(ctx *TaskContext, count uint32, state uint16) {
	now := s.now()
	for ei := int(state); ei < len(s.events); ei++ {
		if !s.events[ei].enabled {
			continue
		}
		ti := s.events[ei].subHead
		for ti != noHandle {
			t := &s.tasks[ti]
			if t.delayUntil != 0 && t.delayUntil <= now {
				s.invokeEventTask(ti, 0, 0)
				ctx.Yield(uint16(ei))
				return
			}
			ti = t.next
		}
	}
	// Full scan found nothing: fall through to the default Periodic
	// completion path, which resets execState to 0 for the next pass.
}
