package scheduler

// eventRecord is one entry of the fixed-capacity event table. subHead
// is the index of the first subscriber task, or noHandle when no task
// subscribes.
type eventRecord struct {
	enabled bool
	signal  uint16 // currently-published signal, 0 when none pending
	value   uint32 // payload for the current publication
	subHead Handle
}

// CreateEvent returns the first disabled event slot, marked enabled
// with signal=0, value=0, and an empty subscriber chain. Fails (returns
// false) when the event table is full.
func (s *Scheduler) CreateEvent() (Handle, bool) {
	for i := range s.events {
		if !s.events[i].enabled {
			s.events[i] = eventRecord{enabled: true, subHead: noHandle}
			h := Handle(i)
			s.emitEventCtx(EventTypeEventCreated, map[string]interface{}{"event": i})
			return h, true
		}
	}
	s.logger.Debug("scheduler: create event rejected", "reason", string(reasonFull))
	return noHandle, false
}

func (s *Scheduler) validateEvent(h Handle) bool {
	if h == noHandle || int(h) >= len(s.events) {
		return false
	}
	return s.events[h].enabled
}

// DeleteEvent frees an event slot, permitted only when it has no
// subscribers.
func (s *Scheduler) DeleteEvent(h Handle) bool {
	if !s.validateEvent(h) {
		return s.reject("DeleteEvent", h, reasonInvalidHandle)
	}
	if s.events[h].subHead != noHandle {
		return s.reject("DeleteEvent", h, reasonHasSubscribers)
	}
	s.events[h] = eventRecord{}
	s.removeFromFireQueue(h)
	s.emitEventCtx(EventTypeEventDeleted, map[string]interface{}{"event": int(h)})
	return true
}

// SetEvent publishes signal/value on an event. Rejects signal==0 and
// rejects re-publishing the signal currently in flight on that event.
// Appends the event to the fire queue if it isn't already queued;
// fails if the fire queue is full.
func (s *Scheduler) SetEvent(h Handle, signal uint16, value uint32) bool {
	if !s.validateEvent(h) {
		return s.reject("SetEvent", h, reasonInvalidHandle)
	}
	if signal == 0 {
		return s.reject("SetEvent", h, reasonKindMismatch)
	}
	if s.events[h].signal == signal {
		return s.reject("SetEvent", h, reasonDuplicateSignal)
	}
	s.events[h].signal = signal
	s.events[h].value = value
	if !s.enqueueFire(h) {
		return s.reject("SetEvent", h, reasonFull)
	}
	s.emitEventCtx(EventTypeEventPublished, map[string]interface{}{"event": int(h), "signal": signal, "value": value})
	return true
}

// GetEventSignal returns the event's current signal, 0 when none is
// pending.
func (s *Scheduler) GetEventSignal(h Handle) uint16 {
	if !s.validateEvent(h) {
		return 0
	}
	return s.events[h].signal
}

// enqueueFire appends h to the fire queue if not already present,
// de-duplicating on insert. Returns false if the queue is full.
func (s *Scheduler) enqueueFire(h Handle) bool {
	for i := 0; i < s.fqLen; i++ {
		if s.fireQueue[i] == h {
			return true
		}
	}
	if s.fqLen >= len(s.fireQueue) {
		return false
	}
	s.fireQueue[s.fqLen] = h
	s.fqLen++
	return true
}

// removeFromFireQueue drops h from the fire queue if present, keeping
// the remaining entries contiguous from index 0 (used when an event is
// deleted before its publication is drained).
func (s *Scheduler) removeFromFireQueue(h Handle) {
	for i := 0; i < s.fqLen; i++ {
		if s.fireQueue[i] == h {
			copy(s.fireQueue[i:s.fqLen-1], s.fireQueue[i+1:s.fqLen])
			s.fqLen--
			return
		}
	}
}

// truncateFireQueue empties the fire queue at the end of Phase A.
func (s *Scheduler) truncateFireQueue() {
	s.fqLen = 0
}

// subscribeEvent appends a new event-task handle to the event's subscriber
// chain tail, preserving insertion order.
func (s *Scheduler) subscribeEvent(e, h Handle) {
	if s.events[e].subHead == noHandle {
		s.events[e].subHead = h
		return
	}
	j := s.events[e].subHead
	for s.tasks[j].next != noHandle {
		j = s.tasks[j].next
	}
	s.tasks[j].next = h
}

// unlinkEventTask removes a task from its event's subscriber chain and
// frees its slot. The caller is responsible for advancing any cursor
// that currently points at h before calling this.
func (s *Scheduler) unlinkEventTask(h Handle) {
	e := s.tasks[h].eventRef
	s.unlinkFrom(&s.events[e].subHead, h)
	s.freeTask(h)
}

// emitEventCtx is a convenience wrapper so event-table methods (which
// don't carry a context.Context parameter, keeping their plain
// bool-returning signatures) can still emit observability events using
// context.Background().
func (s *Scheduler) emitEventCtx(eventType string, data map[string]interface{}) {
	s.emitEvent(backgroundCtx, eventType, data)
}
