package scheduler

// reason classifies why a boolean-returning control operation failed.
// The public API keeps a plain bool/nil-handle contract; reason exists
// purely so failures can be logged with useful granularity, without
// changing any method signature.
type reason string

const (
	reasonNone               reason = ""
	reasonInvalidHandle      reason = "invalid_handle"
	reasonKindMismatch       reason = "kind_mismatch"
	reasonFull               reason = "full"
	reasonNotPresent         reason = "not_present"
	reasonDuplicateSignal    reason = "duplicate_signal"
	reasonHasSubscribers     reason = "has_subscribers"
	// reasonNotRunnableContext is logged only by Scheduler.Resume's
	// self-check; the in-task-only primitives (Yield, Delay, Suspend,
	// ListenSignal) reject an invalid *TaskContext by returning directly
	// without going through reject, so they never log a reason.
	reasonNotRunnableContext reason = "not_runnable_context"
)

// reject logs a rejected operation at debug level and returns false, so
// every failing control-API call site reads as a single expression.
func (s *Scheduler) reject(op string, h Handle, r reason) bool {
	if s.logger != nil {
		s.logger.Debug("scheduler: operation rejected", "op", op, "handle", h, "reason", string(r))
	}
	return false
}
