package scheduler

import (
	"context"
	"fmt"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// Event type constants for scheduler observability events, following
// CloudEvents reverse-domain notation.
const (
	EventTypeLoopStarted    = "com.microsched.loop.started"
	EventTypeLoopStopped    = "com.microsched.loop.stopped"
	EventTypeTaskCreated    = "com.microsched.task.created"
	EventTypeTaskKilled     = "com.microsched.task.killed"
	EventTypeTaskSuspended  = "com.microsched.task.suspended"
	EventTypeTaskResumed    = "com.microsched.task.resumed"
	EventTypeEventCreated   = "com.microsched.event.created"
	EventTypeEventDeleted   = "com.microsched.event.deleted"
	EventTypeEventPublished = "com.microsched.event.published"
	EventTypeEventDelivered = "com.microsched.event.delivered"
)

// EventEmitter lets the scheduler publish CloudEvents describing its
// own lifecycle and task/event activity to an observing host.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event cloudevents.Event) error
}

// emitEvent builds and emits a CloudEvent, silently skipping emission
// when no emitter is configured: hosts that don't care about
// observability run cleanly with no extra cost.
func (s *Scheduler) emitEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.emitter == nil {
		return
	}
	event := cloudevents.NewEvent()
	event.SetID(uuid.New().String())
	event.SetType(eventType)
	event.SetSource("microsched")
	if err := event.SetData(cloudevents.ApplicationJSON, data); err != nil {
		if s.logger != nil {
			s.logger.Warn("scheduler: failed to encode event data", "eventType", eventType, "error", err)
		}
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		if s.logger != nil {
			s.logger.Warn("scheduler: failed to emit event", "eventType", eventType, "error", fmt.Errorf("%w", err))
		}
	}
}
