package provisioning

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// Logger is the minimal printf-style sink used by phases.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Observer defines the interface for structured observability during the
// cell lifecycle.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// Progress reports progress for a phase
	Progress(phase string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured lifecycle event.
type Event struct {
	Type      EventType
	Phase     string            // e.g. "bucket", "keypair"
	Message   string            // Human-readable message
	Resource  string            // Resource name if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of lifecycle event.
type EventType string

const (
	EventPhaseStarted   EventType = "phase.started"
	EventPhaseCompleted EventType = "phase.completed"
	EventPhaseFailed    EventType = "phase.failed"

	// EventCompensating indicates a completed phase is being rolled back.
	EventCompensating EventType = "phase.compensating"
	// EventCompensationFailed indicates a rollback step failed and was skipped.
	EventCompensationFailed EventType = "phase.compensation_failed"

	EventResourceCreating EventType = "resource.creating"
	EventResourceCreated  EventType = "resource.created"
	EventResourceExists   EventType = "resource.exists"
	EventResourceFailed   EventType = "resource.failed"
	EventResourceDeleting EventType = "resource.deleting"
	EventResourceDeleted  EventType = "resource.deleted"

	EventProgress EventType = "progress"
)

// ConsoleObserver implements Observer using standard log package.
type ConsoleObserver struct {
	contextFields map[string]string
}

// NewConsoleObserver creates a new console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{
		contextFields: make(map[string]string),
	}
}

// Printf implements Logger.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	log.Print(formatEvent(withContext(event, o.contextFields)))
}

// Progress implements Observer.
func (o *ConsoleObserver) Progress(phase string, current, total int) {
	if total == 0 {
		log.Printf("[%s] %d/%d", phase, current, total)
		return
	}
	log.Printf("[%s] %d/%d (%d%%)", phase, current, total, (current*100)/total)
}

// WithFields implements Observer.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	return &ConsoleObserver{contextFields: mergeFields(o.contextFields, fields)}
}

func mergeFields(base, extra map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

// withContext stamps the event and fills in context fields it does not set itself.
func withContext(event Event, contextFields map[string]string) Event {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	fields := make(map[string]string, len(event.Fields)+len(contextFields))
	for k, v := range contextFields {
		fields[k] = v
	}
	for k, v := range event.Fields {
		fields[k] = v
	}
	event.Fields = fields
	return event
}

// formatEvent renders an event as one console line, fields sorted by key.
func formatEvent(event Event) string {
	parts := []string{string(event.Type)}
	if event.Phase != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Phase))
	}
	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}
	parts = append(parts, event.Message)

	if len(event.Fields) > 0 {
		keys := make([]string, 0, len(event.Fields))
		for k := range event.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fieldParts := make([]string, 0, len(keys))
		for _, k := range keys {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, event.Fields[k]))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(fieldParts, ", ")))
	}

	return strings.Join(parts, " ")
}

// RecordingObserver keeps every message and event in memory.
type RecordingObserver struct {
	Messages []string
	Events   []Event
	fields   map[string]string
}

// NewRecordingObserver creates an empty recording observer.
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{fields: make(map[string]string)}
}

// Printf records the formatted message.
func (o *RecordingObserver) Printf(format string, v ...interface{}) {
	o.Messages = append(o.Messages, fmt.Sprintf(format, v...))
}

// Event records the event.
func (o *RecordingObserver) Event(event Event) {
	o.Events = append(o.Events, withContext(event, o.fields))
}

// Progress records a progress event.
func (o *RecordingObserver) Progress(phase string, current, total int) {
	o.Event(Event{Type: EventProgress, Phase: phase, Message: fmt.Sprintf("%d/%d", current, total)})
}

// WithFields returns o itself with extra context fields, so a test keeps
// seeing everything recorded through derived observers.
func (o *RecordingObserver) WithFields(fields map[string]string) Observer {
	o.fields = mergeFields(o.fields, fields)
	return o
}

// EventsOfType returns the recorded events of type t.
func (o *RecordingObserver) EventsOfType(t EventType) []Event {
	var out []Event
	for _, e := range o.Events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{Type: EventPhaseStarted, Phase: phase, Message: "starting"})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{Type: EventPhaseFailed, Phase: phase, Message: fmt.Sprintf("failed: %v", err)})
}

// LogResourceCreating logs a resource creation start event.
func LogResourceCreating(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceCreating,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("creating %s", resourceType),
		Fields:   map[string]string{"type": resourceType},
	})
}

// LogResourceCreated logs a successful resource creation event.
func LogResourceCreated(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceCreated,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s created", resourceType),
		Fields:   map[string]string{"type": resourceType},
	})
}

// LogResourceExists logs when a resource is reused rather than created.
func LogResourceExists(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceExists,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("using existing %s", resourceType),
		Fields:   map[string]string{"type": resourceType},
	})
}

// LogResourceDeleting logs a resource deletion start event.
func LogResourceDeleting(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceDeleting,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("deleting %s", resourceType),
		Fields:   map[string]string{"type": resourceType},
	})
}

// LogResourceDeleted logs a successful resource deletion event.
func LogResourceDeleted(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceDeleted,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s deleted", resourceType),
		Fields:   map[string]string{"type": resourceType},
	})
}

// LogResourceFailed logs a failed create or delete that processing continues past.
func LogResourceFailed(observer Observer, phase, resourceType, resourceName string, err error) {
	observer.Event(Event{
		Type:     EventResourceFailed,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s failed: %v", resourceType, err),
		Fields:   map[string]string{"type": resourceType},
	})
}
