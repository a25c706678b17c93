package provisioning

import (
	"fmt"
	"sort"

	"github.com/go-logr/logr"
)

// LogrObserver implements Observer on top of a logr.Logger, emitting every
// event as a structured record.
type LogrObserver struct {
	log logr.Logger
}

// NewLogrObserver wraps l.
func NewLogrObserver(l logr.Logger) *LogrObserver {
	return &LogrObserver{log: l}
}

// Printf implements Logger.
func (o *LogrObserver) Printf(format string, v ...interface{}) {
	o.log.Info(fmt.Sprintf(format, v...))
}

// Event implements Observer.
func (o *LogrObserver) Event(event Event) {
	kv := []interface{}{"event", string(event.Type)}
	if event.Phase != "" {
		kv = append(kv, "phase", event.Phase)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	kv = append(kv, fieldsKV(event.Fields)...)

	switch event.Type {
	case EventPhaseFailed, EventResourceFailed, EventCompensationFailed:
		o.log.Error(nil, event.Message, kv...)
	default:
		o.log.Info(event.Message, kv...)
	}
}

// Progress implements Observer.
func (o *LogrObserver) Progress(phase string, current, total int) {
	o.log.V(1).Info("progress", "phase", phase, "current", current, "total", total)
}

// WithFields implements Observer.
func (o *LogrObserver) WithFields(fields map[string]string) Observer {
	return &LogrObserver{log: o.log.WithValues(fieldsKV(fields)...)}
}

func fieldsKV(fields map[string]string) []interface{} {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kv := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return kv
}
