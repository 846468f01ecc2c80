package enginelog

import "github.com/dshills/goeta/pkg/engmon"

// LogMonitorEvents subscribes to an engmon.Monitor and writes every event it
// receives to logger at a severity derived from the event's type. It is a
// convenience for the common case of wanting a log line per dispatcher
// activity without writing a bespoke receive loop; callers needing more
// control should subscribe to the monitor directly instead.
//
// The returned stop function unsubscribes and must be called to release the
// subscription; it does not close ch.
func LogMonitorEvents(m engmon.Monitor, logger Logger, bufferSize int) (stop func()) {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	ch := make(chan engmon.Event, bufferSize)
	id := m.Subscribe(ch)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case e, ok := <-ch:
				if !ok {
					return
				}
				logEvent(logger, e)
			case <-done:
				return
			}
		}
	}()

	return func() {
		m.Unsubscribe(id)
		close(done)
	}
}

func logEvent(logger Logger, e engmon.Event) {
	fields := []Field{F("trigger_id", e.TriggerID), F("type", string(e.Type))}
	if e.Progress != nil {
		fields = append(fields, F("current", e.Progress.Current), F("required", e.Progress.Required))
	}
	if e.Detail != "" {
		fields = append(fields, F("detail", e.Detail))
	}
	switch e.Type {
	case engmon.EventTriggerFired, engmon.EventDispatchFinished:
		logger.Info(string(e.Type), fields...)
	default:
		logger.Debug(string(e.Type), fields...)
	}
}
