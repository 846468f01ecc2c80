package tui_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/goeta/pkg/engmon"
	"github.com/dshills/goeta/pkg/tui"
)

func TestFormatRows(t *testing.T) {
	rows := tui.FormatRows(
		[]string{"a", "b"},
		[]float64{1, 2},
		[]float64{2, 2},
		[]bool{false, true},
	)
	assert.Equal(t, []tui.TriggerRow{
		{ID: "a", Current: 1, Required: 2, Completed: false},
		{ID: "b", Current: 2, Required: 2, Completed: true},
	}, rows)
}

func TestRecordActionBeyondMaxDoesNotPanic(t *testing.T) {
	m := tui.New(0, 0, 80, 24)
	for i := 0; i < 30; i++ {
		m.RecordAction("line")
	}
	// maxRecentActions defaults to 20, so the loop above and the ObserveEvent
	// calls below push the tail past it; recentActions is unexported, so only
	// the absence of a panic is checked here.
	for i := 0; i < 5; i++ {
		m.ObserveEvent(engmon.Event{Type: engmon.EventActionEmitted, TriggerID: "t0"})
	}
	assert.NotPanics(t, func() { m.Update(nil) })
}

func TestObserveEventAcceptsRelatedAndUnrelatedTypes(t *testing.T) {
	m := tui.New(0, 0, 80, 24)
	assert.NotPanics(t, func() {
		m.ObserveEvent(engmon.Event{Type: engmon.EventDispatchStarted})
		m.ObserveEvent(engmon.Event{Type: engmon.EventTriggerFired, TriggerID: "t1", Detail: "fired"})
	})
}
