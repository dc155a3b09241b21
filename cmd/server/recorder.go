package main

import (
	"soulforge.gg/internal/sim/actors"
	"soulforge.gg/internal/sim/trap"
)

// multiRecorder fans capture statistics out to every configured sink.
type multiRecorder []trap.Recorder

func (m multiRecorder) RecordCapture(ev trap.CaptureEvent) {
	for _, r := range m {
		r.RecordCapture(ev)
	}
}

func (m multiRecorder) RecordFailure(caster actors.ID, reason string) {
	for _, r := range m {
		r.RecordFailure(caster, reason)
	}
}
