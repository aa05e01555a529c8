package solver

import (
	log "github.com/sirupsen/logrus"
)

// LogObserver reports run milestones through logrus, the default sink for
// headless runs.
type LogObserver struct{}

func (LogObserver) OnProgress(percent int, t float64) {
	log.WithFields(log.Fields{
		"percent":  percent,
		"delay_ps": t * 1e12,
	}).Info("integrating")
}

// FuncObserver adapts a plain callback to the Observer interface.
type FuncObserver func(percent int, t float64)

func (f FuncObserver) OnProgress(percent int, t float64) { f(percent, t) }
