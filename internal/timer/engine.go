package timer

import (
	"errors"
	"fmt"
)

var (
	ErrNotPaused = errors.New("timer: reset requires a paused timer")
	ErrOvertime  = errors.New("timer: reset not allowed in overtime")
	ErrFinished  = errors.New("timer: already finished")
)

type State string

const (
	StateIdle     State = "Idle"
	StateRunning  State = "Running"
	StatePaused   State = "Paused"
	StateFinished State = "Finished"
)

// Engine is a per-task countdown stopwatch. It holds no clock of its
// own; the owner advances it one second at a time through Tick, so a
// paused engine is frozen no matter how much real time passes. Remaining
// goes negative once the estimate is exceeded (overtime) and keeps
// counting down until Finish.
type Engine struct {
	state        State
	estimateSec  int
	remainingSec int
	elapsedSec   int
}

func NewEngine(estimatedMinutes int) *Engine {
	seconds := estimatedMinutes * 60
	return &Engine{
		state:        StateIdle,
		estimateSec:  seconds,
		remainingSec: seconds,
	}
}

func (e *Engine) State() State  { return e.state }
func (e *Engine) Remaining() int { return e.remainingSec }
func (e *Engine) Elapsed() int   { return e.elapsedSec }

func (e *Engine) Overtime() bool {
	return e.remainingSec < 0
}

// Start begins or resumes the countdown. It is a no-op once finished.
func (e *Engine) Start() {
	if e.state == StateFinished {
		return
	}
	e.state = StateRunning
}

// Pause freezes both counters. A no-op unless running.
func (e *Engine) Pause() {
	if e.state != StateRunning {
		return
	}
	e.state = StatePaused
}

// Tick advances the clock by one second. Ticks delivered in any other
// state than Running are dropped, which is what retires a stale tick
// source after a pause.
func (e *Engine) Tick() {
	if e.state != StateRunning {
		return
	}
	e.remainingSec--
	e.elapsedSec++
}

// Reset restores the original estimate. Only permitted while paused and
// not in overtime; a task already past its estimate must be finished,
// not rewound.
func (e *Engine) Reset() error {
	if e.state != StatePaused {
		return ErrNotPaused
	}
	if e.Overtime() {
		return ErrOvertime
	}
	e.state = StateIdle
	e.remainingSec = e.estimateSec
	e.elapsedSec = 0
	return nil
}

// Finish terminates the timer from any non-terminal state and reports
// the elapsed seconds, the only value ever recorded as a task's actual
// duration.
func (e *Engine) Finish() (int, error) {
	if e.state == StateFinished {
		return e.elapsedSec, ErrFinished
	}
	e.state = StateFinished
	return e.elapsedSec, nil
}

// FormatRemaining renders a signed MM:SS countdown, with a leading
// minus once in overtime.
func FormatRemaining(seconds int) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d:%02d", sign, seconds/60, seconds%60)
}

// FormatElapsed renders elapsed time as "Xm Ys", dropping the minutes
// component when it is zero.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}
