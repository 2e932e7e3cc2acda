package update

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wangxr0701-sudo/kiddotime/internal/timer"
	"github.com/wangxr0701-sudo/kiddotime/internal/views"
)

func (m Model) handleTimerKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	engine := m.Timer.Engine
	if engine == nil {
		if msg.String() == "enter" {
			m.CurrentView = ViewPlanner
		}
		return m, nil
	}

	switch msg.String() {
	case " ", "space":
		switch engine.State() {
		case timer.StateRunning:
			engine.Pause()
			// Retire the active tick chain so a resume cannot race a
			// callback that was already scheduled.
			m.Timer.TickSeq++
			return m, nil
		case timer.StateIdle, timer.StatePaused:
			wasIdle := engine.State() == timer.StateIdle
			engine.Start()
			m.Timer.TickSeq++
			cmds := []tea.Cmd{timerTickCmd(m.Timer.TickSeq)}
			if wasIdle {
				cmds = append(cmds, encouragementCmd(m.client, m.Timer.TaskID, m.Timer.TaskTitle, false))
			}
			return m, tea.Batch(cmds...)
		}
	case "r":
		if err := engine.Reset(); err != nil {
			m.Status = StatusBar{Text: resetErrorText(err), IsError: true}
			return m, nil
		}
		m.Timer.TickSeq++
		m.Timer.Encouragement = ""
		m.Status = StatusBar{Text: "timer reset"}
	case "f":
		return m.finishTimer()
	case "esc":
		m.CurrentView = ViewPlanner
	}
	return m, nil
}

func (m Model) finishTimer() (Model, tea.Cmd) {
	engine := m.Timer.Engine
	elapsed, err := engine.Finish()
	if err != nil {
		m.Status = StatusBar{Text: "already finished"}
		return m, nil
	}
	m.Timer.TickSeq++
	m.Timer.FinishedView = timer.FormatElapsed(elapsed)
	if m.store.MarkCompleted(context.Background(), m.Timer.TaskID, elapsed) {
		m.Status = StatusBar{Text: fmt.Sprintf("done! %s took %s", m.Timer.TaskTitle, m.Timer.FinishedView)}
	}
	return m, encouragementCmd(m.client, m.Timer.TaskID, m.Timer.TaskTitle, true)
}

func (m Model) onTimerTick(msg TimerTickMsg) (Model, tea.Cmd) {
	engine := m.Timer.Engine
	if engine == nil || msg.Seq != m.Timer.TickSeq || engine.State() != timer.StateRunning {
		return m, nil
	}
	engine.Tick()
	return m, timerTickCmd(msg.Seq)
}

func resetErrorText(err error) string {
	switch {
	case errors.Is(err, timer.ErrNotPaused):
		return "pause the timer before resetting"
	case errors.Is(err, timer.ErrOvertime):
		return "can't reset in overtime, finish instead"
	default:
		return err.Error()
	}
}

func (m Model) renderTimerView() string {
	engine := m.Timer.Engine
	if engine == nil {
		return views.RenderTimerPanel(views.TimerPanelData{State: "idle", Remaining: "--:--"})
	}
	estimateSec := m.Timer.EstimateMinutes * 60
	pct := 0.0
	if estimateSec > 0 {
		pct = float64(engine.Elapsed()) / float64(estimateSec)
		if pct > 1 {
			pct = 1
		}
	}
	return views.RenderTimerPanel(views.TimerPanelData{
		TaskTitle:     m.Timer.TaskTitle,
		Emoji:         m.Timer.Emoji,
		State:         string(engine.State()),
		Remaining:     timer.FormatRemaining(engine.Remaining()),
		Overtime:      engine.Overtime(),
		ElapsedView:   m.Timer.FinishedView,
		ProgressView:  m.dayProgress.ViewAs(pct),
		ProgressPct:   int(pct * 100),
		Encouragement: m.Timer.Encouragement,
	})
}
