package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wangxr0701-sudo/kiddotime/internal/views"
)

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		m.ensurePlannerState()
		m.ensureCalendarState()

		// Text capture swallows everything except ctrl+c so titles can
		// contain view keys like "3" or "q".
		if m.Palette.Active && typed.String() != "ctrl+c" {
			return m.handlePaletteKey(typed)
		}
		if m.CurrentView == ViewPlanner && m.Planner.CaptureMode && typed.String() != "ctrl+c" {
			return m.handlePlannerKey(typed)
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active", IsError: false}
			return m, nil
		case m.Keys.Planner:
			m.CurrentView = ViewPlanner
			return m, nil
		case m.Keys.Calendar:
			m.CurrentView = ViewCalendar
			return m, nil
		case m.Keys.Timer:
			m.CurrentView = ViewTimer
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}

		switch m.CurrentView {
		case ViewPlanner:
			return m.handlePlannerKey(typed)
		case ViewCalendar:
			return m.handleCalendarKey(typed), nil
		case ViewTimer:
			return m.handleTimerKey(typed)
		}
	case spinner.TickMsg:
		if m.Generating {
			var cmd tea.Cmd
			m.genSpinner, cmd = m.genSpinner.Update(typed)
			return m, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case PlanReadyMsg:
		return m.onPlanReady(typed), nil
	case EncouragementMsg:
		if typed.TaskID == m.Timer.TaskID {
			m.Timer.Encouragement = typed.Text
		}
		return m, nil
	case TimerTickMsg:
		return m.onTimerTick(typed)
	}

	return m, nil
}

func (m Model) View() string {
	m.syncBubbleData()

	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewPlanner:
		leftPane = m.renderPlannerView()
		rightPane = m.renderPlannerMetadataPane() + m.renderCommandPalette() + m.renderHelpIfVisible()
	case ViewCalendar:
		leftPane = m.renderCalendarView()
		rightPane = m.renderHelpIfVisible()
	case ViewTimer:
		leftPane = m.renderTimerView()
		rightPane = m.renderHelpIfVisible()
	}
	notificationView := m.renderNotificationsView()

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("kiddotime | day: %s | view: %s", m.store.ActiveDay(), m.CurrentView),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		Notification: notificationView,
		Footer: fmt.Sprintf("keys: %s planner | %s calendar | %s timer | / cmd | %s help | %s quit",
			m.Keys.Planner, m.Keys.Calendar, m.Keys.Timer, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewPlanner, ViewCalendar, ViewTimer:
		return true
	default:
		return false
	}
}
