package update

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	log "github.com/sirupsen/logrus"

	"github.com/wangxr0701-sudo/kiddotime/internal/views"
)

// globalHelpKeys feeds the shared bindings into the bubbles help widget.
type globalHelpKeys struct{}

func (globalHelpKeys) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "planner")),
		key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "calendar")),
		key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "timer")),
		key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "command")),
		key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

func (k globalHelpKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// timeNow exists so tests can pin task creation times.
var timeNow = time.Now

func levelFromError(isError bool) string {
	if isError {
		return "error"
	}
	return "info"
}

func logPlanDiscarded(requestedDay, activeDay string) {
	log.WithFields(log.Fields{
		"requested_day": requestedDay,
		"active_day":    activeDay,
	}).Info("discarding schedule for a day that is no longer active")
}

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	bindings := []string{}
	switch m.CurrentView {
	case ViewPlanner:
		bindings = []string{
			"a/i  add a task",
			"j/k  move selection",
			"J/K  reorder pending",
			"x    remove",
			"g    generate schedule",
			"t    start timer",
		}
	case ViewCalendar:
		bindings = []string{
			"h/l  previous/next day",
			"H/L  previous/next week",
			"j/k  browse saved days",
			"t    jump to today",
			"enter open day",
		}
	case ViewTimer:
		bindings = []string{
			"space start/pause",
			"r     reset (paused only)",
			"f     finish",
			"esc   back to planner",
		}
	}
	return "\n" + views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    bindings,
		HelpView:    m.helpModel.View(globalHelpKeys{}),
	})
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	latest := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(latest.Level, latest.Body)
}
