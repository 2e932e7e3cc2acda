package update

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wangxr0701-sudo/kiddotime/internal/model"
	"github.com/wangxr0701-sudo/kiddotime/internal/views"
)

func (m Model) handleCalendarKey(msg tea.KeyMsg) Model {
	days := m.store.Days()

	switch msg.String() {
	case "h", "left":
		m.Calendar.FocusDate = m.Calendar.FocusDate.AddDate(0, 0, -1)
	case "l", "right":
		m.Calendar.FocusDate = m.Calendar.FocusDate.AddDate(0, 0, 1)
	case "H":
		m.Calendar.FocusDate = m.Calendar.FocusDate.AddDate(0, 0, -7)
	case "L":
		m.Calendar.FocusDate = m.Calendar.FocusDate.AddDate(0, 0, 7)
	case "j", "down":
		if m.Calendar.Cursor < len(days)-1 {
			m.Calendar.Cursor++
		}
		m.syncFocusToCursor(days)
	case "k", "up":
		if m.Calendar.Cursor > 0 {
			m.Calendar.Cursor--
		}
		m.syncFocusToCursor(days)
	case "t":
		m.Calendar.FocusDate = time.Now()
	case "enter":
		m.store.SelectDay(model.DayKey(m.Calendar.FocusDate))
		m.Planner.Cursor = 0
		m.Planner.Reasonings = make(map[string]string)
		m.syncSelectedTaskToPlannerCursor()
		m.CurrentView = ViewPlanner
	}
	return m
}

func (m *Model) syncFocusToCursor(days []string) {
	if m.Calendar.Cursor < 0 || m.Calendar.Cursor >= len(days) {
		return
	}
	if parsed, err := model.ParseDayKey(days[m.Calendar.Cursor]); err == nil {
		m.Calendar.FocusDate = parsed
	}
}

func (m Model) renderCalendarView() string {
	days := m.store.Days()
	dayData := make([]views.CalendarDayData, 0, len(days))
	for _, dayKey := range days {
		snapshot := m.store.DayTasks(dayKey)
		dayData = append(dayData, views.CalendarDayData{
			DayKey:    dayKey,
			TaskCount: len(snapshot),
			DonePct:   int(model.Progress(snapshot)),
		})
	}
	return views.RenderCalendarPanel(views.CalendarPanelData{
		FocusDate: model.DayKey(m.Calendar.FocusDate),
		ActiveDay: m.store.ActiveDay(),
		TableView: m.calendarTable.View(),
		Days:      dayData,
		Cursor:    m.Calendar.Cursor,
	})
}
