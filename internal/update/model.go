package update

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wangxr0701-sudo/kiddotime/internal/gateway"
	"github.com/wangxr0701-sudo/kiddotime/internal/model"
	"github.com/wangxr0701-sudo/kiddotime/internal/store"
	"github.com/wangxr0701-sudo/kiddotime/internal/timer"
)

type View string

const (
	ViewPlanner  View = "Planner"
	ViewCalendar View = "Calendar"
	ViewTimer    View = "Timer"
)

const (
	defaultEstimateMinutes = 20
	defaultSubject         = "Homework"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Planner  string
	Calendar string
	Timer    string
	Help     string
	Quit     string
}

type PlannerState struct {
	Input       string
	Cursor      int
	CaptureMode bool
	// Reasonings holds the advisory per-task explanations from the last
	// generated schedule, keyed by task id.
	Reasonings map[string]string
}

type CalendarState struct {
	FocusDate time.Time
	Cursor    int
}

type TimerState struct {
	TaskID          string
	TaskTitle       string
	Emoji           string
	EstimateMinutes int
	Engine          *timer.Engine
	// TickSeq identifies the current tick chain. Every start/resume
	// begins a new chain; ticks from a retired chain are dropped so
	// rapid pause/resume cycles cannot double-count seconds.
	TickSeq       int
	Encouragement string
	FinishedView  string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

// Gateway generates optimized schedules and encouragement lines. It
// never returns an error; failures degrade to deterministic fallbacks.
type Gateway interface {
	CreatePlan(ctx context.Context, descriptors []gateway.TaskDescriptor, availableMinutes int) ([]gateway.PlannedTask, bool)
	Encouragement(ctx context.Context, taskTitle string, isComplete bool) string
}

type Model struct {
	CurrentView    View
	SelectedTaskID string
	Planner        PlannerState
	Calendar       CalendarState
	Timer          TimerState
	Palette        CommandPaletteState
	HelpVisible    bool
	Generating     bool
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error
	Notifications  []Notification

	store            *store.DayStore
	client           Gateway
	availableMinutes int

	// Bubble components used for rich TUI controls
	quickAddInput textinput.Model
	commandInput  textinput.Model
	calendarTable table.Model
	dayProgress   progress.Model
	genSpinner    spinner.Model
	helpModel     help.Model
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// PlanReadyMsg delivers a generated schedule. DayKey records which day
// the request was issued for; the handler discards the plan if the
// active day has changed since.
type PlanReadyMsg struct {
	DayKey       string
	Tasks        []model.Task
	Reasonings   map[string]string
	UsedFallback bool
}

type EncouragementMsg struct {
	TaskID string
	Text   string
}

type TimerTickMsg struct {
	Seq int
}

func NewModel(st *store.DayStore, client Gateway, availableMinutes int) Model {
	if availableMinutes <= 0 {
		availableMinutes = 120
	}
	m := Model{
		CurrentView: ViewPlanner,
		Planner: PlannerState{
			Reasonings: make(map[string]string),
		},
		Calendar: CalendarState{
			FocusDate: time.Now(),
		},
		Keys: GlobalKeyMap{
			Planner:  "1",
			Calendar: "2",
			Timer:    "3",
			Help:     "?",
			Quit:     "q",
		},
		store:            st,
		client:           client,
		availableMinutes: availableMinutes,
	}
	if st != nil {
		st.SelectDay(model.DayKey(time.Now()))
	}
	m.initBubbleComponents()
	m.syncSelectedTaskToPlannerCursor()
	return m
}

func (m *Model) initBubbleComponents() {
	cols := []table.Column{
		{Title: "Day", Width: 12},
		{Title: "Tasks", Width: 7},
		{Title: "Done", Width: 6},
	}
	m.calendarTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(8))

	m.quickAddInput = textinput.New()
	m.quickAddInput.Prompt = "add> "
	m.quickAddInput.Placeholder = "title min:30 subject:Math"
	m.quickAddInput.CharLimit = 256
	m.quickAddInput.Width = 42

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.dayProgress = progress.New(progress.WithDefaultGradient())

	m.genSpinner = spinner.New()
	m.genSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
}

func (m *Model) syncBubbleData() {
	m.quickAddInput.SetValue(m.Planner.Input)
	m.commandInput.SetValue(m.Palette.Input)
	if m.CurrentView == ViewPlanner && m.Planner.CaptureMode {
		m.quickAddInput.Focus()
	}
	if m.Palette.Active {
		m.commandInput.Focus()
	}

	if m.store == nil {
		return
	}
	days := m.store.Days()
	rows := make([]table.Row, 0, len(days))
	for _, dayKey := range days {
		snapshot := m.store.DayTasks(dayKey)
		rows = append(rows, table.Row{
			dayKey,
			fmt.Sprintf("%d", len(snapshot)),
			fmt.Sprintf("%d%%", int(model.Progress(snapshot))),
		})
	}
	m.calendarTable.SetRows(rows)
	if len(rows) > 0 && m.Calendar.Cursor < len(rows) {
		m.calendarTable.SetCursor(m.Calendar.Cursor)
	}
}

func (m *Model) ensurePlannerState() {
	tasks := m.store.Tasks()
	if m.Planner.Cursor < 0 {
		m.Planner.Cursor = 0
	}
	if m.Planner.Cursor >= len(tasks) && len(tasks) > 0 {
		m.Planner.Cursor = len(tasks) - 1
	}
	if m.Planner.Reasonings == nil {
		m.Planner.Reasonings = make(map[string]string)
	}
}

func (m *Model) ensureCalendarState() {
	if m.Calendar.FocusDate.IsZero() {
		m.Calendar.FocusDate = time.Now()
	}
	days := m.store.Days()
	if m.Calendar.Cursor < 0 {
		m.Calendar.Cursor = 0
	}
	if m.Calendar.Cursor >= len(days) && len(days) > 0 {
		m.Calendar.Cursor = len(days) - 1
	}
}

func (m *Model) syncSelectedTaskToPlannerCursor() {
	if selected, ok := m.currentPlannerItem(); ok {
		m.SelectedTaskID = selected.ID
		return
	}
	m.SelectedTaskID = ""
}

func (m Model) currentPlannerItem() (model.Task, bool) {
	tasks := m.store.Tasks()
	if len(tasks) == 0 {
		return model.Task{}, false
	}
	if m.Planner.Cursor < 0 || m.Planner.Cursor >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[m.Planner.Cursor], true
}

func (m *Model) notify(title, body, level string) {
	if body == "" {
		return
	}
	m.Notifications = append(m.Notifications, Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    time.Now().UTC(),
	})
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
}

// tasksFromPlan mints tasks for a generated schedule. Identity is never
// preserved across regeneration; every planned item gets a fresh id.
func tasksFromPlan(planned []gateway.PlannedTask, now time.Time) ([]model.Task, map[string]string) {
	tasks := make([]model.Task, 0, len(planned))
	reasonings := make(map[string]string)
	for _, item := range planned {
		subject := item.Subject
		if subject == "" && item.IsBreak {
			subject = "Break"
		}
		task := model.Task{
			ID:               model.NewID(),
			Title:            item.Title,
			Subject:          subject,
			EstimatedMinutes: item.EstimatedMinutes,
			IsBreak:          item.IsBreak,
			Emoji:            item.Emoji,
			Status:           model.StatusPending,
			CreatedAt:        now,
		}
		if item.Reasoning != "" {
			reasonings[task.ID] = item.Reasoning
		}
		tasks = append(tasks, task)
	}
	return tasks, reasonings
}

func generatePlanCmd(client Gateway, dayKey string, descriptors []gateway.TaskDescriptor, availableMinutes int) tea.Cmd {
	return func() tea.Msg {
		planned, usedFallback := client.CreatePlan(context.Background(), descriptors, availableMinutes)
		tasks, reasonings := tasksFromPlan(planned, time.Now())
		return PlanReadyMsg{
			DayKey:       dayKey,
			Tasks:        tasks,
			Reasonings:   reasonings,
			UsedFallback: usedFallback,
		}
	}
}

func encouragementCmd(client Gateway, taskID, taskTitle string, isComplete bool) tea.Cmd {
	return func() tea.Msg {
		text := client.Encouragement(context.Background(), taskTitle, isComplete)
		return EncouragementMsg{TaskID: taskID, Text: text}
	}
}

func timerTickCmd(seq int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return TimerTickMsg{Seq: seq} })
}
