package update

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wangxr0701-sudo/kiddotime/internal/commands"
	"github.com/wangxr0701-sudo/kiddotime/internal/gateway"
	"github.com/wangxr0701-sudo/kiddotime/internal/model"
	"github.com/wangxr0701-sudo/kiddotime/internal/storage"
	"github.com/wangxr0701-sudo/kiddotime/internal/store"
	"github.com/wangxr0701-sudo/kiddotime/internal/timer"
)

type memoryRepo struct {
	days map[string][]storage.TaskRow
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{days: make(map[string][]storage.TaskRow)}
}

func (r *memoryRepo) SaveDay(_ context.Context, dayKey string, rows []storage.TaskRow) error {
	stored := make([]storage.TaskRow, len(rows))
	copy(stored, rows)
	r.days[dayKey] = stored
	return nil
}

func (r *memoryRepo) LoadDay(_ context.Context, dayKey string) ([]storage.TaskRow, error) {
	rows, ok := r.days[dayKey]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return rows, nil
}

func (r *memoryRepo) LoadAll(_ context.Context) (map[string][]storage.TaskRow, error) {
	out := make(map[string][]storage.TaskRow, len(r.days))
	for k, v := range r.days {
		out[k] = v
	}
	return out, nil
}

func (r *memoryRepo) DeleteDay(_ context.Context, dayKey string) error {
	delete(r.days, dayKey)
	return nil
}

func (r *memoryRepo) ListDays(_ context.Context) ([]string, error) {
	keys := make([]string, 0, len(r.days))
	for k := range r.days {
		keys = append(keys, k)
	}
	return keys, nil
}

type scriptedGateway struct {
	plan         []gateway.PlannedTask
	usedFallback bool
	planCalls    int
}

func (g *scriptedGateway) CreatePlan(_ context.Context, descriptors []gateway.TaskDescriptor, _ int) ([]gateway.PlannedTask, bool) {
	g.planCalls++
	if g.plan != nil {
		return g.plan, g.usedFallback
	}
	return gateway.Fallback(descriptors), true
}

func (g *scriptedGateway) Encouragement(_ context.Context, _ string, isComplete bool) string {
	if isComplete {
		return gateway.DefaultCompleteMessage
	}
	return gateway.DefaultStartMessage
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	s := store.New(newMemoryRepo())
	s.Load(context.Background())
	return NewModel(s, &scriptedGateway{}, 120)
}

func seedTask(t *testing.T, m Model, title string, minutes int) Model {
	t.Helper()
	m.addTaskFromArgs(commands.AddArgs{Title: title, Minutes: minutes})
	m.ensurePlannerState()
	m.syncSelectedTaskToPlannerCursor()
	return m
}

func typeKeys(t *testing.T, m Model, keys string) Model {
	t.Helper()
	for _, r := range keys {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(Model)
	}
	return m
}

func pressEnter(t *testing.T, m Model) Model {
	t.Helper()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model)
}

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel(t)
	if m.CurrentView != ViewPlanner {
		t.Fatalf("expected default view %q, got %q", ViewPlanner, m.CurrentView)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
	if got, want := m.store.ActiveDay(), model.DayKey(time.Now()); got != want {
		t.Fatalf("expected active day %q, got %q", want, got)
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m := newTestModel(t)
	next := typeKeys(t, m, "2")
	if next.CurrentView != ViewCalendar {
		t.Fatalf("expected calendar view, got %q", next.CurrentView)
	}
	next = typeKeys(t, next, "3")
	if next.CurrentView != ViewTimer {
		t.Fatalf("expected timer view, got %q", next.CurrentView)
	}
}

func TestUpdateSwitchViewMsg(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(SwitchViewMsg{View: ViewCalendar})
	next := updated.(Model)
	if next.CurrentView != ViewCalendar {
		t.Fatalf("expected calendar view, got %q", next.CurrentView)
	}

	updated, _ = next.Update(SwitchViewMsg{View: View("Unknown")})
	next = updated.(Model)
	if next.CurrentView != ViewCalendar {
		t.Fatalf("expected view unchanged for unknown view, got %q", next.CurrentView)
	}
}

func TestPlannerQuickAddWithKeyboard(t *testing.T) {
	m := newTestModel(t)
	m = typeKeys(t, m, "a")
	if !m.Planner.CaptureMode {
		t.Fatal("expected capture mode after pressing a")
	}
	m = typeKeys(t, m, "book report min:30 subject:English")
	m = pressEnter(t, m)

	tasks := m.store.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Title != "book report" {
		t.Fatalf("unexpected title: %q", tasks[0].Title)
	}
	if tasks[0].EstimatedMinutes != 30 || tasks[0].Subject != "English" {
		t.Fatalf("unexpected parsed args: %+v", tasks[0])
	}
	if m.Planner.CaptureMode {
		t.Fatal("expected capture mode to close on enter")
	}
}

func TestQuickAddAcceptsViewKeysAsText(t *testing.T) {
	m := newTestModel(t)
	m = typeKeys(t, m, "a")
	m = typeKeys(t, m, "quiz 3q min:15")
	if m.CurrentView != ViewPlanner {
		t.Fatalf("typing digits must not switch views, got %q", m.CurrentView)
	}
	m = pressEnter(t, m)
	tasks := m.store.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "quiz 3q" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestPlannerReorderKeepsCursorOnTask(t *testing.T) {
	m := newTestModel(t)
	m = seedTask(t, m, "first", 10)
	m = seedTask(t, m, "second", 20)
	m = seedTask(t, m, "third", 30)

	m = typeKeys(t, m, "j") // select "second"
	selected := m.SelectedTaskID
	m = typeKeys(t, m, "K") // move it up

	tasks := m.store.Tasks()
	if tasks[0].Title != "second" {
		t.Fatalf("expected second first, got %q", tasks[0].Title)
	}
	if m.SelectedTaskID != selected {
		t.Fatalf("cursor lost its task: %q vs %q", m.SelectedTaskID, selected)
	}
	if m.Planner.Cursor != 0 {
		t.Fatalf("expected cursor 0, got %d", m.Planner.Cursor)
	}
}

func TestPlannerDeleteTask(t *testing.T) {
	m := newTestModel(t)
	m = seedTask(t, m, "first", 10)
	m = seedTask(t, m, "second", 20)

	m = typeKeys(t, m, "x")
	tasks := m.store.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "second" {
		t.Fatalf("unexpected tasks after delete: %+v", tasks)
	}
}

func TestGeneratePlanReplacesPendingWithFreshIDs(t *testing.T) {
	g := &scriptedGateway{
		plan: []gateway.PlannedTask{
			{Title: "math drills", Subject: "Math", EstimatedMinutes: 20, Emoji: "🧮", Reasoning: "hardest first"},
			{Title: "stretch", EstimatedMinutes: 5, IsBreak: true, Emoji: "🤸"},
		},
	}
	s := store.New(newMemoryRepo())
	s.Load(context.Background())
	m := NewModel(s, g, 120)
	m = seedTask(t, m, "math drills", 20)
	oldID := m.store.Tasks()[0].ID

	next, cmd := m.startPlanGeneration()
	if !next.Generating {
		t.Fatal("expected generating flag")
	}
	if cmd == nil {
		t.Fatal("expected a batch command")
	}

	planned, usedFallback := g.CreatePlan(context.Background(), nil, 120)
	tasks, reasonings := tasksFromPlan(planned, time.Now())
	updated, _ := next.Update(PlanReadyMsg{
		DayKey:       next.store.ActiveDay(),
		Tasks:        tasks,
		Reasonings:   reasonings,
		UsedFallback: usedFallback,
	})
	next = updated.(Model)

	if next.Generating {
		t.Fatal("expected generating flag cleared")
	}
	got := next.store.Tasks()
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got))
	}
	if got[0].ID == oldID {
		t.Fatal("expected a fresh id after regeneration")
	}
	if !got[1].IsBreak || got[1].Subject != "Break" {
		t.Fatalf("expected break defaults, got %+v", got[1])
	}
	if next.Planner.Reasonings[got[0].ID] != "hardest first" {
		t.Fatalf("expected reasoning keyed by new id, got %+v", next.Planner.Reasonings)
	}
}

func TestPlanReadyForStaleDayIsDiscarded(t *testing.T) {
	m := newTestModel(t)
	m = seedTask(t, m, "essay", 40)
	before := m.store.Tasks()

	planned := []gateway.PlannedTask{{Title: "phantom", EstimatedMinutes: 10}}
	tasks, _ := tasksFromPlan(planned, time.Now())
	updated, _ := m.Update(PlanReadyMsg{DayKey: "2001-01-01", Tasks: tasks})
	next := updated.(Model)

	after := next.store.Tasks()
	if len(after) != len(before) || after[0].Title != "essay" {
		t.Fatalf("stale plan must not touch the active day: %+v", after)
	}
}

func TestPlanReadyReplacesDayWholesale(t *testing.T) {
	m := newTestModel(t)
	m = seedTask(t, m, "done already", 10)
	doneID := m.store.Tasks()[0].ID
	m.store.MarkCompleted(context.Background(), doneID, 300)
	m = seedTask(t, m, "pending", 20)

	planned := []gateway.PlannedTask{{Title: "pending", EstimatedMinutes: 20}}
	tasks, _ := tasksFromPlan(planned, time.Now())
	updated, _ := m.Update(PlanReadyMsg{DayKey: m.store.ActiveDay(), Tasks: tasks})
	next := updated.(Model)

	got := next.store.Tasks()
	if len(got) != 1 || got[0].Title != "pending" {
		t.Fatalf("regeneration installs exactly the planned sequence: %+v", got)
	}
}

func TestTimerFlowStartTickFinish(t *testing.T) {
	m := newTestModel(t)
	m = seedTask(t, m, "worksheet", 1)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	m = updated.(Model)
	if m.CurrentView != ViewTimer || m.Timer.Engine == nil {
		t.Fatalf("expected timer view with engine, got %q", m.CurrentView)
	}

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = updated.(Model)
	if m.Timer.Engine.State() != timer.StateRunning {
		t.Fatalf("expected running, got %q", m.Timer.Engine.State())
	}
	if cmd == nil {
		t.Fatal("expected tick command on start")
	}

	seq := m.Timer.TickSeq
	updated, _ = m.Update(TimerTickMsg{Seq: seq})
	m = updated.(Model)
	if m.Timer.Engine.Elapsed() != 1 {
		t.Fatalf("expected 1 elapsed second, got %d", m.Timer.Engine.Elapsed())
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	m = updated.(Model)
	if m.Timer.Engine.State() != timer.StateFinished {
		t.Fatalf("expected finished, got %q", m.Timer.Engine.State())
	}
	completed := m.store.Completed()
	if len(completed) != 1 || completed[0].ActualSeconds == nil || *completed[0].ActualSeconds != 1 {
		t.Fatalf("expected completed task with 1s actual, got %+v", completed)
	}
}

func TestTimerStaleTickIsDropped(t *testing.T) {
	m := newTestModel(t)
	m = seedTask(t, m, "worksheet", 10)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	m = updated.(Model)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = updated.(Model)
	staleSeq := m.Timer.TickSeq

	// Pause then resume. The pre-pause tick chain is retired.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = updated.(Model)

	updated, _ = m.Update(TimerTickMsg{Seq: staleSeq})
	m = updated.(Model)
	if m.Timer.Engine.Elapsed() != 0 {
		t.Fatalf("stale tick must not count: elapsed=%d", m.Timer.Engine.Elapsed())
	}

	updated, _ = m.Update(TimerTickMsg{Seq: m.Timer.TickSeq})
	m = updated.(Model)
	if m.Timer.Engine.Elapsed() != 1 {
		t.Fatalf("live tick must count: elapsed=%d", m.Timer.Engine.Elapsed())
	}
}

func TestTimerResetRules(t *testing.T) {
	m := newTestModel(t)
	m = seedTask(t, m, "worksheet", 10)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	m = updated.(Model)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = updated.(Model)
	if !m.Status.IsError {
		t.Fatal("reset while running must surface an error status")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = updated.(Model)
	if m.Status.IsError {
		t.Fatalf("reset while paused should succeed: %+v", m.Status)
	}
	if m.Timer.Engine.State() != timer.StateIdle {
		t.Fatalf("expected idle after reset, got %q", m.Timer.Engine.State())
	}
}

func TestCalendarEnterOpensDay(t *testing.T) {
	m := newTestModel(t)
	m = seedTask(t, m, "today task", 10)
	today := m.store.ActiveDay()

	m = typeKeys(t, m, "2")
	m = typeKeys(t, m, "l") // focus tomorrow
	m = pressEnter(t, m)
	if m.CurrentView != ViewPlanner {
		t.Fatalf("expected planner after opening a day, got %q", m.CurrentView)
	}
	if m.store.ActiveDay() == today {
		t.Fatal("expected active day to change")
	}
	if len(m.store.Tasks()) != 0 {
		t.Fatalf("a fresh day starts empty, got %+v", m.store.Tasks())
	}

	// Browsing back recovers the original day untouched.
	m = typeKeys(t, m, "2")
	m = typeKeys(t, m, "h")
	m = pressEnter(t, m)
	if m.store.ActiveDay() != today {
		t.Fatalf("expected %q active, got %q", today, m.store.ActiveDay())
	}
	if len(m.store.Tasks()) != 1 {
		t.Fatalf("expected original task back, got %+v", m.store.Tasks())
	}
}

func TestPaletteDayCommand(t *testing.T) {
	m := newTestModel(t)
	m = typeKeys(t, m, "/")
	if !m.Palette.Active {
		t.Fatal("expected palette active")
	}
	m = typeKeys(t, m, "day tomorrow")
	m = pressEnter(t, m)

	want := model.DayKey(time.Now().AddDate(0, 0, 1))
	if m.store.ActiveDay() != want {
		t.Fatalf("expected active day %q, got %q", want, m.store.ActiveDay())
	}
	if m.Palette.Active {
		t.Fatal("expected palette closed after enter")
	}
}

func TestPaletteAddAndRemove(t *testing.T) {
	m := newTestModel(t)
	m = typeKeys(t, m, "/")
	m = typeKeys(t, m, "add spelling min:25 subject:English")
	m = pressEnter(t, m)

	tasks := m.store.Tasks()
	if len(tasks) != 1 || tasks[0].EstimatedMinutes != 25 {
		t.Fatalf("unexpected tasks after /add: %+v", tasks)
	}

	m = typeKeys(t, m, "/")
	m = typeKeys(t, m, "remove 1")
	m = pressEnter(t, m)
	if len(m.store.Tasks()) != 0 {
		t.Fatalf("expected empty list after /remove: %+v", m.store.Tasks())
	}
}

func TestPaletteUnknownCommandSetsErrorStatus(t *testing.T) {
	m := newTestModel(t)
	m = typeKeys(t, m, "/")
	m = typeKeys(t, m, "frobnicate")
	m = pressEnter(t, m)
	if !m.Status.IsError {
		t.Fatalf("expected error status, got %+v", m.Status)
	}
}

func TestViewContainsCoreState(t *testing.T) {
	m := newTestModel(t)
	m.Status = StatusBar{Text: "all good"}
	out := m.View()
	if !strings.Contains(out, "view: Planner") {
		t.Fatalf("expected view label in output: %q", out)
	}
	if !strings.Contains(out, "status: all good") {
		t.Fatalf("expected status in output: %q", out)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m := newTestModel(t)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	next := updated.(Model)
	if !next.Quitting {
		t.Fatal("expected quitting flag true")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}
