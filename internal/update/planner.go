package update

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wangxr0701-sudo/kiddotime/internal/commands"
	"github.com/wangxr0701-sudo/kiddotime/internal/gateway"
	"github.com/wangxr0701-sudo/kiddotime/internal/model"
	"github.com/wangxr0701-sudo/kiddotime/internal/timer"
	"github.com/wangxr0701-sudo/kiddotime/internal/views"
)

func (m Model) handlePlannerKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.Planner.CaptureMode {
		return m.handleQuickAddKey(msg), nil
	}

	switch msg.String() {
	case "a", "i":
		m.Planner.CaptureMode = true
		m.Planner.Input = ""
		m.quickAddInput.SetValue("")
		m.quickAddInput.Focus()
	case "j", "down":
		tasks := m.store.Tasks()
		if m.Planner.Cursor < len(tasks)-1 {
			m.Planner.Cursor++
		}
		m.syncSelectedTaskToPlannerCursor()
	case "k", "up":
		if m.Planner.Cursor > 0 {
			m.Planner.Cursor--
		}
		m.syncSelectedTaskToPlannerCursor()
	case "J":
		return m.movePlannerSelection(1), nil
	case "K":
		return m.movePlannerSelection(-1), nil
	case "x", "delete":
		if selected, ok := m.currentPlannerItem(); ok {
			m.store.RemoveTask(context.Background(), selected.ID)
			delete(m.Planner.Reasonings, selected.ID)
			m.ensurePlannerState()
			m.syncSelectedTaskToPlannerCursor()
			m.Status = StatusBar{Text: fmt.Sprintf("removed %q", selected.Title)}
		}
	case "g":
		return m.startPlanGeneration()
	case "t", "enter":
		return m.openTimerForSelection()
	}
	return m, nil
}

func (m Model) handleQuickAddKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Planner.CaptureMode = false
		m.Planner.Input = ""
		m.quickAddInput.Blur()
		return m
	case "enter":
		input := strings.TrimSpace(m.Planner.Input)
		m.Planner.CaptureMode = false
		m.Planner.Input = ""
		m.quickAddInput.Blur()
		if input == "" {
			return m
		}
		cmd, err := commands.Parse("/add " + input)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
		m.addTaskFromArgs(*cmd.Add)
		return m
	}

	var bubbleCmd tea.Cmd
	m.quickAddInput, bubbleCmd = m.quickAddInput.Update(msg)
	_ = bubbleCmd
	m.Planner.Input = m.quickAddInput.Value()
	return m
}

func (m *Model) addTaskFromArgs(args commands.AddArgs) {
	minutes := args.Minutes
	if minutes <= 0 {
		minutes = defaultEstimateMinutes
	}
	subject := args.Subject
	if subject == "" {
		subject = defaultSubject
	}
	task := model.Task{
		ID:               model.NewID(),
		Title:            args.Title,
		Subject:          subject,
		EstimatedMinutes: minutes,
		Status:           model.StatusPending,
		CreatedAt:        timeNow(),
	}
	if err := task.Validate(); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return
	}
	m.store.AddTask(context.Background(), task)
	m.Status = StatusBar{Text: fmt.Sprintf("added %q (%dm)", task.Title, minutes)}
	m.syncSelectedTaskToPlannerCursor()
}

// movePlannerSelection nudges the selected pending task by delta and
// keeps the cursor glued to it.
func (m Model) movePlannerSelection(delta int) Model {
	selected, ok := m.currentPlannerItem()
	if !ok || selected.Status.Done() {
		return m
	}
	m.store.MoveTask(context.Background(), selected.ID, delta)
	for i, task := range m.store.Tasks() {
		if task.ID == selected.ID {
			m.Planner.Cursor = i
			break
		}
	}
	m.syncSelectedTaskToPlannerCursor()
	return m
}

func (m Model) startPlanGeneration() (Model, tea.Cmd) {
	pending := m.store.Pending()
	if len(pending) == 0 {
		m.Status = StatusBar{Text: "nothing to schedule, add a task first"}
		return m, nil
	}
	descriptors := make([]gateway.TaskDescriptor, 0, len(pending))
	for _, task := range pending {
		descriptors = append(descriptors, gateway.TaskDescriptor{
			Title:            task.Title,
			Subject:          task.Subject,
			EstimatedMinutes: task.EstimatedMinutes,
			Emoji:            task.Emoji,
		})
	}
	m.Generating = true
	m.Status = StatusBar{Text: "creating your schedule..."}
	return m, tea.Batch(
		m.genSpinner.Tick,
		generatePlanCmd(m.client, m.store.ActiveDay(), descriptors, m.availableMinutes),
	)
}

func (m Model) onPlanReady(msg PlanReadyMsg) Model {
	m.Generating = false
	if msg.DayKey != m.store.ActiveDay() {
		// The child switched days while the request was in flight. The
		// response belongs to the old day and is discarded whole.
		logPlanDiscarded(msg.DayKey, m.store.ActiveDay())
		return m
	}
	m.store.ApplyPlan(context.Background(), msg.DayKey, msg.Tasks)
	m.Planner.Reasonings = msg.Reasonings
	m.Planner.Cursor = 0
	m.syncSelectedTaskToPlannerCursor()
	if msg.UsedFallback {
		m.Status = StatusBar{Text: "planner unavailable, using your original order"}
	} else {
		m.Status = StatusBar{Text: fmt.Sprintf("schedule ready: %d steps", len(msg.Tasks))}
	}
	return m
}

func (m Model) openTimerForSelection() (Model, tea.Cmd) {
	selected, ok := m.currentPlannerItem()
	if !ok {
		m.Status = StatusBar{Text: "select a task first"}
		return m, nil
	}
	if selected.Status.Done() {
		m.Status = StatusBar{Text: "that one is already done"}
		return m, nil
	}
	m.Timer = TimerState{
		TaskID:          selected.ID,
		TaskTitle:       selected.Title,
		Emoji:           selected.Emoji,
		EstimateMinutes: selected.EstimatedMinutes,
		Engine:          timer.NewEngine(selected.EstimatedMinutes),
		TickSeq:         m.Timer.TickSeq,
	}
	m.CurrentView = ViewTimer
	return m, nil
}

func (m Model) renderPlannerView() string {
	tasks := m.store.Tasks()
	items := make([]views.PlannerItemData, 0, len(tasks))
	for _, task := range tasks {
		duration := ""
		if task.ActualSeconds != nil {
			duration = timer.FormatElapsed(*task.ActualSeconds)
		}
		items = append(items, views.PlannerItemData{
			ID:       task.ID,
			Title:    task.Title,
			Subject:  task.Subject,
			Minutes:  task.EstimatedMinutes,
			Emoji:    task.Emoji,
			IsBreak:  task.IsBreak,
			Done:     task.Status.Done(),
			Duration: duration,
		})
	}
	quickAdd := ""
	if m.Planner.CaptureMode {
		quickAdd = m.quickAddInput.View()
	} else {
		quickAdd = "press [a] to add a task"
	}
	pct := m.store.Progress()
	return views.RenderPlannerPanel(views.PlannerPanelData{
		Day:          m.store.ActiveDay(),
		QuickAddView: quickAdd,
		Items:        items,
		SelectedID:   m.SelectedTaskID,
		ProgressView: m.dayProgress.ViewAs(pct / 100),
		ProgressPct:  int(pct),
		Generating:   m.Generating,
		SpinnerView:  m.genSpinner.View(),
	})
}

func (m Model) renderPlannerMetadataPane() string {
	selected, ok := m.currentPlannerItem()
	if !ok {
		return views.RenderPlannerMetadataPane(views.PlannerMetadataData{})
	}
	duration := ""
	if selected.ActualSeconds != nil {
		duration = timer.FormatElapsed(*selected.ActualSeconds)
	}
	reasoning := ""
	if text := m.Planner.Reasonings[selected.ID]; text != "" {
		reasoning = views.RenderMarkdown(text)
	}
	return views.RenderPlannerMetadataPane(views.PlannerMetadataData{
		SelectedID:    selected.ID,
		Title:         selected.Title,
		Subject:       selected.Subject,
		Minutes:       selected.EstimatedMinutes,
		Emoji:         selected.Emoji,
		IsBreak:       selected.IsBreak,
		Status:        string(selected.Status),
		Duration:      duration,
		ReasoningView: reasoning,
	})
}
