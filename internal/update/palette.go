package update

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wangxr0701-sudo/kiddotime/internal/commands"
	"github.com/wangxr0701-sudo/kiddotime/internal/model"
	"github.com/wangxr0701-sudo/kiddotime/internal/views"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.Palette = CommandPaletteState{}
		m.commandInput.Blur()
		m.Status = StatusBar{}
		return m, nil
	case "enter":
		input := m.Palette.Input
		m.Palette = CommandPaletteState{}
		m.commandInput.Blur()
		return m.executePaletteCommand(input)
	}

	var bubbleCmd tea.Cmd
	m.commandInput, bubbleCmd = m.commandInput.Update(msg)
	_ = bubbleCmd
	m.Palette.Input = m.commandInput.Value()
	return m, nil
}

func (m Model) executePaletteCommand(input string) (Model, tea.Cmd) {
	cmd, err := commands.Parse(input)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var followUp tea.Cmd
	handlers := commands.Handlers{
		Add: func(args commands.AddArgs) (commands.Result, error) {
			m.addTaskFromArgs(args)
			return commands.Result{Message: m.Status.Text}, nil
		},
		Plan: func(args commands.PlanArgs) (commands.Result, error) {
			if args.AvailableMinutes > 0 {
				m.availableMinutes = args.AvailableMinutes
			}
			var next Model
			next, followUp = m.startPlanGeneration()
			m = next
			return commands.Result{Message: m.Status.Text}, nil
		},
		Day: func(args commands.DayArgs) (commands.Result, error) {
			dayKey, err := resolveDayArg(args.When)
			if err != nil {
				return commands.Result{}, err
			}
			m.store.SelectDay(dayKey)
			m.Planner.Cursor = 0
			m.Planner.Reasonings = make(map[string]string)
			m.syncSelectedTaskToPlannerCursor()
			m.CurrentView = ViewPlanner
			return commands.Result{Message: fmt.Sprintf("switched to %s", dayKey)}, nil
		},
		Move: func(args commands.MoveArgs) (commands.Result, error) {
			pending := m.store.Pending()
			if args.From < 1 || args.From > len(pending) {
				return commands.Result{}, &commands.CommandError{
					Code:    commands.ErrCodeInvalidArgument,
					Message: fmt.Sprintf("no task at position %d", args.From),
				}
			}
			task := pending[args.From-1]
			m.store.MoveTaskToIndex(context.Background(), task.ID, args.To-1)
			return commands.Result{Message: fmt.Sprintf("moved %q to position %d", task.Title, args.To)}, nil
		},
		Remove: func(args commands.RemoveArgs) (commands.Result, error) {
			pending := m.store.Pending()
			if args.Position < 1 || args.Position > len(pending) {
				return commands.Result{}, &commands.CommandError{
					Code:    commands.ErrCodeInvalidArgument,
					Message: fmt.Sprintf("no task at position %d", args.Position),
				}
			}
			task := pending[args.Position-1]
			m.store.RemoveTask(context.Background(), task.ID)
			delete(m.Planner.Reasonings, task.ID)
			return commands.Result{Message: fmt.Sprintf("removed %q", task.Title)}, nil
		},
	}

	result, err := commands.Execute(cmd, handlers)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	if result.Message != "" {
		m.Status = StatusBar{Text: result.Message}
	}
	m.ensurePlannerState()
	m.syncSelectedTaskToPlannerCursor()
	return m, followUp
}

func resolveDayArg(when string) (string, error) {
	now := time.Now()
	switch when {
	case "", "today":
		return model.DayKey(now), nil
	case "tomorrow":
		return model.DayKey(now.AddDate(0, 0, 1)), nil
	case "yesterday":
		return model.DayKey(now.AddDate(0, 0, -1)), nil
	}
	if model.IsDayKey(when) {
		return when, nil
	}
	return "", &commands.CommandError{
		Code:    commands.ErrCodeInvalidArgument,
		Message: fmt.Sprintf("not a day: %q (want today, tomorrow, yesterday or YYYY-MM-DD)", when),
	}
}

func (m Model) renderCommandPalette() string {
	out := views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
	if out == "" {
		return ""
	}
	return "\n" + out
}
