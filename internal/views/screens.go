package views

import (
	"fmt"
	"strings"
)

type PlannerItemData struct {
	ID       string
	Title    string
	Subject  string
	Minutes  int
	Emoji    string
	IsBreak  bool
	Done     bool
	Duration string
}

type PlannerPanelData struct {
	Day          string
	QuickAddView string
	Items        []PlannerItemData
	SelectedID   string
	ProgressView string
	ProgressPct  int
	Generating   bool
	SpinnerView  string
}

type PlannerMetadataData struct {
	SelectedID    string
	Title         string
	Subject       string
	Minutes       int
	Emoji         string
	IsBreak       bool
	Status        string
	Duration      string
	ReasoningView string
}

type CalendarDayData struct {
	DayKey    string
	TaskCount int
	DonePct   int
}

type CalendarPanelData struct {
	FocusDate string
	ActiveDay string
	TableView string
	Days      []CalendarDayData
	Cursor    int
}

type TimerPanelData struct {
	TaskTitle     string
	Emoji         string
	State         string
	Remaining     string
	Overtime      bool
	ElapsedView   string
	ProgressView  string
	ProgressPct   int
	Encouragement string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderPlannerPanel(data PlannerPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("planner: %s\n", data.Day))
	if data.Generating {
		b.WriteString(fmt.Sprintf("%s creating your schedule...\n", data.SpinnerView))
		return strings.TrimSpace(b.String())
	}
	b.WriteString(data.QuickAddView + "\n")
	b.WriteString("actions: [enter]add [j/k]move [J/K]reorder [x]delete [enter on task]... [g]generate [t]timer\n")
	b.WriteString(fmt.Sprintf("progress: %s %d%%\n", data.ProgressView, data.ProgressPct))

	pending := make([]PlannerItemData, 0, len(data.Items))
	done := make([]PlannerItemData, 0)
	for _, item := range data.Items {
		if item.Done {
			done = append(done, item)
			continue
		}
		pending = append(pending, item)
	}

	b.WriteString("\nup next:\n")
	if len(pending) == 0 {
		b.WriteString("  (nothing planned)\n")
	}
	for i, item := range pending {
		cursor := " "
		if data.SelectedID == item.ID {
			cursor = ">"
		}
		label := item.Title
		if item.IsBreak {
			label = breakStyle.Render(label)
		}
		b.WriteString(fmt.Sprintf("%s %d. %s %s (%s, %dm)\n", cursor, i+1, item.Emoji, label, item.Subject, item.Minutes))
	}

	b.WriteString("\nall done:\n")
	if len(done) == 0 {
		b.WriteString("  (none yet)\n")
	}
	for _, item := range done {
		cursor := " "
		if data.SelectedID == item.ID {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s ✔ %s %s (%s)\n", cursor, item.Emoji, item.Title, item.Duration))
	}
	return strings.TrimSpace(b.String())
}

func RenderPlannerMetadataPane(data PlannerMetadataData) string {
	if strings.TrimSpace(data.SelectedID) == "" {
		return "task:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("task:\n")
	b.WriteString(fmt.Sprintf("%s %s\n", data.Emoji, data.Title))
	b.WriteString(fmt.Sprintf("subject: %s\n", data.Subject))
	b.WriteString(fmt.Sprintf("estimate: %dm\n", data.Minutes))
	b.WriteString(fmt.Sprintf("status: %s\n", data.Status))
	if data.IsBreak {
		b.WriteString("kind: break\n")
	}
	if data.Duration != "" {
		b.WriteString(fmt.Sprintf("took: %s\n", data.Duration))
	}
	if data.ReasoningView != "" {
		b.WriteString("\nwhy this order:\n")
		b.WriteString(data.ReasoningView)
	}
	return strings.TrimSpace(b.String())
}

func RenderCalendarPanel(data CalendarPanelData) string {
	var b strings.Builder
	b.WriteString("calendar:\n")
	b.WriteString(fmt.Sprintf("focus: %s | active: %s\n", data.FocusDate, data.ActiveDay))
	b.WriteString("actions: [h/l]day [H/L]week [j/k]history [enter]open day\n")
	b.WriteString(data.TableView + "\n")

	if len(data.Days) == 0 {
		b.WriteString("\n(no saved days yet)")
		return strings.TrimSpace(b.String())
	}
	b.WriteString("\nsaved days:\n")
	for i, day := range data.Days {
		cursor := " "
		if i == data.Cursor {
			cursor = ">"
		}
		marker := " "
		if day.DayKey == data.ActiveDay {
			marker = "*"
		}
		b.WriteString(fmt.Sprintf("%s%s %s  %d tasks, %d%% done\n", cursor, marker, day.DayKey, day.TaskCount, day.DonePct))
	}
	return strings.TrimSpace(b.String())
}

func RenderTimerPanel(data TimerPanelData) string {
	var b strings.Builder
	b.WriteString("timer:\n")
	if data.TaskTitle != "" {
		b.WriteString(fmt.Sprintf("task: %s %s\n", data.Emoji, data.TaskTitle))
	} else {
		b.WriteString("task: (none selected)\n")
	}
	b.WriteString(fmt.Sprintf("state: %s\n", strings.ToUpper(data.State)))
	remaining := data.Remaining
	if data.Overtime {
		remaining = overtimeStyle.Render(remaining + "  OVERTIME")
	}
	b.WriteString(fmt.Sprintf("remaining: %s\n", remaining))
	b.WriteString(fmt.Sprintf("progress: %s %d%%\n", data.ProgressView, data.ProgressPct))
	if data.ElapsedView != "" {
		b.WriteString(fmt.Sprintf("finished in: %s\n", data.ElapsedView))
	}
	b.WriteString("actions: [space]start/pause [r]reset [f]finish\n")
	if data.Encouragement != "" {
		b.WriteString("\n" + data.Encouragement)
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("\nnotification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nglobal:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
