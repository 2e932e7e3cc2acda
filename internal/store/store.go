package store

import (
	"context"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/wangxr0701-sudo/kiddotime/internal/model"
	"github.com/wangxr0701-sudo/kiddotime/internal/storage"
)

// DayStore multiplexes one continuously-editable task list over many days
// of history. The in-memory map is the working state; every mutation
// funnels through setTasks, which mirrors the day's sequence into the
// repository before returning, so memory and durable state never diverge.
type DayStore struct {
	repo   storage.Repository
	days   map[string][]model.Task
	active string
}

func New(repo storage.Repository) *DayStore {
	return &DayStore{
		repo: repo,
		days: make(map[string][]model.Task),
	}
}

// Load reads the whole history record once at startup. An unreadable
// record degrades to an empty history; it is never fatal.
func (s *DayStore) Load(ctx context.Context) {
	if s.repo == nil {
		return
	}
	all, err := s.repo.LoadAll(ctx)
	if err != nil {
		log.WithError(err).Warn("store: history unreadable, starting empty")
		s.days = make(map[string][]model.Task)
		return
	}
	s.days = make(map[string][]model.Task, len(all))
	for dayKey, rows := range all {
		s.days[dayKey] = rowsToTasks(rows)
	}
}

func (s *DayStore) ActiveDay() string {
	return s.active
}

// SelectDay switches the active day and returns its stored sequence, or
// an empty sequence if none exists yet. Viewing a day never mutates the
// history.
func (s *DayStore) SelectDay(dayKey string) []model.Task {
	s.active = dayKey
	return s.Tasks()
}

// Tasks returns a copy of the active day's sequence.
func (s *DayStore) Tasks() []model.Task {
	return copyTasks(s.days[s.active])
}

// DayTasks returns a copy of any day's stored sequence without touching
// the active day.
func (s *DayStore) DayTasks(dayKey string) []model.Task {
	return copyTasks(s.days[dayKey])
}

func (s *DayStore) Pending() []model.Task {
	pending, _ := model.Partition(s.days[s.active])
	return copyTasks(pending)
}

func (s *DayStore) Completed() []model.Task {
	_, completed := model.Partition(s.days[s.active])
	return copyTasks(completed)
}

func (s *DayStore) Progress() float64 {
	return model.Progress(s.days[s.active])
}

// Days lists every day key with stored history, ascending.
func (s *DayStore) Days() []string {
	out := make([]string, 0, len(s.days))
	for dayKey, tasks := range s.days {
		if len(tasks) > 0 {
			out = append(out, dayKey)
		}
	}
	sort.Strings(out)
	return out
}

// SetTasks replaces the entire sequence for a day, normalized so the
// pending region precedes the completed region, and persists it before
// returning. Every other mutation routes through here.
func (s *DayStore) SetTasks(ctx context.Context, dayKey string, tasks []model.Task) {
	pending, completed := model.Partition(tasks)
	normalized := append(pending, completed...)
	s.days[dayKey] = normalized
	s.persist(ctx, dayKey, normalized)
}

// AddTask appends to the end of the active day's pending region.
func (s *DayStore) AddTask(ctx context.Context, task model.Task) {
	if task.Status == "" {
		task.Status = model.StatusPending
	}
	pending, completed := model.Partition(s.days[s.active])
	next := append(pending, task)
	s.SetTasks(ctx, s.active, append(next, completed...))
}

// RemoveTask removes by id from the active day. Absent ids are a no-op.
func (s *DayStore) RemoveTask(ctx context.Context, id string) {
	current := s.days[s.active]
	next := make([]model.Task, 0, len(current))
	removed := false
	for _, t := range current {
		if t.ID == id {
			removed = true
			continue
		}
		next = append(next, t)
	}
	if !removed {
		return
	}
	s.SetTasks(ctx, s.active, next)
}

// Reorder replaces only the ordering of the pending region. The new
// order must be a permutation of the current pending ids; anything else
// is a bounds-checked no-op. Completed tasks keep their relative order.
func (s *DayStore) Reorder(ctx context.Context, pendingIDs []string) {
	pending, completed := model.Partition(s.days[s.active])
	if len(pendingIDs) != len(pending) {
		return
	}
	byID := make(map[string]model.Task, len(pending))
	for _, t := range pending {
		byID[t.ID] = t
	}
	next := make([]model.Task, 0, len(pending))
	for _, id := range pendingIDs {
		t, ok := byID[id]
		if !ok {
			return
		}
		delete(byID, id)
		next = append(next, t)
	}
	s.SetTasks(ctx, s.active, append(next, completed...))
}

// MoveTaskToIndex reinserts a pending task at the given index within the
// pending region. The index is clamped; moving a completed or unknown
// task is a no-op. Both the discrete up/down swap and a continuous
// drag-style gesture reduce to this operation.
func (s *DayStore) MoveTaskToIndex(ctx context.Context, id string, index int) {
	pending, completed := model.Partition(s.days[s.active])
	from := -1
	for i, t := range pending {
		if t.ID == id {
			from = i
			break
		}
	}
	if from == -1 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index > len(pending)-1 {
		index = len(pending) - 1
	}
	if index == from {
		return
	}
	task := pending[from]
	next := append(append([]model.Task{}, pending[:from]...), pending[from+1:]...)
	next = append(next[:index], append([]model.Task{task}, next[index:]...)...)
	s.SetTasks(ctx, s.active, append(next, completed...))
}

// MoveTask shifts a pending task by delta positions (the keyboard swap
// interaction).
func (s *DayStore) MoveTask(ctx context.Context, id string, delta int) {
	pending, _ := model.Partition(s.days[s.active])
	for i, t := range pending {
		if t.ID == id {
			s.MoveTaskToIndex(ctx, id, i+delta)
			return
		}
	}
}

// MarkCompleted transitions a task to Completed and records the timer's
// reported duration. It reports false, without mutating anything, if the
// id is absent or the task is already done.
func (s *DayStore) MarkCompleted(ctx context.Context, id string, durationSeconds int) bool {
	current := s.days[s.active]
	next := copyTasks(current)
	for i, t := range next {
		if t.ID != id {
			continue
		}
		if t.Status.Done() {
			return false
		}
		seconds := durationSeconds
		next[i].Status = model.StatusCompleted
		next[i].ActualSeconds = &seconds
		s.SetTasks(ctx, s.active, next)
		return true
	}
	return false
}

// ApplyPlan discards the sequence stored under dayKey and installs a
// freshly generated one. Identity is not preserved across regeneration;
// callers mint new ids for every planned task.
func (s *DayStore) ApplyPlan(ctx context.Context, dayKey string, tasks []model.Task) {
	s.SetTasks(ctx, dayKey, tasks)
}

func (s *DayStore) persist(ctx context.Context, dayKey string, tasks []model.Task) {
	if s.repo == nil {
		return
	}
	if err := s.repo.SaveDay(ctx, dayKey, tasksToRows(dayKey, tasks)); err != nil {
		log.WithError(err).WithField("day", dayKey).Warn("store: persist failed")
	}
}

func copyTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	for i, t := range tasks {
		if t.ActualSeconds != nil {
			v := *t.ActualSeconds
			out[i].ActualSeconds = &v
		}
	}
	return out
}

func tasksToRows(dayKey string, tasks []model.Task) []storage.TaskRow {
	out := make([]storage.TaskRow, 0, len(tasks))
	for i, t := range tasks {
		row := storage.TaskRow{
			DayKey:           dayKey,
			Position:         i,
			ID:               t.ID,
			Title:            t.Title,
			Subject:          t.Subject,
			EstimatedMinutes: t.EstimatedMinutes,
			IsBreak:          t.IsBreak,
			Emoji:            t.Emoji,
			Status:           string(t.Status),
			CreatedAt:        t.CreatedAt,
		}
		if t.ActualSeconds != nil {
			v := *t.ActualSeconds
			row.ActualSeconds = &v
		}
		out = append(out, row)
	}
	return out
}

func rowsToTasks(rows []storage.TaskRow) []model.Task {
	out := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		task := model.Task{
			ID:               row.ID,
			Title:            row.Title,
			Subject:          row.Subject,
			EstimatedMinutes: row.EstimatedMinutes,
			IsBreak:          row.IsBreak,
			Emoji:            row.Emoji,
			Status:           model.TaskStatus(row.Status),
			CreatedAt:        row.CreatedAt,
		}
		if !task.Status.IsValid() {
			task.Status = model.StatusPending
		}
		if row.ActualSeconds != nil {
			v := *row.ActualSeconds
			task.ActualSeconds = &v
		}
		out = append(out, task)
	}
	return out
}
