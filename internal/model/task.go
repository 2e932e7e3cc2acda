package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus  = errors.New("model: invalid task status")
	ErrInvalidMinutes = errors.New("model: estimated minutes out of range")
)

// MaxEstimatedMinutes bounds a single task estimate at eight hours.
const MaxEstimatedMinutes = 480

type TaskStatus string

const (
	StatusPending   TaskStatus = "Pending"
	StatusActive    TaskStatus = "Active"
	StatusCompleted TaskStatus = "Completed"
	StatusSkipped   TaskStatus = "Skipped"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted, StatusSkipped:
		return true
	default:
		return false
	}
}

// Done reports whether the status is terminal. Pending and Active tasks
// both live in the pending region of a day's sequence.
func (s TaskStatus) Done() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// Task is one schedulable unit of work or rest within a single day.
// ActualSeconds is set exactly once, from the timer engine's reported
// elapsed time, when the task completes.
type Task struct {
	ID               string
	Title            string
	Subject          string
	EstimatedMinutes int
	IsBreak          bool
	Emoji            string
	Status           TaskStatus
	ActualSeconds    *int
	CreatedAt        time.Time
}

func NewID() string {
	return uuid.NewString()
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if t.EstimatedMinutes <= 0 || t.EstimatedMinutes > MaxEstimatedMinutes {
		return fmt.Errorf("%w: %d", ErrInvalidMinutes, t.EstimatedMinutes)
	}
	if t.Status == StatusCompleted && t.ActualSeconds == nil {
		return errors.New("model: actual seconds is required when task is Completed")
	}
	if t.Status != StatusCompleted && t.ActualSeconds != nil {
		return errors.New("model: actual seconds must be nil when task is not Completed")
	}
	return nil
}

// Partition splits a day's sequence into its pending and completed
// regions. The split is a pure function of status, computed on every
// read, so a task can never land in neither or both regions.
func Partition(tasks []Task) (pending, completed []Task) {
	pending = make([]Task, 0, len(tasks))
	completed = make([]Task, 0)
	for _, t := range tasks {
		if t.Status.Done() {
			completed = append(completed, t)
			continue
		}
		pending = append(pending, t)
	}
	return pending, completed
}

// EffectiveMinutes is the measured duration for a completed task when one
// was recorded, and the estimate otherwise.
func EffectiveMinutes(t Task) float64 {
	if t.Status == StatusCompleted && t.ActualSeconds != nil {
		return float64(*t.ActualSeconds) / 60
	}
	return float64(t.EstimatedMinutes)
}

// Progress is the share of effective minutes already completed, as a
// percentage. An empty sequence reports 0 rather than dividing by zero.
func Progress(tasks []Task) float64 {
	var done, total float64
	for _, t := range tasks {
		minutes := EffectiveMinutes(t)
		total += minutes
		if t.Status == StatusCompleted {
			done += minutes
		}
	}
	if total == 0 {
		return 0
	}
	return done / total * 100
}
