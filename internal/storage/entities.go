package storage

import "time"

// TaskRow is the persisted form of one task within a day's snapshot.
// Position preserves the day's sequence order; the pending region sorts
// before the completed region by construction of the writer.
type TaskRow struct {
	DayKey           string
	Position         int
	ID               string
	Title            string
	Subject          string
	EstimatedMinutes int
	IsBreak          bool
	Emoji            string
	Status           string
	ActualSeconds    *int
	CreatedAt        time.Time
}
