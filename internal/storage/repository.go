package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

// Repository persists per-day task snapshots. SaveDay rewrites a day's
// rows wholesale; there is no incremental update path.
type Repository interface {
	SaveDay(ctx context.Context, dayKey string, rows []TaskRow) error
	LoadDay(ctx context.Context, dayKey string) ([]TaskRow, error)
	LoadAll(ctx context.Context) (map[string][]TaskRow, error)
	DeleteDay(ctx context.Context, dayKey string) error
	ListDays(ctx context.Context) ([]string, error)
}
