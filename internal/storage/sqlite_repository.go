package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// SaveDay deletes and reinserts the day's rows in one transaction so a
// reader never observes a partially written snapshot.
func (r *SQLiteRepository) SaveDay(ctx context.Context, dayKey string, rows []TaskRow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save day: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM day_tasks WHERE day_key = ?`, dayKey); err != nil {
		return fmt.Errorf("clear day %s: %w", dayKey, err)
	}
	for position, row := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO day_tasks (day_key, position, id, title, subject, estimated_minutes, is_break, emoji, status, actual_seconds, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			dayKey, position, row.ID, row.Title, row.Subject, row.EstimatedMinutes,
			boolInt(row.IsBreak), row.Emoji, row.Status, nullInt(row.ActualSeconds), mustTime(row.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert day %s position %d: %w", dayKey, position, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) LoadDay(ctx context.Context, dayKey string) ([]TaskRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT day_key, position, id, title, subject, estimated_minutes, is_break, emoji, status, actual_seconds, created_at
		FROM day_tasks WHERE day_key = ? ORDER BY position ASC`, dayKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRows(rows)
}

func (r *SQLiteRepository) LoadAll(ctx context.Context) (map[string][]TaskRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT day_key, position, id, title, subject, estimated_minutes, is_break, emoji, status, actual_seconds, created_at
		FROM day_tasks ORDER BY day_key ASC, position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]TaskRow)
	for rows.Next() {
		row, scanErr := scanTaskRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out[row.DayKey] = append(out[row.DayKey], row)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteDay(ctx context.Context, dayKey string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM day_tasks WHERE day_key = ?`, dayKey)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListDays(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT day_key FROM day_tasks ORDER BY day_key ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	return out, rows.Err()
}

func collectRows(rows *sql.Rows) ([]TaskRow, error) {
	out := make([]TaskRow, 0)
	for rows.Next() {
		row, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTaskRow(s scanner) (TaskRow, error) {
	var out TaskRow
	var isBreak int
	var actual sql.NullInt64
	var created string
	if err := s.Scan(&out.DayKey, &out.Position, &out.ID, &out.Title, &out.Subject,
		&out.EstimatedMinutes, &isBreak, &out.Emoji, &out.Status, &actual, &created); err != nil {
		return TaskRow{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return TaskRow{}, err
	}
	out.IsBreak = isBreak == 1
	if actual.Valid {
		v := int(actual.Int64)
		out.ActualSeconds = &v
	}
	out.CreatedAt = createdAt
	return out, nil
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
