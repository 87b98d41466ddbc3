package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type MoodRepo struct {
	db DBTX
}

func NewMoodRepo(db DBTX) *MoodRepo {
	return &MoodRepo{db: db}
}

// WithTx returns a copy of the repo bound to tx.
func (r *MoodRepo) WithTx(tx *sql.Tx) *MoodRepo {
	return &MoodRepo{db: tx}
}

// Insert appends a mood log. Logs are immutable once created.
func (r *MoodRepo) Insert(ctx context.Context, m MoodLog) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO mood_logs (uid, log_date, mood_score, coefficient, notes)
		VALUES (?, ?, ?, ?, ?)
	`, m.UID, m.LogDate, m.MoodScore, m.Coefficient, m.Notes)
	if err != nil {
		return 0, fmt.Errorf("mood insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("mood last insert id: %w", err)
	}
	return id, nil
}

// Latest returns the most recent mood log for a user, or nil if none exists.
func (r *MoodRepo) Latest(ctx context.Context, uid string) (*MoodLog, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, uid, log_date, mood_score, coefficient, notes, created_at
		FROM mood_logs
		WHERE uid = ?
		ORDER BY log_date DESC, id DESC
		LIMIT 1
	`, uid)

	var m MoodLog
	if err := row.Scan(&m.ID, &m.UID, &m.LogDate, &m.MoodScore, &m.Coefficient, &m.Notes, &m.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("mood latest: %w", err)
	}
	return &m, nil
}

// ListSince returns logs at or after a time, oldest first.
func (r *MoodRepo) ListSince(ctx context.Context, uid string, since time.Time) ([]MoodLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, uid, log_date, mood_score, coefficient, notes, created_at
		FROM mood_logs
		WHERE uid = ? AND log_date >= ?
		ORDER BY log_date ASC, id ASC
	`, uid, since)
	if err != nil {
		return nil, fmt.Errorf("mood list: %w", err)
	}
	defer rows.Close()

	var out []MoodLog
	for rows.Next() {
		var m MoodLog
		if err := rows.Scan(&m.ID, &m.UID, &m.LogDate, &m.MoodScore, &m.Coefficient, &m.Notes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("mood scan: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mood list rows: %w", err)
	}
	return out, nil
}
