package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type TaskRepo struct {
	db DBTX
}

func NewTaskRepo(db DBTX) *TaskRepo {
	return &TaskRepo{db: db}
}

// WithTx returns a copy of the repo bound to tx.
func (r *TaskRepo) WithTx(tx *sql.Tx) *TaskRepo {
	return &TaskRepo{db: tx}
}

type TaskInsert struct {
	UID        string
	TaskType   string
	Title      string
	Difficulty int
	Status     string
	DueDate    *time.Time
	Tags       []string
}

func (r *TaskRepo) Insert(ctx context.Context, in TaskInsert) (int64, error) {
	var tagsJSON *string
	if len(in.Tags) > 0 {
		data, err := json.Marshal(in.Tags)
		if err != nil {
			return 0, fmt.Errorf("marshal tags: %w", err)
		}
		s := string(data)
		tagsJSON = &s
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (uid, task_type, title, difficulty, status, due_date, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, in.UID, in.TaskType, in.Title, in.Difficulty, in.Status, in.DueDate, tagsJSON)
	if err != nil {
		return 0, fmt.Errorf("task insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("task last insert id: %w", err)
	}
	return id, nil
}

const taskColumns = `id, uid, task_type, title, difficulty, status, due_date,
	completed_at, xp_earned, mood_at_completion, tags, created_at`

func (r *TaskRepo) Get(ctx context.Context, id int64) (*TaskRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("task get: %w", err)
	}
	return t, nil
}

func (r *TaskRepo) ListByUser(ctx context.Context, uid string) ([]TaskRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE uid = ? ORDER BY id ASC`, uid)
	if err != nil {
		return nil, fmt.Errorf("task list: %w", err)
	}
	defer rows.Close()

	var out []TaskRecord
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("task scan: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task list rows: %w", err)
	}
	return out, nil
}

// MarkCompleted freezes the completion outcome on the task row. The guard
// on status makes the transition happen exactly once: the return value says
// whether this call claimed it. XP is set here once and never recomputed.
func (r *TaskRepo) MarkCompleted(ctx context.Context, id int64, completedAt time.Time, xpEarned int, moodAtCompletion *int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET status = 'completed', completed_at = ?, xp_earned = ?, mood_at_completion = ?
		WHERE id = ? AND status != 'completed'
	`, completedAt, xpEarned, moodAtCompletion, id)
	if err != nil {
		return false, fmt.Errorf("task mark completed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("task mark completed rows: %w", err)
	}
	return n == 1, nil
}

func (r *TaskRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("task update status: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*TaskRecord, error) {
	var (
		t        TaskRecord
		dueDate  sql.NullTime
		done     sql.NullTime
		mood     sql.NullInt64
		tagsJSON sql.NullString
	)
	if err := row.Scan(&t.ID, &t.UID, &t.TaskType, &t.Title, &t.Difficulty, &t.Status,
		&dueDate, &done, &t.XPEarned, &mood, &tagsJSON, &t.CreatedAt); err != nil {
		return nil, err
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if done.Valid {
		t.CompletedAt = &done.Time
	}
	if mood.Valid {
		m := int(mood.Int64)
		t.MoodAtCompletion = &m
	}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &t.Tags); err != nil {
			return nil, fmt.Errorf("task tags decode: %w", err)
		}
	}
	return &t, nil
}
