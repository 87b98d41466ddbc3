package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			uid TEXT PRIMARY KEY,
			display_name TEXT NOT NULL DEFAULT '',
			player_level INTEGER NOT NULL DEFAULT 1,
			total_xp INTEGER NOT NULL DEFAULT 0,
			crystal_gauges TEXT NOT NULL DEFAULT '{}',
			current_chapter TEXT NOT NULL DEFAULT 'self_discipline',
			daily_task_limit INTEGER NOT NULL DEFAULT 16,
			care_points INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uid TEXT NOT NULL,
			task_type TEXT NOT NULL,
			title TEXT NOT NULL,
			difficulty INTEGER NOT NULL DEFAULT 1,
			status TEXT NOT NULL DEFAULT 'pending',
			due_date DATETIME,
			completed_at DATETIME,
			xp_earned INTEGER NOT NULL DEFAULT 0,
			mood_at_completion INTEGER,
			tags TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(uid) REFERENCES profiles(uid)
		);`,
		`CREATE TABLE IF NOT EXISTS mood_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uid TEXT NOT NULL,
			log_date DATETIME NOT NULL,
			mood_score INTEGER NOT NULL,
			coefficient REAL NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS crystal_systems (
			uid TEXT PRIMARY KEY,
			resonance_level INTEGER NOT NULL DEFAULT 0,
			total_growth_events INTEGER NOT NULL DEFAULT 0,
			active_synergies TEXT NOT NULL DEFAULT '[]',
			version INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS crystal_states (
			uid TEXT NOT NULL,
			attribute TEXT NOT NULL,
			value INTEGER NOT NULL DEFAULT 0,
			growth_rate REAL NOT NULL DEFAULT 1.0,
			last_growth DATETIME,
			milestones TEXT NOT NULL DEFAULT '[]',
			PRIMARY KEY (uid, attribute)
		);`,
		// Append-only audit log. The unique idempotency key backs duplicate
		// detection for retried or double-submitted actions.
		`CREATE TABLE IF NOT EXISTS growth_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uid TEXT NOT NULL,
			attribute TEXT NOT NULL,
			event_kind TEXT NOT NULL,
			amount INTEGER NOT NULL,
			idempotency_key TEXT NOT NULL UNIQUE,
			context TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_uid_status ON tasks(uid, status);`,
		`CREATE INDEX IF NOT EXISTS idx_mood_logs_uid_date ON mood_logs(uid, log_date);`,
		`CREATE INDEX IF NOT EXISTS idx_growth_records_uid_created ON growth_records(uid, created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
