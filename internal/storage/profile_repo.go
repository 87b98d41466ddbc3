package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type ProfileRepo struct {
	db DBTX
}

func NewProfileRepo(db DBTX) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// WithTx returns a copy of the repo bound to tx.
func (r *ProfileRepo) WithTx(tx *sql.Tx) *ProfileRepo {
	return &ProfileRepo{db: tx}
}

func (r *ProfileRepo) Get(ctx context.Context, uid string) (*UserProfile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT uid, display_name, player_level, total_xp, crystal_gauges,
			current_chapter, daily_task_limit, care_points, created_at
		FROM profiles
		WHERE uid = ?
	`, uid)

	var p UserProfile
	var gauges string
	if err := row.Scan(&p.UID, &p.DisplayName, &p.PlayerLevel, &p.TotalXP, &gauges,
		&p.CurrentChapter, &p.DailyTaskLimit, &p.CarePoints, &p.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("profile get: %w", err)
	}
	if err := json.Unmarshal([]byte(gauges), &p.CrystalGauges); err != nil {
		return nil, fmt.Errorf("profile gauges decode: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepo) GetOrCreate(ctx context.Context, uid string) (*UserProfile, error) {
	p, err := r.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	if _, err := r.db.ExecContext(ctx, `INSERT INTO profiles (uid, display_name) VALUES (?, ?)`, uid, uid); err != nil {
		return nil, fmt.Errorf("profile insert: %w", err)
	}
	return r.Get(ctx, uid)
}

func (r *ProfileRepo) Update(ctx context.Context, p *UserProfile) error {
	gauges, err := json.Marshal(p.CrystalGauges)
	if err != nil {
		return fmt.Errorf("profile gauges encode: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE profiles
		SET display_name = ?, player_level = ?, total_xp = ?, crystal_gauges = ?,
			current_chapter = ?, daily_task_limit = ?, care_points = ?
		WHERE uid = ?
	`, p.DisplayName, p.PlayerLevel, p.TotalXP, string(gauges),
		p.CurrentChapter, p.DailyTaskLimit, p.CarePoints, p.UID)
	if err != nil {
		return fmt.Errorf("profile update: %w", err)
	}
	return nil
}
