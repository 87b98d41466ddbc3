package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrVersionConflict is returned by SaveSystem when the stored version no
// longer matches the loaded one. The caller should reload and retry.
var ErrVersionConflict = errors.New("crystal system version conflict")

type CrystalRepo struct {
	db DBTX
}

func NewCrystalRepo(db DBTX) *CrystalRepo {
	return &CrystalRepo{db: db}
}

// WithTx returns a copy of the repo bound to tx.
func (r *CrystalRepo) WithTx(tx *sql.Tx) *CrystalRepo {
	return &CrystalRepo{db: tx}
}

// GetOrCreateSystem loads the crystal system row and its per-attribute
// states, creating an empty system row on first access. States appear as
// they are first saved; the engine fills in defaults for absent attributes.
func (r *CrystalRepo) GetOrCreateSystem(ctx context.Context, uid string) (*CrystalSystemRow, []CrystalStateRow, error) {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO crystal_systems (uid) VALUES (?)
		ON CONFLICT(uid) DO NOTHING
	`, uid); err != nil {
		return nil, nil, fmt.Errorf("crystal system insert: %w", err)
	}

	sys, err := r.getSystem(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	if sys == nil {
		return nil, nil, fmt.Errorf("crystal system missing after insert: %s", uid)
	}
	states, err := r.listStates(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	return sys, states, nil
}

func (r *CrystalRepo) getSystem(ctx context.Context, uid string) (*CrystalSystemRow, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT uid, resonance_level, total_growth_events, active_synergies, version
		FROM crystal_systems
		WHERE uid = ?
	`, uid)

	var sys CrystalSystemRow
	var synergies string
	if err := row.Scan(&sys.UID, &sys.ResonanceLevel, &sys.TotalGrowthEvents, &synergies, &sys.Version); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("crystal system get: %w", err)
	}
	if err := json.Unmarshal([]byte(synergies), &sys.ActiveSynergies); err != nil {
		return nil, fmt.Errorf("crystal synergies decode: %w", err)
	}
	return &sys, nil
}

func (r *CrystalRepo) listStates(ctx context.Context, uid string) ([]CrystalStateRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT uid, attribute, value, growth_rate, last_growth, milestones
		FROM crystal_states
		WHERE uid = ?
		ORDER BY attribute ASC
	`, uid)
	if err != nil {
		return nil, fmt.Errorf("crystal states list: %w", err)
	}
	defer rows.Close()

	var out []CrystalStateRow
	for rows.Next() {
		var (
			s          CrystalStateRow
			lastGrowth sql.NullTime
			milestones string
		)
		if err := rows.Scan(&s.UID, &s.Attribute, &s.Value, &s.GrowthRate, &lastGrowth, &milestones); err != nil {
			return nil, fmt.Errorf("crystal state scan: %w", err)
		}
		if lastGrowth.Valid {
			s.LastGrowth = &lastGrowth.Time
		}
		if err := json.Unmarshal([]byte(milestones), &s.Milestones); err != nil {
			return nil, fmt.Errorf("crystal milestones decode: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("crystal states rows: %w", err)
	}
	return out, nil
}

// SaveSystem persists the full aggregate conditionally on the version the
// caller loaded. When the repo is not already bound to a transaction it
// opens one, so the version bump and every state upsert commit together
// or not at all.
func (r *CrystalRepo) SaveSystem(ctx context.Context, sys *CrystalSystemRow, states []CrystalStateRow) error {
	if db, ok := r.db.(*sql.DB); ok {
		return WithTx(ctx, db, func(tx *sql.Tx) error {
			return r.WithTx(tx).SaveSystem(ctx, sys, states)
		})
	}

	synergies, err := json.Marshal(sys.ActiveSynergies)
	if err != nil {
		return fmt.Errorf("crystal synergies encode: %w", err)
	}
	if sys.ActiveSynergies == nil {
		synergies = []byte("[]")
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE crystal_systems
		SET resonance_level = ?, total_growth_events = ?, active_synergies = ?, version = version + 1
		WHERE uid = ? AND version = ?
	`, sys.ResonanceLevel, sys.TotalGrowthEvents, string(synergies), sys.UID, sys.Version)
	if err != nil {
		return fmt.Errorf("crystal system update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("crystal system rows affected: %w", err)
	}
	if n == 0 {
		return ErrVersionConflict
	}

	for _, s := range states {
		milestones, err := json.Marshal(s.Milestones)
		if err != nil {
			return fmt.Errorf("crystal milestones encode: %w", err)
		}
		if s.Milestones == nil {
			milestones = []byte("[]")
		}
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO crystal_states (uid, attribute, value, growth_rate, last_growth, milestones)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(uid, attribute) DO UPDATE SET
				value = excluded.value,
				growth_rate = excluded.growth_rate,
				last_growth = excluded.last_growth,
				milestones = excluded.milestones
		`, s.UID, s.Attribute, s.Value, s.GrowthRate, s.LastGrowth, string(milestones)); err != nil {
			return fmt.Errorf("crystal state upsert: %w", err)
		}
	}
	return nil
}
