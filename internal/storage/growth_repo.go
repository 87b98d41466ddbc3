package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type GrowthRepo struct {
	db DBTX
}

func NewGrowthRepo(db DBTX) *GrowthRepo {
	return &GrowthRepo{db: db}
}

// WithTx returns a copy of the repo bound to tx.
func (r *GrowthRepo) WithTx(tx *sql.Tx) *GrowthRepo {
	return &GrowthRepo{db: tx}
}

// Insert appends one growth record. A duplicate idempotency key returns
// (0, false, nil) without writing, so retried deliveries are harmless.
func (r *GrowthRepo) Insert(ctx context.Context, rec GrowthRecordRow) (int64, bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO growth_records (uid, attribute, event_kind, amount, idempotency_key, context, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.UID, rec.Attribute, rec.EventKind, rec.Amount, rec.IdempotencyKey, rec.Context, rec.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("growth insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("growth last insert id: %w", err)
	}
	return id, true, nil
}

// GetByKey returns the record with the given idempotency key, or nil.
func (r *GrowthRepo) GetByKey(ctx context.Context, key string) (*GrowthRecordRow, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, uid, attribute, event_kind, amount, idempotency_key, context, created_at
		FROM growth_records
		WHERE idempotency_key = ?
	`, key)

	var rec GrowthRecordRow
	if err := row.Scan(&rec.ID, &rec.UID, &rec.Attribute, &rec.EventKind, &rec.Amount,
		&rec.IdempotencyKey, &rec.Context, &rec.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("growth get by key: %w", err)
	}
	return &rec, nil
}

// ListByUser returns a user's growth history, newest first.
func (r *GrowthRepo) ListByUser(ctx context.Context, uid string, limit int) ([]GrowthRecordRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, uid, attribute, event_kind, amount, idempotency_key, context, created_at
		FROM growth_records
		WHERE uid = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, uid, limit)
	if err != nil {
		return nil, fmt.Errorf("growth list: %w", err)
	}
	defer rows.Close()

	var out []GrowthRecordRow
	for rows.Next() {
		var rec GrowthRecordRow
		if err := rows.Scan(&rec.ID, &rec.UID, &rec.Attribute, &rec.EventKind, &rec.Amount,
			&rec.IdempotencyKey, &rec.Context, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("growth scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("growth list rows: %w", err)
	}
	return out, nil
}
