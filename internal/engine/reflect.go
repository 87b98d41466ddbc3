package engine

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

type ReflectionResult struct {
	XPAwarded   int
	LevelBefore int
	LevelAfter  int
	LevelUp     bool
	Growth      *GrowthOutcome
}

// SubmitReflection records a growth-note entry: a flat XP award plus a
// Wisdom growth event, committed as one transaction. The idempotency key
// is supplied by the caller so a retried submission stays a no-op and
// never double-credits the XP.
func (s *Service) SubmitReflection(ctx context.Context, uid, idempotencyKey, notes string) (*ReflectionResult, error) {
	if idempotencyKey == "" {
		return nil, InvalidGrowthRecordError{Reason: "missing idempotency key"}
	}

	lock := s.userLock(uid)
	lock.Lock()
	defer lock.Unlock()

	var res *ReflectionResult
	err := s.runUserTx(ctx, uid, func(tx *sql.Tx) error {
		res = nil
		profiles := s.profiles.WithTx(tx)

		draft, err := Classify(ActionDescriptor{
			Kind:           ActionReflectionEntry,
			UID:            uid,
			IdempotencyKey: idempotencyKey,
			Timestamp:      time.Now().UTC(),
			Context:        notes,
		})
		if err != nil {
			return err
		}
		growth, err := s.applyGrowth(ctx, tx, draft)
		if err != nil {
			return err
		}

		res = &ReflectionResult{Growth: growth}
		p, err := profiles.GetOrCreate(ctx, uid)
		if err != nil {
			return err
		}
		if growth.Duplicate {
			res.LevelBefore = p.PlayerLevel
			res.LevelAfter = p.PlayerLevel
			return nil
		}

		levelBefore := LevelForXP(p.TotalXP)
		p.TotalXP += ReflectionXP
		p.PlayerLevel = LevelForXP(p.TotalXP)
		if err := profiles.Update(ctx, p); err != nil {
			return err
		}

		res.XPAwarded = ReflectionXP
		res.LevelBefore = levelBefore
		res.LevelAfter = p.PlayerLevel
		res.LevelUp = p.PlayerLevel > levelBefore
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !res.Growth.Duplicate {
		s.logger.Info("reflection recorded",
			zap.String("uid", uid),
			zap.Int("xp", ReflectionXP),
			zap.Int("level", res.LevelAfter))
	}
	return res, nil
}

// RecordAction is the generic entry point for story, social, creative,
// challenge and wisdom actions coming from collaborators.
func (s *Service) RecordAction(ctx context.Context, uid string, kind ActionKind, idempotencyKey, trigger string) (*GrowthOutcome, error) {
	if idempotencyKey == "" {
		return nil, InvalidGrowthRecordError{Reason: "missing idempotency key"}
	}
	return s.HandleAction(ctx, ActionDescriptor{
		Kind:           kind,
		UID:            uid,
		IdempotencyKey: idempotencyKey,
		Timestamp:      time.Now().UTC(),
		Context:        trigger,
	})
}

// GrowthHistory lists recent audit entries for display.
func (s *Service) GrowthHistory(ctx context.Context, uid string, limit int) ([]GrowthRecord, error) {
	rows, err := s.growth.ListByUser(ctx, uid, limit)
	if err != nil {
		return nil, err
	}
	out := make([]GrowthRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, GrowthRecord{
			UID:            r.UID,
			Attribute:      Attribute(r.Attribute),
			EventKind:      GrowthEventKind(r.EventKind),
			Amount:         r.Amount,
			IdempotencyKey: r.IdempotencyKey,
			Context:        r.Context,
			CreatedAt:      r.CreatedAt,
		})
	}
	return out, nil
}
