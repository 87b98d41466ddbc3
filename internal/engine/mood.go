package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"crystalline/internal/storage"
)

type MoodResult struct {
	LogID       int64
	Score       MoodScore
	Coefficient float64

	// Growth is set when the score improved on the previous log and a
	// resilience growth event fired.
	Growth *GrowthOutcome
}

// LogMood appends an immutable mood log with its derived XP coefficient.
// A score that improves on the user's previous log classifies as a
// mood-improvement action and grows Resilience, in the same transaction
// as the log itself.
func (s *Service) LogMood(ctx context.Context, uid string, score MoodScore, notes string) (*MoodResult, error) {
	if !score.IsValid() {
		return nil, fmt.Errorf("invalid mood score: %d (must be 1-5)", int(score))
	}

	lock := s.userLock(uid)
	lock.Lock()
	defer lock.Unlock()

	var res *MoodResult
	err := s.runUserTx(ctx, uid, func(tx *sql.Tx) error {
		res = nil
		moods := s.moods.WithTx(tx)

		if _, err := s.profiles.WithTx(tx).GetOrCreate(ctx, uid); err != nil {
			return err
		}
		prev, err := moods.Latest(ctx, uid)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		coefficient := MoodCoefficient(score)
		id, err := moods.Insert(ctx, storage.MoodLog{
			UID:         uid,
			LogDate:     now,
			MoodScore:   int(score),
			Coefficient: coefficient,
			Notes:       notes,
		})
		if err != nil {
			return err
		}

		res = &MoodResult{LogID: id, Score: score, Coefficient: coefficient}

		if prev != nil && int(score) > prev.MoodScore {
			draft, err := Classify(ActionDescriptor{
				Kind:           ActionMoodImprovement,
				UID:            uid,
				IdempotencyKey: fmt.Sprintf("mood:%d", id),
				Timestamp:      now,
				MoodBefore:     MoodScore(prev.MoodScore),
				MoodAfter:      score,
				Context:        fmt.Sprintf("mood %d -> %d", prev.MoodScore, int(score)),
			})
			if err != nil {
				return err
			}
			res.Growth, err = s.applyGrowth(ctx, tx, draft)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("mood logged",
		zap.String("uid", uid),
		zap.Int("score", int(score)),
		zap.Float64("coefficient", res.Coefficient))
	return res, nil
}
