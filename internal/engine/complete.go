package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"crystalline/internal/storage"
)

type CompleteTaskInput struct {
	UID    string
	TaskID int64

	// AssistMultiplier reflects accommodations used during the task
	// (Pomodoro sessions, acknowledged reminders). Out-of-range values are
	// clamped to [1.0, 1.3], never rejected.
	AssistMultiplier float64
}

type CompleteResult struct {
	TaskID      int64
	XP          XPBreakdown
	LevelBefore int
	LevelAfter  int
	LevelUp     bool
	MoodScore   *MoodScore
	Growth      *GrowthOutcome

	// AlreadyCompleted marks the idempotent path: the task was completed
	// before and the frozen award is echoed without re-applying anything.
	AlreadyCompleted bool
}

// taskIdempotencyKey derives the growth-record key for a task completion,
// so a retried completion can never grow a crystal twice.
func taskIdempotencyKey(taskID int64) string {
	return fmt.Sprintf("task:%d", taskID)
}

// CompleteTask transitions a task to completed exactly once, awarding XP
// from the fixed formula and growing the task's target crystal. The whole
// award — task row, profile XP, growth record, crystal save — runs as one
// transaction under the user's lock, so a second completion request
// returns the frozen result without side effects and concurrent distinct
// completions never lose XP to each other.
func (s *Service) CompleteTask(ctx context.Context, in CompleteTaskInput) (*CompleteResult, error) {
	lock := s.userLock(in.UID)
	lock.Lock()
	defer lock.Unlock()

	var res *CompleteResult
	err := s.runUserTx(ctx, in.UID, func(tx *sql.Tx) error {
		res = nil
		tasks := s.tasks.WithTx(tx)
		profiles := s.profiles.WithTx(tx)

		task, err := tasks.Get(ctx, in.TaskID)
		if err != nil {
			return err
		}
		if task == nil {
			return fmt.Errorf("task %d not found", in.TaskID)
		}
		if task.UID != in.UID {
			return fmt.Errorf("task %d does not belong to %s", in.TaskID, in.UID)
		}
		if task.Status == string(TaskCompleted) {
			res, err = frozenResult(ctx, profiles, task)
			return err
		}

		difficulty := Difficulty(task.Difficulty)
		taskType := TaskType(task.TaskType)
		if !taskType.IsValid() {
			return UnclassifiedActionError{Kind: ActionTaskCompletion}
		}

		// Mood coefficient comes from the most recent mood log; a user with
		// no log gets the neutral default.
		mood := DefaultMoodCoefficient
		var moodScore *MoodScore
		latest, err := s.moods.WithTx(tx).Latest(ctx, in.UID)
		if err != nil {
			return err
		}
		if latest != nil {
			score := MoodScore(latest.MoodScore)
			mood = MoodCoefficient(score)
			moodScore = &score
		}

		assist := in.AssistMultiplier
		if assist == 0 {
			assist = AssistMultiplierMin
		}

		xp, err := CalculateTaskXP(difficulty, mood, assist)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		var moodAt *int
		if moodScore != nil {
			v := int(*moodScore)
			moodAt = &v
		}
		claimed, err := tasks.MarkCompleted(ctx, in.TaskID, now, xp.FinalXP, moodAt)
		if err != nil {
			return err
		}
		if !claimed {
			// Lost a completion race to another process; echo whatever the
			// winner froze.
			task, err = tasks.Get(ctx, in.TaskID)
			if err != nil {
				return err
			}
			res, err = frozenResult(ctx, profiles, task)
			return err
		}

		p, err := profiles.GetOrCreate(ctx, in.UID)
		if err != nil {
			return err
		}
		levelBefore := LevelForXP(p.TotalXP)
		p.TotalXP += xp.FinalXP
		p.PlayerLevel = LevelForXP(p.TotalXP)
		if err := profiles.Update(ctx, p); err != nil {
			return err
		}

		growth, err := s.applyGrowth(ctx, tx, GrowthDraft{
			UID:            in.UID,
			Attribute:      mustTaskAttribute(taskType, task.Tags),
			EventKind:      EventTaskCompletion,
			IdempotencyKey: taskIdempotencyKey(in.TaskID),
			Context:        fmt.Sprintf("task %d (%s)", in.TaskID, task.Title),
			Timestamp:      now,
		})
		if err != nil {
			return err
		}

		res = &CompleteResult{
			TaskID:      in.TaskID,
			XP:          xp,
			LevelBefore: levelBefore,
			LevelAfter:  p.PlayerLevel,
			LevelUp:     p.PlayerLevel > levelBefore,
			MoodScore:   moodScore,
			Growth:      growth,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !res.AlreadyCompleted {
		s.logger.Info("task completed",
			zap.String("uid", in.UID),
			zap.Int64("task_id", in.TaskID),
			zap.Int("xp", res.XP.FinalXP),
			zap.Int("level", res.LevelAfter))
	}
	return res, nil
}

func mustTaskAttribute(taskType TaskType, tags []string) Attribute {
	attr, ok := taskAttribute(taskType, tags)
	if !ok {
		// Callers validate the task type first; routine is the safe floor.
		return AttributeSelfDiscipline
	}
	return attr
}

// frozenResult rebuilds the completion outcome from the immutable task row.
func frozenResult(ctx context.Context, profiles *storage.ProfileRepo, task *storage.TaskRecord) (*CompleteResult, error) {
	p, err := profiles.GetOrCreate(ctx, task.UID)
	if err != nil {
		return nil, err
	}
	res := &CompleteResult{
		TaskID:           task.ID,
		XP:               XPBreakdown{FinalXP: task.XPEarned},
		LevelBefore:      p.PlayerLevel,
		LevelAfter:       p.PlayerLevel,
		AlreadyCompleted: true,
	}
	if task.MoodAtCompletion != nil {
		score := MoodScore(*task.MoodAtCompletion)
		res.MoodScore = &score
	}
	return res, nil
}

type CreateTaskInput struct {
	UID        string
	TaskType   TaskType
	Title      string
	Difficulty Difficulty
	DueDate    *time.Time
	Tags       []string
}

// CreateTask records a new pending task.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (int64, error) {
	if in.Title == "" {
		return 0, fmt.Errorf("title is required")
	}
	if !in.TaskType.IsValid() {
		return 0, fmt.Errorf("invalid task type: %q", in.TaskType)
	}
	if !in.Difficulty.IsValid() {
		return 0, InvalidDifficultyError{Difficulty: in.Difficulty}
	}
	if _, err := s.profiles.GetOrCreate(ctx, in.UID); err != nil {
		return 0, err
	}
	return s.tasks.Insert(ctx, storage.TaskInsert{
		UID:        in.UID,
		TaskType:   string(in.TaskType),
		Title:      in.Title,
		Difficulty: int(in.Difficulty),
		Status:     string(TaskPending),
		DueDate:    in.DueDate,
		Tags:       in.Tags,
	})
}
