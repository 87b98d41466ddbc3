package engine

import "math"

const (
	// BaseXPPerDifficulty is the fixed base of the task XP formula:
	// final_xp = round(base * difficulty * mood_coefficient * assist).
	BaseXPPerDifficulty = 10.0

	// MoodCoefficientMin / MoodCoefficientMax bound the mood factor.
	MoodCoefficientMin = 0.8
	MoodCoefficientMax = 1.2

	// AssistMultiplierMin / AssistMultiplierMax bound the ADHD-assist factor.
	AssistMultiplierMin = 1.0
	AssistMultiplierMax = 1.3

	// ReflectionXP is the flat award for a growth-note reflection entry.
	ReflectionXP = 25

	// LevelXPBase is the coefficient of the level curve:
	// XPForLevel(L) = (2^(L-1) - 1) * LevelXPBase.
	LevelXPBase = 100
)

// XPBreakdown reports every factor that produced a final XP award.
type XPBreakdown struct {
	BaseXP               int
	DifficultyMultiplier float64
	MoodCoefficient      float64
	ADHDAssistMultiplier float64
	FinalXP              int
}

// MoodCoefficient maps a 1-5 mood score linearly onto [0.8, 1.2].
// Computed in tenths so every endpoint is exact, not 1.2000000000000002.
func MoodCoefficient(score MoodScore) float64 {
	if !score.IsValid() {
		return 1.0
	}
	return float64(int(score)+7) / 10.0
}

// DefaultMoodCoefficient applies when no mood log exists for the period.
const DefaultMoodCoefficient = 1.0

// ClampAssist forces an assist multiplier into [1.0, 1.3]. Out-of-range
// values are clamped, not rejected.
func ClampAssist(m float64) float64 {
	if math.IsNaN(m) || m < AssistMultiplierMin {
		return AssistMultiplierMin
	}
	if m > AssistMultiplierMax {
		return AssistMultiplierMax
	}
	return m
}

// CalculateTaskXP computes the final XP for a task completion. It is a pure
// function of its inputs; identical inputs always yield identical output.
func CalculateTaskXP(d Difficulty, moodCoefficient, assistMultiplier float64) (XPBreakdown, error) {
	if !d.IsValid() {
		return XPBreakdown{}, InvalidDifficultyError{Difficulty: d}
	}

	mood := moodCoefficient
	if math.IsNaN(mood) || mood < MoodCoefficientMin {
		mood = MoodCoefficientMin
	}
	if mood > MoodCoefficientMax {
		mood = MoodCoefficientMax
	}
	assist := ClampAssist(assistMultiplier)

	final := int(math.Round(BaseXPPerDifficulty * float64(d) * mood * assist))
	if final < 1 {
		final = 1
	}

	return XPBreakdown{
		BaseXP:               int(BaseXPPerDifficulty),
		DifficultyMultiplier: float64(d),
		MoodCoefficient:      mood,
		ADHDAssistMultiplier: assist,
		FinalXP:              final,
	}, nil
}

// XPForLevel returns the total XP threshold required to be at the given
// level. Level 1 requires 0 XP; each level doubles the gap to the next.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return (1<<(level-1) - 1) * LevelXPBase
}

// LevelForXP returns the highest level L such that totalXP >= XPForLevel(L).
func LevelForXP(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}
	level := 1
	for XPForLevel(level+1) <= totalXP {
		level++
		if level > 62 {
			break
		}
	}
	return level
}
