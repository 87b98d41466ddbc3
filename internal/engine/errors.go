package engine

import (
	"errors"
	"fmt"
)

// ErrVersionConflict signals that the crystal system changed between load
// and save. It is retryable: reload the aggregate and apply again.
var ErrVersionConflict = errors.New("crystal system version conflict")

// UnclassifiedActionError is returned when the classifier does not recognize
// an action kind. The caller must drop the action without side effects.
type UnclassifiedActionError struct {
	Kind ActionKind
}

func (e UnclassifiedActionError) Error() string {
	return fmt.Sprintf("unclassified action kind %q", string(e.Kind))
}

// InvalidDifficultyError is returned by the XP calculator for a difficulty
// outside the 1-5 scale. No XP is computed.
type InvalidDifficultyError struct {
	Difficulty Difficulty
}

func (e InvalidDifficultyError) Error() string {
	return fmt.Sprintf("invalid difficulty %d (must be 1-5)", int(e.Difficulty))
}

// InvalidGrowthRecordError rejects a malformed growth record before any
// state is touched.
type InvalidGrowthRecordError struct {
	Reason string
}

func (e InvalidGrowthRecordError) Error() string {
	return "invalid growth record: " + e.Reason
}
