package engine

import (
	"fmt"
	"strings"
	"time"
)

// Attribute is one of the eight crystal growth dimensions tracked per user.
type Attribute string

const (
	AttributeSelfDiscipline Attribute = "self_discipline"
	AttributeEmpathy        Attribute = "empathy"
	AttributeResilience     Attribute = "resilience"
	AttributeCuriosity      Attribute = "curiosity"
	AttributeCommunication  Attribute = "communication"
	AttributeCreativity     Attribute = "creativity"
	AttributeCourage        Attribute = "courage"
	AttributeWisdom         Attribute = "wisdom"
)

// AllAttributes lists every crystal attribute in display order.
// A user's crystal system owns exactly one gauge per entry.
var AllAttributes = []Attribute{
	AttributeSelfDiscipline,
	AttributeEmpathy,
	AttributeResilience,
	AttributeCuriosity,
	AttributeCommunication,
	AttributeCreativity,
	AttributeCourage,
	AttributeWisdom,
}

func (a Attribute) IsValid() bool {
	switch a {
	case AttributeSelfDiscipline, AttributeEmpathy, AttributeResilience, AttributeCuriosity,
		AttributeCommunication, AttributeCreativity, AttributeCourage, AttributeWisdom:
		return true
	default:
		return false
	}
}

func ParseAttribute(input string) (Attribute, error) {
	a := Attribute(strings.TrimSpace(strings.ToLower(input)))
	if !a.IsValid() {
		return "", fmt.Errorf("invalid attribute: %q", input)
	}
	return a, nil
}

// GrowthEventKind tags a growth record with what triggered it.
type GrowthEventKind string

const (
	EventTaskCompletion    GrowthEventKind = "task_completion"
	EventStoryChoice       GrowthEventKind = "story_choice"
	EventMoodImprovement   GrowthEventKind = "mood_improvement"
	EventReflectionEntry   GrowthEventKind = "reflection_entry"
	EventSocialInteraction GrowthEventKind = "social_interaction"
	EventCreativeActivity  GrowthEventKind = "creative_activity"
	EventChallengeOvercome GrowthEventKind = "challenge_overcome"
	EventWisdomGained      GrowthEventKind = "wisdom_gained"
)

func (k GrowthEventKind) IsValid() bool {
	switch k {
	case EventTaskCompletion, EventStoryChoice, EventMoodImprovement, EventReflectionEntry,
		EventSocialInteraction, EventCreativeActivity, EventChallengeOvercome, EventWisdomGained:
		return true
	default:
		return false
	}
}

// ActionKind is the external action vocabulary accepted by the classifier.
type ActionKind string

const (
	ActionTaskCompletion    ActionKind = "task_completion"
	ActionMoodImprovement   ActionKind = "mood_improvement"
	ActionStoryChoice       ActionKind = "story_choice"
	ActionReflectionEntry   ActionKind = "reflection_entry"
	ActionSocialInteraction ActionKind = "social_interaction"
	ActionCreativeActivity  ActionKind = "creative_activity"
	ActionChallengeOvercome ActionKind = "challenge_overcome"
	ActionWisdomGained      ActionKind = "wisdom_gained"
)

func ParseActionKind(input string) (ActionKind, error) {
	k := ActionKind(strings.TrimSpace(strings.ToLower(input)))
	switch k {
	case ActionTaskCompletion, ActionMoodImprovement, ActionStoryChoice, ActionReflectionEntry,
		ActionSocialInteraction, ActionCreativeActivity, ActionChallengeOvercome, ActionWisdomGained:
		return k, nil
	default:
		return "", fmt.Errorf("invalid action kind: %q", input)
	}
}

// TaskType drives which attribute a completed task grows.
type TaskType string

const (
	TaskRoutine TaskType = "routine"
	TaskOneShot TaskType = "one_shot"
	TaskSkillUp TaskType = "skill_up"
	TaskSocial  TaskType = "social"
)

func (t TaskType) IsValid() bool {
	switch t {
	case TaskRoutine, TaskOneShot, TaskSkillUp, TaskSocial:
		return true
	default:
		return false
	}
}

func ParseTaskType(input string) (TaskType, error) {
	t := TaskType(strings.TrimSpace(strings.ToLower(input)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid task type: %q", input)
	}
	return t, nil
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskOverdue    TaskStatus = "overdue"
)

type Difficulty int

const (
	DifficultyVeryEasy Difficulty = 1
	DifficultyEasy     Difficulty = 2
	DifficultyMedium   Difficulty = 3
	DifficultyHard     Difficulty = 4
	DifficultyVeryHard Difficulty = 5
)

func (d Difficulty) IsValid() bool {
	return d >= DifficultyVeryEasy && d <= DifficultyVeryHard
}

// MoodScore is a 1-5 self report; 3 is neutral.
type MoodScore int

const (
	MoodLowest  MoodScore = 1
	MoodNeutral MoodScore = 3
	MoodHighest MoodScore = 5
)

func (m MoodScore) IsValid() bool {
	return m >= MoodLowest && m <= MoodHighest
}

// ActionDescriptor is the engine's input boundary: one discrete user action.
// Payload fields are kind-specific and ignored by other kinds.
type ActionDescriptor struct {
	Kind           ActionKind
	UID            string
	IdempotencyKey string
	Timestamp      time.Time

	// task_completion payload
	TaskType TaskType
	TaskID   int64
	Tags     []string

	// mood_improvement payload
	MoodBefore MoodScore
	MoodAfter  MoodScore

	// free-form trigger context, stored opaquely on the growth record
	Context string
}

// GrowthDraft is the classifier's output: what grew and why, with the
// amount left for the growth tracker to finalize.
type GrowthDraft struct {
	UID            string
	Attribute      Attribute
	EventKind      GrowthEventKind
	IdempotencyKey string
	Context        string
	Timestamp      time.Time
}
