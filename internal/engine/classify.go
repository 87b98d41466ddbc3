package engine

import "strings"

// actionEventKinds is the total map from action kind to growth event kind.
var actionEventKinds = map[ActionKind]GrowthEventKind{
	ActionTaskCompletion:    EventTaskCompletion,
	ActionMoodImprovement:   EventMoodImprovement,
	ActionStoryChoice:       EventStoryChoice,
	ActionReflectionEntry:   EventReflectionEntry,
	ActionSocialInteraction: EventSocialInteraction,
	ActionCreativeActivity:  EventCreativeActivity,
	ActionChallengeOvercome: EventChallengeOvercome,
	ActionWisdomGained:      EventWisdomGained,
}

// actionAttributes maps each non-task action kind to its single target
// attribute. Task completions are resolved by task type and tags instead.
var actionAttributes = map[ActionKind]Attribute{
	ActionMoodImprovement:   AttributeResilience,
	ActionStoryChoice:       AttributeCuriosity,
	ActionReflectionEntry:   AttributeWisdom,
	ActionSocialInteraction: AttributeEmpathy,
	ActionCreativeActivity:  AttributeCreativity,
	ActionChallengeOvercome: AttributeCourage,
	ActionWisdomGained:      AttributeWisdom,
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(strings.TrimSpace(t), want) {
			return true
		}
	}
	return false
}

// taskAttribute resolves the target attribute of a completed task.
// routine work trains discipline, one-shots take courage, skill-up leans
// curiosity unless tagged creative, social leans communication unless the
// interaction was explicitly empathetic.
func taskAttribute(taskType TaskType, tags []string) (Attribute, bool) {
	switch taskType {
	case TaskRoutine:
		return AttributeSelfDiscipline, true
	case TaskOneShot:
		return AttributeCourage, true
	case TaskSkillUp:
		if hasTag(tags, "creative") {
			return AttributeCreativity, true
		}
		return AttributeCuriosity, true
	case TaskSocial:
		if hasTag(tags, "empathy") {
			return AttributeEmpathy, true
		}
		return AttributeCommunication, true
	default:
		return "", false
	}
}

// Classify translates one external action into a single-attribute growth
// draft. Every classified event names exactly one target attribute and one
// event kind; multi-attribute fan-out does not happen at this layer.
// Unknown action kinds fail with UnclassifiedActionError and must be
// dropped by the caller without side effects.
func Classify(a ActionDescriptor) (GrowthDraft, error) {
	kind, ok := actionEventKinds[a.Kind]
	if !ok {
		return GrowthDraft{}, UnclassifiedActionError{Kind: a.Kind}
	}

	var attr Attribute
	if a.Kind == ActionTaskCompletion {
		attr, ok = taskAttribute(a.TaskType, a.Tags)
		if !ok {
			return GrowthDraft{}, UnclassifiedActionError{Kind: a.Kind}
		}
	} else {
		attr = actionAttributes[a.Kind]
	}

	return GrowthDraft{
		UID:            a.UID,
		Attribute:      attr,
		EventKind:      kind,
		IdempotencyKey: a.IdempotencyKey,
		Context:        a.Context,
		Timestamp:      a.Timestamp,
	}, nil
}
