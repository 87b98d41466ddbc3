package engine

import (
	"math"
	"sort"
	"time"
)

const (
	// CrystalMaxValue caps every gauge; growth past it is discarded.
	CrystalMaxValue = 100

	// MinGrowthPerEvent / MaxGrowthPerEvent bound a single finalized
	// growth amount after the rate multiplier.
	MinGrowthPerEvent = 1
	MaxGrowthPerEvent = 20

	// GrowthRateMin / GrowthRateMax bound a crystal's growth rate.
	GrowthRateMin = 0.5
	GrowthRateMax = 2.0

	// HarmonyThreshold is the gauge value at which an attribute counts
	// toward the resonance level.
	HarmonyThreshold = 50
)

// baseGrowthByEvent is the total base-increment table per event kind.
var baseGrowthByEvent = map[GrowthEventKind]int{
	EventTaskCompletion:    5,
	EventStoryChoice:       3,
	EventMoodImprovement:   4,
	EventReflectionEntry:   8,
	EventSocialInteraction: 4,
	EventCreativeActivity:  5,
	EventChallengeOvercome: 8,
	EventWisdomGained:      7,
}

// CrystalState is one attribute gauge of a user's crystal system.
type CrystalState struct {
	Attribute  Attribute
	Value      int
	GrowthRate float64
	LastGrowth time.Time

	// Milestones is the awarded-milestone latch; ids are never removed.
	Milestones map[string]bool
}

// CrystalSystem is the aggregate root: one gauge per attribute plus the
// derived resonance/synergy state. Version backs optimistic concurrency in
// the persistence collaborator.
type CrystalSystem struct {
	UID               string
	Crystals          map[Attribute]*CrystalState
	ActiveSynergies   map[string]bool
	ResonanceLevel    int
	TotalGrowthEvents int
	Version           int64
}

// NewCrystalSystem returns a fresh system with all eight gauges at zero
// and the default growth rate.
func NewCrystalSystem(uid string) *CrystalSystem {
	sys := &CrystalSystem{
		UID:             uid,
		Crystals:        make(map[Attribute]*CrystalState, len(AllAttributes)),
		ActiveSynergies: map[string]bool{},
	}
	for _, attr := range AllAttributes {
		sys.Crystals[attr] = &CrystalState{
			Attribute:  attr,
			GrowthRate: 1.0,
			Milestones: map[string]bool{},
		}
	}
	return sys
}

// GrowthRecord is a finalized, append-only audit entry.
type GrowthRecord struct {
	UID            string
	Attribute      Attribute
	EventKind      GrowthEventKind
	Amount         int
	IdempotencyKey string
	Context        string
	CreatedAt      time.Time
}

// GrowthOutcome reports the result of applying one growth event.
type GrowthOutcome struct {
	Attribute         Attribute
	NewValue          int
	GrowthApplied     int
	MilestonesAwarded []string
	SynergiesUnlocked []string
	SynergiesLost     []string
	ResonanceLevel    int

	// Duplicate marks an idempotent no-op: the record was seen before and
	// the prior state is echoed unchanged.
	Duplicate bool
}

// growthAmount finalizes the amount for an event kind on a crystal:
// base increment times the crystal's growth rate, clamped to [1, 20].
func growthAmount(kind GrowthEventKind, rate float64) int {
	base := baseGrowthByEvent[kind]
	amount := int(math.Round(float64(base) * rate))
	if amount < MinGrowthPerEvent {
		amount = MinGrowthPerEvent
	}
	if amount > MaxGrowthPerEvent {
		amount = MaxGrowthPerEvent
	}
	return amount
}

// resonanceLevel counts attributes at or above the harmony threshold.
func resonanceLevel(sys *CrystalSystem) int {
	n := 0
	for _, c := range sys.Crystals {
		if c.Value >= HarmonyThreshold {
			n++
		}
	}
	return n
}

// FinalizeGrowth turns a classifier draft into an auditable record with the
// amount resolved against the target crystal's current growth rate.
func (sys *CrystalSystem) FinalizeGrowth(d GrowthDraft) (GrowthRecord, error) {
	if !d.Attribute.IsValid() {
		return GrowthRecord{}, InvalidGrowthRecordError{Reason: "unknown attribute " + string(d.Attribute)}
	}
	if !d.EventKind.IsValid() {
		return GrowthRecord{}, InvalidGrowthRecordError{Reason: "unknown event kind " + string(d.EventKind)}
	}
	c := sys.Crystals[d.Attribute]
	if c == nil {
		return GrowthRecord{}, InvalidGrowthRecordError{Reason: "missing crystal for " + string(d.Attribute)}
	}
	return GrowthRecord{
		UID:            d.UID,
		Attribute:      d.Attribute,
		EventKind:      d.EventKind,
		Amount:         growthAmount(d.EventKind, c.GrowthRate),
		IdempotencyKey: d.IdempotencyKey,
		Context:        d.Context,
		CreatedAt:      d.Timestamp,
	}, nil
}

// Apply mutates the system with one growth record: clamp the gauge, latch
// newly crossed milestones, recompute synergy membership and resonance.
// Validation happens before any mutation, so a rejected record leaves the
// system untouched. Duplicate detection against the growth history is the
// caller's responsibility (the history lives in the persistence layer).
func (sys *CrystalSystem) Apply(rec GrowthRecord, synergies []Synergy) (*GrowthOutcome, error) {
	if !rec.Attribute.IsValid() {
		return nil, InvalidGrowthRecordError{Reason: "unknown attribute " + string(rec.Attribute)}
	}
	if !rec.EventKind.IsValid() {
		return nil, InvalidGrowthRecordError{Reason: "unknown event kind " + string(rec.EventKind)}
	}
	if rec.Amount < MinGrowthPerEvent || rec.Amount > MaxGrowthPerEvent {
		return nil, InvalidGrowthRecordError{Reason: "growth amount out of range"}
	}
	c := sys.Crystals[rec.Attribute]
	if c == nil {
		return nil, InvalidGrowthRecordError{Reason: "missing crystal for " + string(rec.Attribute)}
	}
	if math.IsNaN(c.GrowthRate) || c.GrowthRate < GrowthRateMin || c.GrowthRate > GrowthRateMax {
		return nil, InvalidGrowthRecordError{Reason: "growth rate out of range"}
	}

	oldValue := c.Value
	newValue := oldValue + rec.Amount
	if newValue > CrystalMaxValue {
		// Saturation is a success; the excess is discarded, not carried.
		newValue = CrystalMaxValue
	}

	wasActive := make(map[string]bool, len(sys.ActiveSynergies))
	for id := range sys.ActiveSynergies {
		wasActive[id] = true
	}

	c.Value = newValue
	c.LastGrowth = rec.CreatedAt
	sys.TotalGrowthEvents++

	awarded := crossedMilestones(rec.Attribute, oldValue, newValue, c.Milestones)
	for _, id := range awarded {
		c.Milestones[id] = true
	}

	// Synergy membership is level-triggered; only the unlock notification
	// is edge-triggered (false -> true).
	var unlocked, lost []string
	nowActive := map[string]bool{}
	for _, s := range synergies {
		if s.Satisfied(sys) {
			nowActive[s.ID] = true
			if !wasActive[s.ID] {
				unlocked = append(unlocked, s.ID)
			}
		} else if wasActive[s.ID] {
			lost = append(lost, s.ID)
		}
	}
	sort.Strings(unlocked)
	sort.Strings(lost)
	sys.ActiveSynergies = nowActive
	sys.ResonanceLevel = resonanceLevel(sys)

	return &GrowthOutcome{
		Attribute:         rec.Attribute,
		NewValue:          newValue,
		GrowthApplied:     newValue - oldValue,
		MilestonesAwarded: awarded,
		SynergiesUnlocked: unlocked,
		SynergiesLost:     lost,
		ResonanceLevel:    sys.ResonanceLevel,
	}, nil
}

// Gauges returns the current gauge values keyed by attribute, the shape
// persisted on the user profile.
func (sys *CrystalSystem) Gauges() map[Attribute]int {
	out := make(map[Attribute]int, len(sys.Crystals))
	for attr, c := range sys.Crystals {
		out[attr] = c.Value
	}
	return out
}
