package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testRecord(attr Attribute, kind GrowthEventKind, amount int) GrowthRecord {
	return GrowthRecord{
		UID:            "u1",
		Attribute:      attr,
		EventKind:      kind,
		Amount:         amount,
		IdempotencyKey: "k1",
		CreatedAt:      time.Now().UTC(),
	}
}

func TestGrowthAmount(t *testing.T) {
	tests := []struct {
		kind GrowthEventKind
		rate float64
		want int
	}{
		{EventTaskCompletion, 1.0, 5},
		{EventStoryChoice, 1.0, 3},
		{EventMoodImprovement, 1.0, 4},
		{EventReflectionEntry, 1.0, 8},
		{EventSocialInteraction, 1.0, 4},
		{EventCreativeActivity, 1.0, 5},
		{EventChallengeOvercome, 1.0, 8},
		{EventWisdomGained, 1.0, 7},
		{EventReflectionEntry, 2.0, 16},
		{EventStoryChoice, 0.5, 2},
		// floor and ceiling of the per-event clamp
		{EventStoryChoice, 0.1, 1},
		{EventChallengeOvercome, 3.0, 20},
	}
	for _, tt := range tests {
		if got := growthAmount(tt.kind, tt.rate); got != tt.want {
			t.Fatalf("growthAmount(%s, %v) = %d, want %d", tt.kind, tt.rate, got, tt.want)
		}
	}
}

func TestFinalizeGrowthUsesCrystalRate(t *testing.T) {
	sys := NewCrystalSystem("u1")
	sys.Crystals[AttributeWisdom].GrowthRate = 1.5

	rec, err := sys.FinalizeGrowth(GrowthDraft{
		UID:            "u1",
		Attribute:      AttributeWisdom,
		EventKind:      EventReflectionEntry,
		IdempotencyKey: "k1",
		Timestamp:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("FinalizeGrowth: %v", err)
	}
	if rec.Amount != 12 { // round(8 * 1.5)
		t.Fatalf("Amount = %d, want 12", rec.Amount)
	}
}

func TestApplyClampsAtMax(t *testing.T) {
	sys := NewCrystalSystem("u1")
	sys.Crystals[AttributeWisdom].Value = 95

	out, err := sys.Apply(testRecord(AttributeWisdom, EventReflectionEntry, 8), nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.NewValue != CrystalMaxValue {
		t.Fatalf("NewValue = %d, want %d", out.NewValue, CrystalMaxValue)
	}
	if out.GrowthApplied != 5 {
		t.Fatalf("GrowthApplied = %d, want 5", out.GrowthApplied)
	}
}

func TestApplyAwardsMilestonesOnce(t *testing.T) {
	sys := NewCrystalSystem("u1")
	sys.Crystals[AttributeCourage].Value = 48

	out, err := sys.Apply(testRecord(AttributeCourage, EventChallengeOvercome, 5), nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []string{"courage_50"}
	if diff := cmp.Diff(want, out.MilestonesAwarded); diff != "" {
		t.Fatalf("MilestonesAwarded mismatch (-want +got):\n%s", diff)
	}

	// A second pass over the same region never re-awards.
	out, err = sys.Apply(testRecord(AttributeCourage, EventChallengeOvercome, 5), nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(out.MilestonesAwarded) != 0 {
		t.Fatalf("re-awarded milestones: %v", out.MilestonesAwarded)
	}
}

func TestApplyAwardsMultipleMilestonesInOneJump(t *testing.T) {
	sys := NewCrystalSystem("u1")
	sys.Crystals[AttributeWisdom].Value = 24
	sys.Crystals[AttributeWisdom].GrowthRate = 2.0

	// 24 + 16 = 40 crosses only 25; then push to 90 to cross 50 and 75.
	out, err := sys.Apply(testRecord(AttributeWisdom, EventReflectionEntry, 16), nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if diff := cmp.Diff([]string{"wisdom_25"}, out.MilestonesAwarded); diff != "" {
		t.Fatalf("first jump (-want +got):\n%s", diff)
	}

	sys.Crystals[AttributeWisdom].Value = 45
	out, err = sys.Apply(testRecord(AttributeWisdom, EventReflectionEntry, 16), nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if diff := cmp.Diff([]string{"wisdom_50"}, out.MilestonesAwarded); diff != "" {
		t.Fatalf("second jump (-want +got):\n%s", diff)
	}
}

func TestApplySynergyUnlockFiresOnce(t *testing.T) {
	sys := NewCrystalSystem("u1")
	sys.Crystals[AttributeEmpathy].Value = 36
	sys.Crystals[AttributeCommunication].Value = 41
	synergies := BuiltinSynergies()

	// 36 + 4 = 40: empathy now meets kindred_hearts.
	out, err := sys.Apply(testRecord(AttributeEmpathy, EventSocialInteraction, 4), synergies)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if diff := cmp.Diff([]string{"kindred_hearts"}, out.SynergiesUnlocked); diff != "" {
		t.Fatalf("SynergiesUnlocked (-want +got):\n%s", diff)
	}
	if !sys.ActiveSynergies["kindred_hearts"] {
		t.Fatal("kindred_hearts not active after unlock")
	}

	// Further growth keeps it active without re-announcing.
	out, err = sys.Apply(testRecord(AttributeEmpathy, EventSocialInteraction, 4), synergies)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(out.SynergiesUnlocked) != 0 {
		t.Fatalf("re-announced unlock: %v", out.SynergiesUnlocked)
	}
	if !sys.ActiveSynergies["kindred_hearts"] {
		t.Fatal("kindred_hearts dropped while levels still satisfy it")
	}
}

func TestApplyResonanceLevel(t *testing.T) {
	sys := NewCrystalSystem("u1")
	sys.Crystals[AttributeEmpathy].Value = 50
	sys.Crystals[AttributeWisdom].Value = 60
	sys.Crystals[AttributeCourage].Value = 46

	out, err := sys.Apply(testRecord(AttributeCourage, EventChallengeOvercome, 8), nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// empathy, wisdom and now courage sit at or above the harmony threshold.
	if out.ResonanceLevel != 3 {
		t.Fatalf("ResonanceLevel = %d, want 3", out.ResonanceLevel)
	}
}

func TestApplyRejectsInvalidRecordWithoutMutating(t *testing.T) {
	sys := NewCrystalSystem("u1")
	sys.Crystals[AttributeWisdom].Value = 10
	before := sys.TotalGrowthEvents

	tests := []GrowthRecord{
		testRecord("charisma", EventWisdomGained, 5),
		testRecord(AttributeWisdom, "levitation", 5),
		testRecord(AttributeWisdom, EventWisdomGained, 0),
		testRecord(AttributeWisdom, EventWisdomGained, 21),
	}
	for _, rec := range tests {
		_, err := sys.Apply(rec, nil)
		var invalid InvalidGrowthRecordError
		if !errors.As(err, &invalid) {
			t.Fatalf("record %+v: got %v, want InvalidGrowthRecordError", rec, err)
		}
	}
	if sys.Crystals[AttributeWisdom].Value != 10 {
		t.Fatalf("gauge mutated by rejected record: %d", sys.Crystals[AttributeWisdom].Value)
	}
	if sys.TotalGrowthEvents != before {
		t.Fatal("event counter mutated by rejected record")
	}
}

func TestApplyRejectsOutOfRangeGrowthRate(t *testing.T) {
	sys := NewCrystalSystem("u1")
	sys.Crystals[AttributeWisdom].GrowthRate = 2.5

	_, err := sys.Apply(testRecord(AttributeWisdom, EventWisdomGained, 5), nil)
	var invalid InvalidGrowthRecordError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidGrowthRecordError", err)
	}
}

func TestGaugesStayInBoundsUnderLongSequence(t *testing.T) {
	sys := NewCrystalSystem("u1")
	for i := 0; i < 100; i++ {
		for _, attr := range AllAttributes {
			_, err := sys.Apply(testRecord(attr, EventTaskCompletion, 5), nil)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
		}
	}
	for _, attr := range AllAttributes {
		v := sys.Crystals[attr].Value
		if v < 0 || v > CrystalMaxValue {
			t.Fatalf("%s out of bounds: %d", attr, v)
		}
	}
	if sys.ResonanceLevel != len(AllAttributes) {
		t.Fatalf("ResonanceLevel = %d, want %d", sys.ResonanceLevel, len(AllAttributes))
	}
}

func TestCrossedMilestones(t *testing.T) {
	awarded := map[string]bool{}
	got := crossedMilestones(AttributeEmpathy, 20, 55, awarded)
	want := []string{"empathy_25", "empathy_50"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	// Exact landings count; departures do not.
	if got := crossedMilestones(AttributeEmpathy, 24, 25, awarded); len(got) != 1 {
		t.Fatalf("landing on 25 = %v", got)
	}
	if got := crossedMilestones(AttributeEmpathy, 25, 30, awarded); len(got) != 0 {
		t.Fatalf("starting at 25 = %v", got)
	}
}
