package engine

import "testing"

func TestMilestoneID(t *testing.T) {
	if got := MilestoneID(AttributeEmpathy, 50); got != "empathy_50" {
		t.Fatalf("MilestoneID = %q", got)
	}
}

func TestMilestonesFor(t *testing.T) {
	got := MilestonesFor(AttributeCourage)
	if len(got) != len(MilestoneThresholds) {
		t.Fatalf("len = %d, want %d", len(got), len(MilestoneThresholds))
	}
	for i, m := range got {
		if m.Attribute != AttributeCourage {
			t.Fatalf("Attribute = %s", m.Attribute)
		}
		if m.Threshold != MilestoneThresholds[i] {
			t.Fatalf("Threshold = %d, want %d", m.Threshold, MilestoneThresholds[i])
		}
		if m.Title == "" {
			t.Fatalf("milestone %s has no title", m.ID)
		}
	}
}
