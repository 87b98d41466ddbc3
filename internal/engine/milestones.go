package engine

import "fmt"

// MilestoneThresholds are the gauge values that award a milestone, in
// ascending order. A milestone is awarded at most once per attribute.
var MilestoneThresholds = []int{25, 50, 75, 100}

// Milestone describes one threshold-gated award on a single attribute.
type Milestone struct {
	ID        string
	Attribute Attribute
	Threshold int
	Title     string
}

var milestoneTitles = map[int]string{
	25:  "First Light",
	50:  "Steady Glow",
	75:  "Radiant",
	100: "Fully Formed",
}

// MilestoneID is the canonical identifier stored in the awarded set.
func MilestoneID(attr Attribute, threshold int) string {
	return fmt.Sprintf("%s_%d", attr, threshold)
}

// MilestonesFor returns the milestone catalog of one attribute.
func MilestonesFor(attr Attribute) []Milestone {
	out := make([]Milestone, 0, len(MilestoneThresholds))
	for _, th := range MilestoneThresholds {
		out = append(out, Milestone{
			ID:        MilestoneID(attr, th),
			Attribute: attr,
			Threshold: th,
			Title:     milestoneTitles[th],
		})
	}
	return out
}

// crossedMilestones returns thresholds satisfying old < threshold <= new
// that are not already in the awarded set. The awarded set is a one-way
// latch: a milestone is never re-awarded, even if the gauge could somehow
// drop below the threshold and rise again.
func crossedMilestones(attr Attribute, oldValue, newValue int, awarded map[string]bool) []string {
	var out []string
	for _, th := range MilestoneThresholds {
		if oldValue < th && th <= newValue {
			id := MilestoneID(attr, th)
			if !awarded[id] {
				out = append(out, id)
			}
		}
	}
	return out
}
