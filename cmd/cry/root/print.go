package root

import (
	"fmt"
	"io"
	"strings"

	"crystalline/internal/engine"
	"crystalline/internal/ui"
)

// printGrowth renders one growth outcome in the shared verb style.
func printGrowth(out io.Writer, g *engine.GrowthOutcome) {
	if g == nil {
		return
	}
	if g.Duplicate {
		fmt.Fprintln(out, ui.Muted.Render("Growth already recorded for this event."))
		return
	}
	fmt.Fprintf(out, "%s %s +%d → %d/%d\n",
		ui.IconCrystal, ui.AttributeName(g.Attribute), g.GrowthApplied, g.NewValue, engine.CrystalMaxValue)
	for _, id := range g.MilestonesAwarded {
		fmt.Fprintf(out, "%s %s\n", ui.IconMilestone, ui.Gold.Render("Milestone reached: "+id))
	}
	for _, id := range g.SynergiesUnlocked {
		fmt.Fprintf(out, "%s %s\n", ui.IconLink, ui.Good.Render("Synergy unlocked: "+id))
	}
	for _, id := range g.SynergiesLost {
		fmt.Fprintf(out, "%s %s\n", ui.IconWarn, ui.Warn.Render("Synergy inactive: "+id))
	}
	if g.ResonanceLevel > 0 {
		fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("Resonance level %d", g.ResonanceLevel)))
	}
}

// gaugeBar renders a plain text gauge for non-TUI output.
func gaugeBar(value, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := value * width / engine.CrystalMaxValue
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
