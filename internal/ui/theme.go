package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"crystalline/internal/engine"
)

// Crystalline theme (CLI + TUI).
// Kept intentionally small: reusable styles and a few emojis.

const (
	IconCrystal   = "💎"
	IconSparkle   = "✨"
	IconPlus      = "➕"
	IconDone      = "✅"
	IconMilestone = "🏆"
	IconBolt      = "⚡"
	IconMood      = "🌤️"
	IconNote      = "📓"
	IconLink      = "🔗"
	IconWarn      = "⚠️"
	IconError     = "🧨"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel      = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

// AttributeIcons decorate the eight crystal gauges.
var AttributeIcons = map[engine.Attribute]string{
	engine.AttributeSelfDiscipline: "🧭",
	engine.AttributeEmpathy:        "💞",
	engine.AttributeResilience:     "🌱",
	engine.AttributeCuriosity:      "🔍",
	engine.AttributeCommunication:  "💬",
	engine.AttributeCreativity:     "🎨",
	engine.AttributeCourage:        "🦁",
	engine.AttributeWisdom:         "🦉",
}

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// AttributeName renders the attribute with its icon and a display name.
func AttributeName(attr engine.Attribute) string {
	name := strings.ReplaceAll(string(attr), "_", " ")
	icon := AttributeIcons[attr]
	if icon == "" {
		return name
	}
	return icon + " " + name
}
