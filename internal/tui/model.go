package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"crystalline/internal/engine"
	"crystalline/internal/ui"
)

type dashboardModel struct {
	ctx context.Context
	svc *engine.Service
	uid string

	width  int
	height int

	status  *engine.Status
	history []engine.GrowthRecord
	bars    map[engine.Attribute]progress.Model

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	status  *engine.Status
	history []engine.GrowthRecord
	err     error
}

func newDashboardModel(ctx context.Context, svc *engine.Service, uid string) dashboardModel {
	bars := make(map[engine.Attribute]progress.Model, len(engine.AllAttributes))
	for _, attr := range engine.AllAttributes {
		bars[attr] = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	}
	return dashboardModel{
		ctx:     ctx,
		svc:     svc,
		uid:     uid,
		bars:    bars,
		loading: true,
		lastLog: "Loading…",
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m dashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		status, err := m.svc.Status(m.ctx, m.uid)
		if err != nil {
			return loadedMsg{err: err}
		}
		history, err := m.svc.GrowthHistory(m.ctx, m.uid, 8)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{status: status, history: history}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for attr, bar := range m.bars {
			bar.Width = barWidth(m.width)
			m.bars[attr] = bar
		}
		return m, nil

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.lastLog = msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		m.history = msg.history
		m.lastLog = "Loaded."
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		}
	}
	return m, nil
}

func barWidth(total int) int {
	w := total - 40
	if w < 10 {
		w = 10
	}
	if w > 50 {
		w = 50
	}
	return w
}

func (m dashboardModel) View() string {
	var b strings.Builder

	b.WriteString(ui.Heading(ui.IconCrystal, "Crystal Dashboard") + "\n\n")

	if m.err != nil {
		b.WriteString(ui.Bad.Render(ui.IconError+" "+m.err.Error()) + "\n")
		return b.String()
	}
	if m.loading || m.status == nil {
		b.WriteString(ui.Muted.Render(m.lastLog) + "\n")
		return b.String()
	}

	p := m.status.Profile
	b.WriteString(ui.LabelValue("Level", p.PlayerLevel))
	b.WriteString("  ")
	b.WriteString(ui.LabelValue("Total XP", p.TotalXP))
	b.WriteString("  ")
	b.WriteString(ui.LabelValue("Resonance", m.status.System.ResonanceLevel))
	b.WriteString("\n\n")

	for _, attr := range engine.AllAttributes {
		c := m.status.System.Crystals[attr]
		bar := m.bars[attr]
		line := fmt.Sprintf("%-22s %s %3d",
			ui.AttributeName(attr),
			bar.ViewAs(float64(c.Value)/float64(engine.CrystalMaxValue)),
			c.Value)
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	if len(m.status.System.ActiveSynergies) > 0 {
		b.WriteString(ui.H2.Render(ui.IconLink+" Active synergies") + "\n")
		for _, s := range m.status.Synergies {
			if m.status.System.ActiveSynergies[s.ID] {
				b.WriteString(fmt.Sprintf("- %s %s\n", ui.Gold.Render(s.Name), ui.Muted.Render(s.Bonus)))
			}
		}
		b.WriteString("\n")
	}

	if len(m.history) > 0 {
		b.WriteString(ui.H2.Render(ui.IconSparkle+" Recent growth") + "\n")
		for _, rec := range m.history {
			b.WriteString(fmt.Sprintf("- %s +%d %s\n",
				ui.AttributeName(rec.Attribute), rec.Amount, ui.Muted.Render(string(rec.EventKind))))
		}
		b.WriteString("\n")
	}

	b.WriteString(ui.Muted.Render("r refresh · q quit") + "\n")
	return b.String()
}

// RunDashboard opens the full-screen crystal dashboard.
func RunDashboard(ctx context.Context, svc *engine.Service, uid string, out io.Writer) error {
	p := tea.NewProgram(newDashboardModel(ctx, svc, uid), tea.WithOutput(out), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
