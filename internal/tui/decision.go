package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coach/internal/reasoning"
	"coach/internal/service"
	"coach/internal/store"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DecisionModel is today's decision screen
type DecisionModel struct {
	history   DecisionHistory
	athleteID string
	now       func() time.Time
	outcome   *service.Outcome
	recent    []store.Decision
	viewport  viewport.Model
	loading   bool
	err       error
	ready     bool
}

// NewDecisionModel creates a new decision model
func NewDecisionModel(history DecisionHistory, athleteID string, now func() time.Time, width, height int) DecisionModel {
	m := DecisionModel{
		history:   history,
		athleteID: athleteID,
		now:       now,
		loading:   true,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6)
		m.ready = true
	}

	return m
}

// Init initializes the decision screen
func (m DecisionModel) Init() tea.Cmd {
	return nil
}

type recentDecisionsMsg struct {
	decisions []store.Decision
}

func (m DecisionModel) loadRecent() tea.Msg {
	if m.history == nil {
		return recentDecisionsMsg{}
	}
	decisions, err := m.history.ListDecisions(context.Background(), m.athleteID, service.RecentDecisionsLimit)
	if err != nil {
		// The log is informational; show the decision without it
		return recentDecisionsMsg{}
	}
	return recentDecisionsMsg{decisions: decisions}
}

// Update handles messages
func (m DecisionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case outcomeMsg:
		m.loading = false
		m.err = msg.err
		m.outcome = msg.outcome
		m.refresh()
		if msg.err == nil {
			return m, m.loadRecent
		}
		return m, nil

	case recentDecisionsMsg:
		m.recent = msg.decisions
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		m.refresh()
		return m, nil
	}

	// Handle viewport scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *DecisionModel) refresh() {
	if m.ready && m.outcome != nil {
		m.viewport.SetContent(m.renderContent())
	}
}

// View renders the decision screen
func (m DecisionModel) View() string {
	if m.loading {
		return "\n  Reasoning about today's session..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  j/k or arrows: scroll  d: decide again")

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m DecisionModel) renderContent() string {
	var sections []string

	sections = append(sections, m.renderChoice())
	if len(m.outcome.Result.Problems) > 0 {
		sections = append(sections, m.renderProblems())
	}
	if len(m.outcome.Session.Applied) > 0 {
		sections = append(sections, m.renderAdjustments())
	}
	sections = append(sections, m.renderForecast())
	sections = append(sections, m.renderAlternatives())
	if len(m.recent) > 0 {
		sections = append(sections, m.renderRecent())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DecisionModel) renderChoice() string {
	d := m.outcome.Result.Decision
	chosen := d.Decision

	title := cardTitleStyle.Render(chosen.Name)
	subtitle := mutedStyle.Render(fmt.Sprintf("%s  •  score %.1f  •  confidence %.0f%%",
		titleCase(string(chosen.Type)), chosen.TotalScore, d.Confidence))

	var lines []string
	lines = append(lines, "", title, subtitle, "")
	lines = append(lines, sectionStyle.Render("Why"))
	lines = append(lines, "  "+d.Reasoning)
	lines = append(lines, "")

	lines = append(lines, sectionStyle.Render("Scores"))
	lines = append(lines, renderScores(chosen.Scores))
	lines = append(lines, "")

	s := m.outcome.Session
	lines = append(lines, sectionStyle.Render("Session"))
	lines = append(lines, fmt.Sprintf("  Intensity:   %s", formatPercent(s.Intensity)))
	lines = append(lines, fmt.Sprintf("  Volume:      %s", formatPercent(s.Volume)))
	if st := chosen.Structure; st.DurationMinutes > 0 {
		lines = append(lines, fmt.Sprintf("  Duration:    %d min", st.DurationMinutes))
		if st.Sets > 0 {
			lines = append(lines, fmt.Sprintf("  Sets x reps: %d x %s, %ds rest", st.Sets, st.RepRange, st.RestSeconds))
		}
	}
	if s.WarmupMinutes > 0 {
		lines = append(lines, fmt.Sprintf("  Warm-up:     %d min", s.WarmupMinutes))
	}
	if len(s.Methods) > 0 {
		lines = append(lines, "  Methods:     "+strings.Join(s.Methods, ", "))
	}
	if len(s.AvoidMuscles) > 0 {
		lines = append(lines, warningStyle.Render("  Avoid:       "+strings.Join(s.AvoidMuscles, ", ")))
	}
	for _, p := range chosen.Pros {
		lines = append(lines, successStyle.Render("  + "+p))
	}
	for _, c := range chosen.Cons {
		lines = append(lines, warningStyle.Render("  - "+c))
	}
	lines = append(lines, "")

	return strings.Join(lines, "\n")
}

func renderScores(s reasoning.Scores) string {
	axes := []struct {
		label string
		value float64
	}{
		{"Safety", s.Safety},
		{"Effectiveness", s.Effectiveness},
		{"Feasibility", s.Feasibility},
		{"Adherence", s.Adherence},
	}
	var lines []string
	for _, a := range axes {
		lines = append(lines, fmt.Sprintf("  %-14s %s %4.1f", a.label, RenderProgressBar(a.value/reasoning.MaxAxisScore, barWidth), a.value))
	}
	return strings.Join(lines, "\n")
}

func (m DecisionModel) renderProblems() string {
	var lines []string
	lines = append(lines, sectionStyle.Render("Problems"))
	for _, p := range m.outcome.Result.Problems {
		sev := levelStyle(string(p.Severity)).Render(fmt.Sprintf("%-9s", p.Severity))
		lines = append(lines, fmt.Sprintf("  %s %s", sev, p.Description))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m DecisionModel) renderAdjustments() string {
	var lines []string
	lines = append(lines, sectionStyle.Render("Adjustments"))
	for _, a := range m.outcome.Session.Applied {
		lines = append(lines, fmt.Sprintf("  %-22s %-8s %s", a.RuleID, a.Priority, mutedStyle.Render(a.Reason)))
	}
	o := m.outcome.Session.Original
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("  before adjustments: intensity %s, volume %s",
		formatPercent(o.Intensity), formatPercent(o.Volume))))
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m DecisionModel) renderForecast() string {
	f := m.outcome.Forecast
	var lines []string
	lines = append(lines, sectionStyle.Render("Expected Response"))
	lines = append(lines, "  "+f.Summary)
	if p := f.Prediction; p != nil {
		lines = append(lines, fmt.Sprintf("  DOMS:        %s, peaks at %.0fh, gone by %.0fh",
			levelStyle(string(p.DOMS.Severity)).Render(string(p.DOMS.Severity)), p.DOMS.PeakHours, p.DOMS.DurationHours))
		var points []string
		for _, tp := range p.Timeline {
			points = append(points, fmt.Sprintf("%.0fh %.0f", tp.Hours, tp.Readiness))
		}
		lines = append(lines, "  Readiness:   "+strings.Join(points, "  "))
	}
	for _, r := range f.Recommendations {
		lines = append(lines, "  • "+r)
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m DecisionModel) renderAlternatives() string {
	var lines []string
	lines = append(lines, sectionStyle.Render("Alternatives"))

	alts := m.outcome.Result.Decision.Alternatives
	if len(alts) == 0 {
		lines = append(lines, mutedStyle.Render("  None considered"))
	}
	header := fmt.Sprintf("  %-28s %-14s %6s %6s %6s %6s %6s", "Option", "Type", "Total", "Safe", "Eff", "Feas", "Adh")
	if len(alts) > 0 {
		lines = append(lines, tableHeaderStyle.Render(header))
	}
	for _, a := range alts {
		lines = append(lines, fmt.Sprintf("  %-28s %-14s %6.1f %6.1f %6.1f %6.1f %6.1f",
			truncate(a.Name, 28), a.Type, a.TotalScore,
			a.Scores.Safety, a.Scores.Effectiveness, a.Scores.Feasibility, a.Scores.Adherence))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m DecisionModel) renderRecent() string {
	var lines []string
	lines = append(lines, sectionStyle.Render("Recent Decisions"))
	now := m.now()
	for _, d := range m.recent {
		at := d.CreatedAt
		lines = append(lines, fmt.Sprintf("  %-16s %-24s %5.1f  %s",
			formatAgo(&at, now), truncate(d.OptionID, 24), d.TotalScore, mutedStyle.Render(fmt.Sprintf("%.0f%%", d.Confidence))))
	}
	return strings.Join(lines, "\n")
}
