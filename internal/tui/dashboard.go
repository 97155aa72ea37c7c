package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coach/internal/models"
	"coach/internal/recovery"
	"coach/internal/risk"
	"coach/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 20

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	coach   Coach
	profile models.Profile
	now     func() time.Time
	data    *service.Status
	loading bool
	err     error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(coach Coach, profile models.Profile, now func() time.Time) DashboardModel {
	return DashboardModel{
		coach:   coach,
		profile: profile,
		now:     now,
		loading: true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

func (m DashboardModel) loadData() tea.Msg {
	data, err := m.coach.Recovery(context.Background(), m.profile)
	if err != nil {
		return dashboardDataMsg{err: err}
	}
	return dashboardDataMsg{data: data}
}

type dashboardDataMsg struct {
	data *service.Status
	err  error
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading recovery..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.data == nil || m.data.Recovery == nil {
		return "\n  No data available. Import workouts with 'coach import <file>'."
	}

	var sections []string

	// Top row: muscles on the left, CNS and load on the right
	right := lipgloss.JoinVertical(lipgloss.Left, m.renderCNSCard(), m.renderLoadCard())
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderMusclesCard(), "  ", right)
	sections = append(sections, topRow)

	sections = append(sections, m.renderRiskCard())

	help := statusStyle.Render("Press 'r' to refresh, '2' for today's decision, '3' for the forecast")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderMusclesCard() string {
	title := cardTitleStyle.Render("Muscle Recovery")
	st := m.data.Recovery

	lines := []string{tableHeaderStyle.Render(fmt.Sprintf("%-11s %-*s %5s %6s", "Muscle", barWidth, "", "", "Ready"))}
	for _, name := range recovery.MuscleGroups {
		ms := st.Muscle(name)
		status := levelStyle(string(ms.Status)).Render(fmt.Sprintf("%4.0f%%", ms.Percentage))
		lines = append(lines, tableRowStyle.Render(fmt.Sprintf("%-11s %s %s %6s",
			titleCase(name),
			RenderProgressBar(ms.Percentage/100, barWidth),
			status,
			formatHours(ms.HoursUntilRecovered),
		)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderCNSCard() string {
	title := cardTitleStyle.Render("Nervous System")
	cns := m.data.Recovery.CNS

	lines := []string{
		RenderProgressBar(cns.Percentage/100, barWidth) + " " +
			levelStyle(string(cns.Status)).Render(fmt.Sprintf("%.0f%%", cns.Percentage)),
		RenderMetric("Recovered in", formatHours(cns.HoursUntilRecovered)),
		RenderMetric("Last trained", formatAgo(m.data.LastWorkout, m.now())),
		RenderMetric("Sessions (8 wk)", fmt.Sprintf("%d", m.data.Workouts)),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderLoadCard() string {
	title := cardTitleStyle.Render("Training Load")
	agg := m.data.Aggregates
	fit := m.data.Fitness

	lines := []string{
		RenderMetric("Phase", titleCase(string(agg.Phase))),
		RenderMetric("Acute:chronic", formatOptional(agg.ACWR, "%.2f")),
		RenderMetric("Monotony", formatOptional(agg.Monotony, "%.2f")),
		RenderMetric("Fitness (CTL)", fmt.Sprintf("%.0f", fit.CTL)),
		RenderMetric("Fatigue (ATL)", fmt.Sprintf("%.0f", fit.ATL)),
		RenderMetric("Form (TSB)", fmt.Sprintf("%.0f", fit.TSB)),
		"",
		mutedStyle.Render(m.data.Form),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderRiskCard() string {
	title := cardTitleStyle.Render("Risks")

	var lines []string
	for _, a := range m.data.Risk.All() {
		lines = append(lines, renderAssessment(a))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func renderAssessment(a risk.Assessment) string {
	head := fmt.Sprintf("%-8s %s %s",
		titleCase(a.Model),
		RenderProgressBar(a.Score/100, barWidth),
		levelStyle(string(a.Level)).Render(fmt.Sprintf("%3.0f %s", a.Score, a.Level)),
	)
	if len(a.Reasons) == 0 {
		return head
	}
	var b strings.Builder
	b.WriteString(head)
	for _, r := range a.Reasons {
		b.WriteString("\n" + mutedStyle.Render("         • "+r))
	}
	return b.String()
}
