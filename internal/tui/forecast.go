package tui

import (
	"context"
	"fmt"
	"strings"

	"coach/internal/models"
	"coach/internal/predict"
	"coach/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// ForecastModel charts how the chosen plan plays out over the coming week
type ForecastModel struct {
	coach   Coach
	profile models.Profile
	plan    []predict.DayForecast
	rest    []predict.DayForecast
	loading bool
	err     error
}

// NewForecastModel creates a new forecast model
func NewForecastModel(coach Coach, profile models.Profile) ForecastModel {
	return ForecastModel{coach: coach, profile: profile, loading: true}
}

// Init initializes the forecast screen
func (m ForecastModel) Init() tea.Cmd {
	return nil
}

type forecastMsg struct {
	plan []predict.DayForecast
	rest []predict.DayForecast
	err  error
}

func (m ForecastModel) simulate(out *service.Outcome) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		plan, err := m.coach.ForecastWeek(ctx, m.profile, service.PlanFromOutcome(out, service.ForecastDays))
		if err != nil {
			return forecastMsg{err: err}
		}
		rest, err := m.coach.ForecastWeek(ctx, m.profile, nil)
		if err != nil {
			return forecastMsg{err: err}
		}
		return forecastMsg{plan: plan, rest: rest}
	}
}

// Update handles messages
func (m ForecastModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case outcomeMsg:
		if msg.err != nil {
			m.loading = false
			m.err = msg.err
			return m, nil
		}
		m.loading = true
		return m, m.simulate(msg.outcome)
	case forecastMsg:
		m.loading = false
		m.err = msg.err
		m.plan = msg.plan
		m.rest = msg.rest
	}
	return m, nil
}

// View renders the forecast screen
func (m ForecastModel) View() string {
	if m.loading {
		return "\n  Simulating the week..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.plan) == 0 {
		return "\n  No forecast available."
	}

	var sections []string
	sections = append(sections, m.renderChart())
	sections = append(sections, m.renderDays())
	sections = append(sections, statusStyle.Render("Training days repeat today's adjusted session, alternating with rest. 'd' re-runs the decision."))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func series(days []predict.DayForecast, pick func(predict.DayForecast) float64) []float64 {
	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = pick(d)
	}
	return out
}

func (m ForecastModel) renderChart() string {
	title := cardTitleStyle.Render(fmt.Sprintf("Next %d Days", len(m.plan)))

	cns := series(m.plan, func(d predict.DayForecast) float64 { return d.CNS })
	readiness := series(m.plan, func(d predict.DayForecast) float64 { return d.Readiness })

	data := [][]float64{cns, readiness}
	caption := "CNS and readiness on plan"
	if len(m.rest) == len(m.plan) {
		data = append(data, series(m.rest, func(d predict.DayForecast) float64 { return d.Readiness }))
		caption += ", readiness if resting"
	}

	graph := asciigraph.PlotMany(data,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Precision(0),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
		asciigraph.Caption(caption),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m ForecastModel) renderDays() string {
	title := cardTitleStyle.Render("Day by Day")

	header := tableHeaderStyle.Render(fmt.Sprintf("%-4s  %-10s  %-8s  %5s  %9s  %6s", "Day", "Intensity", "Volume", "CNS", "Readiness", "DOMS"))
	rows := []string{header}
	for _, d := range m.plan {
		doms := "-"
		if d.Prediction != nil && d.Prediction.DOMS.Severity != predict.SeverityNone {
			doms = string(d.Prediction.DOMS.Severity)
		}
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-4d  %-10s  %-8s  %5.0f  %9.0f  %6s",
			d.Day, d.Params.Intensity, d.Params.Volume, d.CNS, d.Readiness, doms)))
	}

	table := strings.Join(rows, "\n")
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}
