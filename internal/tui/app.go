package tui

import (
	"context"
	"time"

	"coach/internal/models"
	"coach/internal/predict"
	"coach/internal/service"
	"coach/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenDecision
	ScreenForecast
	ScreenHelp
)

// Coach is the part of the coaching service the screens read from
type Coach interface {
	Recovery(ctx context.Context, profile models.Profile) (*service.Status, error)
	Decide(ctx context.Context, profile models.Profile, checkIn *models.CheckIn, schedule models.Schedule) (*service.Outcome, error)
	ForecastWeek(ctx context.Context, profile models.Profile, plan []predict.Params) ([]predict.DayForecast, error)
}

// DecisionHistory lists previously logged decisions
type DecisionHistory interface {
	ListDecisions(ctx context.Context, athleteID string, limit int) ([]store.Decision, error)
}

// Athlete is who the screens run the engine for, and with which inputs
type Athlete struct {
	Profile  models.Profile
	CheckIn  *models.CheckIn
	Schedule models.Schedule
}

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	dashboard DashboardModel
	decision  DecisionModel
	forecast  ForecastModel
	help      HelpModel

	// Services
	coach   Coach
	history DecisionHistory
	athlete Athlete
	now     func() time.Time

	// Window dimensions
	width  int
	height int

	// Status message
	status string
}

// NewApp creates a new App with all dependencies. history may be nil.
func NewApp(coach Coach, history DecisionHistory, athlete Athlete) *App {
	a := &App{
		screen:  ScreenDashboard,
		coach:   coach,
		history: history,
		athlete: athlete,
		now:     time.Now,
		help:    NewHelpModel(),
	}
	a.dashboard = NewDashboardModel(coach, athlete.Profile, a.now)
	a.decision = NewDecisionModel(history, athlete.Profile.ID, a.now, 0, 0)
	a.forecast = NewForecastModel(coach, athlete.Profile)
	return a
}

// Init loads the dashboard and runs the first decision cycle
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.dashboard.Init(), a.decide)
}

// decide runs one decision cycle; the outcome feeds both the decision and forecast screens
func (a *App) decide() tea.Msg {
	out, err := a.coach.Decide(context.Background(), a.athlete.Profile, a.athlete.CheckIn, a.athlete.Schedule)
	return outcomeMsg{outcome: out, err: err}
}

type outcomeMsg struct {
	outcome *service.Outcome
	err     error
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "1":
			a.screen = ScreenDashboard
			a.dashboard = NewDashboardModel(a.coach, a.athlete.Profile, a.now)
			return a, a.dashboard.Init()
		case "2":
			a.screen = ScreenDecision
			return a, nil
		case "3":
			a.screen = ScreenForecast
			return a, nil
		case "d":
			// New cycle; logged like any other
			a.status = "Re-running decision..."
			a.decision.loading = true
			a.forecast.loading = true
			return a, a.decide
		case "?":
			a.prevScreen = a.screen
			a.screen = ScreenHelp
			return a, nil
		case "esc":
			if a.screen == ScreenHelp {
				a.screen = a.prevScreen
				return a, nil
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// The decision viewport sizes itself from this even when off screen
		m, cmd := a.decision.Update(msg)
		a.decision = m.(DecisionModel)
		return a, cmd

	case outcomeMsg:
		a.status = ""
		if msg.err != nil {
			a.status = "Decision failed: " + msg.err.Error()
		}
		var m tea.Model
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m, cmd = a.decision.Update(msg)
		a.decision = m.(DecisionModel)
		cmds = append(cmds, cmd)
		m, cmd = a.forecast.Update(msg)
		a.forecast = m.(ForecastModel)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	// Results of background loads go to their owner whichever screen is showing
	case recentDecisionsMsg:
		m, cmd := a.decision.Update(msg)
		a.decision = m.(DecisionModel)
		return a, cmd

	case forecastMsg:
		m, cmd := a.forecast.Update(msg)
		a.forecast = m.(ForecastModel)
		return a, cmd
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenDashboard:
		var m tea.Model
		m, cmd = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
	case ScreenDecision:
		var m tea.Model
		m, cmd = a.decision.Update(msg)
		a.decision = m.(DecisionModel)
	case ScreenForecast:
		var m tea.Model
		m, cmd = a.forecast.Update(msg)
		a.forecast = m.(ForecastModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenDecision:
		content = a.decision.View()
	case ScreenForecast:
		content = a.forecast.View()
	case ScreenHelp:
		content = a.help.View()
	}

	footer := a.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content, footer)
}

func (a *App) renderHeader() string {
	title := "Coach"
	if a.athlete.Profile.ID != "" {
		title += " · " + a.athlete.Profile.ID
	}
	return headerStyle.Render(title)
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Dashboard", ScreenDashboard},
		{"2", "Decision", ScreenDecision},
		{"3", "Forecast", ScreenForecast},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.status != "" {
		return statusStyle.Render(a.status)
	}
	return ""
}
