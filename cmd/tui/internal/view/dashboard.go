package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gcpanel/costcore/internal/summary"
)

type DashboardModel struct {
	CommonModel
	summaryService *summary.Service

	summary *summary.ProjectSummary
	loading bool
	err     error
}

func NewDashboardModel(summarySvc *summary.Service) DashboardModel {
	return DashboardModel{summaryService: summarySvc, loading: true}
}

func (m DashboardModel) Title() string     { return "Project Dashboard" }
func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh" }

type loadSummaryMsg struct {
	summary *summary.ProjectSummary
	err     error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		s, err := m.summaryService.ProjectSummary(ctx)

		return loadSummaryMsg{summary: s, err: err}
	}
}

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadSummaryMsg:
		m.loading = false
		m.summary = msg.summary
		m.err = msg.err

		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(24)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	overStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func (m DashboardModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading summary...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	s := m.summary

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	forecastLine := labelStyle.Render("Latest Forecast") + valueStyle.Render(Currency(s.LatestForecastTotal))
	if s.LatestForecastTotal.GreaterThan(s.TotalBudget) {
		forecastLine = labelStyle.Render("Latest Forecast") + overStyle.Render(Currency(s.LatestForecastTotal)+" (over budget)")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		row("Total Budget", Currency(s.TotalBudget)),
		row("Total Spent", Currency(s.TotalSpent)),
		row("Total Committed", Currency(s.TotalCommitted)),
		forecastLine,
		row("Pending Pay Apps", fmt.Sprintf("%d", s.PendingPaymentCount)),
		row("Paid To Date", Currency(s.TotalPaidToDate)),
	)

	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}
