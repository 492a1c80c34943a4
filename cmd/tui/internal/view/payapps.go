package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gcpanel/costcore/internal/payapp"
)

type PayAppModel struct {
	CommonModel
	payappService *payapp.Service

	table   table.Model
	apps    []*payapp.PaymentApplication
	loading bool
	err     error
	status  string
}

func NewPayAppModel(payappSvc *payapp.Service) PayAppModel {
	columns := []table.Column{
		{Title: "No.", Width: 5},
		{Title: "Period Ending", Width: 14},
		{Title: "Requested", Width: 14},
		{Title: "Retention", Width: 13},
		{Title: "Net", Width: 14},
		{Title: "Status", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return PayAppModel{
		payappService: payappSvc,
		table:         t,
		loading:       true,
	}
}

func (m PayAppModel) Title() string { return "Payment Applications" }
func (m PayAppModel) ShortHelp() string {
	return "Esc: back | s: submit | a: approve | p: mark paid | x: reject | r: refresh"
}

type loadPayAppsMsg struct {
	apps []*payapp.PaymentApplication
	err  error
}

type payAppTransitionMsg struct {
	err error
}

func (m PayAppModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		apps, err := m.payappService.List(ctx)

		return loadPayAppsMsg{apps: apps, err: err}
	}
}

func (m PayAppModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m PayAppModel) transitionCmd(fn func(int64) (*payapp.PaymentApplication, error)) tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.apps) {
		return nil
	}

	number := m.apps[idx].ApplicationNumber

	return func() tea.Msg {
		_, err := fn(number)
		return payAppTransitionMsg{err: err}
	}
}

func (m PayAppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadPayAppsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.apps = msg.apps
		m.refreshTable()

		return m, nil

	case payAppTransitionMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = ""
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		svc := m.payappService
		wrap := func(fn func(int64) (*payapp.PaymentApplication, error)) tea.Cmd {
			return m.transitionCmd(fn)
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			return m, wrap(func(n int64) (*payapp.PaymentApplication, error) {
				ctx, cancel := OpCtx()
				defer cancel()
				return svc.Submit(ctx, n)
			})
		case "a":
			return m, wrap(func(n int64) (*payapp.PaymentApplication, error) {
				ctx, cancel := OpCtx()
				defer cancel()
				return svc.Approve(ctx, n)
			})
		case "p":
			return m, wrap(func(n int64) (*payapp.PaymentApplication, error) {
				ctx, cancel := OpCtx()
				defer cancel()
				return svc.MarkPaid(ctx, n)
			})
		case "x":
			return m, wrap(func(n int64) (*payapp.PaymentApplication, error) {
				ctx, cancel := OpCtx()
				defer cancel()
				return svc.Reject(ctx, n)
			})
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *PayAppModel) refreshTable() {
	rows := make([]table.Row, len(m.apps))
	for i, app := range m.apps {
		rows[i] = table.Row{
			fmt.Sprintf("%d", app.ApplicationNumber),
			FormatDate(app.PeriodEnding),
			Currency(app.AmountRequested),
			Currency(app.RetentionAmount),
			Currency(app.NetPayment),
			string(app.Status),
		}
	}

	m.table.SetRows(rows)
}

func (m PayAppModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading payment applications...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if m.status != "" {
		return lipgloss.JoinVertical(lipgloss.Left,
			tableView,
			lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(m.status),
		)
	}

	return tableView
}
