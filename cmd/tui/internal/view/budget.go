package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/gcpanel/costcore/internal/budget"
)

type budgetState int

const (
	budgetStateBrowse budgetState = iota
	budgetStateAdd
	budgetStateSpend
	budgetStateCompletion
)

type BudgetModel struct {
	CommonModel
	budgetService *budget.Service

	state budgetState
	table table.Model
	items []*budget.BudgetItem
	form  *huh.Form

	loading bool
	err     error
	status  string

	// Form bindings
	formCategory    string
	formDescription string
	formCostCode    string
	formManager     string
	formBudgeted    string
	formCommitted   string
	formAmount      string
}

func NewBudgetModel(budgetSvc *budget.Service) BudgetModel {
	columns := []table.Column{
		{Title: "Code", Width: 8},
		{Title: "Category", Width: 14},
		{Title: "Description", Width: 34},
		{Title: "Budgeted", Width: 14},
		{Title: "Spent", Width: 14},
		{Title: "Done", Width: 6},
		{Title: "Forecast", Width: 14},
		{Title: "Variance", Width: 14},
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

	return BudgetModel{
		budgetService: budgetSvc,
		table:         t,
		loading:       true,
	}
}

func (m BudgetModel) Title() string { return "Budget Items" }
func (m BudgetModel) ShortHelp() string {
	if m.state != budgetStateBrowse {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | a: add item | s: record spend | c: completion | r: refresh"
}

type loadBudgetMsg struct {
	items []*budget.BudgetItem
	err   error
}

type budgetSavedMsg struct {
	err error
}

func (m BudgetModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		items, err := m.budgetService.List(ctx, budget.ListFilter{})

		return loadBudgetMsg{items: items, err: err}
	}
}

func (m BudgetModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BudgetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBudgetMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.items = msg.items
		m.refreshTable()

		return m, nil

	case budgetSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = ""
		}

		m.state = budgetStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == budgetStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m BudgetModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "a":
			return m.enterAddMode()
		case "s":
			return m.enterAmountMode(budgetStateSpend)
		case "c":
			return m.enterAmountMode(budgetStateCompletion)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func requireDecimal(s string) error {
	if _, err := decimal.NewFromString(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("enter a numeric amount")
	}

	return nil
}

func (m BudgetModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.formCategory = string(budget.CategoryLabor)
	m.formDescription = ""
	m.formCostCode = ""
	m.formManager = ""
	m.formBudgeted = ""
	m.formCommitted = "0"

	categories := []budget.Category{
		budget.CategoryLabor, budget.CategoryMaterials, budget.CategoryEquipment,
		budget.CategorySubcontractors, budget.CategoryOverhead, budget.CategoryContingency,
	}

	options := make([]huh.Option[string], len(categories))
	for i, c := range categories {
		options[i] = huh.NewOption(string(c), string(c))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(options...).
				Value(&m.formCategory),

			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.formDescription).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("description cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("cost_code").
				Title("Cost Code").
				Placeholder("CC-0000").
				Value(&m.formCostCode),

			huh.NewInput().
				Key("manager").
				Title("Responsible Manager").
				Value(&m.formManager),

			huh.NewInput().
				Key("budgeted").
				Title("Budgeted Amount").
				Value(&m.formBudgeted).
				Validate(requireDecimal),

			huh.NewInput().
				Key("committed").
				Title("Committed Amount").
				Value(&m.formCommitted).
				Validate(requireDecimal),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = budgetStateAdd
	m.table.Blur()

	return m, m.form.Init()
}

func (m BudgetModel) enterAmountMode(state budgetState) (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.items) {
		return m, nil
	}

	title := "Actual Spent"
	if state == budgetStateCompletion {
		title = "Completion Percent"
	}

	m.formAmount = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title(title).
				Value(&m.formAmount).
				Validate(requireDecimal),
		),
	).WithWidth(40).WithShowHelp(false)

	m.state = state
	m.table.Blur()

	return m, m.form.Init()
}

func (m BudgetModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = budgetStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m BudgetModel) saveCmd() tea.Cmd {
	state := m.state

	switch state {
	case budgetStateAdd:
		params := budget.CreateParams{
			Category:           budget.Category(m.formCategory),
			Description:        m.formDescription,
			CostCode:           m.formCostCode,
			ResponsibleManager: m.formManager,
			BudgetedAmount:     decimal.RequireFromString(strings.TrimSpace(m.formBudgeted)),
			CommittedAmount:    decimal.RequireFromString(strings.TrimSpace(m.formCommitted)),
		}

		return func() tea.Msg {
			ctx, cancel := OpCtx()
			defer cancel()

			_, err := m.budgetService.AddItem(ctx, params)

			return budgetSavedMsg{err: err}
		}
	case budgetStateSpend, budgetStateCompletion:
		idx := m.table.Cursor()
		if idx < 0 || idx >= len(m.items) {
			return func() tea.Msg { return budgetSavedMsg{} }
		}

		id := m.items[idx].ID
		amount := decimal.RequireFromString(strings.TrimSpace(m.formAmount))

		return func() tea.Msg {
			ctx, cancel := OpCtx()
			defer cancel()

			var err error
			if state == budgetStateSpend {
				_, err = m.budgetService.RecordActualSpend(ctx, id, amount)
			} else {
				_, err = m.budgetService.UpdateCompletion(ctx, id, amount)
			}

			return budgetSavedMsg{err: err}
		}
	}

	return nil
}

func (m *BudgetModel) refreshTable() {
	rows := make([]table.Row, len(m.items))
	for i, item := range m.items {
		rows[i] = table.Row{
			item.CostCode,
			string(item.Category),
			item.Description,
			Currency(item.BudgetedAmount),
			Currency(item.ActualSpent),
			Percent(item.CompletionPercent),
			Currency(item.ForecastFinal),
			Currency(item.Variance),
		}
	}

	m.table.SetRows(rows)
}

func (m BudgetModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading budget items...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	parts := []string{tableView}

	if m.status != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(m.status))
	}

	if m.state != budgetStateBrowse && m.form != nil {
		parts = append(parts, m.form.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
