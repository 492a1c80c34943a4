package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/gcpanel/costcore/cmd/tui/internal/view"
	"github.com/gcpanel/costcore/internal/budget"
	budgetStore "github.com/gcpanel/costcore/internal/budget/store"
	"github.com/gcpanel/costcore/internal/changeorder"
	changeorderStore "github.com/gcpanel/costcore/internal/changeorder/store"
	"github.com/gcpanel/costcore/internal/config"
	"github.com/gcpanel/costcore/internal/contracts"
	contractStore "github.com/gcpanel/costcore/internal/contracts/store"
	"github.com/gcpanel/costcore/internal/database"
	"github.com/gcpanel/costcore/internal/demo"
	"github.com/gcpanel/costcore/internal/forecast"
	forecastStore "github.com/gcpanel/costcore/internal/forecast/store"
	"github.com/gcpanel/costcore/internal/memstore"
	"github.com/gcpanel/costcore/internal/payapp"
	payappStore "github.com/gcpanel/costcore/internal/payapp/store"
	"github.com/gcpanel/costcore/internal/summary"
)

type model struct {
	budgetService *budget.Service
	payappService *payapp.Service

	currentView View

	dashboardView view.DashboardModel
	budgetView    view.BudgetModel
	payappView    view.PayAppModel
}

type View int

const (
	ViewMenu      View = 0
	ViewDashboard View = 1
	ViewBudget    View = 2
	ViewPayApps   View = 3
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var (
		budgetRepo      budget.Repository
		forecastRepo    forecast.Repository
		payappRepo      payapp.Repository
		changeorderRepo changeorder.Repository
		contractRepo    contracts.Repository
	)

	switch cfg.Store.Driver {
	case "memory":
		budgetRepo = memstore.NewBudgetStore()
		forecastRepo = memstore.NewForecastStore()
		payappRepo = memstore.NewPayAppStore()
		changeorderRepo = memstore.NewChangeOrderStore()
		contractRepo = memstore.NewContractStore()
	case "postgres":
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}

		if err := database.EnsureSchema(ctx, db); err != nil {
			slog.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}

		budgetRepo = budgetStore.New(db)
		forecastRepo = forecastStore.New(db)
		payappRepo = payappStore.New(db)
		changeorderRepo = changeorderStore.New(db)
		contractRepo = contractStore.New(db)
	default:
		slog.Error("unknown store driver", "driver", cfg.Store.Driver)
		os.Exit(1)
	}

	budgetSvc := budget.NewService(budgetRepo)
	forecastSvc := forecast.NewService(forecastRepo, budgetSvc)
	payappSvc := payapp.NewService(payappRepo)
	contractSvc := contracts.NewService(contractRepo)
	changeorderSvc := changeorder.NewService(changeorderRepo, contractSvc)
	summarySvc := summary.NewService(budgetSvc, forecastSvc, payappSvc)

	if cfg.Store.Seed {
		err := demo.Seed(ctx, demo.Services{
			Budgets:      budgetSvc,
			Forecasts:    forecastSvc,
			PayApps:      payappSvc,
			Contracts:    contractSvc,
			ChangeOrders: changeorderSvc,
		})
		if err != nil {
			slog.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
	}

	return model{
		budgetService: budgetSvc,
		payappService: payappSvc,
		currentView:   ViewMenu,
		dashboardView: view.NewDashboardModel(summarySvc),
		budgetView:    view.NewBudgetModel(budgetSvc),
		payappView:    view.NewPayAppModel(payappSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDashboard
				return m, m.dashboardView.Init()
			case "2":
				m.currentView = ViewBudget
				m.budgetView = view.NewBudgetModel(m.budgetService)

				return m, m.budgetView.Init()
			case "3":
				m.currentView = ViewPayApps
				m.payappView = view.NewPayAppModel(m.payappService)

				return m, m.payappView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewBudget:
		var newModel tea.Model
		newModel, cmd = m.budgetView.Update(msg)
		m.budgetView = newModel.(view.BudgetModel)
	case ViewPayApps:
		var newModel tea.Model
		newModel, cmd = m.payappView.Update(msg)
		m.payappView = newModel.(view.PayAppModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"CostCore TUI\n\n" +
				"1. Project Dashboard\n" +
				"2. Budget Items\n" +
				"3. Payment Applications\n\n" +
				"q. Quit",
		)
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewBudget:
		return m.budgetView.View()
	case ViewPayApps:
		return m.payappView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
