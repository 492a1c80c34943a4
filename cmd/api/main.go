package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

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
	costcoreHttp "github.com/gcpanel/costcore/internal/http"
	budgetHandler "github.com/gcpanel/costcore/internal/http/budget"
	changeorderHandler "github.com/gcpanel/costcore/internal/http/changeorder"
	contractHandler "github.com/gcpanel/costcore/internal/http/contracts"
	forecastHandler "github.com/gcpanel/costcore/internal/http/forecast"
	payappHandler "github.com/gcpanel/costcore/internal/http/payapp"
	summaryHandler "github.com/gcpanel/costcore/internal/http/summary"
	"github.com/gcpanel/costcore/internal/memstore"
	"github.com/gcpanel/costcore/internal/payapp"
	payappStore "github.com/gcpanel/costcore/internal/payapp/store"
	"github.com/gcpanel/costcore/internal/summary"
)

type stores struct {
	budgets      budget.Repository
	forecasts    forecast.Repository
	payapps      payapp.Repository
	changeOrders changeorder.Repository
	contracts    contracts.Repository
}

func openStores(ctx context.Context, cfg *config.Config) (stores, func(), error) {
	switch cfg.Store.Driver {
	case "memory":
		return stores{
			budgets:      memstore.NewBudgetStore(),
			forecasts:    memstore.NewForecastStore(),
			payapps:      memstore.NewPayAppStore(),
			changeOrders: memstore.NewChangeOrderStore(),
			contracts:    memstore.NewContractStore(),
		}, func() {}, nil
	case "postgres":
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			return stores{}, nil, fmt.Errorf("connecting to database: %w", err)
		}

		if err := database.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return stores{}, nil, err
		}

		return stores{
			budgets:      budgetStore.New(db),
			forecasts:    forecastStore.New(db),
			payapps:      payappStore.New(db),
			changeOrders: changeorderStore.New(db),
			contracts:    contractStore.New(db),
		}, func() { db.Close() }, nil
	default:
		return stores{}, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	st, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		slog.Error("failed to open stores", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStores()

	var (
		budgetService      = budget.NewService(st.budgets)
		forecastService    = forecast.NewService(st.forecasts, budgetService)
		payappService      = payapp.NewService(st.payapps)
		contractService    = contracts.NewService(st.contracts)
		changeorderService = changeorder.NewService(st.changeOrders, contractService)
		summaryService     = summary.NewService(budgetService, forecastService, payappService)
	)

	if cfg.Store.Seed {
		err := demo.Seed(ctx, demo.Services{
			Budgets:      budgetService,
			Forecasts:    forecastService,
			PayApps:      payappService,
			Contracts:    contractService,
			ChangeOrders: changeorderService,
		})
		if err != nil {
			slog.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}

		slog.Info("seeded demo project")
	}

	var (
		budgetH      = budgetHandler.NewHandler(budgetService)
		forecastH    = forecastHandler.NewHandler(forecastService)
		payappH      = payappHandler.NewHandler(payappService)
		changeorderH = changeorderHandler.NewHandler(changeorderService)
		contractH    = contractHandler.NewHandler(contractService)
		summaryH     = summaryHandler.NewHandler(summaryService)
	)

	router := costcoreHttp.New(budgetH, forecastH, payappH, changeorderH, contractH, summaryH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
