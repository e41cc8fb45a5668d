package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-club-ledger/src/clock"
	"github.com/livefire2015/ez-club-ledger/src/config"
	"github.com/livefire2015/ez-club-ledger/src/logging"
	"github.com/livefire2015/ez-club-ledger/src/metrics"
	"github.com/livefire2015/ez-club-ledger/src/models"
	"github.com/livefire2015/ez-club-ledger/src/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// This example runs a monthly platform invoicing cycle:
// 1. Register tenants with their capacity tiers
// 2. Quote each tenant's package
// 3. Preview and issue the month's invoices with a discount
// 4. Re-run the cycle to show already billed tenants are skipped
// 5. Settle one invoice

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config")
	dotenvPath := flag.String("env", ".env", "path to .env file")
	periodFlag := flag.String("period", "", "month to invoice (YYYY-MM), defaults to the current month")
	discountFlag := flag.String("discount", "10", "discount percentage applied to every invoice")
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configPath, *dotenvPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	discount, err := decimal.NewFromString(*discountFlag)
	if err != nil {
		logger.Fatal().Err(err).Str("discount", *discountFlag).Msg("invalid -discount")
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.New(prometheus.DefaultRegisterer)
	}

	ctx := context.Background()
	store, err := cfg.OpenStore(ctx)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to open store")
	}
	defer store.Close()

	pricing, err := cfg.PricingConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid pricing")
	}

	clk := clock.Real{}
	reconciliation := services.NewReconciliationService(store, clk, services.ReconciliationConfig{
		Due:      cfg.DueConfig(),
		Pricing:  pricing,
		Location: cfg.Location(),
	}, logger, collector)
	payments := services.NewPaymentService(store, clk, logger, collector)

	period := models.YearMonthOf(reconciliation.Today())
	if *periodFlag != "" {
		period, err = models.ParseYearMonth(*periodFlag)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid -period")
		}
	}

	fmt.Println("=== EZ Club Ledger - Platform Invoice Flow ===")
	fmt.Printf("Period: %s, discount %s%%\n\n", period.Label(), discount)

	// Step 1: Register tenants
	fmt.Println("Step 1: Registering Tenants")
	fmt.Println("---------------------------")

	anchor := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	tenants := []models.Tenant{
		newTenant("Club Atletico Norte", models.CoachTierMoreThan10, models.AthleteTierMoreThan100, anchor),
		newTenant("Escuela de Remo Sur", models.CoachTier6To10, models.AthleteTier16To50, anchor.AddDate(0, 0, -21)),
		newTenant("Gimnasio Oeste", models.CoachTierUpTo5, models.AthleteTierUpTo15, anchor.AddDate(0, 0, -30)),
	}
	for i := range tenants {
		if err := tenants[i].Validate(); err != nil {
			logger.Fatal().Err(err).Str("tenant", tenants[i].Name).Msg("invalid tenant")
		}
	}
	existing, err := store.ListTenants(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load tenants")
	}
	if err := store.ReplaceTenants(ctx, append(existing, tenants...)); err != nil {
		logger.Fatal().Err(err).Msg("failed to store tenants")
	}
	for _, t := range tenants {
		fmt.Printf("  %-22s coaches %-13s athletes %-14s due day %d\n",
			t.Name, t.CoachCapacityTier, t.AthleteCapacityTier, t.BillingAnchorDate.Day())
	}
	fmt.Println()

	// Step 2: Quotes
	fmt.Println("Step 2: Package Quotes")
	fmt.Println("----------------------")

	for _, t := range tenants {
		quote := services.PriceTenant(t, pricing)
		fmt.Printf("  %-22s %3d coaches x %s + %3d athletes x %s = %s\n",
			t.Name, quote.CoachCount, quote.CoachUnitRate.StringFixed(2),
			quote.AthleteCount, quote.AthleteUnitRate.StringFixed(2), quote.Total.StringFixed(2))
	}
	fmt.Println()

	// Step 3: Preview and issue
	fmt.Println("Step 3: Issuing Invoices")
	fmt.Println("------------------------")

	preview, err := reconciliation.PreviewInvoices(ctx, period, discount)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to preview invoices")
	}
	fmt.Printf("  %d invoices pending for %s\n", len(preview.Invoices), period.Label())

	run, err := reconciliation.IssuePlatformInvoices(ctx, period, discount)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to issue invoices")
	}
	for _, inv := range run.Invoices {
		fmt.Printf("\n  %s (due %s)\n", inv.Concept(), inv.DueDate.Format("2006-01-02"))
		fmt.Print(indent(inv.Breakdown()))
	}
	fmt.Println()

	// Step 4: Re-run
	fmt.Println("Step 4: Re-running the Cycle")
	fmt.Println("----------------------------")

	again, err := reconciliation.IssuePlatformInvoices(ctx, period, discount)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to re-run invoicing")
	}
	fmt.Printf("  %d new invoices (already billed tenants are skipped)\n\n", len(again.Invoices))

	// Step 5: Settle an invoice
	fmt.Println("Step 5: Settling an Invoice")
	fmt.Println("---------------------------")

	if len(run.Records) > 0 {
		record := run.Records[0]
		result, err := payments.Transition(ctx, record.ID, models.PaymentStatusPaid, "bank transfer received", "treasurer")
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to settle invoice")
		}
		fmt.Printf("  %s: %s -> %s\n", result.Payment.Concept, result.Transition.FromStatus, result.Transition.ToStatus)
	}

	report, err := reconciliation.DashboardBalance(ctx, models.BalancePeriodQuarter, models.BalanceFilter{
		Category: string(models.PaymentCategoryPlatform),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to compute balance")
	}
	fmt.Printf("  platform fees collected this quarter: %s\n", report.Total.StringFixed(2))

	fmt.Println("\n=== Flow Complete ===")
}

func newTenant(name string, coaches models.CoachTier, athletes models.AthleteTier, anchor time.Time) models.Tenant {
	now := time.Now()
	return models.Tenant{
		ID:                  uuid.New(),
		Name:                name,
		CoachCapacityTier:   coaches,
		AthleteCapacityTier: athletes,
		BillingAnchorDate:   anchor,
		Status:              models.TenantStatusActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	return "    " + strings.Join(lines, "\n    ") + "\n"
}
