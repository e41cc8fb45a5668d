package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/livefire2015/ez-club-ledger/src/clock"
	"github.com/livefire2015/ez-club-ledger/src/config"
	"github.com/livefire2015/ez-club-ledger/src/logging"
	"github.com/livefire2015/ez-club-ledger/src/metrics"
	"github.com/livefire2015/ez-club-ledger/src/models"
	"github.com/livefire2015/ez-club-ledger/src/services"
	"github.com/livefire2015/ez-club-ledger/src/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// This example walks a member through the fee ledger:
// 1. Enroll members
// 2. Register monthly fee payments, one of them early
// 3. Flag a month as paid by hand
// 4. Print each member's month-by-month history and summary
// 5. Print the collected balance for every dashboard period

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config")
	dotenvPath := flag.String("env", ".env", "path to .env file")
	todayFlag := flag.String("today", "", "pin today to a date (YYYY-MM-DD)")
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configPath, *dotenvPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	var clk clock.Clock = clock.Real{}
	if *todayFlag != "" {
		pinned, err := time.Parse("2006-01-02", *todayFlag)
		if err != nil {
			logger.Fatal().Err(err).Str("today", *todayFlag).Msg("invalid -today")
		}
		clk = clock.NewFixed(pinned)
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

	payments := services.NewPaymentService(store, clk, logger, collector)
	overrides := services.NewOverrideService(store, logger, collector)
	reconciliation := services.NewReconciliationService(store, clk, services.ReconciliationConfig{
		Due:      cfg.DueConfig(),
		Pricing:  pricing,
		Location: cfg.Location(),
	}, logger, collector)

	today := reconciliation.Today()

	fmt.Println("=== EZ Club Ledger - Member Ledger Flow ===")
	fmt.Printf("Today: %s\n\n", today.Format("2006-01-02"))

	// Step 1: Enroll members
	fmt.Println("Step 1: Enrolling Members")
	fmt.Println("-------------------------")

	members := []*models.Member{
		models.NewMember("Lucia Fernandez", models.MemberRoleAthlete, today.AddDate(0, -4, -3)),
		models.NewMember("Tomas Ibarra", models.MemberRoleAthlete, today.AddDate(0, -2, 0)),
		models.NewMember("Carla Ruiz", models.MemberRoleCoach, today.AddDate(0, -3, 5)),
	}
	if err := enroll(ctx, store, members); err != nil {
		logger.Fatal().Err(err).Msg("failed to enroll members")
	}
	for _, m := range members {
		fmt.Printf("  %-16s %-8s enrolled %s\n", m.Name, m.Role, m.EnrollmentDate.Format("2006-01-02"))
	}
	fmt.Println()

	// Step 2: Register payments
	fmt.Println("Step 2: Registering Payments")
	fmt.Println("----------------------------")

	fee := decimal.NewFromInt(15000)
	lucia, tomas := members[0], members[1]
	requests := []services.PaymentRequest{
		monthlyFee(lucia, fee, lucia.EnrollmentDate.AddDate(0, 0, 1), models.PaymentMethodCash),
		monthlyFee(lucia, fee, lucia.EnrollmentDate.AddDate(0, 1, 0), models.PaymentMethodBankTransfer),
		// two days ahead of the due day, still inside the tolerance window
		monthlyFee(tomas, fee, tomas.EnrollmentDate.AddDate(0, 1, -2), models.PaymentMethodMobileWallet),
		{
			MemberID:    &tomas.ID,
			Amount:      decimal.NewFromInt(42000),
			Concept:     "Competition kit",
			Category:    models.PaymentCategoryEquipment,
			PaymentDate: today,
			Method:      models.PaymentMethodCard,
		},
	}
	for _, req := range requests {
		p, err := payments.Register(ctx, req)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to register payment")
		}
		fmt.Printf("  %-28s %12s  %s\n", p.Concept, p.Amount.StringFixed(2), p.PaymentDate.Format("2006-01-02"))
	}
	fmt.Println()

	// Step 3: Manual override
	fmt.Println("Step 3: Manual Override")
	fmt.Println("-----------------------")

	carla := members[2]
	carlaFirst, _ := carla.EnrollmentMonth()
	if err := overrides.Set(ctx, carla.ID, carlaFirst, models.OverridePaid); err != nil {
		logger.Fatal().Err(err).Msg("failed to set override")
	}
	fmt.Printf("  %s marked paid by hand for %s\n\n", carla.Name, carlaFirst.Label())

	// Step 4: Histories
	fmt.Println("Step 4: Member Histories")
	fmt.Println("------------------------")

	for _, m := range members {
		ledger, err := reconciliation.MemberLedger(ctx, m.ID)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build history")
		}
		fmt.Printf("\n  %s\n", m.Name)
		for _, e := range ledger.Entries {
			manual := ""
			if e.IsManualOverride {
				manual = " (manual)"
			}
			fmt.Printf("    %-15s due %s  %s %s%s\n", e.MonthLabel, e.DueDate.Format("2006-01-02"), e.Hint.Icon, e.Status, manual)
		}

		summary := models.SummarizeHistory(ledger.Entries)
		fmt.Printf("    %d months tracked, %d overdue\n", summary.MonthsTracked, len(summary.OverdueMonths))
	}
	fmt.Println()

	arrears, err := reconciliation.Arrears(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to compute arrears")
	}
	fmt.Printf("Members in arrears: %d\n\n", len(arrears))

	// Step 5: Dashboard balance
	fmt.Println("Step 5: Collected Balance")
	fmt.Println("-------------------------")

	periods := []models.BalancePeriod{
		models.BalancePeriodDay,
		models.BalancePeriodWeek,
		models.BalancePeriodMonth,
		models.BalancePeriodBimester,
		models.BalancePeriodQuarter,
	}
	for _, period := range periods {
		report, err := reconciliation.DashboardBalance(ctx, period, models.BalanceFilter{})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to compute balance")
		}
		fmt.Printf("  %-9s %s..%s  %12s (%d records)\n",
			period, report.Window.Start.Format("2006-01-02"), report.Window.End.Format("2006-01-02"),
			report.Total.StringFixed(2), report.Count)
	}

	membership, err := reconciliation.DashboardBalance(ctx, models.BalancePeriodQuarter, models.BalanceFilter{
		Category: string(models.PaymentCategoryMembership),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to compute balance")
	}
	fmt.Printf("  membership fees this quarter: %s\n", membership.Total.StringFixed(2))

	fmt.Println("\n=== Flow Complete ===")
}

func monthlyFee(m *models.Member, amount decimal.Decimal, date time.Time, method models.PaymentMethod) services.PaymentRequest {
	return services.PaymentRequest{
		MemberID:    &m.ID,
		Amount:      amount,
		Concept:     fmt.Sprintf("Monthly fee %s", models.YearMonthOf(date).Label()),
		Category:    models.PaymentCategoryMembership,
		PaymentDate: date,
		Method:      method,
	}
}

func enroll(ctx context.Context, registry storage.MemberRegistry, members []*models.Member) error {
	existing, err := registry.ListMembers(ctx)
	if err != nil {
		return err
	}
	for _, m := range members {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("member %q: %w", m.Name, err)
		}
		existing = append(existing, *m)
	}
	return registry.ReplaceMembers(ctx, existing)
}
