package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-club-ledger/src/clock"
	"github.com/livefire2015/ez-club-ledger/src/metrics"
	"github.com/livefire2015/ez-club-ledger/src/models"
	"github.com/livefire2015/ez-club-ledger/src/storage"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Reconciliation errors
var (
	ErrMemberNotFound       = errors.New("member not found")
	ErrInvalidBalancePeriod = errors.New("unknown balance period")
)

// Reasons a tenant is left out of an invoicing run
const (
	SkipReasonInactive  = "inactive"
	SkipReasonInvalid   = "invalid"
	SkipReasonZeroTotal = "zero_total"
)

// ReconciliationConfig holds the business rules the service applies
type ReconciliationConfig struct {
	Due      DueConfig
	Pricing  PricingConfig
	Location *time.Location // Zone deciding which calendar day is today
}

// ReconciliationService answers ledger questions over the stored records.
// It loads a snapshot, resolves today from the clock and delegates to the
// pure calculators.
type ReconciliationService struct {
	mu      sync.Mutex // serializes invoicing runs
	store   storage.Store
	clock   clock.Clock
	cfg     ReconciliationConfig
	logger  zerolog.Logger
	metrics *metrics.Collector
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(
	store storage.Store,
	clk clock.Clock,
	cfg ReconciliationConfig,
	logger zerolog.Logger,
	m *metrics.Collector,
) *ReconciliationService {
	if clk == nil {
		clk = clock.Real{}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ReconciliationService{
		store:   store,
		clock:   clk,
		cfg:     cfg,
		logger:  logger.With().Str("component", "reconciliation").Logger(),
		metrics: m,
	}
}

// Today returns the current calendar date in the configured zone
func (s *ReconciliationService) Today() time.Time {
	return clock.Today(s.clock, s.cfg.Location)
}

// MemberLedger is a member together with their month-by-month fee history
type MemberLedger struct {
	Member   models.Member            `json:"member"`
	Entries  []models.MonthlyDueEntry `json:"entries"`
	Payments []models.PaymentRecord   `json:"payments"`
	AsOf     time.Time                `json:"as_of"`
}

// MemberLedger builds the fee history of one member
func (s *ReconciliationService) MemberLedger(ctx context.Context, memberID uuid.UUID) (*MemberLedger, error) {
	snap, err := storage.LoadSnapshot(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	member, ok := snap.FindMember(memberID)
	if !ok {
		return nil, fmt.Errorf("member %s: %w", memberID, ErrMemberNotFound)
	}

	today := s.Today()
	ledger := s.buildLedger(member, snap, today)

	s.logger.Debug().
		Str("member_id", memberID.String()).
		Int("months", len(ledger.Entries)).
		Time("as_of", today).
		Msg("member history built")

	return ledger, nil
}

func (s *ReconciliationService) buildLedger(member models.Member, snap *storage.Snapshot, today time.Time) *MemberLedger {
	overrides := models.NewOverrideLookup(snap.Overrides)
	entries := BuildHistory(member, snap.Payments, overrides, today, s.cfg.Due)

	s.metrics.RecordHistory()
	for _, e := range entries {
		s.metrics.RecordDueStatus(string(e.Status))
	}

	payments := paymentsForMember(snap.Payments, member.ID)
	sortPaymentsNewestFirst(payments)

	return &MemberLedger{
		Member:   member,
		Entries:  entries,
		Payments: payments,
		AsOf:     today,
	}
}

// MemberSummary counts a member's months per status
func (s *ReconciliationService) MemberSummary(ctx context.Context, memberID uuid.UUID) (models.MemberDueSummary, error) {
	ledger, err := s.MemberLedger(ctx, memberID)
	if err != nil {
		return models.MemberDueSummary{}, err
	}
	return models.SummarizeHistory(ledger.Entries), nil
}

// MemberArrears is an active member with at least one overdue month
type MemberArrears struct {
	Member  models.Member           `json:"member"`
	Summary models.MemberDueSummary `json:"summary"`
}

// Arrears lists active members with overdue months, most months overdue first
func (s *ReconciliationService) Arrears(ctx context.Context) ([]MemberArrears, error) {
	snap, err := storage.LoadSnapshot(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	today := s.Today()
	arrears := make([]MemberArrears, 0)
	for _, member := range snap.Members {
		if !member.Active || !member.HasBillingTimeline() {
			continue
		}
		summary := models.SummarizeHistory(s.buildLedger(member, snap, today).Entries)
		if len(summary.OverdueMonths) > 0 {
			arrears = append(arrears, MemberArrears{Member: member, Summary: summary})
		}
	}

	sort.SliceStable(arrears, func(i, j int) bool {
		return len(arrears[i].Summary.OverdueMonths) > len(arrears[j].Summary.OverdueMonths)
	})

	s.logger.Info().Int("members", len(arrears)).Msg("arrears computed")
	return arrears, nil
}

// DashboardBalance sums the collected payments of a period
func (s *ReconciliationService) DashboardBalance(ctx context.Context, period models.BalancePeriod, filter models.BalanceFilter) (models.BalanceReport, error) {
	if !period.IsValid() {
		return models.BalanceReport{}, fmt.Errorf("balance %q: %w", period, ErrInvalidBalancePeriod)
	}

	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return models.BalanceReport{}, fmt.Errorf("load payments: %w", err)
	}

	report := BalanceBreakdown(payments, period, filter, s.Today())

	s.metrics.SetBalance(string(period), report.Total.InexactFloat64())
	s.logger.Debug().
		Str("period", string(period)).
		Time("from", report.Window.Start).
		Time("to", report.Window.End).
		Int("records", report.Count).
		Str("total", report.Total.StringFixed(2)).
		Msg("balance computed")

	return report, nil
}

// SkippedTenant is a tenant left out of an invoicing run
type SkippedTenant struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Name     string    `json:"name"`
	Reason   string    `json:"reason"`
	Detail   string    `json:"detail,omitempty"`
}

// InvoiceRun is the outcome of one platform invoicing run
type InvoiceRun struct {
	Period   models.YearMonth       `json:"period"`
	Discount decimal.Decimal        `json:"discount_percent"`
	Invoices []models.Invoice       `json:"invoices"`
	Records  []models.PaymentRecord `json:"records"`
	Skipped  []SkippedTenant        `json:"skipped"`
}

// PreviewInvoices prices the invoices a run would issue without storing them
func (s *ReconciliationService) PreviewInvoices(ctx context.Context, period models.YearMonth, discountPercent decimal.Decimal) (*InvoiceRun, error) {
	tenants, err := s.store.ListTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tenants: %w", err)
	}
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	return s.planRun(tenants, payments, period, discountPercent), nil
}

// IssuePlatformInvoices invoices every active tenant not yet billed for the period.
// Invoices are appended as pending platform records in a single ledger write, so
// a run either stores all of them or none.
func (s *ReconciliationService) IssuePlatformInvoices(ctx context.Context, period models.YearMonth, discountPercent decimal.Decimal) (*InvoiceRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenants, err := s.store.ListTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tenants: %w", err)
	}
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}

	run := s.planRun(tenants, payments, period, discountPercent)
	for _, skipped := range run.Skipped {
		s.metrics.RecordSkippedInvoice(skipped.Reason)
		s.logger.Warn().
			Str("tenant_id", skipped.TenantID.String()).
			Str("reason", skipped.Reason).
			Str("detail", skipped.Detail).
			Msg("tenant not invoiced")
	}

	if len(run.Records) == 0 {
		s.logger.Info().Str("period", period.String()).Msg("no tenants to invoice")
		return run, nil
	}

	if err := s.store.ReplacePayments(ctx, append(payments, run.Records...)); err != nil {
		return nil, fmt.Errorf("store invoices for %s: %w", period, err)
	}

	for _, inv := range run.Invoices {
		s.metrics.RecordInvoice(inv.Total.InexactFloat64())
		s.logger.Info().
			Str("tenant_id", inv.TenantID.String()).
			Str("period", inv.Period.String()).
			Str("total", inv.Total.StringFixed(2)).
			Time("due_date", inv.DueDate).
			Msg("platform invoice issued")
	}

	return run, nil
}

// planRun generates the invoices of the unbilled tenants and the records to store
func (s *ReconciliationService) planRun(tenants []models.Tenant, payments []models.PaymentRecord, period models.YearMonth, discountPercent decimal.Decimal) *InvoiceRun {
	discount := ClampDiscount(discountPercent)
	if !discount.Equal(discountPercent) {
		s.logger.Warn().
			Str("requested", discountPercent.String()).
			Str("applied", discount.String()).
			Msg("discount clamped")
	}

	run := &InvoiceRun{
		Period:   period,
		Discount: discount,
		Invoices: []models.Invoice{},
		Records:  []models.PaymentRecord{},
		Skipped:  []SkippedTenant{},
	}

	now := s.clock.Now()
	for _, tenant := range FindUnbilledTenants(tenants, payments, period.Label()) {
		if !tenant.IsActive() {
			run.Skipped = append(run.Skipped, SkippedTenant{TenantID: tenant.ID, Name: tenant.Name, Reason: SkipReasonInactive})
			continue
		}
		if err := tenant.Validate(); err != nil {
			run.Skipped = append(run.Skipped, SkippedTenant{TenantID: tenant.ID, Name: tenant.Name, Reason: SkipReasonInvalid, Detail: err.Error()})
			continue
		}

		inv := GenerateInvoice(tenant, period, discount, s.cfg.Pricing)
		record := inv.ToPaymentRecord()
		if !record.Amount.IsPositive() {
			// nothing left to collect once rounded to cents
			run.Skipped = append(run.Skipped, SkippedTenant{TenantID: tenant.ID, Name: tenant.Name, Reason: SkipReasonZeroTotal})
			continue
		}

		record.CreatedAt = now
		record.UpdatedAt = now

		run.Invoices = append(run.Invoices, inv)
		run.Records = append(run.Records, *record)
	}
	return run
}
