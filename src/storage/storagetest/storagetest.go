// Package storagetest checks that a storage.Store implementation behaves like
// the others. Each backend's tests call Run with a constructor.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-club-ledger/src/models"
	"github.com/livefire2015/ez-club-ledger/src/storage"
	"github.com/shopspring/decimal"
)

// Run exercises every collection of the store returned by newStore.
// newStore must return an empty store and is called once per subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("Empty", func(t *testing.T) { testEmpty(t, newStore(t)) })
	t.Run("Members", func(t *testing.T) { testMembers(t, newStore(t)) })
	t.Run("Payments", func(t *testing.T) { testPayments(t, newStore(t)) })
	t.Run("AmountPrecision", func(t *testing.T) { testAmountPrecision(t, newStore(t)) })
	t.Run("DuplicateBillingKey", func(t *testing.T) { testDuplicateBillingKey(t, newStore(t)) })
	t.Run("Tenants", func(t *testing.T) { testTenants(t, newStore(t)) })
	t.Run("Overrides", func(t *testing.T) { testOverrides(t, newStore(t)) })
	t.Run("Snapshot", func(t *testing.T) { testSnapshot(t, newStore(t)) })
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func stamp() time.Time {
	return time.Date(2024, 3, 20, 14, 30, 5, 0, time.UTC)
}

// Member returns a valid member enrolled on the given date
func Member(name string, enrolled time.Time) models.Member {
	return models.Member{
		ID:             uuid.New(),
		Name:           name,
		Role:           models.MemberRoleAthlete,
		EnrollmentDate: &enrolled,
		Active:         true,
		CreatedAt:      stamp(),
		UpdatedAt:      stamp(),
	}
}

// Payment returns a paid membership record of a member
func Payment(memberID uuid.UUID, amount string, on time.Time) models.PaymentRecord {
	return models.PaymentRecord{
		ID:          uuid.New(),
		MemberID:    &memberID,
		Amount:      decimal.RequireFromString(amount),
		Concept:     "Monthly fee",
		Category:    models.PaymentCategoryMembership,
		PaymentDate: on,
		Method:      models.PaymentMethodCash,
		Status:      models.PaymentStatusPaid,
		CreatedAt:   stamp(),
		UpdatedAt:   stamp(),
	}
}

// Invoice returns a pending platform record carrying a billing key
func Invoice(tenantID uuid.UUID, month models.YearMonth) models.PaymentRecord {
	key := tenantID.String() + "/" + month.String()
	notes := "issued by run"
	return models.PaymentRecord{
		ID:          uuid.New(),
		TenantID:    &tenantID,
		Amount:      decimal.RequireFromString("578250.00"),
		Concept:     models.PlatformFeeConcept(month.Label()),
		Category:    models.PaymentCategoryPlatform,
		PaymentDate: month.DayClamped(31),
		Method:      models.PaymentMethodBankTransfer,
		Status:      models.PaymentStatusPending,
		Notes:       &notes,
		BillingKey:  &key,
		CreatedAt:   stamp(),
		UpdatedAt:   stamp(),
	}
}

func testEmpty(t *testing.T, s storage.Store) {
	ctx := context.Background()

	members, err := s.ListMembers(ctx)
	if err != nil || members == nil || len(members) != 0 {
		t.Errorf("ListMembers() = %v, %v; expected empty non-nil", members, err)
	}
	payments, err := s.ListPayments(ctx)
	if err != nil || payments == nil || len(payments) != 0 {
		t.Errorf("ListPayments() = %v, %v; expected empty non-nil", payments, err)
	}
	tenants, err := s.ListTenants(ctx)
	if err != nil || tenants == nil || len(tenants) != 0 {
		t.Errorf("ListTenants() = %v, %v; expected empty non-nil", tenants, err)
	}
	overrides, err := s.ListOverrides(ctx)
	if err != nil || overrides == nil || len(overrides) != 0 {
		t.Errorf("ListOverrides() = %v, %v; expected empty non-nil", overrides, err)
	}
}

func testMembers(t *testing.T, s storage.Store) {
	ctx := context.Background()

	lucia := Member("Lucia", date(2024, 1, 31))
	guest := Member("Guest", time.Time{})
	guest.EnrollmentDate = nil
	guest.Role = models.MemberRoleCoach
	guest.Active = false

	if err := s.ReplaceMembers(ctx, []models.Member{lucia, guest}); err != nil {
		t.Fatalf("ReplaceMembers() error = %v", err)
	}

	got, err := s.ListMembers(ctx)
	if err != nil {
		t.Fatalf("ListMembers() error = %v", err)
	}
	byID := map[uuid.UUID]models.Member{}
	for _, m := range got {
		byID[m.ID] = m
	}
	if len(byID) != 2 {
		t.Fatalf("ListMembers() returned %d members, expected 2", len(got))
	}

	l := byID[lucia.ID]
	if l.Name != "Lucia" || l.Role != models.MemberRoleAthlete || !l.Active {
		t.Errorf("member = %+v", l)
	}
	if l.EnrollmentDate == nil || !l.EnrollmentDate.Equal(date(2024, 1, 31)) {
		t.Errorf("EnrollmentDate = %v, expected 2024-01-31", l.EnrollmentDate)
	}
	if !l.CreatedAt.Equal(stamp()) {
		t.Errorf("CreatedAt = %v, expected %v", l.CreatedAt, stamp())
	}

	g := byID[guest.ID]
	if g.EnrollmentDate != nil || g.Active || g.Role != models.MemberRoleCoach {
		t.Errorf("guest = %+v", g)
	}

	// replacing swaps the whole collection
	if err := s.ReplaceMembers(ctx, []models.Member{guest}); err != nil {
		t.Fatalf("ReplaceMembers() error = %v", err)
	}
	got, _ = s.ListMembers(ctx)
	if len(got) != 1 || got[0].ID != guest.ID {
		t.Errorf("after replace = %v, expected only the guest", got)
	}
}

func testPayments(t *testing.T, s storage.Store) {
	ctx := context.Background()
	memberID := uuid.New()
	tenantID := uuid.New()
	march := models.NewYearMonth(2024, time.March)

	fee := Payment(memberID, "15000.50", date(2024, 3, 15))
	invoice := Invoice(tenantID, march)
	legacy := Payment(memberID, "100", date(2024, 2, 1))
	legacy.Status = models.PaymentStatusVoided

	if err := s.ReplacePayments(ctx, []models.PaymentRecord{fee, invoice, legacy}); err != nil {
		t.Fatalf("ReplacePayments() error = %v", err)
	}

	got, err := s.ListPayments(ctx)
	if err != nil {
		t.Fatalf("ListPayments() error = %v", err)
	}
	byID := map[uuid.UUID]models.PaymentRecord{}
	for _, p := range got {
		byID[p.ID] = p
	}
	if len(byID) != 3 {
		t.Fatalf("ListPayments() returned %d records, expected 3", len(got))
	}

	f := byID[fee.ID]
	if !f.Amount.Equal(decimal.RequireFromString("15000.50")) {
		t.Errorf("Amount = %s, expected 15000.50", f.Amount)
	}
	if f.MemberID == nil || *f.MemberID != memberID || f.TenantID != nil {
		t.Errorf("payer = %v / %v", f.MemberID, f.TenantID)
	}
	if !f.PaymentDate.Equal(date(2024, 3, 15)) {
		t.Errorf("PaymentDate = %v", f.PaymentDate)
	}
	if f.Notes != nil || f.BillingKey != nil {
		t.Errorf("Expected nil notes and billing key, got %v / %v", f.Notes, f.BillingKey)
	}
	if f.Concept != "Monthly fee" || f.Category != models.PaymentCategoryMembership ||
		f.Method != models.PaymentMethodCash || f.Status != models.PaymentStatusPaid {
		t.Errorf("record = %+v", f)
	}

	inv := byID[invoice.ID]
	if inv.TenantID == nil || *inv.TenantID != tenantID {
		t.Errorf("TenantID = %v", inv.TenantID)
	}
	if inv.BillingKey == nil || *inv.BillingKey != *invoice.BillingKey {
		t.Errorf("BillingKey = %v, expected %s", inv.BillingKey, *invoice.BillingKey)
	}
	if inv.Notes == nil || *inv.Notes != "issued by run" {
		t.Errorf("Notes = %v", inv.Notes)
	}
	if !inv.PaymentDate.Equal(date(2024, 3, 31)) {
		t.Errorf("PaymentDate = %v", inv.PaymentDate)
	}

	if byID[legacy.ID].Status != models.PaymentStatusVoided {
		t.Errorf("Status = %s, expected voided", byID[legacy.ID].Status)
	}

	if err := s.ReplacePayments(ctx, nil); err != nil {
		t.Fatalf("ReplacePayments(nil) error = %v", err)
	}
	got, _ = s.ListPayments(ctx)
	if len(got) != 0 {
		t.Errorf("Expected an empty ledger, got %d records", len(got))
	}
}

func testAmountPrecision(t *testing.T, s storage.Store) {
	ctx := context.Background()
	memberID := uuid.New()

	// stores keep whatever they are given; rounding happens before records reach them
	amounts := []string{"428335.475", "0.004", "15000.5", "0.1234567891", "99999999999.99"}
	payments := make([]models.PaymentRecord, 0, len(amounts))
	for _, a := range amounts {
		payments = append(payments, Payment(memberID, a, date(2024, 3, 1)))
	}

	if err := s.ReplacePayments(ctx, payments); err != nil {
		t.Fatalf("ReplacePayments() error = %v", err)
	}

	got, err := s.ListPayments(ctx)
	if err != nil {
		t.Fatalf("ListPayments() error = %v", err)
	}
	byID := map[uuid.UUID]decimal.Decimal{}
	for _, p := range got {
		byID[p.ID] = p.Amount
	}
	for _, p := range payments {
		if !byID[p.ID].Equal(p.Amount) {
			t.Errorf("stored %s, read back %s", p.Amount, byID[p.ID])
		}
	}
}

func testDuplicateBillingKey(t *testing.T, s storage.Store) {
	ctx := context.Background()
	tenantID := uuid.New()
	march := models.NewYearMonth(2024, time.March)

	first := Invoice(tenantID, march)
	if err := s.ReplacePayments(ctx, []models.PaymentRecord{first}); err != nil {
		t.Fatalf("ReplacePayments() error = %v", err)
	}

	second := Invoice(tenantID, march)
	err := s.ReplacePayments(ctx, []models.PaymentRecord{first, second})
	if !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("ReplacePayments() error = %v, expected ErrDuplicate", err)
	}

	got, _ := s.ListPayments(ctx)
	if len(got) != 1 || got[0].ID != first.ID {
		t.Errorf("Expected the rejected write to leave the ledger unchanged, got %v", got)
	}

	// records without a key never collide
	a := Payment(uuid.New(), "10", date(2024, 3, 1))
	b := Payment(uuid.New(), "10", date(2024, 3, 1))
	if err := s.ReplacePayments(ctx, []models.PaymentRecord{first, a, b, Invoice(tenantID, march.Next())}); err != nil {
		t.Errorf("ReplacePayments() error = %v", err)
	}
}

func testTenants(t *testing.T, s storage.Store) {
	ctx := context.Background()
	coaches := 7

	tenant := models.Tenant{
		ID:                  uuid.New(),
		Name:                "Club Atletico Norte",
		CoachCapacityTier:   models.CoachTier6To10,
		AthleteCapacityTier: models.AthleteTierMoreThan100,
		CoachCount:          &coaches,
		BillingAnchorDate:   date(2024, 1, 31),
		Status:              models.TenantStatusSuspended,
		CreatedAt:           stamp(),
		UpdatedAt:           stamp(),
	}

	if err := s.ReplaceTenants(ctx, []models.Tenant{tenant}); err != nil {
		t.Fatalf("ReplaceTenants() error = %v", err)
	}

	got, err := s.ListTenants(ctx)
	if err != nil {
		t.Fatalf("ListTenants() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListTenants() returned %d tenants, expected 1", len(got))
	}

	g := got[0]
	if g.ID != tenant.ID || g.Name != tenant.Name || g.Status != models.TenantStatusSuspended {
		t.Errorf("tenant = %+v", g)
	}
	if g.CoachCapacityTier != models.CoachTier6To10 || g.AthleteCapacityTier != models.AthleteTierMoreThan100 {
		t.Errorf("tiers = %s / %s", g.CoachCapacityTier, g.AthleteCapacityTier)
	}
	if g.CoachCount == nil || *g.CoachCount != 7 || g.AthleteCount != nil {
		t.Errorf("counts = %v / %v", g.CoachCount, g.AthleteCount)
	}
	if !g.BillingAnchorDate.Equal(date(2024, 1, 31)) {
		t.Errorf("BillingAnchorDate = %v", g.BillingAnchorDate)
	}
}

func testOverrides(t *testing.T, s storage.Store) {
	ctx := context.Background()
	memberID := uuid.New()

	overrides := []models.ManualOverride{
		{MemberID: memberID, Month: models.NewYearMonth(2023, time.December), Value: models.OverridePaid},
		{MemberID: memberID, Month: models.NewYearMonth(2024, time.January), Value: models.OverridePending},
	}
	if err := s.ReplaceOverrides(ctx, overrides); err != nil {
		t.Fatalf("ReplaceOverrides() error = %v", err)
	}

	got, err := s.ListOverrides(ctx)
	if err != nil {
		t.Fatalf("ListOverrides() error = %v", err)
	}

	lookup := models.NewOverrideLookup(got)
	if v := lookup.Get(memberID, models.NewYearMonth(2023, time.December)); v != models.OverridePaid {
		t.Errorf("December = %q, expected paid", v)
	}
	if v := lookup.Get(memberID, models.NewYearMonth(2024, time.January)); v != models.OverridePending {
		t.Errorf("January = %q, expected pending", v)
	}
	if len(got) != 2 {
		t.Errorf("ListOverrides() returned %d, expected 2", len(got))
	}
}

func testSnapshot(t *testing.T, s storage.Store) {
	ctx := context.Background()
	lucia := Member("Lucia", date(2024, 1, 15))

	if err := s.ReplaceMembers(ctx, []models.Member{lucia}); err != nil {
		t.Fatalf("ReplaceMembers() error = %v", err)
	}
	if err := s.ReplacePayments(ctx, []models.PaymentRecord{Payment(lucia.ID, "15000", date(2024, 1, 15))}); err != nil {
		t.Fatalf("ReplacePayments() error = %v", err)
	}

	snap, err := storage.LoadSnapshot(ctx, s)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if len(snap.Members) != 1 || len(snap.Payments) != 1 || len(snap.Tenants) != 0 || len(snap.Overrides) != 0 {
		t.Errorf("snapshot sizes = %d/%d/%d/%d", len(snap.Members), len(snap.Payments), len(snap.Tenants), len(snap.Overrides))
	}
	if _, ok := snap.FindMember(lucia.ID); !ok {
		t.Error("FindMember() did not find the stored member")
	}
	if _, ok := snap.FindMember(uuid.New()); ok {
		t.Error("FindMember() found an unknown member")
	}
}
