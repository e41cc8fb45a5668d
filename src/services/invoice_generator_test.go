package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-club-ledger/src/models"
	"github.com/shopspring/decimal"
)

func largeTenant() models.Tenant {
	return models.Tenant{
		ID:                  uuid.New(),
		Name:                "Club Atletico Norte",
		CoachCapacityTier:   models.CoachTierMoreThan10,
		AthleteCapacityTier: models.AthleteTierMoreThan100,
		BillingAnchorDate:   date(2024, 1, 31),
		Status:              models.TenantStatusActive,
	}
}

func TestGenerateInvoice(t *testing.T) {
	cfg := DefaultPricingConfig()
	period := models.NewYearMonth(2024, time.February)

	inv := GenerateInvoice(largeTenant(), period, decimal.NewFromInt(10), cfg)

	checks := []struct {
		name     string
		got      decimal.Decimal
		expected int64
	}{
		{"base fee", inv.BaseFee, 20000},
		{"package", inv.PackagePrice, 622500},
		{"subtotal", inv.Subtotal, 642500},
		{"discount", inv.DiscountAmount, 64250},
		{"total", inv.Total, 578250},
	}
	for _, c := range checks {
		if !c.got.Equal(decimal.NewFromInt(c.expected)) {
			t.Errorf("%s = %s, expected %d", c.name, c.got, c.expected)
		}
	}

	if inv.PeriodLabel != "February 2024" {
		t.Errorf("PeriodLabel = %q", inv.PeriodLabel)
	}
	if !inv.DueDate.Equal(date(2024, 2, 29)) {
		t.Errorf("DueDate = %v, expected anchor day clamped to 2024-02-29", inv.DueDate)
	}
	if len(inv.LineItems) != 4 {
		t.Fatalf("LineItems = %d, expected 4", len(inv.LineItems))
	}

	sum := decimal.Zero
	for _, item := range inv.LineItems {
		sum = sum.Add(item.Amount)
	}
	if !sum.Equal(inv.Total) {
		t.Errorf("line items sum to %s, expected %s", sum, inv.Total)
	}
}

func TestGenerateInvoiceTotalProperty(t *testing.T) {
	cfg := DefaultPricingConfig()
	tenant := largeTenant()
	period := models.NewYearMonth(2024, time.March)

	discounts := []string{"0", "5", "10", "12.5", "33.33", "50", "99.99", "100"}
	for _, d := range discounts {
		t.Run(d, func(t *testing.T) {
			discount := decimal.RequireFromString(d)
			inv := GenerateInvoice(tenant, period, discount, cfg)

			expected := inv.Subtotal.Mul(decimal.NewFromInt(1).Sub(discount.Div(decimal.NewFromInt(100))))
			if !inv.Total.Equal(expected) {
				t.Errorf("total = %s, expected subtotal*(1-d/100) = %s", inv.Total, expected)
			}
			if !inv.Total.Add(inv.DiscountAmount).Equal(inv.Subtotal) {
				t.Errorf("total + discount = %s, expected %s", inv.Total.Add(inv.DiscountAmount), inv.Subtotal)
			}
		})
	}
}

func TestGenerateInvoiceNoDiscountLine(t *testing.T) {
	inv := GenerateInvoice(largeTenant(), models.NewYearMonth(2024, time.March), decimal.Zero, DefaultPricingConfig())

	if len(inv.LineItems) != 3 {
		t.Errorf("LineItems = %d, expected 3 without a discount", len(inv.LineItems))
	}
	if !inv.Total.Equal(inv.Subtotal) {
		t.Errorf("Total = %s, expected subtotal %s", inv.Total, inv.Subtotal)
	}
}

func TestClampDiscount(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"-5", "0"},
		{"0", "0"},
		{"42.5", "42.5"},
		{"100", "100"},
		{"150", "100"},
	}

	for _, tt := range tests {
		got := ClampDiscount(decimal.RequireFromString(tt.in))
		if !got.Equal(decimal.RequireFromString(tt.expected)) {
			t.Errorf("ClampDiscount(%s) = %s, expected %s", tt.in, got, tt.expected)
		}
	}
}

func TestFindUnbilledTenants(t *testing.T) {
	march := models.NewYearMonth(2024, time.March)
	label := march.Label()

	byKey := largeTenant()
	byConcept := largeTenant()
	byOtherMonth := largeTenant()
	unbilled := largeTenant()
	voided := largeTenant()
	tenants := []models.Tenant{byKey, byConcept, byOtherMonth, unbilled, voided}

	keyInvoice := GenerateInvoice(byKey, march, decimal.Zero, DefaultPricingConfig())
	keyRecord := keyInvoice.ToPaymentRecord()
	keyRecord.Concept = "edited by the treasurer"

	legacy := models.PaymentRecord{
		ID:       uuid.New(),
		TenantID: &byConcept.ID,
		Amount:   decimal.NewFromInt(1000),
		Concept:  "  PLATFORM FEE - march 2024 ",
		Status:   models.PaymentStatusPaid,
	}

	aprilInvoice := GenerateInvoice(byOtherMonth, march.Next(), decimal.Zero, DefaultPricingConfig())
	april := aprilInvoice.ToPaymentRecord()

	// someone else's record with the right concept does not bill this tenant
	foreign := legacy
	foreign.ID = uuid.New()
	foreign.TenantID = &byKey.ID

	voidedInvoice := GenerateInvoice(voided, march, decimal.Zero, DefaultPricingConfig())
	voidedRecord := voidedInvoice.ToPaymentRecord()
	voidedRecord.Status = models.PaymentStatusVoided

	records := []models.PaymentRecord{*keyRecord, legacy, *april, foreign, *voidedRecord}

	got := FindUnbilledTenants(tenants, records, label)

	ids := make(map[uuid.UUID]bool)
	for _, tenant := range got {
		ids[tenant.ID] = true
	}
	if len(got) != 2 || !ids[byOtherMonth.ID] || !ids[unbilled.ID] {
		t.Errorf("FindUnbilledTenants() = %v, expected the other-month and unbilled tenants", got)
	}
}

func TestFindUnbilledTenantsUnparsableLabel(t *testing.T) {
	tenant := largeTenant()
	records := []models.PaymentRecord{{
		ID:       uuid.New(),
		TenantID: &tenant.ID,
		Concept:  "Platform fee - Spring season",
	}}

	got := FindUnbilledTenants([]models.Tenant{tenant}, records, "Spring season")
	if len(got) != 0 {
		t.Errorf("Expected concept match to bill the tenant, got %v", got)
	}

	got = FindUnbilledTenants([]models.Tenant{tenant}, nil, "Spring season")
	if len(got) != 1 {
		t.Errorf("Expected tenant to be unbilled, got %v", got)
	}
}
