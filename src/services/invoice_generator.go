package services

import (
	"fmt"

	"github.com/livefire2015/ez-club-ledger/src/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ClampDiscount bounds a discount percentage to [0, 100]
// GenerateInvoice does not clamp; callers taking operator input should
func ClampDiscount(percent decimal.Decimal) decimal.Decimal {
	if percent.IsNegative() {
		return decimal.Zero
	}
	if percent.GreaterThan(hundred) {
		return hundred
	}
	return percent
}

// GenerateInvoice prices a tenant's platform invoice for a month and applies a
// percentage discount to the subtotal
func GenerateInvoice(
	tenant models.Tenant,
	period models.YearMonth,
	discountPercent decimal.Decimal,
	cfg PricingConfig,
) models.Invoice {
	quote := PriceTenant(tenant, cfg)

	subtotal := cfg.BaseFee.Add(quote.Total)
	discountAmount := subtotal.Mul(discountPercent).Div(hundred)
	total := subtotal.Sub(discountAmount)

	items := []models.InvoiceLineItem{
		{
			Description: "Platform base fee",
			Quantity:    1,
			UnitPrice:   cfg.BaseFee,
			Amount:      cfg.BaseFee,
		},
		{
			Description: fmt.Sprintf("Coach package (%s)", tenant.CoachCapacityTier),
			Quantity:    quote.CoachCount,
			UnitPrice:   quote.CoachUnitRate,
			Amount:      quote.CoachAmount,
		},
		{
			Description: fmt.Sprintf("Athlete package (%s)", tenant.AthleteCapacityTier),
			Quantity:    quote.AthleteCount,
			UnitPrice:   quote.AthleteUnitRate,
			Amount:      quote.AthleteAmount,
		},
	}

	if !discountAmount.IsZero() {
		items = append(items, models.InvoiceLineItem{
			Description: fmt.Sprintf("Discount (%s%%)", discountPercent.String()),
			Quantity:    1,
			UnitPrice:   discountAmount.Neg(),
			Amount:      discountAmount.Neg(),
		})
	}

	return models.Invoice{
		TenantID:        tenant.ID,
		Period:          period,
		PeriodLabel:     period.Label(),
		DueDate:         tenant.DueDateFor(period),
		BaseFee:         cfg.BaseFee,
		PackagePrice:    quote.Total,
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		Total:           total,
		LineItems:       items,
	}
}

// FindUnbilledTenants returns the tenants without a platform invoice for the period.
//
// A record carrying a billing key is matched on that key. Records without one fall
// back to comparing the concept with the canonical "Platform fee - {label}" text,
// so an edited concept on such a record can lead to a duplicate invoice.
func FindUnbilledTenants(
	tenants []models.Tenant,
	records []models.PaymentRecord,
	periodLabel string,
) []models.Tenant {
	period, periodErr := models.ParsePeriodLabel(periodLabel)

	billedKeys := make(map[string]bool)
	for i := range records {
		r := &records[i]
		if r.TenantID != nil && r.BillingKey != nil {
			billedKeys[*r.BillingKey] = true
		}
	}

	unbilled := make([]models.Tenant, 0, len(tenants))
	for _, tenant := range tenants {
		if periodErr == nil && billedKeys[tenant.BillingKey(period)] {
			continue
		}
		if hasPlatformFeeConcept(tenant, records, periodLabel) {
			continue
		}
		unbilled = append(unbilled, tenant)
	}
	return unbilled
}

func hasPlatformFeeConcept(tenant models.Tenant, records []models.PaymentRecord, periodLabel string) bool {
	for i := range records {
		r := &records[i]
		if r.BelongsToTenant(tenant.ID) && models.MatchesPlatformFeeConcept(r.Concept, periodLabel) {
			return true
		}
	}
	return false
}
