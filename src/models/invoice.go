package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlatformFeeConceptPrefix starts the canonical concept of a platform invoice
const PlatformFeeConceptPrefix = "Platform fee - "

// InvoiceLineItem is one line of the human-readable invoice breakdown
type InvoiceLineItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// Invoice is the derived monthly platform invoice of a tenant
// Ephemeral until converted into a pending payment record
type Invoice struct {
	TenantID        uuid.UUID         `json:"tenant_id"`
	Period          YearMonth         `json:"period"`
	PeriodLabel     string            `json:"period_label"`
	DueDate         time.Time         `json:"due_date"`
	BaseFee         decimal.Decimal   `json:"base_fee"`
	PackagePrice    decimal.Decimal   `json:"package_price"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	DiscountPercent decimal.Decimal   `json:"discount_percent"`
	DiscountAmount  decimal.Decimal   `json:"discount_amount"`
	Total           decimal.Decimal   `json:"total"`
	LineItems       []InvoiceLineItem `json:"line_items"`
}

// PlatformFeeConcept returns the canonical concept for a period label
func PlatformFeeConcept(periodLabel string) string {
	return PlatformFeeConceptPrefix + periodLabel
}

// MatchesPlatformFeeConcept compares a stored concept against the canonical
// concept of a period, ignoring case and surrounding whitespace
func MatchesPlatformFeeConcept(concept, periodLabel string) bool {
	return strings.EqualFold(strings.TrimSpace(concept), PlatformFeeConcept(strings.TrimSpace(periodLabel)))
}

// Concept returns the canonical concept of the invoice
func (inv *Invoice) Concept() string {
	return PlatformFeeConcept(inv.PeriodLabel)
}

// BillingKey returns the uniqueness key of the invoice
func (inv *Invoice) BillingKey() string {
	return inv.TenantID.String() + "/" + inv.Period.String()
}

// Breakdown renders the line items as text, one per line
func (inv *Invoice) Breakdown() string {
	var b strings.Builder
	for _, item := range inv.LineItems {
		fmt.Fprintf(&b, "%-32s %4d x %12s = %12s\n",
			item.Description, item.Quantity, item.UnitPrice.StringFixed(2), item.Amount.StringFixed(2))
	}
	fmt.Fprintf(&b, "%-32s %33s\n", "Total", inv.Total.StringFixed(2))
	return b.String()
}

// ToPaymentRecord converts the invoice into a pending ledger record dated on the due date
// The ledger holds whole cents, so the total is rounded half away from zero
func (inv *Invoice) ToPaymentRecord() *PaymentRecord {
	return NewPaymentBuilder().
		ForTenant(inv.TenantID).
		WithAmount(inv.Total.Round(2)).
		WithConcept(inv.Concept()).
		WithCategory(PaymentCategoryPlatform).
		WithMethod(PaymentMethodBankTransfer).
		WithStatus(PaymentStatusPending).
		OnDate(inv.DueDate).
		WithBillingKey(inv.BillingKey()).
		Build()
}
