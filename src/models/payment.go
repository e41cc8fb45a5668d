package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a payment record
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"    // Money received
	PaymentStatusPending PaymentStatus = "pending" // Registered, not yet received
	PaymentStatusOverdue PaymentStatus = "overdue" // Registered, past its due date
	PaymentStatusVoided  PaymentStatus = "voided"  // Annulled, never counts towards any total
)

// PaymentMethod represents the method used for payment
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodMobileWallet PaymentMethod = "mobile_wallet"
	PaymentMethodOther        PaymentMethod = "other"
)

// PaymentCategory groups payment records for dashboard filtering
type PaymentCategory string

const (
	PaymentCategoryMembership   PaymentCategory = "membership"   // Monthly membership fees
	PaymentCategoryRegistration PaymentCategory = "registration" // One-off enrollment fees
	PaymentCategoryEquipment    PaymentCategory = "equipment"
	PaymentCategoryCompetition  PaymentCategory = "competition"
	PaymentCategoryPlatform     PaymentCategory = "platform" // Tenant platform invoices
	PaymentCategoryOther        PaymentCategory = "other"
)

// DefaultMonthlyFeeKeyword identifies membership-fee records by concept
const DefaultMonthlyFeeKeyword = "monthly fee"

// Payment validation errors
var (
	ErrInvalidAmount   = errors.New("payment amount must be positive")
	ErrAmountPrecision = errors.New("payment amount cannot have fractions of a cent")
	ErrConceptRequired = errors.New("payment concept cannot be empty")
	ErrInvalidMethod   = errors.New("unknown payment method")
	ErrInvalidStatus   = errors.New("unknown payment status")
	ErrInvalidCategory = errors.New("unknown payment category")
	ErrPaymentDateZero = errors.New("payment date is required")
	ErrPayerRequired   = errors.New("payment must reference a member or a tenant")
)

// PaymentRecord is one entry of the club payment ledger
// Records are immutable once created; edits replace the whole record
type PaymentRecord struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	MemberID *uuid.UUID `json:"member_id,omitempty" db:"member_id"`
	TenantID *uuid.UUID `json:"tenant_id,omitempty" db:"tenant_id"`

	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Concept     string          `json:"concept" db:"concept"`
	Category    PaymentCategory `json:"category" db:"category"`
	PaymentDate time.Time       `json:"payment_date" db:"payment_date"`
	Method      PaymentMethod   `json:"method" db:"method"`
	Status      PaymentStatus   `json:"status" db:"status"`
	Notes       *string         `json:"notes,omitempty" db:"notes"`

	// BillingKey uniquely identifies a tenant platform invoice (tenantID/YYYY-MM)
	BillingKey *string `json:"billing_key,omitempty" db:"billing_key"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks a record at the point it is created or edited
func (p *PaymentRecord) Validate() error {
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !p.Amount.Equal(p.Amount.Round(2)) {
		return ErrAmountPrecision
	}
	if strings.TrimSpace(p.Concept) == "" {
		return ErrConceptRequired
	}
	if !p.Method.IsValid() {
		return ErrInvalidMethod
	}
	if !p.Status.IsValid() {
		return ErrInvalidStatus
	}
	if !p.Category.IsValid() {
		return ErrInvalidCategory
	}
	if p.PaymentDate.IsZero() {
		return ErrPaymentDateZero
	}
	if p.MemberID == nil && p.TenantID == nil {
		return ErrPayerRequired
	}
	return nil
}

// PaymentStatusTransition records a status change of a payment record
type PaymentStatusTransition struct {
	ID           uuid.UUID     `json:"id"`
	PaymentID    uuid.UUID     `json:"payment_id"`
	FromStatus   PaymentStatus `json:"from_status"`
	ToStatus     PaymentStatus `json:"to_status"`
	Reason       *string       `json:"reason,omitempty"`
	TransitionAt time.Time     `json:"transition_at"`
	TriggeredBy  *string       `json:"triggered_by,omitempty"`
}

// IsValid reports whether the status is one of the known values
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusPending, PaymentStatusOverdue, PaymentStatusVoided:
		return true
	}
	return false
}

// IsValid reports whether the method is one of the known values
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard,
		PaymentMethodMobileWallet, PaymentMethodOther:
		return true
	}
	return false
}

// IsValid reports whether the category is one of the known values
func (c PaymentCategory) IsValid() bool {
	switch c {
	case PaymentCategoryMembership, PaymentCategoryRegistration, PaymentCategoryEquipment,
		PaymentCategoryCompetition, PaymentCategoryPlatform, PaymentCategoryOther:
		return true
	}
	return false
}

// CanTransitionTo checks if the record can move to a new status
func (p *PaymentRecord) CanTransitionTo(newStatus PaymentStatus) bool {
	validTransitions := map[PaymentStatus][]PaymentStatus{
		PaymentStatusPending: {
			PaymentStatusPaid,
			PaymentStatusOverdue,
			PaymentStatusVoided,
		},
		PaymentStatusOverdue: {
			PaymentStatusPaid,
			PaymentStatusVoided,
		},
		PaymentStatusPaid: {
			PaymentStatusVoided,
		},
		PaymentStatusVoided: {}, // Terminal state
	}

	allowed, exists := validTransitions[p.Status]
	if !exists {
		return false
	}

	for _, s := range allowed {
		if s == newStatus {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the record can no longer change status
func (p *PaymentRecord) IsTerminal() bool {
	return p.Status == PaymentStatusVoided
}

// IsPaid returns true if the money was received
func (p *PaymentRecord) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}

// IsMembershipFee reports whether the concept contains the monthly-fee keyword,
// compared case-insensitively
func (p *PaymentRecord) IsMembershipFee(keyword string) bool {
	if keyword == "" {
		keyword = DefaultMonthlyFeeKeyword
	}
	return strings.Contains(strings.ToLower(p.Concept), strings.ToLower(keyword))
}

// BelongsToMember reports whether the record was made by the given member
func (p *PaymentRecord) BelongsToMember(memberID uuid.UUID) bool {
	return p.MemberID != nil && *p.MemberID == memberID
}

// BelongsToTenant reports whether the record was issued to the given tenant
func (p *PaymentRecord) BelongsToTenant(tenantID uuid.UUID) bool {
	return p.TenantID != nil && *p.TenantID == tenantID
}

// PaymentBuilder helps construct payment records
type PaymentBuilder struct {
	payment *PaymentRecord
}

// NewPaymentBuilder creates a new payment builder
func NewPaymentBuilder() *PaymentBuilder {
	now := time.Now()
	return &PaymentBuilder{
		payment: &PaymentRecord{
			ID:          uuid.New(),
			Status:      PaymentStatusPaid,
			Method:      PaymentMethodCash,
			Category:    PaymentCategoryOther,
			PaymentDate: DateOnly(now),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

// ForMember sets the paying member
func (b *PaymentBuilder) ForMember(memberID uuid.UUID) *PaymentBuilder {
	b.payment.MemberID = &memberID
	return b
}

// ForTenant sets the invoiced tenant
func (b *PaymentBuilder) ForTenant(tenantID uuid.UUID) *PaymentBuilder {
	b.payment.TenantID = &tenantID
	return b
}

// WithAmount sets the payment amount
func (b *PaymentBuilder) WithAmount(amount decimal.Decimal) *PaymentBuilder {
	b.payment.Amount = amount
	return b
}

// WithConcept sets the free-text concept
func (b *PaymentBuilder) WithConcept(concept string) *PaymentBuilder {
	b.payment.Concept = concept
	return b
}

// WithCategory sets the dashboard category
func (b *PaymentBuilder) WithCategory(category PaymentCategory) *PaymentBuilder {
	b.payment.Category = category
	return b
}

// OnDate sets the payment date, truncated to the calendar date
func (b *PaymentBuilder) OnDate(date time.Time) *PaymentBuilder {
	b.payment.PaymentDate = DateOnly(date)
	return b
}

// WithMethod sets the payment method
func (b *PaymentBuilder) WithMethod(method PaymentMethod) *PaymentBuilder {
	b.payment.Method = method
	return b
}

// WithStatus sets the payment status
func (b *PaymentBuilder) WithStatus(status PaymentStatus) *PaymentBuilder {
	b.payment.Status = status
	return b
}

// WithNotes attaches operator notes
func (b *PaymentBuilder) WithNotes(notes string) *PaymentBuilder {
	b.payment.Notes = &notes
	return b
}

// WithBillingKey sets the platform invoice uniqueness key
func (b *PaymentBuilder) WithBillingKey(key string) *PaymentBuilder {
	b.payment.BillingKey = &key
	return b
}

// Build creates the payment record
func (b *PaymentBuilder) Build() *PaymentRecord {
	return b.payment
}
