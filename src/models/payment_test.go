package models_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-club-ledger/src/models"
	"github.com/shopspring/decimal"
)

func TestPaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		name        string
		fromStatus  models.PaymentStatus
		toStatus    models.PaymentStatus
		shouldAllow bool
	}{
		// From Pending
		{"pending to paid", models.PaymentStatusPending, models.PaymentStatusPaid, true},
		{"pending to overdue", models.PaymentStatusPending, models.PaymentStatusOverdue, true},
		{"pending to voided", models.PaymentStatusPending, models.PaymentStatusVoided, true},
		{"pending to pending", models.PaymentStatusPending, models.PaymentStatusPending, false},

		// From Overdue
		{"overdue to paid", models.PaymentStatusOverdue, models.PaymentStatusPaid, true},
		{"overdue to voided", models.PaymentStatusOverdue, models.PaymentStatusVoided, true},
		{"overdue to pending", models.PaymentStatusOverdue, models.PaymentStatusPending, false},

		// From Paid
		{"paid to voided", models.PaymentStatusPaid, models.PaymentStatusVoided, true},
		{"paid to pending", models.PaymentStatusPaid, models.PaymentStatusPending, false},
		{"paid to overdue", models.PaymentStatusPaid, models.PaymentStatusOverdue, false},

		// Terminal state
		{"voided to paid", models.PaymentStatusVoided, models.PaymentStatusPaid, false},
		{"voided to pending", models.PaymentStatusVoided, models.PaymentStatusPending, false},

		// Unknown
		{"unknown to paid", models.PaymentStatus("refunded"), models.PaymentStatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payment := &models.PaymentRecord{Status: tt.fromStatus}
			result := payment.CanTransitionTo(tt.toStatus)
			if result != tt.shouldAllow {
				t.Errorf("Expected CanTransitionTo(%s) = %v, got %v", tt.toStatus, tt.shouldAllow, result)
			}
		})
	}
}

func TestPaymentIsTerminal(t *testing.T) {
	tests := []struct {
		status   models.PaymentStatus
		terminal bool
	}{
		{models.PaymentStatusPending, false},
		{models.PaymentStatusOverdue, false},
		{models.PaymentStatusPaid, false},
		{models.PaymentStatusVoided, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			payment := &models.PaymentRecord{Status: tt.status}
			if payment.IsTerminal() != tt.terminal {
				t.Errorf("Expected IsTerminal() = %v for status %s", tt.terminal, tt.status)
			}
		})
	}
}

func TestPaymentValidate(t *testing.T) {
	memberID := uuid.New()
	valid := func() models.PaymentRecord {
		return models.PaymentRecord{
			ID:          uuid.New(),
			MemberID:    &memberID,
			Amount:      decimal.NewFromInt(15000),
			Concept:     "Monthly fee March",
			Category:    models.PaymentCategoryMembership,
			PaymentDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			Method:      models.PaymentMethodCash,
			Status:      models.PaymentStatusPaid,
		}
	}

	tests := []struct {
		name    string
		mutate  func(p *models.PaymentRecord)
		wantErr error
	}{
		{"valid", func(p *models.PaymentRecord) {}, nil},
		{"zero amount", func(p *models.PaymentRecord) { p.Amount = decimal.Zero }, models.ErrInvalidAmount},
		{"negative amount", func(p *models.PaymentRecord) { p.Amount = decimal.NewFromInt(-1) }, models.ErrInvalidAmount},
		{"sub-cent amount", func(p *models.PaymentRecord) { p.Amount = decimal.RequireFromString("0.004") }, models.ErrAmountPrecision},
		{"fraction of a cent", func(p *models.PaymentRecord) { p.Amount = decimal.RequireFromString("428335.475") }, models.ErrAmountPrecision},
		{"cents", func(p *models.PaymentRecord) { p.Amount = decimal.RequireFromString("15000.05") }, nil},
		{"trailing zeros", func(p *models.PaymentRecord) { p.Amount = decimal.RequireFromString("15000.5000") }, nil},
		{"blank concept", func(p *models.PaymentRecord) { p.Concept = "   " }, models.ErrConceptRequired},
		{"unknown method", func(p *models.PaymentRecord) { p.Method = "cheque" }, models.ErrInvalidMethod},
		{"unknown status", func(p *models.PaymentRecord) { p.Status = "refunded" }, models.ErrInvalidStatus},
		{"unknown category", func(p *models.PaymentRecord) { p.Category = "bar" }, models.ErrInvalidCategory},
		{"zero date", func(p *models.PaymentRecord) { p.PaymentDate = time.Time{} }, models.ErrPaymentDateZero},
		{"no payer", func(p *models.PaymentRecord) { p.MemberID = nil }, models.ErrPayerRequired},
		{"tenant payer", func(p *models.PaymentRecord) {
			tenantID := uuid.New()
			p.MemberID = nil
			p.TenantID = &tenantID
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			err := p.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPaymentIsMembershipFee(t *testing.T) {
	tests := []struct {
		concept string
		keyword string
		want    bool
	}{
		{"Monthly fee March 2024", "monthly fee", true},
		{"MONTHLY FEE", "monthly fee", true},
		{"monthly fee", "", true},
		{"Annual fee", "monthly fee", false},
		{"Cuota mensual marzo", "cuota mensual", true},
		{"Cuota mensual marzo", "monthly fee", false},
	}

	for _, tt := range tests {
		t.Run(tt.concept+"/"+tt.keyword, func(t *testing.T) {
			p := &models.PaymentRecord{Concept: tt.concept}
			if got := p.IsMembershipFee(tt.keyword); got != tt.want {
				t.Errorf("IsMembershipFee(%q) = %v, want %v", tt.keyword, got, tt.want)
			}
		})
	}
}

func TestPaymentBelongsTo(t *testing.T) {
	memberID := uuid.New()
	tenantID := uuid.New()

	p := &models.PaymentRecord{MemberID: &memberID}
	if !p.BelongsToMember(memberID) {
		t.Error("Expected record to belong to its member")
	}
	if p.BelongsToMember(uuid.New()) {
		t.Error("Expected record not to belong to another member")
	}
	if p.BelongsToTenant(tenantID) {
		t.Error("Expected member record not to belong to a tenant")
	}

	invoice := &models.PaymentRecord{TenantID: &tenantID}
	if !invoice.BelongsToTenant(tenantID) {
		t.Error("Expected invoice to belong to its tenant")
	}
	if invoice.BelongsToMember(memberID) {
		t.Error("Expected invoice not to belong to a member")
	}
}

func TestPaymentBuilder(t *testing.T) {
	memberID := uuid.New()
	amount := decimal.NewFromFloat(15000.50)
	paidAt := time.Date(2024, 3, 10, 15, 45, 0, 0, time.UTC)

	payment := models.NewPaymentBuilder().
		ForMember(memberID).
		WithAmount(amount).
		WithConcept("Monthly fee March").
		WithCategory(models.PaymentCategoryMembership).
		OnDate(paidAt).
		WithMethod(models.PaymentMethodBankTransfer).
		WithStatus(models.PaymentStatusPending).
		WithNotes("paid at the front desk").
		Build()

	if payment.ID == uuid.Nil {
		t.Error("Expected ID to be generated")
	}
	if payment.MemberID == nil || *payment.MemberID != memberID {
		t.Error("Expected MemberID to be set")
	}
	if !payment.Amount.Equal(amount) {
		t.Errorf("Expected Amount %s, got %s", amount, payment.Amount)
	}
	if !payment.PaymentDate.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected PaymentDate truncated to the calendar date, got %v", payment.PaymentDate)
	}
	if payment.Method != models.PaymentMethodBankTransfer {
		t.Errorf("Expected Method bank_transfer, got %s", payment.Method)
	}
	if payment.Status != models.PaymentStatusPending {
		t.Errorf("Expected Status pending, got %s", payment.Status)
	}
	if payment.Notes == nil || *payment.Notes != "paid at the front desk" {
		t.Error("Expected Notes to be set")
	}
	if payment.BillingKey != nil {
		t.Error("Expected no billing key on a member payment")
	}
	if err := payment.Validate(); err != nil {
		t.Errorf("Expected built payment to validate, got %v", err)
	}
}

func TestPaymentBuilderDefaults(t *testing.T) {
	payment := models.NewPaymentBuilder().Build()

	if payment.Status != models.PaymentStatusPaid {
		t.Errorf("Expected default status paid, got %s", payment.Status)
	}
	if payment.Method != models.PaymentMethodCash {
		t.Errorf("Expected default method cash, got %s", payment.Method)
	}
	if payment.Category != models.PaymentCategoryOther {
		t.Errorf("Expected default category other, got %s", payment.Category)
	}
	if payment.PaymentDate.IsZero() {
		t.Error("Expected default payment date to be set")
	}
	if payment.PaymentDate.Hour() != 0 || payment.PaymentDate.Minute() != 0 {
		t.Errorf("Expected default payment date at midnight, got %v", payment.PaymentDate)
	}
}

func TestPaymentEnumsIsValid(t *testing.T) {
	for _, m := range []models.PaymentMethod{
		models.PaymentMethodCash, models.PaymentMethodBankTransfer, models.PaymentMethodCard,
		models.PaymentMethodMobileWallet, models.PaymentMethodOther,
	} {
		if !m.IsValid() {
			t.Errorf("Expected method %s to be valid", m)
		}
	}
	if models.PaymentMethod("cheque").IsValid() {
		t.Error("Expected cheque to be invalid")
	}

	for _, c := range []models.PaymentCategory{
		models.PaymentCategoryMembership, models.PaymentCategoryRegistration, models.PaymentCategoryEquipment,
		models.PaymentCategoryCompetition, models.PaymentCategoryPlatform, models.PaymentCategoryOther,
	} {
		if !c.IsValid() {
			t.Errorf("Expected category %s to be valid", c)
		}
	}
	if models.PaymentCategory("").IsValid() {
		t.Error("Expected empty category to be invalid")
	}
}
