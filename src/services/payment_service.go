package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

// Payment service errors
var (
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrInvalidTransition = errors.New("invalid payment status transition")
)

// PaymentService registers, edits and annuls payment records.
// It is the validation boundary; the calculators trust what it stores.
type PaymentService struct {
	mu      sync.Mutex // serializes read-modify-write of the ledger
	ledger  storage.PaymentLedger
	clock   clock.Clock
	logger  zerolog.Logger
	metrics *metrics.Collector
}

// NewPaymentService creates a new payment service
func NewPaymentService(ledger storage.PaymentLedger, clk clock.Clock, logger zerolog.Logger, m *metrics.Collector) *PaymentService {
	if clk == nil {
		clk = clock.Real{}
	}
	return &PaymentService{
		ledger:  ledger,
		clock:   clk,
		logger:  logger.With().Str("component", "payments").Logger(),
		metrics: m,
	}
}

// PaymentRequest contains the operator-entered fields of a payment record
type PaymentRequest struct {
	MemberID    *uuid.UUID
	TenantID    *uuid.UUID
	Amount      decimal.Decimal
	Concept     string
	Category    models.PaymentCategory
	PaymentDate time.Time
	Method      models.PaymentMethod
	Status      models.PaymentStatus
	Notes       string
	BillingKey  string
}

// PaymentResult contains the result of a payment operation
type PaymentResult struct {
	Payment    *models.PaymentRecord
	Transition *models.PaymentStatusTransition
}

func (req PaymentRequest) build(now time.Time) *models.PaymentRecord {
	b := models.NewPaymentBuilder().
		WithAmount(req.Amount).
		WithConcept(strings.TrimSpace(req.Concept)).
		OnDate(req.PaymentDate)

	if req.MemberID != nil {
		b.ForMember(*req.MemberID)
	}
	if req.TenantID != nil {
		b.ForTenant(*req.TenantID)
	}
	if req.Category != "" {
		b.WithCategory(req.Category)
	}
	if req.Method != "" {
		b.WithMethod(req.Method)
	}
	if req.Status != "" {
		b.WithStatus(req.Status)
	}
	if req.Notes != "" {
		b.WithNotes(req.Notes)
	}
	if req.BillingKey != "" {
		b.WithBillingKey(req.BillingKey)
	}

	p := b.Build()
	if req.PaymentDate.IsZero() {
		p.PaymentDate = time.Time{}
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p
}

// Register validates and appends a new payment record
func (s *PaymentService) Register(ctx context.Context, req PaymentRequest) (*models.PaymentRecord, error) {
	payment := req.build(s.clock.Now())
	if err := payment.Validate(); err != nil {
		s.reject(err)
		return nil, fmt.Errorf("register payment: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	payments, err := s.ledger.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	if err := s.ledger.ReplacePayments(ctx, append(payments, *payment)); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			s.reject(err)
		}
		return nil, fmt.Errorf("register payment: %w", err)
	}

	s.metrics.RecordPayment(string(payment.Category))
	s.logger.Info().
		Str("payment_id", payment.ID.String()).
		Str("category", string(payment.Category)).
		Str("status", string(payment.Status)).
		Str("amount", payment.Amount.StringFixed(2)).
		Msg("payment registered")

	return payment, nil
}

// Edit replaces every operator-entered field of an existing record.
// The ID, creation time and status are kept; status changes go through Transition.
// An empty request status means unchanged, any other value must equal the current one.
func (s *PaymentService) Edit(ctx context.Context, id uuid.UUID, req PaymentRequest) (*models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payments, err := s.ledger.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	idx := indexOfPayment(payments, id)
	if idx < 0 {
		return nil, fmt.Errorf("edit payment %s: %w", id, ErrPaymentNotFound)
	}

	current := payments[idx].Status
	if req.Status != "" && req.Status != current {
		s.reject(ErrInvalidTransition)
		return nil, fmt.Errorf("edit payment %s from %s to %s, use Transition: %w", id, current, req.Status, ErrInvalidTransition)
	}
	req.Status = current

	updated := req.build(s.clock.Now())
	updated.ID = id
	if err := updated.Validate(); err != nil {
		s.reject(err)
		return nil, fmt.Errorf("edit payment %s: %w", id, err)
	}

	updated.CreatedAt = payments[idx].CreatedAt
	payments[idx] = *updated
	if err := s.ledger.ReplacePayments(ctx, payments); err != nil {
		return nil, fmt.Errorf("edit payment %s: %w", id, err)
	}

	s.logger.Info().Str("payment_id", id.String()).Msg("payment edited")
	return updated, nil
}

// Delete removes a record from the ledger
func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payments, err := s.ledger.ListPayments(ctx)
	if err != nil {
		return fmt.Errorf("load payments: %w", err)
	}
	idx := indexOfPayment(payments, id)
	if idx < 0 {
		return fmt.Errorf("delete payment %s: %w", id, ErrPaymentNotFound)
	}

	payments = append(payments[:idx], payments[idx+1:]...)
	if err := s.ledger.ReplacePayments(ctx, payments); err != nil {
		return fmt.Errorf("delete payment %s: %w", id, err)
	}

	s.logger.Info().Str("payment_id", id.String()).Msg("payment deleted")
	return nil
}

// Transition moves a record to a new status along the allowed paths
func (s *PaymentService) Transition(ctx context.Context, id uuid.UUID, to models.PaymentStatus, reason, triggeredBy string) (*PaymentResult, error) {
	if !to.IsValid() {
		return nil, fmt.Errorf("transition payment %s: %w", id, models.ErrInvalidStatus)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	payments, err := s.ledger.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	idx := indexOfPayment(payments, id)
	if idx < 0 {
		return nil, fmt.Errorf("transition payment %s: %w", id, ErrPaymentNotFound)
	}

	payment := payments[idx]
	if !payment.CanTransitionTo(to) {
		s.reject(ErrInvalidTransition)
		return nil, fmt.Errorf("cannot move payment %s from %s to %s: %w", id, payment.Status, to, ErrInvalidTransition)
	}

	now := s.clock.Now()
	transition := &models.PaymentStatusTransition{
		ID:           uuid.New(),
		PaymentID:    payment.ID,
		FromStatus:   payment.Status,
		ToStatus:     to,
		TransitionAt: now,
	}
	if reason != "" {
		transition.Reason = &reason
	}
	if triggeredBy != "" {
		transition.TriggeredBy = &triggeredBy
	}

	payment.Status = to
	payment.UpdatedAt = now
	payments[idx] = payment
	if err := s.ledger.ReplacePayments(ctx, payments); err != nil {
		return nil, fmt.Errorf("transition payment %s: %w", id, err)
	}

	s.logger.Info().
		Str("payment_id", id.String()).
		Str("from", string(transition.FromStatus)).
		Str("to", string(to)).
		Msg("payment status changed")

	return &PaymentResult{Payment: &payment, Transition: transition}, nil
}

// Void annuls a record; voided records never count towards any total
func (s *PaymentService) Void(ctx context.Context, id uuid.UUID, reason, triggeredBy string) (*PaymentResult, error) {
	return s.Transition(ctx, id, models.PaymentStatusVoided, reason, triggeredBy)
}

// Get returns a single record
func (s *PaymentService) Get(ctx context.Context, id uuid.UUID) (*models.PaymentRecord, error) {
	payments, err := s.ledger.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	idx := indexOfPayment(payments, id)
	if idx < 0 {
		return nil, fmt.Errorf("payment %s: %w", id, ErrPaymentNotFound)
	}
	return &payments[idx], nil
}

// ListForMember returns a member's records, newest first
func (s *PaymentService) ListForMember(ctx context.Context, memberID uuid.UUID) ([]models.PaymentRecord, error) {
	payments, err := s.ledger.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	out := paymentsForMember(payments, memberID)
	sortPaymentsNewestFirst(out)
	return out, nil
}

func (s *PaymentService) reject(err error) {
	reason := rejectionReason(err)
	s.metrics.RecordRejection(reason)
	s.logger.Warn().Err(err).Str("reason", reason).Msg("payment rejected")
}

// rejectionReason maps a validation error to a metric label
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, models.ErrAmountPrecision):
		return "invalid_amount_precision"
	case errors.Is(err, models.ErrConceptRequired):
		return "missing_concept"
	case errors.Is(err, models.ErrInvalidMethod):
		return "invalid_method"
	case errors.Is(err, models.ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, models.ErrInvalidCategory):
		return "invalid_category"
	case errors.Is(err, models.ErrPaymentDateZero):
		return "missing_date"
	case errors.Is(err, models.ErrPayerRequired):
		return "missing_payer"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, storage.ErrDuplicate):
		return "duplicate_billing_key"
	default:
		return "other"
	}
}

func indexOfPayment(payments []models.PaymentRecord, id uuid.UUID) int {
	for i := range payments {
		if payments[i].ID == id {
			return i
		}
	}
	return -1
}
