package services

import (
	"time"

	"github.com/livefire2015/ez-club-ledger/src/models"
)

// DefaultToleranceDays is how far from the enrollment day a payment posted in the
// previous month may land and still settle the target month
const DefaultToleranceDays = 5

// DueConfig holds the business constants of the membership-fee rules
type DueConfig struct {
	MonthlyFeeKeyword string
	ToleranceDays     int
}

// DefaultDueConfig returns the standard membership-fee rules
func DefaultDueConfig() DueConfig {
	return DueConfig{
		MonthlyFeeKeyword: models.DefaultMonthlyFeeKeyword,
		ToleranceDays:     DefaultToleranceDays,
	}
}

// DueDate returns the day a month's fee is payable: the enrollment day-of-month,
// clamped to the last day of shorter months
func DueDate(target models.YearMonth, enrollment time.Time) time.Time {
	return target.DayClamped(enrollment.Day())
}

// ComputeMonthStatus derives the fee status of one member for one month.
// Inputs are assumed validated at record creation; the function never fails.
//
// Precedence: not applicable, manual paid, paid evidence, manual pending,
// future, overdue, pending. A real paid record outranks a manual pending flag.
func ComputeMonthStatus(
	target models.YearMonth,
	enrollment *time.Time,
	payments []models.PaymentRecord,
	override models.OverrideValue,
	today time.Time,
	cfg DueConfig,
) models.DueStatus {
	if enrollment == nil {
		return models.DueStatusNotApplicable
	}
	if target.Before(models.YearMonthOf(*enrollment)) {
		return models.DueStatusNotApplicable
	}

	if override == models.OverridePaid {
		return models.DueStatusManualPaid
	}

	if hasPaidMembershipFee(target, *enrollment, payments, cfg) {
		return models.DueStatusPaid
	}

	if override == models.OverridePending {
		return models.DueStatusManualPending
	}

	today = models.DateOnly(today)
	if target.After(models.YearMonthOf(today)) {
		return models.DueStatusFuture
	}

	if DueDate(target, *enrollment).Before(today) {
		return models.DueStatusOverdue
	}

	return models.DueStatusPending
}

// hasPaidMembershipFee looks for a paid membership record settling the target month
func hasPaidMembershipFee(
	target models.YearMonth,
	enrollment time.Time,
	payments []models.PaymentRecord,
	cfg DueConfig,
) bool {
	previous := target.Prev()
	enrollmentDay := enrollment.Day()

	for i := range payments {
		p := &payments[i]
		if !p.IsPaid() || !p.IsMembershipFee(cfg.MonthlyFeeKeyword) {
			continue
		}

		if target.Contains(p.PaymentDate) {
			return true
		}

		// Early or late postings land in the previous month near the enrollment day
		if previous.Contains(p.PaymentDate) && absInt(p.PaymentDate.Day()-enrollmentDay) <= cfg.ToleranceDays {
			return true
		}
	}
	return false
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
