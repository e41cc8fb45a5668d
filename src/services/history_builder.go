package services

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-club-ledger/src/models"
)

// BuildHistory lists one fee entry per calendar month from the member's enrollment
// month through the month after today, most recent first.
// A member without an enrollment date has an empty history.
func BuildHistory(
	member models.Member,
	payments []models.PaymentRecord,
	overrides models.OverrideLookup,
	today time.Time,
	cfg DueConfig,
) []models.MonthlyDueEntry {
	start, ok := member.EnrollmentMonth()
	if !ok {
		return []models.MonthlyDueEntry{}
	}

	end := models.YearMonthOf(today).Next()
	if start.After(end) {
		return []models.MonthlyDueEntry{}
	}

	memberPayments := paymentsForMember(payments, member.ID)
	entries := make([]models.MonthlyDueEntry, 0, start.MonthsUntil(end)+1)

	for month := start; !month.After(end); month = month.Next() {
		override := overrides.Get(member.ID, month)
		status := ComputeMonthStatus(month, member.EnrollmentDate, memberPayments, override, today, cfg)

		entries = append(entries, models.MonthlyDueEntry{
			Month:            month,
			MonthLabel:       month.Label(),
			DueDate:          DueDate(month, *member.EnrollmentDate),
			Status:           status,
			IsManualOverride: status.IsManual(),
			Hint:             status.RenderHint(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].DueDate.After(entries[j].DueDate)
	})

	return entries
}

// paymentsForMember keeps only the records paid by the member
func paymentsForMember(payments []models.PaymentRecord, memberID uuid.UUID) []models.PaymentRecord {
	filtered := make([]models.PaymentRecord, 0, len(payments))
	for i := range payments {
		if payments[i].BelongsToMember(memberID) {
			filtered = append(filtered, payments[i])
		}
	}
	return filtered
}

// sortPaymentsNewestFirst orders records by payment date, then creation time
func sortPaymentsNewestFirst(payments []models.PaymentRecord) {
	sort.SliceStable(payments, func(i, j int) bool {
		if !payments[i].PaymentDate.Equal(payments[j].PaymentDate) {
			return payments[i].PaymentDate.After(payments[j].PaymentDate)
		}
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
}
