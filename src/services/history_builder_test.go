package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-club-ledger/src/models"
)

func enrolledMember(enrollment time.Time) models.Member {
	return models.Member{
		ID:             uuid.New(),
		Name:           "Lucia",
		Role:           models.MemberRoleAthlete,
		EnrollmentDate: &enrollment,
		Active:         true,
	}
}

func TestBuildHistoryScenario(t *testing.T) {
	member := enrolledMember(date(2024, 1, 15))
	today := date(2024, 3, 20)

	entries := BuildHistory(member, nil, nil, today, DefaultDueConfig())

	expected := []struct {
		month  models.YearMonth
		due    time.Time
		status models.DueStatus
	}{
		{models.NewYearMonth(2024, time.April), date(2024, 4, 15), models.DueStatusFuture},
		{models.NewYearMonth(2024, time.March), date(2024, 3, 15), models.DueStatusOverdue},
		{models.NewYearMonth(2024, time.February), date(2024, 2, 15), models.DueStatusOverdue},
		{models.NewYearMonth(2024, time.January), date(2024, 1, 15), models.DueStatusOverdue},
	}

	if len(entries) != len(expected) {
		t.Fatalf("BuildHistory() returned %d entries, expected %d", len(entries), len(expected))
	}
	for i, want := range expected {
		got := entries[i]
		if !got.Month.Equal(want.month) {
			t.Errorf("entry %d month = %s, expected %s", i, got.Month, want.month)
		}
		if !got.DueDate.Equal(want.due) {
			t.Errorf("entry %d due = %v, expected %v", i, got.DueDate, want.due)
		}
		if got.Status != want.status {
			t.Errorf("entry %d status = %s, expected %s", i, got.Status, want.status)
		}
		if got.MonthLabel != want.month.Label() {
			t.Errorf("entry %d label = %q", i, got.MonthLabel)
		}
		if got.Hint != want.status.RenderHint() {
			t.Errorf("entry %d hint = %+v", i, got.Hint)
		}
	}
}

func TestBuildHistoryOneEntryPerMonth(t *testing.T) {
	enrollments := []time.Time{
		date(2022, 1, 31),
		date(2023, 2, 28),
		date(2023, 11, 1),
		date(2024, 3, 20),
		date(2024, 4, 5), // next month
	}
	today := date(2024, 3, 20)

	for _, enrollment := range enrollments {
		t.Run(enrollment.Format("2006-01-02"), func(t *testing.T) {
			member := enrolledMember(enrollment)
			entries := BuildHistory(member, nil, nil, today, DefaultDueConfig())

			first := models.YearMonthOf(enrollment)
			last := models.YearMonthOf(today).Next()
			if want := first.MonthsUntil(last) + 1; len(entries) != want {
				t.Fatalf("got %d entries, expected %d", len(entries), want)
			}

			if !entries[0].Month.Equal(last) {
				t.Errorf("first entry = %s, expected %s", entries[0].Month, last)
			}
			if !entries[len(entries)-1].Month.Equal(first) {
				t.Errorf("last entry = %s, expected %s", entries[len(entries)-1].Month, first)
			}
			for i := 1; i < len(entries); i++ {
				if !entries[i].DueDate.Before(entries[i-1].DueDate) {
					t.Errorf("due dates not strictly decreasing at %d: %v then %v", i, entries[i-1].DueDate, entries[i].DueDate)
				}
				if !entries[i].Month.Next().Equal(entries[i-1].Month) {
					t.Errorf("gap between %s and %s", entries[i].Month, entries[i-1].Month)
				}
			}
		})
	}
}

func TestBuildHistoryNoEnrollment(t *testing.T) {
	member := models.Member{ID: uuid.New(), Name: "Carla", Role: models.MemberRoleCoach}

	entries := BuildHistory(member, nil, nil, date(2024, 3, 20), DefaultDueConfig())
	if entries == nil {
		t.Fatal("Expected an empty slice, got nil")
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestBuildHistoryEnrollmentAfterNextMonth(t *testing.T) {
	member := enrolledMember(date(2024, 6, 1))

	entries := BuildHistory(member, nil, nil, date(2024, 3, 20), DefaultDueConfig())
	if entries == nil || len(entries) != 0 {
		t.Errorf("Expected empty history, got %v", entries)
	}
}

func TestBuildHistoryUsesMemberPaymentsAndOverrides(t *testing.T) {
	member := enrolledMember(date(2024, 1, 15))
	other := uuid.New()
	today := date(2024, 3, 20)

	payments := []models.PaymentRecord{
		feePayment(member.ID, date(2024, 1, 15), models.PaymentStatusPaid),
		// another member's payment must not settle this member's month
		feePayment(other, date(2024, 3, 1), models.PaymentStatusPaid),
	}
	overrides := models.NewOverrideLookup([]models.ManualOverride{
		{MemberID: member.ID, Month: models.NewYearMonth(2024, time.February), Value: models.OverridePaid},
		{MemberID: other, Month: models.NewYearMonth(2024, time.March), Value: models.OverridePaid},
	})

	entries := BuildHistory(member, payments, overrides, today, DefaultDueConfig())

	got := make(map[models.YearMonth]models.MonthlyDueEntry)
	for _, e := range entries {
		got[e.Month] = e
	}

	if s := got[models.NewYearMonth(2024, time.January)].Status; s != models.DueStatusPaid {
		t.Errorf("January = %s, expected paid", s)
	}
	feb := got[models.NewYearMonth(2024, time.February)]
	if feb.Status != models.DueStatusManualPaid || !feb.IsManualOverride {
		t.Errorf("February = %+v, expected manual paid override", feb)
	}
	if s := got[models.NewYearMonth(2024, time.March)].Status; s != models.DueStatusOverdue {
		t.Errorf("March = %s, expected overdue", s)
	}
}
