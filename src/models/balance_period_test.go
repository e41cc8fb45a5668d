package models_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-club-ledger/src/models"
)

func TestWindowContains(t *testing.T) {
	w := models.Window{
		Start: time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"start", w.Start, true},
		{"end late in the day", time.Date(2024, 3, 24, 23, 0, 0, 0, time.UTC), true},
		{"day before", time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC), false},
		{"day after", time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.at); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}

	if w.Days() != 7 {
		t.Errorf("Days() = %d, want 7", w.Days())
	}
}

func TestBalanceFilterMatches(t *testing.T) {
	memberID := uuid.New()
	record := &models.PaymentRecord{
		MemberID: &memberID,
		Category: models.PaymentCategoryMembership,
		Method:   models.PaymentMethodCash,
	}

	tests := []struct {
		name   string
		filter models.BalanceFilter
		want   bool
	}{
		{"empty", models.BalanceFilter{}, true},
		{"all", models.BalanceFilter{Category: models.FilterAll, MemberID: models.FilterAll, Method: models.FilterAll}, true},
		{"category match", models.BalanceFilter{Category: "membership"}, true},
		{"category miss", models.BalanceFilter{Category: "equipment"}, false},
		{"method miss", models.BalanceFilter{Method: "card"}, false},
		{"member match", models.BalanceFilter{MemberID: memberID.String()}, true},
		{"member miss", models.BalanceFilter{MemberID: uuid.NewString()}, false},
		{"member malformed", models.BalanceFilter{MemberID: "nobody"}, false},
		{"combined", models.BalanceFilter{Category: "membership", Method: "cash", MemberID: memberID.String()}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(record); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBalancePeriodIsValid(t *testing.T) {
	for _, p := range []models.BalancePeriod{"day", "week", "month", "bimester", "quarter"} {
		if !p.IsValid() {
			t.Errorf("Expected %s to be valid", p)
		}
	}
	if models.BalancePeriod("year").IsValid() {
		t.Error("Expected year to be invalid")
	}
}
