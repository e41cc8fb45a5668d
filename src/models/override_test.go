package models_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-club-ledger/src/models"
)

func TestOverrideLookup(t *testing.T) {
	memberID := uuid.New()
	march := models.NewYearMonth(2024, time.March)
	april := models.NewYearMonth(2024, time.April)

	lookup := models.NewOverrideLookup([]models.ManualOverride{
		{MemberID: memberID, Month: march, Value: models.OverridePending},
		{MemberID: memberID, Month: march, Value: models.OverridePaid},
		{MemberID: memberID, Month: april, Value: "bogus"},
	})

	if got := lookup.Get(memberID, march); got != models.OverridePaid {
		t.Errorf("Get(march) = %q, want paid (later entry wins)", got)
	}
	if got := lookup.Get(memberID, april); got != models.OverrideNone {
		t.Errorf("Get(april) = %q, want none for an invalid value", got)
	}
	if got := lookup.Get(uuid.New(), march); got != models.OverrideNone {
		t.Errorf("Get(other member) = %q, want none", got)
	}
	if len(lookup.ToList()) != 1 {
		t.Errorf("ToList() = %v, want one override", lookup.ToList())
	}

	var empty models.OverrideLookup
	if got := empty.Get(memberID, march); got != models.OverrideNone {
		t.Errorf("nil lookup Get() = %q, want none", got)
	}
}

func TestOverrideValueIsValid(t *testing.T) {
	tests := []struct {
		value models.OverrideValue
		want  bool
	}{
		{models.OverridePaid, true},
		{models.OverridePending, true},
		{models.OverrideNone, false},
		{"overdue", false},
	}

	for _, tt := range tests {
		if tt.value.IsValid() != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.value, !tt.want, tt.want)
		}
	}
}
