package clock_test

import (
	"testing"
	"time"

	"github.com/livefire2015/ez-club-ledger/src/clock"
)

func TestReal_Now(t *testing.T) {
	c := clock.Real{}

	before := time.Now()
	got := c.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", got, before, after)
	}
}

func TestFixed_SetAndAdvance(t *testing.T) {
	start := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)
	c := clock.NewFixed(start)

	if !c.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", c.Now(), start)
	}

	c.AdvanceDays(1)
	want := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	if !c.Now().Equal(want) {
		t.Errorf("after AdvanceDays(1) Now() = %v, want %v", c.Now(), want)
	}

	later := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	c.Set(later)
	if !c.Now().Equal(later) {
		t.Errorf("after Set Now() = %v, want %v", c.Now(), later)
	}
}

func TestToday(t *testing.T) {
	// 02:30 UTC on 1 March is still 28 February in Buenos Aires (UTC-3)
	c := clock.NewFixed(time.Date(2024, 3, 1, 2, 30, 0, 0, time.UTC))
	loc := time.FixedZone("ART", -3*60*60)

	tests := []struct {
		name string
		loc  *time.Location
		want time.Time
	}{
		{"utc", time.UTC, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"behind utc", loc, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clock.Today(c, tt.loc)
			if !got.Equal(tt.want) {
				t.Errorf("Today() = %v, want %v", got, tt.want)
			}
		})
	}
}
