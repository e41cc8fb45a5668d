package models

import (
	"fmt"
	"strings"
	"time"
)

// YearMonth identifies a single calendar month
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// NewYearMonth creates a YearMonth, normalizing out-of-range months
func NewYearMonth(year int, month time.Month) YearMonth {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// YearMonthOf returns the calendar month containing t
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses the "2024-03" form produced by String
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid year-month %q: %w", s, err)
	}
	return YearMonthOf(t), nil
}

// ParsePeriodLabel parses the "March 2024" form produced by Label
func ParsePeriodLabel(label string) (YearMonth, error) {
	t, err := time.Parse("January 2006", strings.TrimSpace(label))
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid period label %q: %w", label, err)
	}
	return YearMonthOf(t), nil
}

// index is a monotonically increasing month counter used for comparisons
func (ym YearMonth) index() int {
	return ym.Year*12 + int(ym.Month) - 1
}

// Before reports whether ym is strictly earlier than other
func (ym YearMonth) Before(other YearMonth) bool {
	return ym.index() < other.index()
}

// After reports whether ym is strictly later than other
func (ym YearMonth) After(other YearMonth) bool {
	return ym.index() > other.index()
}

// Equal reports whether both values name the same month
func (ym YearMonth) Equal(other YearMonth) bool {
	return ym.index() == other.index()
}

// MonthsUntil returns the number of months from ym to other (negative if other is earlier)
func (ym YearMonth) MonthsUntil(other YearMonth) int {
	return other.index() - ym.index()
}

// AddMonths shifts the month by n, crossing year boundaries as needed
func (ym YearMonth) AddMonths(n int) YearMonth {
	return NewYearMonth(ym.Year, ym.Month+time.Month(n))
}

// Next returns the following month
func (ym YearMonth) Next() YearMonth {
	return ym.AddMonths(1)
}

// Prev returns the preceding month
func (ym YearMonth) Prev() YearMonth {
	return ym.AddMonths(-1)
}

// FirstDay returns midnight UTC of the first day of the month
func (ym YearMonth) FirstDay() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns midnight UTC of the last day of the month
func (ym YearMonth) LastDay() time.Time {
	return ym.FirstDay().AddDate(0, 1, -1)
}

// DaysIn returns the number of days in the month
func (ym YearMonth) DaysIn() int {
	return ym.LastDay().Day()
}

// DayClamped returns the given day-of-month inside ym, using the last valid day
// when the month is shorter
func (ym YearMonth) DayClamped(day int) time.Time {
	if day < 1 {
		day = 1
	}
	if last := ym.DaysIn(); day > last {
		day = last
	}
	return time.Date(ym.Year, ym.Month, day, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether the calendar date of t falls in ym
func (ym YearMonth) Contains(t time.Time) bool {
	return t.Year() == ym.Year && t.Month() == ym.Month
}

// Label returns the human-readable period label, e.g. "March 2024"
func (ym YearMonth) Label() string {
	return ym.FirstDay().Format("January 2006")
}

// String returns the compact form, e.g. "2024-03"
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// DateOnly truncates t to midnight UTC of its calendar date
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
