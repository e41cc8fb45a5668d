package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalancePeriod selects the dashboard time window
type BalancePeriod string

const (
	BalancePeriodDay      BalancePeriod = "day"      // Today only
	BalancePeriodWeek     BalancePeriod = "week"     // Monday to Sunday containing today
	BalancePeriodMonth    BalancePeriod = "month"    // Calendar month containing today
	BalancePeriodBimester BalancePeriod = "bimester" // Today minus two months through today
	BalancePeriodQuarter  BalancePeriod = "quarter"  // Calendar quarter containing today
)

// IsValid reports whether the period is known
func (p BalancePeriod) IsValid() bool {
	switch p {
	case BalancePeriodDay, BalancePeriodWeek, BalancePeriodMonth, BalancePeriodBimester, BalancePeriodQuarter:
		return true
	}
	return false
}

// Window is an inclusive range of calendar dates
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the calendar date of t lies within the window
func (w Window) Contains(t time.Time) bool {
	d := DateOnly(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Days returns the number of calendar days covered
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// FilterAll matches every value of a balance filter field
const FilterAll = "all"

// BalanceFilter narrows the records summed by the aggregator
// Empty or "all" fields match everything; fields combine conjunctively
type BalanceFilter struct {
	Category string `json:"category,omitempty"`
	MemberID string `json:"member_id,omitempty"`
	Method   string `json:"method,omitempty"`
}

// Matches reports whether a record passes every supplied filter
func (f BalanceFilter) Matches(p *PaymentRecord) bool {
	if !filterMatches(f.Category, string(p.Category)) {
		return false
	}
	if !filterMatches(f.Method, string(p.Method)) {
		return false
	}
	if isWildcard(f.MemberID) {
		return true
	}
	memberID, err := uuid.Parse(f.MemberID)
	if err != nil {
		return false
	}
	return p.BelongsToMember(memberID)
}

func isWildcard(v string) bool {
	return v == "" || v == FilterAll
}

func filterMatches(want, got string) bool {
	return isWildcard(want) || want == got
}

// BalanceReport is the dashboard view of a balance computation
type BalanceReport struct {
	Period     BalancePeriod                       `json:"period"`
	Window     Window                              `json:"window"`
	Total      decimal.Decimal                     `json:"total"`
	Count      int                                 `json:"count"`
	ByMethod   map[PaymentMethod]decimal.Decimal   `json:"by_method"`
	ByCategory map[PaymentCategory]decimal.Decimal `json:"by_category"`
}
