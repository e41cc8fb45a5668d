package services

import (
	"time"

	"github.com/livefire2015/ez-club-ledger/src/models"
	"github.com/shopspring/decimal"
)

// ResolveWindow turns a dashboard period into concrete calendar dates anchored on today
// Unknown periods resolve to today only
func ResolveWindow(period models.BalancePeriod, today time.Time) models.Window {
	today = models.DateOnly(today)
	month := models.YearMonthOf(today)

	switch period {
	case models.BalancePeriodWeek:
		// time.Weekday starts on Sunday; weeks here start on Monday
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDate(0, 0, -offset)
		return models.Window{Start: start, End: start.AddDate(0, 0, 6)}

	case models.BalancePeriodMonth:
		return models.Window{Start: month.FirstDay(), End: month.LastDay()}

	case models.BalancePeriodBimester:
		return models.Window{Start: twoMonthsBefore(today), End: today}

	case models.BalancePeriodQuarter:
		first := models.NewYearMonth(today.Year(), time.Month((int(today.Month())-1)/3*3+1))
		return models.Window{Start: first.FirstDay(), End: first.AddMonths(2).LastDay()}

	default:
		return models.Window{Start: today, End: today}
	}
}

// twoMonthsBefore steps back two calendar months, clamping the day instead of
// letting time.AddDate roll over (e.g. 31 December -> 31 October, 30 April -> 28/29 February)
func twoMonthsBefore(today time.Time) time.Time {
	return models.YearMonthOf(today).AddMonths(-2).DayClamped(today.Day())
}

// ComputeBalance sums the paid records dated inside the period window that pass
// every filter. An empty match set sums to zero.
func ComputeBalance(
	payments []models.PaymentRecord,
	period models.BalancePeriod,
	filter models.BalanceFilter,
	today time.Time,
) decimal.Decimal {
	window := ResolveWindow(period, today)

	total := decimal.Zero
	for i := range payments {
		if includeInBalance(&payments[i], window, filter) {
			total = total.Add(payments[i].Amount)
		}
	}
	return total
}

// BalanceBreakdown computes the same total as ComputeBalance, split by method and category
func BalanceBreakdown(
	payments []models.PaymentRecord,
	period models.BalancePeriod,
	filter models.BalanceFilter,
	today time.Time,
) models.BalanceReport {
	window := ResolveWindow(period, today)
	report := models.BalanceReport{
		Period:     period,
		Window:     window,
		Total:      decimal.Zero,
		ByMethod:   make(map[models.PaymentMethod]decimal.Decimal),
		ByCategory: make(map[models.PaymentCategory]decimal.Decimal),
	}

	for i := range payments {
		p := &payments[i]
		if !includeInBalance(p, window, filter) {
			continue
		}
		report.Total = report.Total.Add(p.Amount)
		report.Count++
		report.ByMethod[p.Method] = report.ByMethod[p.Method].Add(p.Amount)
		report.ByCategory[p.Category] = report.ByCategory[p.Category].Add(p.Amount)
	}

	return report
}

func includeInBalance(p *models.PaymentRecord, window models.Window, filter models.BalanceFilter) bool {
	return p.IsPaid() && window.Contains(p.PaymentDate) && filter.Matches(p)
}
