package models

import "time"

// DueStatus is the derived membership-fee status of one member for one month
type DueStatus string

const (
	DueStatusNotApplicable DueStatus = "not_applicable" // Month precedes enrollment
	DueStatusManualPaid    DueStatus = "manual_paid"    // Operator marked as paid
	DueStatusManualPending DueStatus = "manual_pending" // Operator marked as pending
	DueStatusPaid          DueStatus = "paid"           // Paid membership record found
	DueStatusFuture        DueStatus = "future"         // Month after the current one
	DueStatusOverdue       DueStatus = "overdue"        // Due date passed without payment
	DueStatusPending       DueStatus = "pending"        // Due today or later this month
)

// AllDueStatuses lists every status in precedence order
var AllDueStatuses = []DueStatus{
	DueStatusNotApplicable,
	DueStatusManualPaid,
	DueStatusManualPending,
	DueStatusPaid,
	DueStatusFuture,
	DueStatusOverdue,
	DueStatusPending,
}

// IsSettled reports whether nothing is owed for the month
func (s DueStatus) IsSettled() bool {
	return s == DueStatusPaid || s == DueStatusManualPaid
}

// IsOutstanding reports whether the month still needs to be collected
func (s DueStatus) IsOutstanding() bool {
	return s == DueStatusOverdue || s == DueStatusPending || s == DueStatusManualPending
}

// IsManual reports whether the status came from an operator override
func (s DueStatus) IsManual() bool {
	return s == DueStatusManualPaid || s == DueStatusManualPending
}

// RenderHint tells the presentation layer how to display a status
type RenderHint struct {
	Tone string `json:"tone"`
	Icon string `json:"icon"`
}

var renderHints = map[DueStatus]RenderHint{
	DueStatusNotApplicable: {Tone: "muted", Icon: "minus"},
	DueStatusManualPaid:    {Tone: "success", Icon: "hand-check"},
	DueStatusManualPending: {Tone: "warning", Icon: "hand-clock"},
	DueStatusPaid:          {Tone: "success", Icon: "check"},
	DueStatusFuture:        {Tone: "info", Icon: "calendar"},
	DueStatusOverdue:       {Tone: "danger", Icon: "alert"},
	DueStatusPending:       {Tone: "warning", Icon: "clock"},
}

// RenderHint returns the display hint for the status
// Unknown values fall back to the not-applicable hint
func (s DueStatus) RenderHint() RenderHint {
	if hint, ok := renderHints[s]; ok {
		return hint
	}
	return renderHints[DueStatusNotApplicable]
}

// MonthlyDueEntry is one line of a member's fee history
// Derived on every view, never persisted
type MonthlyDueEntry struct {
	Month            YearMonth  `json:"month"`
	MonthLabel       string     `json:"month_label"`
	DueDate          time.Time  `json:"due_date"`
	Status           DueStatus  `json:"status"`
	IsManualOverride bool       `json:"is_manual_override"`
	Hint             RenderHint `json:"hint"`
}

// MemberDueSummary aggregates a member's history for dashboards
type MemberDueSummary struct {
	MonthsTracked   int               `json:"months_tracked"`
	StatusCounts    map[DueStatus]int `json:"status_counts"`
	OverdueMonths   []YearMonth       `json:"overdue_months"`
	OldestUnsettled *YearMonth        `json:"oldest_unsettled,omitempty"`
}

// SummarizeHistory counts statuses across a history
func SummarizeHistory(entries []MonthlyDueEntry) MemberDueSummary {
	summary := MemberDueSummary{
		MonthsTracked: len(entries),
		StatusCounts:  make(map[DueStatus]int, len(AllDueStatuses)),
		OverdueMonths: []YearMonth{},
	}

	for _, entry := range entries {
		summary.StatusCounts[entry.Status]++
		if entry.Status == DueStatusOverdue {
			summary.OverdueMonths = append(summary.OverdueMonths, entry.Month)
		}
		if entry.Status.IsOutstanding() {
			if summary.OldestUnsettled == nil || entry.Month.Before(*summary.OldestUnsettled) {
				month := entry.Month
				summary.OldestUnsettled = &month
			}
		}
	}

	return summary
}
