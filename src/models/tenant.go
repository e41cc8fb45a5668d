package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tenant represents a club subscribed to the platform
type Tenant struct {
	ID                  uuid.UUID    `json:"id" db:"id"`
	Name                string       `json:"name" db:"name"`
	CoachCapacityTier   CoachTier    `json:"coach_capacity_tier" db:"coach_capacity_tier"`
	AthleteCapacityTier AthleteTier  `json:"athlete_capacity_tier" db:"athlete_capacity_tier"`
	CoachCount          *int         `json:"coach_count,omitempty" db:"coach_count"`     // Declared headcount, closed tiers only
	AthleteCount        *int         `json:"athlete_count,omitempty" db:"athlete_count"` // Declared headcount, closed tiers only
	BillingAnchorDate   time.Time    `json:"billing_anchor_date" db:"billing_anchor_date"`
	Status              TenantStatus `json:"status" db:"status"`
	CreatedAt           time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at" db:"updated_at"`
}

// TenantStatus represents valid tenant statuses
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusClosed    TenantStatus = "closed"
)

// CoachTier is the declared coach capacity bracket
type CoachTier string

const (
	CoachTierUpTo5      CoachTier = "up_to_5"
	CoachTier6To10      CoachTier = "6_to_10"
	CoachTierMoreThan10 CoachTier = "more_than_10" // Open-ended
)

// AthleteTier is the declared athlete capacity bracket
type AthleteTier string

const (
	AthleteTierUpTo15      AthleteTier = "up_to_15"
	AthleteTier16To50      AthleteTier = "16_to_50"
	AthleteTier51To100     AthleteTier = "51_to_100"
	AthleteTierMoreThan100 AthleteTier = "more_than_100" // Open-ended
)

// CoachTiers lists coach brackets from smallest to largest
var CoachTiers = []CoachTier{CoachTierUpTo5, CoachTier6To10, CoachTierMoreThan10}

// AthleteTiers lists athlete brackets from smallest to largest
var AthleteTiers = []AthleteTier{AthleteTierUpTo15, AthleteTier16To50, AthleteTier51To100, AthleteTierMoreThan100}

// Tenant validation errors
var (
	ErrTenantNameRequired = errors.New("tenant name cannot be empty")
	ErrInvalidCoachTier   = errors.New("unknown coach capacity tier")
	ErrInvalidAthleteTier = errors.New("unknown athlete capacity tier")
	ErrAnchorDateRequired = errors.New("billing anchor date is required")
	ErrCountOutsideTier   = errors.New("declared headcount does not fit the capacity tier")
)

// IsValid reports whether the tier is known
func (t CoachTier) IsValid() bool {
	for _, known := range CoachTiers {
		if t == known {
			return true
		}
	}
	return false
}

// IsOpenEnded reports whether the tier has no upper bound
func (t CoachTier) IsOpenEnded() bool {
	return t == CoachTierMoreThan10
}

// Bounds returns the inclusive headcount range of a closed tier
// Open-ended tiers return max = 0
func (t CoachTier) Bounds() (min, max int) {
	switch t {
	case CoachTierUpTo5:
		return 1, 5
	case CoachTier6To10:
		return 6, 10
	case CoachTierMoreThan10:
		return 11, 0
	}
	return 0, 0
}

// IsValid reports whether the tier is known
func (t AthleteTier) IsValid() bool {
	for _, known := range AthleteTiers {
		if t == known {
			return true
		}
	}
	return false
}

// IsOpenEnded reports whether the tier has no upper bound
func (t AthleteTier) IsOpenEnded() bool {
	return t == AthleteTierMoreThan100
}

// Bounds returns the inclusive headcount range of a closed tier
// Open-ended tiers return max = 0
func (t AthleteTier) Bounds() (min, max int) {
	switch t {
	case AthleteTierUpTo15:
		return 1, 15
	case AthleteTier16To50:
		return 16, 50
	case AthleteTier51To100:
		return 51, 100
	case AthleteTierMoreThan100:
		return 101, 0
	}
	return 0, 0
}

// Validate checks the tenant at the registration boundary
func (t *Tenant) Validate() error {
	if t.Name == "" {
		return ErrTenantNameRequired
	}
	if !t.CoachCapacityTier.IsValid() {
		return ErrInvalidCoachTier
	}
	if !t.AthleteCapacityTier.IsValid() {
		return ErrInvalidAthleteTier
	}
	if t.BillingAnchorDate.IsZero() {
		return ErrAnchorDateRequired
	}
	if t.CoachCount != nil {
		lo, hi := t.CoachCapacityTier.Bounds()
		if !fitsBounds(*t.CoachCount, lo, hi) {
			return fmt.Errorf("coach count %d: %w", *t.CoachCount, ErrCountOutsideTier)
		}
	}
	if t.AthleteCount != nil {
		lo, hi := t.AthleteCapacityTier.Bounds()
		if !fitsBounds(*t.AthleteCount, lo, hi) {
			return fmt.Errorf("athlete count %d: %w", *t.AthleteCount, ErrCountOutsideTier)
		}
	}
	return nil
}

func fitsBounds(n, lo, hi int) bool {
	if n < lo {
		return false
	}
	return hi == 0 || n <= hi
}

// IsActive returns true if the tenant should be invoiced
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// DueDateFor returns the platform invoice due date inside the given month,
// using the anchor day-of-month clamped to the month length
func (t *Tenant) DueDateFor(month YearMonth) time.Time {
	return month.DayClamped(t.BillingAnchorDate.Day())
}

// BillingKey returns the uniqueness key of the tenant's invoice for a month
func (t *Tenant) BillingKey(month YearMonth) string {
	return t.ID.String() + "/" + month.String()
}
