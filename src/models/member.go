package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MemberRole represents the role a member holds in the club
type MemberRole string

const (
	MemberRoleAthlete MemberRole = "athlete"
	MemberRoleCoach   MemberRole = "coach"
)

// MaxMemberNameLength bounds the member name field
const MaxMemberNameLength = 100

// Member validation errors
var (
	ErrMemberNameRequired  = errors.New("member name cannot be empty")
	ErrMemberNameTooLong   = errors.New("member name cannot exceed 100 characters")
	ErrInvalidMemberRole   = errors.New("member role must be 'athlete' or 'coach'")
	ErrEnrollmentNotAtDate = errors.New("enrollment date must be a calendar date without time of day")
)

// Member represents a registered athlete or coach
// A nil EnrollmentDate means the member has no billing timeline
type Member struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Role           MemberRole `json:"role" db:"role"`
	EnrollmentDate *time.Time `json:"enrollment_date,omitempty" db:"enrollment_date"`
	Active         bool       `json:"active" db:"active"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Validate checks the member at the registration boundary
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrMemberNameRequired
	}
	if len(m.Name) > MaxMemberNameLength {
		return ErrMemberNameTooLong
	}
	if m.Role != MemberRoleAthlete && m.Role != MemberRoleCoach {
		return ErrInvalidMemberRole
	}
	if m.EnrollmentDate != nil && !m.EnrollmentDate.Equal(DateOnly(*m.EnrollmentDate)) {
		return ErrEnrollmentNotAtDate
	}
	return nil
}

// HasBillingTimeline reports whether monthly dues can be computed for the member
func (m *Member) HasBillingTimeline() bool {
	return m.EnrollmentDate != nil
}

// EnrollmentMonth returns the month containing the enrollment date
func (m *Member) EnrollmentMonth() (YearMonth, bool) {
	if m.EnrollmentDate == nil {
		return YearMonth{}, false
	}
	return YearMonthOf(*m.EnrollmentDate), true
}

// NewMember creates an active member enrolled on the given date
func NewMember(name string, role MemberRole, enrolled time.Time) *Member {
	now := time.Now()
	enrollment := DateOnly(enrolled)
	return &Member{
		ID:             uuid.New(),
		Name:           name,
		Role:           role,
		EnrollmentDate: &enrollment,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
