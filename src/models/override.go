package models

import (
	"errors"

	"github.com/google/uuid"
)

// OverrideValue is an operator-set status for one member and month
// The zero value means no override
type OverrideValue string

const (
	OverrideNone    OverrideValue = ""
	OverridePaid    OverrideValue = "paid"
	OverridePending OverrideValue = "pending"
)

// ErrInvalidOverride is returned for values other than paid or pending
var ErrInvalidOverride = errors.New("override must be 'paid' or 'pending'")

// IsValid reports whether v is a value that may be stored
func (v OverrideValue) IsValid() bool {
	return v == OverridePaid || v == OverridePending
}

// OverrideKey addresses a single member/month override
type OverrideKey struct {
	MemberID uuid.UUID `json:"member_id"`
	Month    YearMonth `json:"month"`
}

// ManualOverride is the persisted form of one override
type ManualOverride struct {
	MemberID uuid.UUID     `json:"member_id" db:"member_id"`
	Month    YearMonth     `json:"month" db:"month"`
	Value    OverrideValue `json:"value" db:"value"`
}

// Key returns the lookup key of the override
func (o ManualOverride) Key() OverrideKey {
	return OverrideKey{MemberID: o.MemberID, Month: o.Month}
}

// OverrideLookup maps member/month pairs to their override value
type OverrideLookup map[OverrideKey]OverrideValue

// NewOverrideLookup indexes a list of stored overrides
// Later entries for the same key win
func NewOverrideLookup(overrides []ManualOverride) OverrideLookup {
	lookup := make(OverrideLookup, len(overrides))
	for _, o := range overrides {
		if o.Value.IsValid() {
			lookup[o.Key()] = o.Value
		}
	}
	return lookup
}

// Get returns the override for a member and month, or OverrideNone
// A nil lookup has no overrides
func (l OverrideLookup) Get(memberID uuid.UUID, month YearMonth) OverrideValue {
	if l == nil {
		return OverrideNone
	}
	return l[OverrideKey{MemberID: memberID, Month: month}]
}

// ToList flattens the lookup back into storable overrides
func (l OverrideLookup) ToList() []ManualOverride {
	list := make([]ManualOverride, 0, len(l))
	for k, v := range l {
		list = append(list, ManualOverride{MemberID: k.MemberID, Month: k.Month, Value: v})
	}
	return list
}
