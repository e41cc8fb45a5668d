// Package storage defines the record collections the billing engine reads.
//
// Every collection is read in full and written in full: List returns the whole
// current collection and Replace swaps it atomically from the caller's point of view.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-club-ledger/src/models"
)

// Storage errors
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// MemberRegistry holds the club's members
type MemberRegistry interface {
	ListMembers(ctx context.Context) ([]models.Member, error)
	ReplaceMembers(ctx context.Context, members []models.Member) error
}

// PaymentLedger holds every payment record, member fees and tenant invoices alike
type PaymentLedger interface {
	ListPayments(ctx context.Context) ([]models.PaymentRecord, error)
	ReplacePayments(ctx context.Context, payments []models.PaymentRecord) error
}

// TenantRegistry holds the platform's tenants
type TenantRegistry interface {
	ListTenants(ctx context.Context) ([]models.Tenant, error)
	ReplaceTenants(ctx context.Context, tenants []models.Tenant) error
}

// OverrideStore holds the manual member/month overrides
type OverrideStore interface {
	ListOverrides(ctx context.Context) ([]models.ManualOverride, error)
	ReplaceOverrides(ctx context.Context, overrides []models.ManualOverride) error
}

// Store bundles every collection the engine needs
type Store interface {
	MemberRegistry
	PaymentLedger
	TenantRegistry
	OverrideStore
	Close() error
}

// Snapshot is an in-memory copy of every collection taken at one point
type Snapshot struct {
	Members   []models.Member
	Payments  []models.PaymentRecord
	Tenants   []models.Tenant
	Overrides []models.ManualOverride
}

// LoadSnapshot reads every collection from the store
func LoadSnapshot(ctx context.Context, s Store) (*Snapshot, error) {
	members, err := s.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.ListPayments(ctx)
	if err != nil {
		return nil, err
	}
	tenants, err := s.ListTenants(ctx)
	if err != nil {
		return nil, err
	}
	overrides, err := s.ListOverrides(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Members:   members,
		Payments:  payments,
		Tenants:   tenants,
		Overrides: overrides,
	}, nil
}

// FindMember returns the member with the given id
func (s *Snapshot) FindMember(id uuid.UUID) (models.Member, bool) {
	for _, m := range s.Members {
		if m.ID == id {
			return m, true
		}
	}
	return models.Member{}, false
}

// DuplicateBillingKey returns the first billing key used by more than one record
func DuplicateBillingKey(payments []models.PaymentRecord) (string, bool) {
	seen := make(map[string]bool, len(payments))
	for _, p := range payments {
		if p.BillingKey == nil {
			continue
		}
		if seen[*p.BillingKey] {
			return *p.BillingKey, true
		}
		seen[*p.BillingKey] = true
	}
	return "", false
}
