// Package memory provides an in-process Store, used by tests and example flows.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/livefire2015/ez-club-ledger/src/models"
	"github.com/livefire2015/ez-club-ledger/src/storage"
)

// Store keeps every collection in memory
type Store struct {
	mu        sync.RWMutex
	members   []models.Member
	payments  []models.PaymentRecord
	tenants   []models.Tenant
	overrides []models.ManualOverride
}

// New creates an empty store
func New() *Store {
	return &Store{}
}

// ListMembers returns a copy of the member collection
func (s *Store) ListMembers(ctx context.Context) ([]models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Member{}, s.members...), nil
}

// ReplaceMembers swaps the member collection
func (s *Store) ReplaceMembers(ctx context.Context, members []models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = append([]models.Member{}, members...)
	return nil
}

// ListPayments returns a copy of the payment ledger
func (s *Store) ListPayments(ctx context.Context) ([]models.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PaymentRecord{}, s.payments...), nil
}

// ReplacePayments swaps the payment ledger, rejecting repeated billing keys
func (s *Store) ReplacePayments(ctx context.Context, payments []models.PaymentRecord) error {
	if key, dup := storage.DuplicateBillingKey(payments); dup {
		return fmt.Errorf("billing key %s: %w", key, storage.ErrDuplicate)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = append([]models.PaymentRecord{}, payments...)
	return nil
}

// ListTenants returns a copy of the tenant collection
func (s *Store) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Tenant{}, s.tenants...), nil
}

// ReplaceTenants swaps the tenant collection
func (s *Store) ReplaceTenants(ctx context.Context, tenants []models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants = append([]models.Tenant{}, tenants...)
	return nil
}

// ListOverrides returns a copy of the override collection
func (s *Store) ListOverrides(ctx context.Context) ([]models.ManualOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ManualOverride{}, s.overrides...), nil
}

// ReplaceOverrides swaps the override collection
func (s *Store) ReplaceOverrides(ctx context.Context, overrides []models.ManualOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = append([]models.ManualOverride{}, overrides...)
	return nil
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}

var _ storage.Store = (*Store)(nil)
