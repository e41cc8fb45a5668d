// Package jsonfile stores every collection in a single JSON document on disk.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/livefire2015/ez-club-ledger/src/models"
	"github.com/livefire2015/ez-club-ledger/src/storage"
)

// document is the on-disk layout, one key per collection
type document struct {
	Members   []models.Member         `json:"members"`
	Payments  []models.PaymentRecord  `json:"payments"`
	Tenants   []models.Tenant         `json:"tenants"`
	Overrides []models.ManualOverride `json:"overrides"`
}

// Store persists collections to a JSON file.
// Writes go to a temporary file renamed over the original.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open prepares a store at path, creating parent directories
// The file itself is created on first write
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	s := &Store{path: path}
	if _, err := s.read(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) read() (*document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}

	var doc document
	if len(data) == 0 {
		return &doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode store %s: %w", s.path, err)
	}
	return &doc, nil
}

func (s *Store) write(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

// update applies fn to the current document and writes the result
func (s *Store) update(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.write(doc)
}

func (s *Store) snapshot() (*document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// ListMembers returns the member collection
func (s *Store) ListMembers(ctx context.Context) ([]models.Member, error) {
	doc, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return nonNil(doc.Members), nil
}

// ReplaceMembers swaps the member collection
func (s *Store) ReplaceMembers(ctx context.Context, members []models.Member) error {
	return s.update(func(doc *document) error {
		doc.Members = members
		return nil
	})
}

// ListPayments returns the payment ledger
func (s *Store) ListPayments(ctx context.Context) ([]models.PaymentRecord, error) {
	doc, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return nonNil(doc.Payments), nil
}

// ReplacePayments swaps the payment ledger, rejecting repeated billing keys
func (s *Store) ReplacePayments(ctx context.Context, payments []models.PaymentRecord) error {
	if key, dup := storage.DuplicateBillingKey(payments); dup {
		return fmt.Errorf("billing key %s: %w", key, storage.ErrDuplicate)
	}
	return s.update(func(doc *document) error {
		doc.Payments = payments
		return nil
	})
}

// ListTenants returns the tenant collection
func (s *Store) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	doc, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return nonNil(doc.Tenants), nil
}

// ReplaceTenants swaps the tenant collection
func (s *Store) ReplaceTenants(ctx context.Context, tenants []models.Tenant) error {
	return s.update(func(doc *document) error {
		doc.Tenants = tenants
		return nil
	})
}

// ListOverrides returns the override collection
func (s *Store) ListOverrides(ctx context.Context) ([]models.ManualOverride, error) {
	doc, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return nonNil(doc.Overrides), nil
}

// ReplaceOverrides swaps the override collection
func (s *Store) ReplaceOverrides(ctx context.Context, overrides []models.ManualOverride) error {
	return s.update(func(doc *document) error {
		doc.Overrides = overrides
		return nil
	})
}

// Close is a no-op; every write is already on disk
func (s *Store) Close() error {
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

var _ storage.Store = (*Store)(nil)
