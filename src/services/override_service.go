package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-club-ledger/src/metrics"
	"github.com/livefire2015/ez-club-ledger/src/models"
	"github.com/livefire2015/ez-club-ledger/src/storage"
	"github.com/rs/zerolog"
)

// OverrideService stores the operator's manual member/month statuses
type OverrideService struct {
	mu      sync.Mutex
	store   storage.OverrideStore
	logger  zerolog.Logger
	metrics *metrics.Collector
}

// NewOverrideService creates a new override service
func NewOverrideService(store storage.OverrideStore, logger zerolog.Logger, m *metrics.Collector) *OverrideService {
	return &OverrideService{
		store:   store,
		logger:  logger.With().Str("component", "overrides").Logger(),
		metrics: m,
	}
}

// Set records an override, replacing any earlier value for the same month
func (s *OverrideService) Set(ctx context.Context, memberID uuid.UUID, month models.YearMonth, value models.OverrideValue) error {
	if !value.IsValid() {
		return fmt.Errorf("set override %s %s: %w", memberID, month, models.ErrInvalidOverride)
	}
	return s.write(ctx, memberID, month, value)
}

// Clear removes the override of a member and month; clearing a missing one is a no-op
func (s *OverrideService) Clear(ctx context.Context, memberID uuid.UUID, month models.YearMonth) error {
	return s.write(ctx, memberID, month, models.OverrideNone)
}

// Lookup loads every stored override as a lookup table
func (s *OverrideService) Lookup(ctx context.Context) (models.OverrideLookup, error) {
	overrides, err := s.store.ListOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	return models.NewOverrideLookup(overrides), nil
}

func (s *OverrideService) write(ctx context.Context, memberID uuid.UUID, month models.YearMonth, value models.OverrideValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	overrides, err := s.store.ListOverrides(ctx)
	if err != nil {
		return fmt.Errorf("load overrides: %w", err)
	}

	key := models.OverrideKey{MemberID: memberID, Month: month}
	kept := make([]models.ManualOverride, 0, len(overrides)+1)
	for _, o := range overrides {
		if o.Key() != key {
			kept = append(kept, o)
		}
	}
	if value != models.OverrideNone {
		kept = append(kept, models.ManualOverride{MemberID: memberID, Month: month, Value: value})
	}

	if err := s.store.ReplaceOverrides(ctx, kept); err != nil {
		return fmt.Errorf("store overrides: %w", err)
	}

	s.metrics.RecordOverride(string(value))
	s.logger.Info().
		Str("member_id", memberID.String()).
		Str("month", month.String()).
		Str("value", string(value)).
		Msg("override updated")
	return nil
}
