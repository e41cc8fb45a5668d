package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-club-ledger/src/models"
	"github.com/livefire2015/ez-club-ledger/src/storage"
	"github.com/livefire2015/ez-club-ledger/src/storage/memory"
	"github.com/livefire2015/ez-club-ledger/src/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return memory.New()
	})
}

func TestStoreReturnsCopies(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	member := storagetest.Member("Lucia", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))

	input := []models.Member{member}
	if err := s.ReplaceMembers(ctx, input); err != nil {
		t.Fatalf("ReplaceMembers() error = %v", err)
	}
	input[0].Name = "changed by caller"

	got, _ := s.ListMembers(ctx)
	got[0].ID = uuid.New()

	again, _ := s.ListMembers(ctx)
	if again[0].Name != "Lucia" || again[0].ID != member.ID {
		t.Errorf("stored member was mutated through a caller's slice: %+v", again[0])
	}
}
