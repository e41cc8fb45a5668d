package storage_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/livefire2015/ez-club-ledger/src/models"
	"github.com/livefire2015/ez-club-ledger/src/storage"
	"github.com/livefire2015/ez-club-ledger/src/storage/storagetest"
)

func TestDuplicateBillingKey(t *testing.T) {
	tenantID := uuid.New()
	march := models.NewYearMonth(2024, time.March)
	fee := storagetest.Payment(uuid.New(), "100", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name     string
		payments []models.PaymentRecord
		dup      bool
	}{
		{"empty", nil, false},
		{"no keys", []models.PaymentRecord{fee, fee}, false},
		{"distinct months", []models.PaymentRecord{storagetest.Invoice(tenantID, march), storagetest.Invoice(tenantID, march.Next())}, false},
		{"same month", []models.PaymentRecord{fee, storagetest.Invoice(tenantID, march), storagetest.Invoice(tenantID, march)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, dup := storage.DuplicateBillingKey(tt.payments)
			if dup != tt.dup {
				t.Errorf("DuplicateBillingKey() dup = %v, expected %v", dup, tt.dup)
			}
			if dup && key != tenantID.String()+"/2024-03" {
				t.Errorf("DuplicateBillingKey() key = %q", key)
			}
		})
	}
}
