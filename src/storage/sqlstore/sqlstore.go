// Package sqlstore persists the engine's collections in PostgreSQL or SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/livefire2015/ez-club-ledger/src/models"
	"github.com/livefire2015/ez-club-ledger/src/storage"
	_ "modernc.org/sqlite"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339Nano
)

// SQLDB is the subset of *sql.DB the store needs
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Close() error
}

var _ SQLDB = (*sql.DB)(nil)

// Store implements storage.Store over database/sql
type Store struct {
	db      SQLDB
	dialect dialect
}

// Open connects to the database and creates the schema
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &Store{db: db, dialect: d}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates missing tables and indexes
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// replace deletes every row of table and inserts rows inside one transaction
func (s *Store) replace(ctx context.Context, table, insert string, rows [][]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s replace: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, s.dialect.rebind(insert))
	if err != nil {
		return fmt.Errorf("prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for _, args := range rows {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			if s.dialect.isUniqueViolation(err) {
				return fmt.Errorf("insert %s: %w", table, storage.ErrDuplicate)
			}
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// ListMembers returns the member collection
func (s *Store) ListMembers(ctx context.Context) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, role, enrollment_date, active, created_at, updated_at
		FROM members
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var m models.Member
		var enrollment sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&m.ID, &m.Name, &m.Role, &enrollment, &m.Active, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		if m.EnrollmentDate, err = parseNullDate(enrollment); err != nil {
			return nil, err
		}
		if m.CreatedAt, m.UpdatedAt, err = parseTimestamps(createdAt, updatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ReplaceMembers swaps the member collection
func (s *Store) ReplaceMembers(ctx context.Context, members []models.Member) error {
	rows := make([][]any, 0, len(members))
	for _, m := range members {
		rows = append(rows, []any{
			m.ID.String(), m.Name, string(m.Role), formatNullDate(m.EnrollmentDate), m.Active,
			formatTimestamp(m.CreatedAt), formatTimestamp(m.UpdatedAt),
		})
	}
	return s.replace(ctx, "members", `
		INSERT INTO members (id, name, role, enrollment_date, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rows)
}

// ListPayments returns the payment ledger ordered by date
func (s *Store) ListPayments(ctx context.Context) ([]models.PaymentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, member_id, tenant_id, amount, concept, category, payment_date,
		       method, status, notes, billing_key, created_at, updated_at
		FROM payments
		ORDER BY payment_date, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	payments := []models.PaymentRecord{}
	for rows.Next() {
		var p models.PaymentRecord
		var memberID, tenantID uuid.NullUUID
		var notes, billingKey sql.NullString
		var paymentDate, createdAt, updatedAt string
		err := rows.Scan(
			&p.ID, &memberID, &tenantID, &p.Amount, &p.Concept, &p.Category, &paymentDate,
			&p.Method, &p.Status, &notes, &billingKey, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		if memberID.Valid {
			p.MemberID = &memberID.UUID
		}
		if tenantID.Valid {
			p.TenantID = &tenantID.UUID
		}
		if notes.Valid {
			p.Notes = &notes.String
		}
		if billingKey.Valid {
			p.BillingKey = &billingKey.String
		}
		if p.PaymentDate, err = time.Parse(dateLayout, paymentDate); err != nil {
			return nil, fmt.Errorf("parse payment date %q: %w", paymentDate, err)
		}
		if p.CreatedAt, p.UpdatedAt, err = parseTimestamps(createdAt, updatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// ReplacePayments swaps the payment ledger
// The unique billing_key index rejects a second invoice for the same tenant and month
func (s *Store) ReplacePayments(ctx context.Context, payments []models.PaymentRecord) error {
	if key, dup := storage.DuplicateBillingKey(payments); dup {
		return fmt.Errorf("billing key %s: %w", key, storage.ErrDuplicate)
	}

	rows := make([][]any, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, []any{
			p.ID.String(), nullUUID(p.MemberID), nullUUID(p.TenantID), p.Amount.String(),
			p.Concept, string(p.Category), p.PaymentDate.Format(dateLayout),
			string(p.Method), string(p.Status), nullString(p.Notes), nullString(p.BillingKey),
			formatTimestamp(p.CreatedAt), formatTimestamp(p.UpdatedAt),
		})
	}
	return s.replace(ctx, "payments", `
		INSERT INTO payments (
			id, member_id, tenant_id, amount, concept, category, payment_date,
			method, status, notes, billing_key, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rows)
}

// ListTenants returns the tenant collection
func (s *Store) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, coach_capacity_tier, athlete_capacity_tier, coach_count, athlete_count,
		       billing_anchor_date, status, created_at, updated_at
		FROM tenants
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query tenants: %w", err)
	}
	defer rows.Close()

	tenants := []models.Tenant{}
	for rows.Next() {
		var t models.Tenant
		var coachCount, athleteCount sql.NullInt64
		var anchor, createdAt, updatedAt string
		err := rows.Scan(
			&t.ID, &t.Name, &t.CoachCapacityTier, &t.AthleteCapacityTier, &coachCount, &athleteCount,
			&anchor, &t.Status, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		t.CoachCount = nullIntPtr(coachCount)
		t.AthleteCount = nullIntPtr(athleteCount)
		if t.BillingAnchorDate, err = time.Parse(dateLayout, anchor); err != nil {
			return nil, fmt.Errorf("parse billing anchor %q: %w", anchor, err)
		}
		if t.CreatedAt, t.UpdatedAt, err = parseTimestamps(createdAt, updatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// ReplaceTenants swaps the tenant collection
func (s *Store) ReplaceTenants(ctx context.Context, tenants []models.Tenant) error {
	rows := make([][]any, 0, len(tenants))
	for _, t := range tenants {
		rows = append(rows, []any{
			t.ID.String(), t.Name, string(t.CoachCapacityTier), string(t.AthleteCapacityTier),
			nullInt(t.CoachCount), nullInt(t.AthleteCount), t.BillingAnchorDate.Format(dateLayout),
			string(t.Status), formatTimestamp(t.CreatedAt), formatTimestamp(t.UpdatedAt),
		})
	}
	return s.replace(ctx, "tenants", `
		INSERT INTO tenants (
			id, name, coach_capacity_tier, athlete_capacity_tier, coach_count, athlete_count,
			billing_anchor_date, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rows)
}

// ListOverrides returns the override collection
func (s *Store) ListOverrides(ctx context.Context) ([]models.ManualOverride, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT member_id, month, value FROM member_overrides ORDER BY member_id, month`)
	if err != nil {
		return nil, fmt.Errorf("query overrides: %w", err)
	}
	defer rows.Close()

	overrides := []models.ManualOverride{}
	for rows.Next() {
		var o models.ManualOverride
		var month string
		if err := rows.Scan(&o.MemberID, &month, &o.Value); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		if o.Month, err = models.ParseYearMonth(month); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

// ReplaceOverrides swaps the override collection
func (s *Store) ReplaceOverrides(ctx context.Context, overrides []models.ManualOverride) error {
	rows := make([][]any, 0, len(overrides))
	for _, o := range overrides {
		rows = append(rows, []any{o.MemberID.String(), o.Month.String(), string(o.Value)})
	}
	return s.replace(ctx, "member_overrides", `
		INSERT INTO member_overrides (member_id, month, value) VALUES (?, ?, ?)
	`, rows)
}

func parseNullDate(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v.String)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", v.String, err)
	}
	return &t, nil
}

func formatNullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func parseTimestamp(v string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", v, err)
	}
	return t, nil
}

// parseTimestamps parses a row's created_at and updated_at pair
func parseTimestamps(created, updated string) (time.Time, time.Time, error) {
	createdAt, err := parseTimestamp(created)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	updatedAt, err := parseTimestamp(updated)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return createdAt, updatedAt, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func nullUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

var _ storage.Store = (*Store)(nil)
