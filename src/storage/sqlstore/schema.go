package sqlstore

import (
	"fmt"
	"strings"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// dialect captures the differences between the supported databases
type dialect struct {
	driver      string
	moneyType   string
	positional  bool // $1, $2 placeholders instead of ?
	uniqueError string
}

var dialects = map[string]dialect{
	DriverPostgres: {
		driver:      DriverPostgres,
		moneyType:   "NUMERIC",
		positional:  true,
		uniqueError: "duplicate key value",
	},
	DriverSQLite: {
		driver:      DriverSQLite,
		moneyType:   "TEXT",
		positional:  false,
		uniqueError: "UNIQUE constraint failed",
	},
}

func dialectFor(driver string) (dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported driver %q", driver)
	}
	return d, nil
}

// rebind rewrites ? placeholders into the dialect's form
func (d dialect) rebind(query string) string {
	if !d.positional {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), d.uniqueError)
}

// schema returns the statements creating every table
// Calendar dates are stored as YYYY-MM-DD text, timestamps as RFC 3339 text
func (d dialect) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS members (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			enrollment_date TEXT,
			active BOOLEAN NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			member_id TEXT,
			tenant_id TEXT,
			amount %s NOT NULL,
			concept TEXT NOT NULL,
			category TEXT NOT NULL,
			payment_date TEXT NOT NULL,
			method TEXT NOT NULL,
			status TEXT NOT NULL,
			notes TEXT,
			billing_key TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`, d.moneyType),
		`CREATE UNIQUE INDEX IF NOT EXISTS payments_billing_key_idx ON payments (billing_key)`,
		`CREATE INDEX IF NOT EXISTS payments_member_idx ON payments (member_id)`,
		`CREATE TABLE IF NOT EXISTS tenants (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			coach_capacity_tier TEXT NOT NULL,
			athlete_capacity_tier TEXT NOT NULL,
			coach_count INTEGER,
			athlete_count INTEGER,
			billing_anchor_date TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS member_overrides (
			member_id TEXT NOT NULL,
			month TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (member_id, month)
		)`,
	}
}
