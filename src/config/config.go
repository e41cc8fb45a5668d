// Package config loads the engine's configuration from YAML, .env files and
// EZCLUB_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // timezone names resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
	"github.com/livefire2015/ez-club-ledger/src/models"
	"github.com/livefire2015/ez-club-ledger/src/services"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverJSONFile = "jsonfile"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the root configuration.
type Config struct {
	Billing BillingConfig `yaml:"billing"`
	Pricing PricingConfig `yaml:"pricing"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// BillingConfig holds the membership-fee rules.
type BillingConfig struct {
	MonthlyFeeKeyword string `yaml:"monthly_fee_keyword"` // Concept substring marking a membership fee
	ToleranceDays     int    `yaml:"tolerance_days"`      // Early-payment window around the enrollment day
	Timezone          string `yaml:"timezone"`            // Zone that decides which calendar day "today" is
}

// TierConfig prices one capacity bracket. Rates are decimal strings.
type TierConfig struct {
	Rate  string `yaml:"rate"`
	Count int    `yaml:"count"` // Representative headcount
}

// PricingConfig is the platform price list. Amounts are decimal strings.
type PricingConfig struct {
	BaseFee      string                `yaml:"base_fee"`
	CoachTiers   map[string]TierConfig `yaml:"coach_tiers"`
	AthleteTiers map[string]TierConfig `yaml:"athlete_tiers"`
}

// StorageConfig selects the record store.
type StorageConfig struct {
	Driver string `yaml:"driver"` // memory, jsonfile, postgres or sqlite
	DSN    string `yaml:"dsn"`    // File path for jsonfile/sqlite, connection string for postgres
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return finish(&cfg)
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	EZCLUB_MONTHLY_FEE_KEYWORD - Membership fee concept keyword (default: monthly fee)
//	EZCLUB_TOLERANCE_DAYS      - Early-payment tolerance in days (default: 5)
//	EZCLUB_TIMEZONE            - IANA zone for "today" (default: UTC)
//	EZCLUB_BASE_FEE            - Platform base fee (default: 20000)
//	EZCLUB_STORAGE_DRIVER      - memory, jsonfile, postgres or sqlite (default: jsonfile)
//	EZCLUB_STORAGE_DSN         - Store path or connection string (default: data/ezclub.json)
//	EZCLUB_LOG_LEVEL           - debug, info, warn, error (default: info)
//	EZCLUB_LOG_FORMAT          - json or console (default: json)
//	EZCLUB_METRICS_ENABLED     - Collect Prometheus metrics (default: false)
func LoadFromEnv() (*Config, error) {
	return finish(&Config{})
}

// LoadWithFallback loads the dotenv file if present, then the YAML file if it
// exists, falling back to environment variables only.
func LoadWithFallback(path, dotenvPath string) (*Config, error) {
	if err := LoadDotEnv(dotenvPath); err != nil {
		return nil, err
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// LoadDotEnv exports the variables of a .env file into the process environment.
// Variables already set win; a missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)
	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies EZCLUB_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EZCLUB_MONTHLY_FEE_KEYWORD"); v != "" {
		cfg.Billing.MonthlyFeeKeyword = v
	}
	if v := os.Getenv("EZCLUB_TOLERANCE_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Billing.ToleranceDays = n
		}
	}
	if v := os.Getenv("EZCLUB_TIMEZONE"); v != "" {
		cfg.Billing.Timezone = v
	}

	if v := os.Getenv("EZCLUB_BASE_FEE"); v != "" {
		cfg.Pricing.BaseFee = v
	}

	if v := os.Getenv("EZCLUB_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("EZCLUB_STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}

	if v := os.Getenv("EZCLUB_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("EZCLUB_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("EZCLUB_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
}

func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Billing.MonthlyFeeKeyword == "" {
		cfg.Billing.MonthlyFeeKeyword = models.DefaultMonthlyFeeKeyword
	}
	if cfg.Billing.ToleranceDays == 0 {
		cfg.Billing.ToleranceDays = services.DefaultToleranceDays
	}
	if cfg.Billing.Timezone == "" {
		cfg.Billing.Timezone = "UTC"
	}

	defaults := services.DefaultPricingConfig()
	if cfg.Pricing.BaseFee == "" {
		cfg.Pricing.BaseFee = defaults.BaseFee.String()
	}
	if cfg.Pricing.CoachTiers == nil {
		cfg.Pricing.CoachTiers = make(map[string]TierConfig)
	}
	for _, tier := range models.CoachTiers {
		cfg.Pricing.CoachTiers[string(tier)] = fillTier(cfg.Pricing.CoachTiers[string(tier)], defaults.CoachRates[tier])
	}
	if cfg.Pricing.AthleteTiers == nil {
		cfg.Pricing.AthleteTiers = make(map[string]TierConfig)
	}
	for _, tier := range models.AthleteTiers {
		cfg.Pricing.AthleteTiers[string(tier)] = fillTier(cfg.Pricing.AthleteTiers[string(tier)], defaults.AthleteRates[tier])
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverJSONFile
	}
	if cfg.Storage.DSN == "" {
		switch cfg.Storage.Driver {
		case DriverJSONFile:
			cfg.Storage.DSN = "data/ezclub.json"
		case DriverSQLite:
			cfg.Storage.DSN = "data/ezclub.db"
		}
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func fillTier(tc TierConfig, def services.TierRate) TierConfig {
	if tc.Rate == "" {
		tc.Rate = def.UnitRate.String()
	}
	if tc.Count == 0 {
		tc.Count = def.RepresentativeCount
	}
	return tc
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Billing.MonthlyFeeKeyword) == "" {
		return fmt.Errorf("billing.monthly_fee_keyword is required")
	}
	if cfg.Billing.ToleranceDays < 0 || cfg.Billing.ToleranceDays > 27 {
		return fmt.Errorf("billing.tolerance_days must be between 0 and 27, got %d", cfg.Billing.ToleranceDays)
	}
	if _, err := time.LoadLocation(cfg.Billing.Timezone); err != nil {
		return fmt.Errorf("billing.timezone %q: %w", cfg.Billing.Timezone, err)
	}

	if _, err := cfg.PricingConfig(); err != nil {
		return err
	}

	validDrivers := map[string]bool{
		DriverMemory: true, DriverJSONFile: true, DriverPostgres: true, DriverSQLite: true,
	}
	if !validDrivers[cfg.Storage.Driver] {
		return fmt.Errorf("storage.driver must be one of: memory, jsonfile, postgres, sqlite")
	}
	if cfg.Storage.Driver != DriverMemory && cfg.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required for driver %q", cfg.Storage.Driver)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	return nil
}

// DueConfig returns the membership-fee rules for the calculators
func (c *Config) DueConfig() services.DueConfig {
	return services.DueConfig{
		MonthlyFeeKeyword: c.Billing.MonthlyFeeKeyword,
		ToleranceDays:     c.Billing.ToleranceDays,
	}
}

// Location returns the billing timezone, UTC when it cannot be loaded
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Billing.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// PricingConfig parses the price list.
// Rates must be positive and must not grow as the tier grows.
func (c *Config) PricingConfig() (services.PricingConfig, error) {
	baseFee, err := parseAmount("pricing.base_fee", c.Pricing.BaseFee)
	if err != nil {
		return services.PricingConfig{}, err
	}

	out := services.PricingConfig{
		BaseFee:      baseFee,
		CoachRates:   make(map[models.CoachTier]services.TierRate),
		AthleteRates: make(map[models.AthleteTier]services.TierRate),
	}

	for key := range c.Pricing.CoachTiers {
		if !models.CoachTier(key).IsValid() {
			return services.PricingConfig{}, fmt.Errorf("pricing.coach_tiers: unknown tier %q", key)
		}
	}
	for key := range c.Pricing.AthleteTiers {
		if !models.AthleteTier(key).IsValid() {
			return services.PricingConfig{}, fmt.Errorf("pricing.athlete_tiers: unknown tier %q", key)
		}
	}

	var prev decimal.Decimal
	for i, tier := range models.CoachTiers {
		rate, err := parseTier("pricing.coach_tiers."+string(tier), c.Pricing.CoachTiers[string(tier)])
		if err != nil {
			return services.PricingConfig{}, err
		}
		if i > 0 && rate.UnitRate.GreaterThan(prev) {
			return services.PricingConfig{}, fmt.Errorf("pricing.coach_tiers.%s: rate %s exceeds smaller tier rate %s", tier, rate.UnitRate, prev)
		}
		prev = rate.UnitRate
		out.CoachRates[tier] = rate
	}

	for i, tier := range models.AthleteTiers {
		rate, err := parseTier("pricing.athlete_tiers."+string(tier), c.Pricing.AthleteTiers[string(tier)])
		if err != nil {
			return services.PricingConfig{}, err
		}
		if i > 0 && rate.UnitRate.GreaterThan(prev) {
			return services.PricingConfig{}, fmt.Errorf("pricing.athlete_tiers.%s: rate %s exceeds smaller tier rate %s", tier, rate.UnitRate, prev)
		}
		prev = rate.UnitRate
		out.AthleteRates[tier] = rate
	}

	return out, nil
}

func parseTier(field string, tc TierConfig) (services.TierRate, error) {
	rate, err := parseAmount(field+".rate", tc.Rate)
	if err != nil {
		return services.TierRate{}, err
	}
	if tc.Count <= 0 {
		return services.TierRate{}, fmt.Errorf("%s.count must be positive, got %d", field, tc.Count)
	}
	return services.TierRate{UnitRate: rate, RepresentativeCount: tc.Count}, nil
}

func parseAmount(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %q is not a decimal amount: %w", field, value, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s must be positive, got %s", field, d)
	}
	return d, nil
}
