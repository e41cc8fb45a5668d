package services

import (
	"github.com/livefire2015/ez-club-ledger/src/models"
	"github.com/shopspring/decimal"
)

// TierRate is the pricing of one capacity bracket
type TierRate struct {
	UnitRate            decimal.Decimal
	RepresentativeCount int // Billed headcount when none is declared
}

// PricingConfig holds the platform subscription price list
type PricingConfig struct {
	BaseFee      decimal.Decimal
	CoachRates   map[models.CoachTier]TierRate
	AthleteRates map[models.AthleteTier]TierRate
}

// DefaultPricingConfig returns the standard price list.
// Open-ended tiers are billed at a flat representative headcount, not metered.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		BaseFee: decimal.NewFromInt(20000),
		CoachRates: map[models.CoachTier]TierRate{
			models.CoachTierUpTo5:      {UnitRate: decimal.NewFromInt(20000), RepresentativeCount: 5},
			models.CoachTier6To10:      {UnitRate: decimal.NewFromInt(18500), RepresentativeCount: 10},
			models.CoachTierMoreThan10: {UnitRate: decimal.NewFromInt(17500), RepresentativeCount: 12},
		},
		AthleteRates: map[models.AthleteTier]TierRate{
			models.AthleteTierUpTo15:      {UnitRate: decimal.NewFromInt(3500), RepresentativeCount: 15},
			models.AthleteTier16To50:      {UnitRate: decimal.NewFromInt(3250), RepresentativeCount: 50},
			models.AthleteTier51To100:     {UnitRate: decimal.NewFromInt(3000), RepresentativeCount: 100},
			models.AthleteTierMoreThan100: {UnitRate: decimal.NewFromInt(2750), RepresentativeCount: 150},
		},
	}
}

// CoachRate returns the pricing of a coach tier
// Unknown tiers price as the smallest bracket
func (c PricingConfig) CoachRate(tier models.CoachTier) TierRate {
	if rate, ok := c.CoachRates[tier]; ok {
		return rate
	}
	return c.CoachRates[models.CoachTierUpTo5]
}

// AthleteRate returns the pricing of an athlete tier
// Unknown tiers price as the smallest bracket
func (c PricingConfig) AthleteRate(tier models.AthleteTier) TierRate {
	if rate, ok := c.AthleteRates[tier]; ok {
		return rate
	}
	return c.AthleteRates[models.AthleteTierUpTo15]
}

// PackageQuote is the priced capacity package of a tenant
type PackageQuote struct {
	CoachCount      int             `json:"coach_count"`
	CoachUnitRate   decimal.Decimal `json:"coach_unit_rate"`
	CoachAmount     decimal.Decimal `json:"coach_amount"`
	AthleteCount    int             `json:"athlete_count"`
	AthleteUnitRate decimal.Decimal `json:"athlete_unit_rate"`
	AthleteAmount   decimal.Decimal `json:"athlete_amount"`
	Total           decimal.Decimal `json:"total"`
}

// PricePackage prices a capacity package at representative headcounts
func PricePackage(coachTier models.CoachTier, athleteTier models.AthleteTier, cfg PricingConfig) decimal.Decimal {
	return QuotePackage(coachTier, 0, athleteTier, 0, cfg).Total
}

// PriceTenant prices a tenant's package, using declared headcounts for closed tiers
func PriceTenant(tenant models.Tenant, cfg PricingConfig) PackageQuote {
	coachCount, athleteCount := 0, 0
	if tenant.CoachCount != nil && !tenant.CoachCapacityTier.IsOpenEnded() {
		coachCount = *tenant.CoachCount
	}
	if tenant.AthleteCount != nil && !tenant.AthleteCapacityTier.IsOpenEnded() {
		athleteCount = *tenant.AthleteCount
	}
	return QuotePackage(tenant.CoachCapacityTier, coachCount, tenant.AthleteCapacityTier, athleteCount, cfg)
}

// QuotePackage prices a package; a zero count falls back to the tier's representative count
func QuotePackage(
	coachTier models.CoachTier,
	coachCount int,
	athleteTier models.AthleteTier,
	athleteCount int,
	cfg PricingConfig,
) PackageQuote {
	coach := cfg.CoachRate(coachTier)
	athlete := cfg.AthleteRate(athleteTier)

	if coachCount <= 0 {
		coachCount = coach.RepresentativeCount
	}
	if athleteCount <= 0 {
		athleteCount = athlete.RepresentativeCount
	}

	coachAmount := coach.UnitRate.Mul(decimal.NewFromInt(int64(coachCount)))
	athleteAmount := athlete.UnitRate.Mul(decimal.NewFromInt(int64(athleteCount)))

	return PackageQuote{
		CoachCount:      coachCount,
		CoachUnitRate:   coach.UnitRate,
		CoachAmount:     coachAmount,
		AthleteCount:    athleteCount,
		AthleteUnitRate: athlete.UnitRate,
		AthleteAmount:   athleteAmount,
		Total:           coachAmount.Add(athleteAmount),
	}
}
