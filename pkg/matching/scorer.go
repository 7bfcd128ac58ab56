package matching

import (
	"math"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalize"
)

// Scorer computes the match score between one sale row and one candidate
// household.
type Scorer struct {
	config EngineConfig
}

// NewScorer creates a new scorer
func NewScorer(config EngineConfig) *Scorer {
	return &Scorer{config: config}
}

// Score evaluates a candidate household against a sale row. Quote-derived
// points (product type, premium, quote date) are taken from the single best
// quote on the household; staff points are added when the household's assigned
// staff member is the same person the row's producer resolved to.
func (s *Scorer) Score(row models.SaleRow, household models.Household, resolvedStaffID string) models.MatchCandidate {
	candidate := models.MatchCandidate{
		HouseholdID:    household.ID,
		FirstName:      household.FirstName,
		LastName:       household.LastName,
		Zip:            household.Zip,
		LeadSourceName: household.LeadSourceName,
	}

	bestScore := 0
	var bestQuoteID string
	var bestFactors []string

	saleProduct := normalize.ProductType(row.ProductType)

	for _, quote := range household.Quotes {
		score := 0
		var factors []string

		if saleProduct != "" && normalize.ProductType(quote.ProductType) == saleProduct {
			score += s.config.ProductTypeWeight
			factors = append(factors, models.MatchFactorProductType)
		}

		if premiumWithinTolerance(row.PremiumCents, quote.PremiumCents, s.config.PremiumTolerance) {
			score += s.config.PremiumWeight
			factors = append(factors, models.MatchFactorPremiumClose)
		}

		if !quote.QuoteDate.After(row.SaleDate) {
			score += s.config.QuoteDateWeight
			factors = append(factors, models.MatchFactorQuoteOrdered)
		}

		if score > bestScore || bestQuoteID == "" {
			bestScore = score
			bestQuoteID = quote.ID
			bestFactors = factors
		}
	}

	candidate.Score = bestScore
	candidate.Factors = bestFactors
	if bestQuoteID != "" {
		id := bestQuoteID
		candidate.BestQuoteID = &id
	}

	if resolvedStaffID != "" && household.StaffID != nil && *household.StaffID == resolvedStaffID {
		candidate.Score += s.config.StaffWeight
		candidate.Factors = append(candidate.Factors, models.MatchFactorStaffMatch)
	}

	return candidate
}

// premiumWithinTolerance reports whether the quoted premium is within the
// relative tolerance of the sale premium. A missing premium on either side
// never scores.
func premiumWithinTolerance(saleCents, quoteCents int64, tolerance float64) bool {
	if saleCents <= 0 || quoteCents <= 0 {
		return false
	}
	diff := math.Abs(float64(saleCents) - float64(quoteCents))
	return diff/float64(saleCents) <= tolerance
}
