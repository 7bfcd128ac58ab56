// Package matching implements the household match scoring and decision policy
// applied to incoming sale rows.
package matching

// EngineConfig contains configuration for the match engine
type EngineConfig struct {
	ProductTypeWeight    int     // Points for a quote on the same product type (default: 40)
	PremiumWeight        int     // Points for a quoted premium within tolerance of the sale (default: 25)
	QuoteDateWeight      int     // Points when the quote predates the sale (default: 10)
	StaffWeight          int     // Points when the household's assigned staff matches the row's producer (default: 35)
	PremiumTolerance     float64 // Relative premium difference considered "close" (default: 0.10)
	MinAutoMatchScore    int     // Top score below which every multi-candidate group goes to review (default: 75)
	AutoMatchGap         int     // Lead over the runner-up required to auto-match (default: 20)
	ReviewCandidateLimit int     // Candidates carried onto a pending review (default: 5)
	StaffTokenThreshold  float64 // Fraction of row name tokens that must match a roster name (default: 0.5)
	StaffMinTokenMatches int     // Minimum matching tokens regardless of fraction (default: 2)
}

// DefaultConfig returns default engine configuration
func DefaultConfig() EngineConfig {
	return EngineConfig{
		ProductTypeWeight:    40,
		PremiumWeight:        25,
		QuoteDateWeight:      10,
		StaffWeight:          35,
		PremiumTolerance:     0.10,
		MinAutoMatchScore:    75,
		AutoMatchGap:         20,
		ReviewCandidateLimit: 5,
		StaffTokenThreshold:  0.5,
		StaffMinTokenMatches: 2,
	}
}
