package models

// Scoring factors recorded on a MatchCandidate for audit/debugging.
const (
	MatchFactorProductType  = "product_type"
	MatchFactorPremiumClose = "premium_within_tolerance"
	MatchFactorQuoteOrdered = "quote_before_sale"
	MatchFactorStaffMatch   = "staff_match"
)

// MatchCandidate is the scored output of comparing one sale row against one
// candidate household. It is transient: candidates only outlive resolution of
// a single row group when carried on a PendingSaleReview.
type MatchCandidate struct {
	HouseholdID    string   `json:"household_id"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Zip            string   `json:"zip"`
	LeadSourceName *string  `json:"lead_source_name,omitempty"`
	BestQuoteID    *string  `json:"best_quote_id,omitempty"`
	Score          int      `json:"score"`
	Factors        []string `json:"factors,omitempty"`
}

// MatchReason explains how the decision policy disposed of a candidate set.
type MatchReason string

const (
	MatchReasonPolicyNumber    MatchReason = "policy_number"
	MatchReasonNaturalKey      MatchReason = "natural_key"
	MatchReasonNoCandidates    MatchReason = "no_candidates"
	MatchReasonSingleCandidate MatchReason = "single_candidate"
	MatchReasonScoreLead       MatchReason = "score_lead"
	MatchReasonBelowThreshold  MatchReason = "below_threshold"
	MatchReasonAmbiguous       MatchReason = "ambiguous"
)

// MatchDecision is the outcome of applying the decision policy to a sorted
// candidate list. Matched is nil when the row must go to manual review or when
// there were no candidates at all; Review carries the candidates a human
// adjudicator should see.
type MatchDecision struct {
	Matched *MatchCandidate  `json:"matched,omitempty"`
	Reason  MatchReason      `json:"reason"`
	Review  []MatchCandidate `json:"review,omitempty"`
}
