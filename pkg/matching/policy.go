package matching

import (
	"sort"

	"github.com/Ramsey-B/clover/pkg/models"
)

// Policy turns a scored candidate set into a match decision.
type Policy struct {
	config EngineConfig
}

// NewPolicy creates a new decision policy
func NewPolicy(config EngineConfig) Policy {
	return Policy{config: config}
}

// Decide applies the decision rules to a candidate set:
//
//   - no candidates: the caller creates a new household
//   - exactly one candidate: auto-match regardless of score
//   - top score below the auto-match floor: manual review
//   - top score leads the runner-up by the configured gap: auto-match
//   - otherwise: ambiguous, manual review
//
// Review decisions carry at most ReviewCandidateLimit candidates, highest
// score first.
func (p Policy) Decide(candidates []models.MatchCandidate) models.MatchDecision {
	if len(candidates) == 0 {
		return models.MatchDecision{Reason: models.MatchReasonNoCandidates}
	}

	sorted := make([]models.MatchCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	if len(sorted) == 1 {
		matched := sorted[0]
		return models.MatchDecision{
			Matched: &matched,
			Reason:  models.MatchReasonSingleCandidate,
		}
	}

	top := sorted[0]
	runnerUp := sorted[1]

	if top.Score < p.config.MinAutoMatchScore {
		return models.MatchDecision{
			Reason: models.MatchReasonBelowThreshold,
			Review: p.trimReview(sorted),
		}
	}

	if top.Score-runnerUp.Score >= p.config.AutoMatchGap {
		matched := top
		return models.MatchDecision{
			Matched: &matched,
			Reason:  models.MatchReasonScoreLead,
		}
	}

	return models.MatchDecision{
		Reason: models.MatchReasonAmbiguous,
		Review: p.trimReview(sorted),
	}
}

func (p Policy) trimReview(sorted []models.MatchCandidate) []models.MatchCandidate {
	limit := p.config.ReviewCandidateLimit
	if limit <= 0 || len(sorted) <= limit {
		return sorted
	}
	return sorted[:limit]
}
