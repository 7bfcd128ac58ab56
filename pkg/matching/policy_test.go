package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func candidatesWithScores(scores ...int) []models.MatchCandidate {
	out := make([]models.MatchCandidate, 0, len(scores))
	for i, score := range scores {
		out = append(out, models.MatchCandidate{
			HouseholdID: string(rune('a' + i)),
			Score:       score,
		})
	}
	return out
}

func TestDecide_NoCandidates(t *testing.T) {
	policy := NewPolicy(DefaultConfig())

	decision := policy.Decide(nil)
	assert.Equal(t, models.MatchReasonNoCandidates, decision.Reason)
	assert.Nil(t, decision.Matched)
	assert.Empty(t, decision.Review)
}

func TestDecide_SingleCandidateAlwaysMatches(t *testing.T) {
	policy := NewPolicy(DefaultConfig())

	// A lone candidate matches even at score zero.
	decision := policy.Decide(candidatesWithScores(0))
	require.NotNil(t, decision.Matched)
	assert.Equal(t, models.MatchReasonSingleCandidate, decision.Reason)
}

func TestDecide_ClearLeadMatches(t *testing.T) {
	policy := NewPolicy(DefaultConfig())

	// 75 vs 55: at the floor with exactly the required gap.
	decision := policy.Decide(candidatesWithScores(55, 75))
	require.NotNil(t, decision.Matched)
	assert.Equal(t, models.MatchReasonScoreLead, decision.Reason)
	assert.Equal(t, 75, decision.Matched.Score)
}

func TestDecide_BelowFloorGoesToReview(t *testing.T) {
	policy := NewPolicy(DefaultConfig())

	// 74 tops the set but misses the auto-match floor.
	decision := policy.Decide(candidatesWithScores(74, 10))
	assert.Nil(t, decision.Matched)
	assert.Equal(t, models.MatchReasonBelowThreshold, decision.Reason)
	require.Len(t, decision.Review, 2)
	assert.Equal(t, 74, decision.Review[0].Score)
}

func TestDecide_NarrowGapIsAmbiguous(t *testing.T) {
	policy := NewPolicy(DefaultConfig())

	// 75 vs 56: above the floor but a 19-point lead is not decisive.
	decision := policy.Decide(candidatesWithScores(75, 56))
	assert.Nil(t, decision.Matched)
	assert.Equal(t, models.MatchReasonAmbiguous, decision.Reason)
	require.Len(t, decision.Review, 2)
	assert.Equal(t, 75, decision.Review[0].Score)
	assert.Equal(t, 56, decision.Review[1].Score)
}

func TestDecide_ReviewCandidatesAreCapped(t *testing.T) {
	policy := NewPolicy(DefaultConfig())

	decision := policy.Decide(candidatesWithScores(80, 79, 78, 77, 76, 75, 74))
	assert.Equal(t, models.MatchReasonAmbiguous, decision.Reason)
	require.Len(t, decision.Review, 5)
	assert.Equal(t, 80, decision.Review[0].Score)
	assert.Equal(t, 76, decision.Review[4].Score)
}

func TestDecide_DoesNotMutateInput(t *testing.T) {
	policy := NewPolicy(DefaultConfig())

	candidates := candidatesWithScores(10, 90, 50)
	_ = policy.Decide(candidates)

	assert.Equal(t, 10, candidates[0].Score)
	assert.Equal(t, 90, candidates[1].Score)
	assert.Equal(t, 50, candidates[2].Score)
}
