package matching

import (
	"strings"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalize"
)

// StaffMatcher resolves a sale row's raw producer identifier against an
// agency's staff roster.
type StaffMatcher struct {
	config EngineConfig
}

// NewStaffMatcher creates a new staff matcher
func NewStaffMatcher(config EngineConfig) *StaffMatcher {
	return &StaffMatcher{config: config}
}

// Resolve returns the roster staff ID the row's producer refers to, or ""
// when no roster member qualifies. A sub-producer code matches by exact
// case-insensitive equality and is authoritative: a code that matches nobody
// leaves the row unmatched rather than guessing by name. Rows without a code
// match the producer name by token overlap against each roster name.
func (m *StaffMatcher) Resolve(row models.SaleRow, roster []models.StaffMember) string {
	if code := strings.TrimSpace(row.SubProducerCode); code != "" {
		for _, staff := range roster {
			if staff.Code != "" && strings.EqualFold(staff.Code, code) {
				return staff.ID
			}
		}
		return ""
	}

	rowTokens := normalize.NameTokens(row.SubProducerName)
	if len(rowTokens) == 0 {
		return ""
	}

	bestID := ""
	bestMatched := 0

	for _, staff := range roster {
		staffTokens := normalize.NameTokens(staff.Name)
		matched := overlap(rowTokens, staffTokens)

		if matched < m.config.StaffMinTokenMatches {
			continue
		}
		if float64(matched)/float64(len(rowTokens)) < m.config.StaffTokenThreshold {
			continue
		}
		if matched > bestMatched {
			bestMatched = matched
			bestID = staff.ID
		}
	}

	return bestID
}

// Identifier returns the raw producer identifier from a row, preferring the
// code. Used to report unmatched producers.
func Identifier(row models.SaleRow) string {
	if code := strings.TrimSpace(row.SubProducerCode); code != "" {
		return code
	}
	return strings.TrimSpace(row.SubProducerName)
}

// overlap counts row tokens that match any staff token. Tokens match when one
// contains the other, so "ROB" pairs with "ROBERT" and initials still count.
func overlap(rowTokens, staffTokens []string) int {
	matched := 0
	for _, rt := range rowTokens {
		for _, st := range staffTokens {
			if strings.Contains(st, rt) || strings.Contains(rt, st) {
				matched++
				break
			}
		}
	}
	return matched
}
