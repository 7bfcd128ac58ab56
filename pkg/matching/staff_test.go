package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/clover/pkg/models"
)

func testRoster() []models.StaffMember {
	return []models.StaffMember{
		{ID: "staff-1", Name: "Robert Jones", Code: "RJ1"},
		{ID: "staff-2", Name: "Maria Garcia Lopez", Code: "MGL"},
		{ID: "staff-3", Name: "Sam Lee", Code: ""},
	}
}

func TestResolve_CodeMatchIsCaseInsensitive(t *testing.T) {
	matcher := NewStaffMatcher(DefaultConfig())

	row := models.SaleRow{SubProducerCode: "rj1"}
	assert.Equal(t, "staff-1", matcher.Resolve(row, testRoster()))
}

func TestResolve_CodeBeatsName(t *testing.T) {
	matcher := NewStaffMatcher(DefaultConfig())

	// Code points at one member, name at another: code wins.
	row := models.SaleRow{SubProducerCode: "MGL", SubProducerName: "Robert Jones"}
	assert.Equal(t, "staff-2", matcher.Resolve(row, testRoster()))
}

func TestResolve_UnknownCodeDoesNotFallBackToName(t *testing.T) {
	matcher := NewStaffMatcher(DefaultConfig())

	// A code that matches nobody is a dead end even when the name would hit.
	row := models.SaleRow{SubProducerCode: "ZZ9", SubProducerName: "Robert Jones"}
	assert.Equal(t, "", matcher.Resolve(row, testRoster()))
}

func TestResolve_NameTokenOverlap(t *testing.T) {
	matcher := NewStaffMatcher(DefaultConfig())

	row := models.SaleRow{SubProducerName: "Jones, Robert"}
	assert.Equal(t, "staff-1", matcher.Resolve(row, testRoster()))
}

func TestResolve_AccentsAndPartialTokens(t *testing.T) {
	matcher := NewStaffMatcher(DefaultConfig())

	row := models.SaleRow{SubProducerName: "María García"}
	assert.Equal(t, "staff-2", matcher.Resolve(row, testRoster()))
}

func TestResolve_SingleTokenIsNotEnough(t *testing.T) {
	matcher := NewStaffMatcher(DefaultConfig())

	// One matching token misses the two-token minimum.
	row := models.SaleRow{SubProducerName: "Robert"}
	assert.Equal(t, "", matcher.Resolve(row, testRoster()))
}

func TestResolve_BelowFractionThreshold(t *testing.T) {
	matcher := NewStaffMatcher(DefaultConfig())

	// Two of five tokens match: under the 50% threshold.
	row := models.SaleRow{SubProducerName: "Robert Jones Agency Of Georgia"}
	assert.Equal(t, "", matcher.Resolve(row, testRoster()))
}

func TestResolve_NoIdentifiers(t *testing.T) {
	matcher := NewStaffMatcher(DefaultConfig())

	assert.Equal(t, "", matcher.Resolve(models.SaleRow{}, testRoster()))
	assert.Equal(t, "", matcher.Resolve(models.SaleRow{SubProducerName: "Robert Jones"}, nil))
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "RJ1", Identifier(models.SaleRow{SubProducerCode: "RJ1", SubProducerName: "Robert Jones"}))
	assert.Equal(t, "Robert Jones", Identifier(models.SaleRow{SubProducerName: " Robert Jones "}))
	assert.Equal(t, "", Identifier(models.SaleRow{}))
}
