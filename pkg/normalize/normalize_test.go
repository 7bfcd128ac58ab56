package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameTokens(t *testing.T) {
	assert.Equal(t, []string{"JOSE", "GARCIA"}, NameTokens("José García"))
	assert.Equal(t, []string{"MARY", "ANNE", "O", "BRIEN"}, NameTokens("Mary-Anne O'Brien"))
	assert.Equal(t, []string{"BOB"}, NameTokens("  bob  "))
	assert.Empty(t, NameTokens("123"))
	assert.Empty(t, NameTokens(""))
}

func TestName(t *testing.T) {
	assert.Equal(t, "JOSE", Name("José"))
	assert.Equal(t, "MARY ANNE", Name("mary-anne"))
	assert.Equal(t, Name("JOSÉ"), Name("jose"))
}

func TestZip5(t *testing.T) {
	assert.Equal(t, "90210", Zip5("90210"))
	assert.Equal(t, "90210", Zip5("90210-1234"))
	assert.Equal(t, "90210", Zip5(" 90210 "))
	assert.Equal(t, "", Zip5("9021"))
	assert.Equal(t, "", Zip5(""))
	assert.Equal(t, "", Zip5("abcde"))
}

func TestHouseholdKey(t *testing.T) {
	assert.Equal(t, "john-smith-90210", HouseholdKey("John", "Smith", "90210"))
	assert.Equal(t, "john-smith-90210", HouseholdKey(" JOHN ", "smith", "90210-1234"))

	// Zip variants beyond the first five digits collapse to the same key.
	assert.Equal(t,
		HouseholdKey("John", "Smith", "90210"),
		HouseholdKey("John", "Smith", "90210-9999"),
	)

	// A short zip still yields a stable (if empty-suffixed) key.
	assert.Equal(t, "jane-doe-", HouseholdKey("Jane", "Doe", "123"))
}

func TestProductType(t *testing.T) {
	assert.Equal(t, "HOME", ProductType("HO3"))
	assert.Equal(t, "HOME", ProductType("ho-3"))
	assert.Equal(t, "HOME", ProductType("Homeowners"))
	assert.Equal(t, "AUTO", ProductType("pa"))
	assert.Equal(t, "RENTERS", ProductType("HO4"))
	assert.Equal(t, "CONDO", ProductType("HO6"))
	assert.Equal(t, "UMBRELLA", ProductType("PUP"))
	assert.Equal(t, "LIFE", ProductType("term life"))
	assert.Equal(t, "RECREATIONAL", ProductType("Boat"))

	// Unknown types pass through uppercased so they still compare.
	assert.Equal(t, "PET", ProductType(" pet "))
}

func TestStripAccents(t *testing.T) {
	assert.Equal(t, "Jose Garcia", StripAccents("José García"))
	assert.Equal(t, "Francois", StripAccents("François"))
	assert.Equal(t, "plain", StripAccents("plain"))
}
