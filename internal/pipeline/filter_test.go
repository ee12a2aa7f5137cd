package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobscout/internal/models"
)

func TestFilterListings(t *testing.T) {
	listings := []models.ExtractedListing{
		{Company: "Globex", Title: "Platform Engineer", Description: "Build infrastructure"},
		{Company: "Acme Corp", Title: "Platform Engineer", Description: "Build rockets"},
		{Company: "Initech", Title: "Senior Unpaid Intern", Description: "TPS reports"},
		{Company: "Hooli", Title: "Backend Engineer", Description: "This is a commission-only role"},
	}

	kept := FilterListings(listings, []string{"acme"}, []string{"unpaid", "commission-only"})

	assert.Len(t, kept, 1)
	assert.Equal(t, "Globex", kept[0].Company)
}

func TestFilterListingsCaseInsensitive(t *testing.T) {
	listings := []models.ExtractedListing{
		{Company: "ACME Corp", Title: "Engineer"},
		{Company: "Globex", Title: "UNPAID internship"},
	}

	kept := FilterListings(listings, []string{"Acme"}, []string{"unpaid"})

	assert.Empty(t, kept)
}

func TestFilterListingsNoRulesPassesEverything(t *testing.T) {
	listings := []models.ExtractedListing{
		{Company: "Globex", Title: "Engineer"},
		{Company: "Initech", Title: "Engineer"},
	}

	kept := FilterListings(listings, nil, nil)

	assert.Equal(t, listings, kept)
}

func TestFilterListingsIgnoresBlankRules(t *testing.T) {
	listings := []models.ExtractedListing{
		{Company: "Globex", Title: "Engineer"},
	}

	// Blank entries would otherwise substring-match everything.
	kept := FilterListings(listings, []string{"", "  "}, []string{""})

	assert.Len(t, kept, 1)
}
