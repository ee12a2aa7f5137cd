package pipeline

import (
	"strings"

	"jobscout/internal/models"
)

// FilterListings removes listings whose company contains an excluded-company
// substring, or whose title+description contains a blacklisted keyword.
// All matching is case-insensitive; listings matching neither rule pass
// through unchanged.
func FilterListings(listings []models.ExtractedListing, excludedCompanies, keywordBlacklist []string) []models.ExtractedListing {
	excluded := lowerAll(excludedCompanies)
	blacklist := lowerAll(keywordBlacklist)

	kept := make([]models.ExtractedListing, 0, len(listings))
	for _, l := range listings {
		if matchesAny(strings.ToLower(l.Company), excluded) {
			continue
		}
		text := strings.ToLower(l.Title + " " + l.Description)
		if matchesAny(text, blacklist) {
			continue
		}
		kept = append(kept, l)
	}
	return kept
}

func lowerAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func matchesAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
