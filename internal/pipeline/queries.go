package pipeline

import (
	"fmt"
	"math/rand"
)

// Fallback pools used when the profile has no target titles or locations.
var DefaultTitles = []string{
	"AI Product Manager", "Technical Product Manager", "AI Platform Manager",
	"AI Solutions Consultant", "Full Stack Developer AI", "LLM Engineer",
	"AI Developer", "Product Lead AI", "Digital Transformation Manager",
	"AI Consultant", "AI Strategist", "Product Owner AI",
	"AI Applications Manager", "Generative AI Product Manager",
}

var DefaultLocations = []string{
	"Riyadh Saudi Arabia", "Dubai UAE", "Abu Dhabi UAE",
	"Calgary Canada", "Toronto Canada", "Vancouver Canada", "Remote",
}

// jobBoardSites are appended as site: filters to the top titles.
var jobBoardSites = []string{
	"site:greenhouse.io", "site:lever.co", "site:wellfound.com", "site:glassdoor.com",
	"site:bayt.com", "site:naukrigulf.com", "site:wuzzuf.com", "site:gulftalent.com",
	"site:workable.com",
}

// companyPool feeds the sampled "careers" queries.
var companyPool = []string{
	"Lucidya", "MOZN", "STC", "Noon", "Careem", "Jahez", "Tamara", "Tabby",
	"Foodics", "Lean Technologies", "Qiddiya", "NEOM", "Elm", "Unifonic",
	"Salla", "Zid", "Talabat", "Binance", "G42", "Presight AI", "Dubizzle",
	"Property Finder", "Bayt", "Kitopi", "Sarwa", "Shopify", "Hootsuite",
	"Benevity", "Vendasta", "Helcim", "Neo Financial", "Koho", "Thinkific",
	"Anthropic", "OpenAI", "Cohere", "Scale AI", "Hugging Face", "Vercel",
	"Supabase", "Replit", "Linear", "Notion", "Zapier",
}

const (
	// Bounded prefixes keep the title × location product reasonable before
	// the overall cap kicks in.
	maxComboTitles    = 8
	maxComboLocations = 8
	maxSiteTitles     = 4
	sampledCompanies  = 20
)

// GenerateQueries turns a profile's titles and locations into a capped list
// of search queries. Priority order: title×location pairs, then job-board
// site filters, then sampled company careers queries; truncation preserves
// this order. Empty inputs fall back to the default pools. rng may be nil.
func GenerateQueries(titles, locations []string, maxQueries int, rng *rand.Rand) []string {
	if len(titles) == 0 {
		titles = DefaultTitles
	}
	if len(locations) == 0 {
		locations = DefaultLocations
	}
	if maxQueries <= 0 {
		maxQueries = 80
	}

	queries := make([]string, 0, maxQueries)

	for _, title := range prefix(titles, maxComboTitles) {
		for _, loc := range prefix(locations, maxComboLocations) {
			queries = append(queries, fmt.Sprintf("%s %s job", title, loc))
		}
	}

	for _, title := range prefix(titles, maxSiteTitles) {
		for _, site := range jobBoardSites {
			queries = append(queries, fmt.Sprintf("%s %s", title, site))
		}
	}

	mainTitle := titles[0]
	for _, company := range sampleCompanies(rng, sampledCompanies) {
		queries = append(queries, fmt.Sprintf("%q careers %s", company, mainTitle))
	}

	if len(queries) > maxQueries {
		queries = queries[:maxQueries]
	}
	return queries
}

func prefix(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func sampleCompanies(rng *rand.Rand, n int) []string {
	shuffled := make([]string, len(companyPool))
	copy(shuffled, companyPool)
	if rng == nil {
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
	} else {
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
	}
	if len(shuffled) > n {
		shuffled = shuffled[:n]
	}
	return shuffled
}
