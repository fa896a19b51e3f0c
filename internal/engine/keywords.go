package engine

import "strings"

// Keyword weight tables for location risk analysis. The three tables are
// disjoint; a table entry contributes its weight at most once per route
// regardless of how often the substring repeats.
//
// Weights are heuristic, carried over from the historical scoring revisions.
var (
	highRiskKeywords = map[string]int{
		"flood":       40,
		"waterlogged": 40,
		"underpass":   35,
		"subway":      35,
		"inundated":   35,
		"tunnel":      30,
		"low-lying":   30,
		"lowland":     30,
		"depression":  25,
		"river":       25,
		"riverview":   25,
		"riverside":   25,
		"canal":       25,
		"nallah":      25,
		"drain":       20,
		"lake":        20,
		"pond":        20,
		"wetland":     20,
		"valley":      20,
		"basin":       20,
		"dell":        15,
	}

	moderateRiskKeywords = map[string]int{
		"bridge":    15,
		"crossing":  12,
		"market":    12,
		"congested": 12,
		"junction":  10,
		"station":   10,
		"narrow":    10,
		"old":       8,
		"bypass":    -5,
	}

	safetyKeywords = map[string]int{
		"expressway": -30,
		"flyover":    -25,
		"hill":       -25,
		"skyway":     -25,
		"elevated":   -20,
		"metro":      -20,
		"ridge":      -20,
		"overpass":   -20,
		"outer ring": -20,
		"highway":    -15,
		"ring road":  -15,
	}
)

// locationRiskCap bounds the clamped keyword contribution.
const locationRiskCap = 60

// LocationRisk is the outcome of scanning a route's text for flood-relevant
// keywords.
type LocationRisk struct {
	// Score is the clamped weight sum, in [0, 60].
	Score int
	// HighRiskCount is the number of high-risk table entries that matched,
	// used by the alternative-route advisor.
	HighRiskCount int
}

// AnalyzeLocation scans the lower-cased route text for keyword matches across
// all three tables and returns the bounded location-risk contribution. The
// reduction is pure, order-independent, and case-sensitive only in that the
// caller must supply lower-cased text.
func AnalyzeLocation(routeText string) LocationRisk {
	sum := 0
	highCount := 0

	for kw, w := range highRiskKeywords {
		if containsKeyword(routeText, kw) {
			sum += w
			highCount++
		}
	}
	for kw, w := range moderateRiskKeywords {
		if containsKeyword(routeText, kw) {
			sum += w
		}
	}
	for kw, w := range safetyKeywords {
		if containsKeyword(routeText, kw) {
			sum += w
		}
	}

	if sum < 0 {
		sum = 0
	}
	if sum > locationRiskCap {
		sum = locationRiskCap
	}

	return LocationRisk{Score: sum, HighRiskCount: highCount}
}

// containsKeyword reports whether kw occurs as a substring of text.
// Matching is plain substring, no word boundaries.
func containsKeyword(text, kw string) bool {
	return strings.Contains(text, kw)
}
