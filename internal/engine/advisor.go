package engine

import "strings"

// routeHazard is one recognizable hazard category in the route text, paired
// with a concrete detour suggestion.
type routeHazard struct {
	terms  []string
	advice string
}

var routeHazards = []routeHazard{
	{
		terms:  []string{"underpass", "subway", "tunnel"},
		advice: "Avoid the underpass section; take the surface road or flyover running parallel to it.",
	},
	{
		terms:  []string{"river", "canal", "nallah"},
		advice: "Stay away from the waterfront stretch; reroute via the inner arterial roads on higher ground.",
	},
	{
		terms:  []string{"low-lying", "lowland", "depression", "basin"},
		advice: "Skirt the low-lying section; a longer route over elevated roads will drain far better.",
	},
}

// SuggestAlternative proposes a detour for risky routes. Routes scoring 70 or
// above get no suggestion. Below 55 the advice is directive; between 55 and
// 69 it is offered only when the route text carries high-risk keywords.
func SuggestAlternative(routeText string, score int, loc LocationRisk) string {
	if score >= 70 {
		return ""
	}

	lower := strings.ToLower(routeText)
	if score < 55 {
		for _, hz := range routeHazards {
			for _, term := range hz.terms {
				if strings.Contains(lower, term) {
					return hz.advice
				}
			}
		}
		if !strings.Contains(lower, "expressway") && !strings.Contains(lower, "highway") {
			return "Prefer the elevated expressway or outer ring road; both stay passable when surface streets flood."
		}
		return "No safer alternative nearby; if travel cannot wait, drive slowly and avoid standing water."
	}

	if loc.HighRiskCount > 0 {
		return "Consider a detour around the flood-prone stretch if timing allows."
	}
	return ""
}
