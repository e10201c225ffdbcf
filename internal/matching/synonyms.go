// internal/matching/synonyms.go
package matching

import "strings"

// synonymGroup ties a canonical condition label to the specialty terms that
// satisfy it. Groups are an explicit ordered list so scans are deterministic.
type synonymGroup struct {
	canonical string
	terms     []string
}

var diagnosisSynonyms = []synonymGroup{
	{"ptsd", []string{"ptsd", "trauma", "emdr", "post-traumatic stress"}},
	{"anxiety", []string{"anxiety", "panic", "gad", "generalized anxiety", "phobia"}},
	{"depression", []string{"depression", "depressive", "mdd", "mood disorder"}},
	{"ocd", []string{"ocd", "obsessive-compulsive", "obsessive compulsive", "erp"}},
	{"adhd", []string{"adhd", "add", "attention deficit"}},
	{"bipolar", []string{"bipolar", "mood disorder"}},
	{"eating disorder", []string{"eating disorder", "anorexia", "bulimia", "binge eating"}},
	{"substance use", []string{"substance", "addiction", "recovery", "chemical dependency"}},
	{"couples", []string{"couples", "marriage", "relationship"}},
	{"grief", []string{"grief", "loss", "bereavement"}},
	{"insomnia", []string{"insomnia", "sleep", "cbt-i"}},
}

// synonymsFor returns every specialty term that satisfies the given diagnosis
// label, always including the label itself.
func synonymsFor(diagnosis string) []string {
	normalized := normalize(diagnosis)
	terms := []string{normalized}
	for _, group := range diagnosisSynonyms {
		if !groupContains(group, normalized) {
			continue
		}
		for _, t := range group.terms {
			if t != normalized {
				terms = append(terms, t)
			}
		}
		break
	}
	return terms
}

func groupContains(group synonymGroup, normalized string) bool {
	if strings.Contains(normalized, group.canonical) || strings.Contains(group.canonical, normalized) {
		return true
	}
	for _, t := range group.terms {
		if t == normalized {
			return true
		}
	}
	return false
}

// carrierAliases groups insurance labels that refer to the same carrier.
var carrierAliases = [][]string{
	{"blue cross blue shield", "bcbs", "blue cross", "blue shield", "anthem"},
	{"united healthcare", "unitedhealthcare", "uhc", "united health", "optum"},
	{"cigna", "evernorth"},
	{"kaiser permanente", "kaiser"},
	{"aetna"},
	{"humana"},
	{"medicare"},
	{"medicaid"},
	{"tricare"},
}

// aliasesFor returns every label that names the same carrier as the given one,
// always including the label itself.
func aliasesFor(carrier string) []string {
	normalized := normalize(carrier)
	aliases := []string{normalized}
	for _, group := range carrierAliases {
		for _, a := range group {
			if a == normalized || strings.Contains(normalized, a) {
				for _, other := range group {
					if other != normalized {
						aliases = append(aliases, other)
					}
				}
				return aliases
			}
		}
	}
	return aliases
}

// regionGroups map location keywords into broader regions for partial credit.
var regionGroups = []struct {
	region   string
	keywords []string
}{
	{"new york metro", []string{"new york", "nyc", "brooklyn", "queens", "manhattan", "bronx", "jersey city"}},
	{"bay area", []string{"san francisco", "oakland", "berkeley", "san jose", "palo alto"}},
	{"los angeles metro", []string{"los angeles", "santa monica", "pasadena", "long beach"}},
	{"chicago metro", []string{"chicago", "evanston", "oak park"}},
	{"dfw metro", []string{"dallas", "fort worth", "arlington", "plano"}},
	{"seattle metro", []string{"seattle", "bellevue", "tacoma"}},
	{"boston metro", []string{"boston", "cambridge", "somerville"}},
	{"dc metro", []string{"washington", "alexandria", "bethesda"}},
}

// regionOf returns the broader region for a free-text location, or "".
func regionOf(location string) string {
	normalized := normalize(location)
	for _, group := range regionGroups {
		for _, kw := range group.keywords {
			if strings.Contains(normalized, kw) {
				return group.region
			}
		}
	}
	return ""
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
