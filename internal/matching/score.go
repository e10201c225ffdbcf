// internal/matching/score.go
package matching

import (
	"fmt"
	"strings"

	"github.com/andeslee444/Project-H-sub007/internal/models"
)

// Axis weights. Every axis matching sums to 100.
const (
	specialtyPoints        = 40
	insurancePoints        = 30
	genericInsurancePoints = 25
	locationExactPoints    = 20
	locationRegionPoints   = 10
	modalityPoints         = 10
	modalityEitherPoints   = 5
)

// Score evaluates one candidate against one set of criteria. Deterministic and
// side-effect-free. Axes are evaluated in a fixed order (specialty, insurance,
// location, modality) and Reasons collects one entry per axis that scored, in
// that order. Eligibility requires both a diagnosis and an insurance match;
// location and modality influence ranking only.
func Score(candidate models.CandidateProfile, criteria models.MatchCriteria) models.MatchResult {
	result := models.MatchResult{Reasons: []string{}}

	if points, reason := scoreSpecialty(candidate.Specialties, criteria.Diagnoses); points > 0 {
		result.Score += points
		result.MatchesDiagnosis = true
		result.Reasons = append(result.Reasons, reason)
	}

	if points, reason := scoreInsurance(candidate.AcceptedInsurance, criteria.Insurance); points > 0 {
		result.Score += points
		result.MatchesInsurance = true
		result.Reasons = append(result.Reasons, reason)
	}

	if points, reason := scoreLocation(candidate.Location, criteria.Location); points > 0 {
		result.Score += points
		result.Reasons = append(result.Reasons, reason)
	}

	if points, reason := scoreModality(candidate, criteria.Modality); points > 0 {
		result.Score += points
		result.Reasons = append(result.Reasons, reason)
	}

	result.Matches = result.MatchesDiagnosis && result.MatchesInsurance
	return result
}

// scoreSpecialty scans diagnoses in order; the first one satisfied by any
// candidate specialty wins the full axis. Scores are never summed across
// diagnoses.
func scoreSpecialty(specialties, diagnoses []string) (int, string) {
	if len(diagnoses) == 0 || len(specialties) == 0 {
		return 0, ""
	}

	for _, diagnosis := range diagnoses {
		for _, term := range synonymsFor(diagnosis) {
			for _, specialty := range specialties {
				if labelsOverlap(specialty, term) {
					return specialtyPoints, fmt.Sprintf("Specializes in %s", diagnosis)
				}
			}
		}
	}
	return 0, ""
}

// scoreInsurance applies the first matching rule: direct label match, the
// generic "accepts most insurance" sentinel, then the carrier alias table.
func scoreInsurance(accepted []string, insurance string) (int, string) {
	if insurance == "" || len(accepted) == 0 {
		return 0, ""
	}

	for _, label := range accepted {
		if labelsOverlap(label, insurance) {
			return insurancePoints, fmt.Sprintf("Accepts %s", insurance)
		}
	}

	for _, label := range accepted {
		if isGenericInsurance(label) {
			return genericInsurancePoints, "Accepts most insurance plans"
		}
	}

	for _, alias := range aliasesFor(insurance) {
		for _, label := range accepted {
			if labelsOverlap(label, alias) {
				return insurancePoints, fmt.Sprintf("Accepts %s", insurance)
			}
		}
	}

	return 0, ""
}

// scoreLocation only applies when both sides provide a location. Exact or
// substring match earns full credit; a shared broader region earns partial.
func scoreLocation(candidateLoc, criteriaLoc string) (int, string) {
	if candidateLoc == "" || criteriaLoc == "" {
		return 0, ""
	}

	if labelsOverlap(candidateLoc, criteriaLoc) {
		return locationExactPoints, fmt.Sprintf("Located near %s", criteriaLoc)
	}

	if region := regionOf(criteriaLoc); region != "" && region == regionOf(candidateLoc) {
		return locationRegionPoints, fmt.Sprintf("Serves the %s area", region)
	}

	return 0, ""
}

func scoreModality(candidate models.CandidateProfile, modality string) (int, string) {
	switch modality {
	case models.ModalityVirtual:
		if candidate.Virtual {
			return modalityPoints, "Offers virtual sessions"
		}
	case models.ModalityInPerson:
		if candidate.InPerson {
			return modalityPoints, "Offers in-person sessions"
		}
	case models.ModalityEither:
		if candidate.Virtual || candidate.InPerson {
			return modalityEitherPoints, "Offers flexible session format"
		}
	}
	return 0, ""
}

// labelsOverlap is a case-insensitive match where either label may contain
// the other, matching how free-text profile fields are compared upstream.
func labelsOverlap(a, b string) bool {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

var genericInsuranceMarkers = []string{
	"accepts most",
	"most insurance",
	"most major insurance",
	"major insurance",
}

func isGenericInsurance(label string) bool {
	normalized := normalize(label)
	for _, marker := range genericInsuranceMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}
