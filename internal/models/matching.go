// internal/models/matching.go
package models

// Modality preference values for MatchCriteria.
const (
	ModalityVirtual  = "virtual"
	ModalityInPerson = "in-person"
	ModalityEither   = "either"
)

// MatchCriteria describes what a patient is looking for. Immutable per evaluation.
type MatchCriteria struct {
	Diagnoses        []string `json:"diagnoses"`
	Insurance        string   `json:"insurance,omitempty"`
	Location         string   `json:"location,omitempty"`
	Modality         string   `json:"modality,omitempty"` // "virtual", "in-person", "either"
	GenderPreference string   `json:"genderPreference,omitempty"`
}

// CandidateProfile describes a provider being scored against criteria.
type CandidateProfile struct {
	ID                string   `json:"id"`
	Name              string   `json:"name,omitempty"`
	Specialties       []string `json:"specialties"`
	AcceptedInsurance []string `json:"acceptedInsurance"`
	Location          string   `json:"location,omitempty"`
	Virtual           bool     `json:"virtualAvailable"`
	InPerson          bool     `json:"inPersonAvailable"`
	Gender            string   `json:"gender,omitempty"`
}

// MatchResult is the outcome of scoring one candidate against one set of criteria.
// Matches is true only when both the diagnosis and insurance axes matched; location
// and modality contribute to Score but never to eligibility.
type MatchResult struct {
	Matches          bool     `json:"matches"`
	Score            int      `json:"score"`
	MatchesDiagnosis bool     `json:"matchesDiagnosis"`
	MatchesInsurance bool     `json:"matchesInsurance"`
	Reasons          []string `json:"reasons"`
}

// ProviderSlot is an opening that triggers waitlist matching.
type ProviderSlot struct {
	ProviderID   string `json:"providerId"`
	ProviderName string `json:"providerName"`
	StartTime    string `json:"startTime"` // ISO 8601
	Virtual      bool   `json:"virtual"`
	Location     string `json:"location,omitempty"`
}
