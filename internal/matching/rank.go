// internal/matching/rank.go
package matching

import (
	"sort"

	"github.com/andeslee444/Project-H-sub007/internal/models"
)

// HandRaiseReason is prepended when a hand-raise boost applies.
const HandRaiseReason = "Patient requested provider"

// DefaultHandRaiseBoost is the flat score boost for an explicit provider request.
const DefaultHandRaiseBoost = 20

// Ranker orders waitlist entries against a candidate profile.
type Ranker struct {
	boost int
}

func NewRanker(handRaiseBoost int) *Ranker {
	if handRaiseBoost <= 0 {
		handRaiseBoost = DefaultHandRaiseBoost
	}
	return &Ranker{boost: handRaiseBoost}
}

// Rank scores every entry against the candidate and returns them ordered by
// final score descending, ties broken by earliest CreatedAt, then entry ID.
// Non-matching entries are kept; callers decide whether to filter on Matches.
func (r *Ranker) Rank(entries []models.WaitlistEntry, candidate models.CandidateProfile) []models.RankedEntry {
	ranked := make([]models.RankedEntry, 0, len(entries))

	for _, entry := range entries {
		result := Score(candidate, entry.Criteria)

		score := result.Score
		reasons := result.Reasons
		if r.boostApplies(entry, candidate) {
			score += r.boost
			reasons = append([]string{HandRaiseReason}, reasons...)
		}

		ranked = append(ranked, models.RankedEntry{
			Entry:   entry,
			Score:   score,
			Matches: result.Matches,
			Reasons: reasons,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if !ranked[i].Entry.CreatedAt.Equal(ranked[j].Entry.CreatedAt) {
			return ranked[i].Entry.CreatedAt.Before(ranked[j].Entry.CreatedAt)
		}
		return ranked[i].Entry.ID < ranked[j].Entry.ID
	})

	return ranked
}

// boostApplies: a hand raise targets a specific provider; the boost only
// counts when the entry has no provider pinned or the pinned provider is the
// candidate being ranked.
func (r *Ranker) boostApplies(entry models.WaitlistEntry, candidate models.CandidateProfile) bool {
	if !entry.HandRaised {
		return false
	}
	return entry.ProviderID == "" || entry.ProviderID == candidate.ID
}
