package domain

import (
	"strconv"
	"strings"

	"bracket-bff/pkg/errors"
)

// ScoreTally maps every participant of a tournament to its submitted score,
// in the tournament's stored participant order.
type ScoreTally struct {
	order   []ProviderID
	scores  map[ProviderID]int
	entries []int
}

// NewPositionalTally pairs scores[i] with participants[i]. The lengths must match.
func NewPositionalTally(participants []Participant, scores []int) (*ScoreTally, error) {
	if len(scores) == 0 {
		return nil, errors.NewValidationError("Scores must be provided", nil)
	}
	if len(participants) == 0 {
		return nil, errors.NewValidationError("Tournament has no participants", nil)
	}
	if len(scores) != len(participants) {
		return nil, errors.NewValidationError("Score count does not match participant count", map[string]interface{}{
			"scores":       len(scores),
			"participants": len(participants),
		})
	}

	tally := &ScoreTally{
		order:  make([]ProviderID, 0, len(participants)),
		scores: make(map[ProviderID]int, len(participants)),
	}
	for i, p := range participants {
		if scores[i] < 0 {
			return nil, errors.NewValidationError("Scores must be non-negative", map[string]interface{}{
				"position": i,
				"score":    scores[i],
			})
		}
		tally.add(p.ID, scores[i])
	}
	return tally, nil
}

// NewKeyedTally takes scores keyed by participant ID. Every participant must be
// present and no unknown IDs are allowed.
func NewKeyedTally(participants []Participant, scores map[ProviderID]int) (*ScoreTally, error) {
	if len(scores) == 0 {
		return nil, errors.NewValidationError("Scores must be provided", nil)
	}
	if len(participants) == 0 {
		return nil, errors.NewValidationError("Tournament has no participants", nil)
	}

	tally := &ScoreTally{
		order:  make([]ProviderID, 0, len(participants)),
		scores: make(map[ProviderID]int, len(participants)),
	}

	var missing []string
	for _, p := range participants {
		if _, seen := tally.scores[p.ID]; seen {
			continue
		}
		score, ok := scores[p.ID]
		if !ok {
			missing = append(missing, p.ID.String())
			continue
		}
		if score < 0 {
			return nil, errors.NewValidationError("Scores must be non-negative", map[string]interface{}{
				"participant_id": p.ID.String(),
				"score":          score,
			})
		}
		tally.add(p.ID, score)
	}
	if len(missing) > 0 {
		return nil, errors.NewValidationError("Missing score for participants", map[string]interface{}{
			"missing": missing,
		})
	}

	if len(scores) != len(tally.order) {
		var unknown []string
		for id := range scores {
			if _, ok := tally.scores[id]; !ok {
				unknown = append(unknown, id.String())
			}
		}
		return nil, errors.NewValidationError("Scores reference unknown participants", map[string]interface{}{
			"unknown": unknown,
		})
	}
	return tally, nil
}

// add accumulates totals per participant, so a roster listing one ID twice sums both positions
func (t *ScoreTally) add(id ProviderID, score int) {
	if _, seen := t.scores[id]; !seen {
		t.order = append(t.order, id)
	}
	t.scores[id] += score
	t.entries = append(t.entries, score)
}

// Score returns the score recorded for a participant
func (t *ScoreTally) Score(id ProviderID) (int, bool) {
	s, ok := t.scores[id]
	return s, ok
}

// ScoresCSV renders the submitted scores as "s1-s2-...-sn" in participant order
func (t *ScoreTally) ScoresCSV() string {
	parts := make([]string, len(t.entries))
	for i, score := range t.entries {
		parts[i] = strconv.Itoa(score)
	}
	return strings.Join(parts, "-")
}

// Winner returns the first participant in stored order whose score reaches threshold.
// A later participant with a higher score does not take precedence.
func (t *ScoreTally) Winner(threshold int) (ProviderID, bool) {
	if threshold <= 0 {
		threshold = DefaultRequireScoreToWin
	}
	for _, id := range t.order {
		if t.scores[id] >= threshold {
			return id, true
		}
	}
	return "", false
}
