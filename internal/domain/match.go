package domain

import "time"

// Match states reported by the bracket provider
const (
	MatchStatePending  = "pending"
	MatchStateOpen     = "open"
	MatchStateComplete = "complete"
)

// WinnerVoteBonus is added to the winning side's vote counter when a match is decided
const WinnerVoteBonus = 5

// Match is owned by the bracket provider and never persisted locally
type Match struct {
	ID           ProviderID `json:"id"`
	TournamentID ProviderID `json:"tournament_id"`
	State        string     `json:"state"`
	Round        int        `json:"round"`
	Identifier   string     `json:"identifier,omitempty"`
	Player1ID    ProviderID `json:"player1_id"`
	Player2ID    ProviderID `json:"player2_id"`
	WinnerID     ProviderID `json:"winner_id"`
	LoserID      ProviderID `json:"loser_id"`
	ScoresCSV    string     `json:"scores_csv"`
	Player1Votes *int       `json:"player1_votes"`
	Player2Votes *int       `json:"player2_votes"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// IsComplete reports whether the provider already closed the match
func (m *Match) IsComplete() bool {
	return m.State == MatchStateComplete
}

// MatchUpdate is the write payload for a match
type MatchUpdate struct {
	ScoresCSV    string     `json:"scores_csv"`
	WinnerID     ProviderID `json:"winner_id,omitempty"`
	Player1Votes *int       `json:"player1_votes,omitempty"`
	Player2Votes *int       `json:"player2_votes,omitempty"`
}

// WinnerUpdate builds the closing write for m. The winning side gets its prior
// votes (null counts as zero) plus the bonus and the other side is reset to zero.
// A winner that is neither player zeroes both sides.
func (m *Match) WinnerUpdate(winner ProviderID, scoresCSV string) MatchUpdate {
	var p1, p2 int

	switch winner {
	case m.Player1ID:
		p1 = votes(m.Player1Votes) + WinnerVoteBonus
	case m.Player2ID:
		p2 = votes(m.Player2Votes) + WinnerVoteBonus
	}

	return MatchUpdate{
		ScoresCSV:    scoresCSV,
		WinnerID:     winner,
		Player1Votes: &p1,
		Player2Votes: &p2,
	}
}

func votes(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// OutcomeStatus classifies the result of a score submission
type OutcomeStatus string

const (
	OutcomeWon             OutcomeStatus = "won"
	OutcomeInProgress      OutcomeStatus = "in_progress"
	OutcomeAlreadyFinished OutcomeStatus = "already_finished"
)

// MatchOutcome is returned for every accepted score submission
type MatchOutcome struct {
	Status   OutcomeStatus `json:"status"`
	Message  string        `json:"message"`
	Match    *Match        `json:"match"`
	WinnerID ProviderID    `json:"winner_id,omitempty"`
}

// SubmitScoreRequest carries one score submission. Exactly one of Scores or
// ParticipantScores must be set; the keyed form is checked against the roster.
type SubmitScoreRequest struct {
	TournamentID      ProviderID         `json:"tournamentId" validate:"required"`
	MatchID           ProviderID         `json:"matchId" validate:"required"`
	Scores            []int              `json:"scores,omitempty" validate:"required_without=ParticipantScores,omitempty,min=1,dive,gte=0"`
	ParticipantScores map[ProviderID]int `json:"participantScores,omitempty" validate:"required_without=Scores,omitempty,min=1,dive,gte=0"`
}
