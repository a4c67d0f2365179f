package domain

import (
	"testing"

	"bracket-bff/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTournamentState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to TournamentState
		want     bool
	}{
		{StateToBeStarted, StateOngoing, true},
		{StateOngoing, StateFinished, true},
		{StateToBeStarted, StateFinished, true},
		{StateFinished, StateFinished, true},
		{StateOngoing, StateToBeStarted, false},
		{StateFinished, StateOngoing, false},
		{StateFinished, StateToBeStarted, false},
		{TournamentState("bogus"), StateOngoing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestMapRemoteState(t *testing.T) {
	assert.Equal(t, StateToBeStarted, MapRemoteState("pending"))
	assert.Equal(t, StateOngoing, MapRemoteState("underway"))
	assert.Equal(t, StateOngoing, MapRemoteState("awaiting_review"))
}

func TestParseTournamentState(t *testing.T) {
	state, ok := ParseTournamentState("finished")
	assert.True(t, ok)
	assert.Equal(t, StateFinished, state)

	_, ok = ParseTournamentState("complete")
	assert.False(t, ok)
}

func TestRemoteTournament_ToLocal(t *testing.T) {
	remote := &RemoteTournament{ID: "55", Name: "Cup", State: "pending", TournamentType: "single elimination"}

	local := remote.ToLocal(0)
	assert.Equal(t, ProviderID("55"), local.ID)
	assert.Equal(t, StateToBeStarted, local.State)
	assert.Equal(t, DefaultRequireScoreToWin, local.RequireScoreToWin)
	assert.NotNil(t, local.Participants)
	assert.Nil(t, local.CompletedAt)

	assert.Equal(t, 3, remote.ToLocal(3).RequireScoreToWin)
}

func TestTeam_CheckCanAdd(t *testing.T) {
	team := &Team{UserIDs: []string{"u1", "u2"}}

	assert.NoError(t, team.CheckCanAdd("u3"))
	assert.True(t, errors.IsType(team.CheckCanAdd("u1"), errors.ErrorTypeDuplicateMember))

	full := &Team{UserIDs: []string{"a", "b", "c", "d", "e"}}
	err := full.CheckCanAdd("f")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTeamFull))
	// full takes precedence over duplicate
	assert.True(t, errors.IsType(full.CheckCanAdd("a"), errors.ErrorTypeTeamFull))
}

func TestMatch_WinnerUpdate(t *testing.T) {
	three := 3
	four := 4
	seven := 7

	tests := []struct {
		name   string
		match  Match
		winner ProviderID
		wantP1 int
		wantP2 int
	}{
		{"player1 wins from null", Match{Player1ID: "1", Player2ID: "2"}, "1", 5, 0},
		{"player1 wins resets player2", Match{Player1ID: "1", Player2ID: "2", Player1Votes: &seven, Player2Votes: &four}, "1", 12, 0},
		{"player2 wins resets player1", Match{Player1ID: "1", Player2ID: "2", Player1Votes: &three, Player2Votes: &seven}, "2", 0, 12},
		{"winner not in match zeroes both", Match{Player1ID: "1", Player2ID: "2", Player1Votes: &seven, Player2Votes: &four}, "9", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update := tt.match.WinnerUpdate(tt.winner, "5-3")
			assert.Equal(t, "5-3", update.ScoresCSV)
			assert.Equal(t, tt.winner, update.WinnerID)
			require.NotNil(t, update.Player1Votes)
			require.NotNil(t, update.Player2Votes)
			assert.Equal(t, tt.wantP1, *update.Player1Votes)
			assert.Equal(t, tt.wantP2, *update.Player2Votes)
		})
	}
}

func TestRankScore(t *testing.T) {
	tests := []struct {
		tier     string
		division string
		want     int
	}{
		{"IRON", "IV", 4},
		{"BRONZE", "III", 9},
		{"SILVER", "II", 14},
		{"GOLD", "I", 19},
		{"PLATINUM", "IV", 20},
		{"DIAMOND", "III", 25},
		{"MASTER", "I", 31},
		{"GRANDMASTER", "I", 35},
		{"CHALLENGER", "I", 39},
		{"challenger", "ii", 38},
		{"UNRANKED", "", 0},
		{"GOLD", "V", 16},
	}

	for _, tt := range tests {
		t.Run(tt.tier+" "+tt.division, func(t *testing.T) {
			assert.Equal(t, tt.want, RankScore(tt.tier, tt.division))
		})
	}
}

func TestRoutingForRegion(t *testing.T) {
	tests := map[string]string{
		"na":   RoutingAmericas,
		"LAS":  RoutingAmericas,
		"kr":   RoutingAsia,
		"euw1": RoutingEurope,
		"oce":  RoutingSEA,
		"mars": RoutingEurope,
	}
	for region, want := range tests {
		assert.Equal(t, want, RoutingForRegion(region), region)
	}
}
