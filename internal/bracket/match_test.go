package bracket

import (
	"encoding/json"
	"testing"

	"github.com/AdamBeresnev/elim-bracket/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoTeamMatch(label string) (*Match, uuid.UUID, uuid.UUID) {
	a, b := uuid.New(), uuid.New()
	return &Match{
		Number:       1,
		RoundLabel:   label,
		State:        MatchPending,
		Participants: [2]Participant{TeamSlot(a, "Alpha"), TeamSlot(b, "Bravo")},
	}, a, b
}

func TestParseMatchState(t *testing.T) {
	testCases := map[string]MatchState{
		"PENDING":     MatchPending,
		"upcoming":    MatchPending,
		"IN_PROGRESS": MatchInProgress,
		"ongoing":     MatchInProgress,
		"DONE":        MatchDone,
		"PLAYED":      MatchDone,
		"finished":    MatchDone,
	}
	for in, expected := range testCases {
		t.Run(in, func(t *testing.T) {
			got, err := ParseMatchState(in)
			require.NoError(t, err)
			assert.Equal(t, expected, got)
		})
	}

	_, err := ParseMatchState("cancelled")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMatchState_CanTransition(t *testing.T) {
	assert.True(t, MatchPending.CanTransition(MatchInProgress))
	assert.True(t, MatchPending.CanTransition(MatchDone))
	assert.True(t, MatchInProgress.CanTransition(MatchDone))
	assert.True(t, MatchInProgress.CanTransition(MatchInProgress))
	assert.False(t, MatchInProgress.CanTransition(MatchPending))
	assert.False(t, MatchDone.CanTransition(MatchInProgress))
	assert.False(t, MatchState("PLAYED").CanTransition(MatchPending))
	assert.True(t, MatchDone.CanTransition(MatchDone))
}

func TestWinnerSlot(t *testing.T) {
	m, a, b := twoTeamMatch("Round 1")

	slot, err := m.WinnerSlot(utils.Ptr(3), utils.Ptr(1), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, slot)

	slot, err = m.WinnerSlot(utils.Ptr(0), utils.Ptr(2), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, slot)

	slot, err = m.WinnerSlot(utils.Ptr(5), utils.Ptr(0), &b)
	require.NoError(t, err)
	assert.Equal(t, 1, slot, "explicit winner overrides scores")

	slot, err = m.WinnerSlot(nil, nil, &a)
	require.NoError(t, err)
	assert.Equal(t, 0, slot)

	_, err = m.WinnerSlot(utils.Ptr(2), utils.Ptr(2), nil)
	assert.ErrorIs(t, err, ErrUndecided)

	_, err = m.WinnerSlot(utils.Ptr(2), nil, nil)
	assert.ErrorIs(t, err, ErrScoresRequired)

	stranger := uuid.New()
	_, err = m.WinnerSlot(nil, nil, &stranger)
	assert.ErrorIs(t, err, ErrNotInMatch)
}

func TestWinnerSlot_Byes(t *testing.T) {
	a := uuid.New()
	m := &Match{Participants: [2]Participant{ByeSlot(), TeamSlot(a, "Alpha")}}

	slot, err := m.WinnerSlot(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, slot)

	m.Participants = [2]Participant{ByeSlot(), ByeSlot()}
	slot, err = m.WinnerSlot(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, slot, "the first bye goes through")

	_, err = m.WinnerSlot(nil, nil, &a)
	assert.ErrorIs(t, err, ErrNotInMatch)
}

func TestWinnerSlot_UnresolvedPlaceholder(t *testing.T) {
	m := &Match{Participants: [2]Participant{TeamSlot(uuid.New(), "Alpha"), WinnerOf(2)}}
	_, err := m.WinnerSlot(utils.Ptr(1), utils.Ptr(0), nil)
	assert.ErrorIs(t, err, ErrSlotUnresolved)
}

func TestComplete(t *testing.T) {
	testCases := []struct {
		label       string
		winnerText  ResultText
		loserResult ResultText
	}{
		{"Round 1", ResultWon, ResultLost},
		{"Round 3", ResultWon, ResultLost},
		{FinalLabel, ResultChampion, ResultRunnerUp},
	}

	for _, tc := range testCases {
		t.Run(tc.label, func(t *testing.T) {
			m, a, _ := twoTeamMatch(tc.label)
			m.Complete(0, utils.Ptr(3), utils.Ptr(1))

			assert.Equal(t, MatchDone, m.State)
			assert.Equal(t, 3, *m.Team1Score)
			assert.Equal(t, 1, *m.Team2Score)

			winner, slot, ok := m.Winner()
			require.True(t, ok)
			assert.Equal(t, 0, slot)
			assert.Equal(t, a, winner.TeamID)

			assert.True(t, m.Participants[0].IsWinner)
			assert.Equal(t, ParticipantPlayed, m.Participants[0].Status)
			assert.Equal(t, tc.winnerText, *m.Participants[0].Result)

			assert.False(t, m.Participants[1].IsWinner)
			assert.Equal(t, ParticipantPlayed, m.Participants[1].Status)
			assert.Equal(t, tc.loserResult, *m.Participants[1].Result)
		})
	}
}

func TestAnnotate(t *testing.T) {
	m, _, _ := twoTeamMatch(FinalLabel)
	m.State = "PLAYED"
	m.Participants[0].IsWinner = true
	m.Participants[0].Status = ParticipantPlayed
	m.Participants[1].Status = ParticipantPlayed

	m.Annotate()

	assert.Equal(t, MatchDone, m.State)
	assert.Equal(t, ResultChampion, *m.Participants[0].Result)
	assert.Equal(t, ResultRunnerUp, *m.Participants[1].Result)

	pending, _, _ := twoTeamMatch("Round 1")
	pending.Annotate()
	assert.Nil(t, pending.Participants[0].Result)
	assert.Nil(t, pending.Participants[1].Result)
}

func TestParticipantJSON(t *testing.T) {
	id := uuid.New()
	testCases := []struct {
		name string
		p    Participant
		ref  string
		disp string
	}{
		{"team", TeamSlot(id, "Alpha"), id.String(), "Alpha"},
		{"bye", ByeSlot(), "BYE", "BYE"},
		{"pending", WinnerOf(12), "W12", "Winner of Match 12"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.p)
			require.NoError(t, err)

			var raw map[string]any
			require.NoError(t, json.Unmarshal(data, &raw))
			assert.Equal(t, tc.ref, raw["id"])
			assert.Equal(t, tc.disp, raw["name"])
			assert.Equal(t, "PENDING", raw["status"])
			assert.Nil(t, raw["resultText"])

			var back Participant
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tc.p.Kind, back.Kind)
			assert.Equal(t, tc.p.Ref(), back.Ref())
		})
	}

	var bad Participant
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"id":"Wx","name":"?"}`), &bad), ErrInvalidInput)
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"id":"team-1","name":"?"}`), &bad), ErrInvalidInput)
}
