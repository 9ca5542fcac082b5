package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/AdamBeresnev/elim-bracket/internal/bracket"
	"github.com/AdamBeresnev/elim-bracket/internal/store"
	users "github.com/AdamBeresnev/elim-bracket/internal/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTournament_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	valid := TournamentInput{Name: "Spring Open", StartDate: testStart, EndDate: testEnd, MaxTeams: 8}

	testCases := []struct {
		name   string
		mutate func(*TournamentInput)
	}{
		{"blank name", func(in *TournamentInput) { in.Name = "   " }},
		{"long name", func(in *TournamentInput) { in.Name = strings.Repeat("x", 101) }},
		{"missing dates", func(in *TournamentInput) { in.StartDate = time.Time{} }},
		{"end before start", func(in *TournamentInput) { in.EndDate = testStart.Add(-time.Hour) }},
		{"end equals start", func(in *TournamentInput) { in.EndDate = testStart }},
		{"too few teams", func(in *TournamentInput) { in.MaxTeams = 1 }},
		{"too many teams", func(in *TournamentInput) { in.MaxTeams = 129 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := env.tourneys.CreateTournament(ctx, users.GuestID, in)
			assert.ErrorIs(t, err, bracket.ErrInvalidInput)
		})
	}

	tournament, err := env.tourneys.CreateTournament(ctx, users.GuestID, valid)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentUpcoming, tournament.Status)
	assert.Equal(t, users.GuestID, tournament.OwnerID)
}

func TestRegisterTeam(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tournament, err := env.tourneys.CreateTournament(ctx, users.GuestID, TournamentInput{
		Name: "Duel", StartDate: testStart, EndDate: testEnd, MaxTeams: 2,
	})
	require.NoError(t, err)

	a, err := env.teams.CreateTeam(ctx, "Alpha")
	require.NoError(t, err)
	b, err := env.teams.CreateTeam(ctx, "Bravo")
	require.NoError(t, err)
	c, err := env.teams.CreateTeam(ctx, "Charlie")
	require.NoError(t, err)

	require.NoError(t, env.tourneys.RegisterTeam(ctx, tournament.ID, a.ID))
	assert.ErrorIs(t, env.tourneys.RegisterTeam(ctx, tournament.ID, a.ID), bracket.ErrAlreadyRegistered)
	require.NoError(t, env.tourneys.RegisterTeam(ctx, tournament.ID, b.ID))
	assert.ErrorIs(t, env.tourneys.RegisterTeam(ctx, tournament.ID, c.ID), bracket.ErrTournamentFull)

	assert.ErrorIs(t, env.tourneys.RegisterTeam(ctx, tournament.ID, uuid.New()), bracket.ErrTeamNotFound)
	assert.ErrorIs(t, env.tourneys.RegisterTeam(ctx, uuid.New(), a.ID), bracket.ErrTournamentNotFound)

	_, err = env.brackets.Build(ctx, tournament.ID)
	require.NoError(t, err)

	err = env.tourneys.RegisterTeam(ctx, tournament.ID, c.ID)
	assert.ErrorIs(t, err, bracket.ErrRegistrationClosed)
	assert.ErrorIs(t, err, bracket.ErrConflict)
}

func TestGetTournamentData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament, teams, _ := env.seedBracket(t, 3)

	data, err := env.tourneys.GetTournamentData(ctx, tournament.ID)
	require.NoError(t, err)

	assert.Equal(t, tournament.ID, data.Tournament.ID)
	assert.Equal(t, bracket.TournamentOngoing, data.Tournament.Status)
	require.Len(t, data.Teams, len(teams))
	assert.Equal(t, teams[0].ID, data.Teams[0].ID)
	require.Len(t, data.Matches, 3)
	assert.Equal(t, bracket.FinalLabel, data.Matches[2].RoundLabel)

	_, err = env.tourneys.GetTournamentData(ctx, uuid.New())
	assert.ErrorIs(t, err, bracket.ErrTournamentNotFound)
}

func TestListTournaments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedTournament(t, 0)
	started, _, _ := env.seedBracket(t, 2)

	all, err := env.tourneys.ListTournaments(ctx, store.TournamentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	ongoing := bracket.TournamentOngoing
	filtered, err := env.tourneys.ListTournaments(ctx, store.TournamentFilter{Status: &ongoing})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, started.ID, filtered[0].ID)

	bogus := bracket.TournamentStatus("archived")
	_, err = env.tourneys.ListTournaments(ctx, store.TournamentFilter{Status: &bogus})
	assert.ErrorIs(t, err, bracket.ErrInvalidInput)
}

func TestCreateTeam(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	team, err := env.teams.CreateTeam(ctx, "  Night Owls  ")
	require.NoError(t, err)
	assert.Equal(t, "Night Owls", team.Name)

	fetched, err := env.teams.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, team.Name, fetched.Name)

	_, err = env.teams.CreateTeam(ctx, "")
	assert.ErrorIs(t, err, bracket.ErrInvalidInput)
	_, err = env.teams.CreateTeam(ctx, strings.Repeat("n", 51))
	assert.ErrorIs(t, err, bracket.ErrInvalidInput)

	_, err = env.teams.GetTeam(ctx, uuid.New())
	assert.ErrorIs(t, err, bracket.ErrTeamNotFound)
}
