package bracket

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeEntrants(n int) []Entrant {
	entrants := make([]Entrant, 0, n)
	for i := 0; i < n; i++ {
		entrants = append(entrants, Entrant{TeamID: uuid.New(), Name: fmt.Sprintf("Team %c", 'A'+i)})
	}
	return entrants
}

var (
	testStart = time.Date(2024, 12, 12, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC)
)

func TestBracketSize(t *testing.T) {
	testCases := []struct {
		count, size, rounds int
	}{
		{2, 2, 1},
		{3, 4, 2},
		{4, 4, 2},
		{5, 8, 3},
		{8, 8, 3},
		{9, 16, 4},
		{12, 16, 4},
		{17, 32, 5},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d teams", tc.count), func(t *testing.T) {
			assert.Equal(t, tc.size, BracketSize(tc.count))
			assert.Equal(t, tc.rounds, RoundCount(tc.count))
		})
	}
}

func TestDaysPerRound(t *testing.T) {
	assert.Equal(t, 4, DaysPerRound(testStart, testEnd, 3))
	assert.Equal(t, 1, DaysPerRound(testStart, testStart, 3), "zero length window still spaces rounds by a day")
	assert.Equal(t, 1, DaysPerRound(testEnd, testStart, 2), "inverted window")
	assert.Equal(t, 2, DaysPerRound(testStart, testStart.Add(5*24*time.Hour+time.Hour), 2), "partial days are floored")
}

func TestGenerate_Counts(t *testing.T) {
	for n := 2; n <= 33; n++ {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(uint64(n), 7))
			matches, err := Generate(uuid.New(), makeEntrants(n), testStart, testEnd, rng.Shuffle)
			require.NoError(t, err)

			size := BracketSize(n)
			assert.Len(t, matches, size-1)

			round1 := 0
			byes := 0
			for _, m := range matches {
				if m.RoundNumber == 1 {
					round1++
				}
				for _, p := range m.Participants {
					if p.Kind == SlotBye {
						byes++
						assert.Equal(t, 1, m.RoundNumber, "byes only appear in round one")
					}
				}
			}
			assert.Equal(t, size/2, round1)
			assert.Equal(t, size-n, byes)
		})
	}
}

func TestGenerate_Linking(t *testing.T) {
	for _, n := range []int{2, 3, 5, 8, 11, 16} {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			matches, err := Generate(uuid.New(), makeEntrants(n), testStart, testEnd, NoShuffle)
			require.NoError(t, err)

			byNumber := make(map[int]Match)
			for i, m := range matches {
				assert.Equal(t, i+1, m.Number, "numbers are sequential in round order")
				byNumber[m.Number] = m
			}

			feeders := make(map[int][]int)
			finals := 0
			for _, m := range matches {
				if m.NextMatchNumber == nil {
					finals++
					assert.Equal(t, FinalLabel, m.RoundLabel)
					continue
				}
				next, ok := byNumber[*m.NextMatchNumber]
				require.True(t, ok, "next match %d exists", *m.NextMatchNumber)
				assert.Equal(t, m.RoundNumber+1, next.RoundNumber)
				feeders[next.Number] = append(feeders[next.Number], m.Number)
			}
			assert.Equal(t, 1, finals)

			for _, m := range matches {
				if m.RoundNumber == 1 {
					continue
				}
				require.Len(t, feeders[m.Number], 2)
				assert.Equal(t, WinnerOf(feeders[m.Number][0]), m.Participants[0])
				assert.Equal(t, WinnerOf(feeders[m.Number][1]), m.Participants[1])
			}
		})
	}
}

func TestGenerate_FiveTeams(t *testing.T) {
	entrants := makeEntrants(5)
	tournamentID := uuid.New()

	matches, err := Generate(tournamentID, entrants, testStart, testEnd, NoShuffle)
	require.NoError(t, err)
	require.Len(t, matches, 7)

	labels := []string{"Round 1", "Round 1", "Round 1", "Round 1", "Round 2", "Round 2", "Final"}
	next := []int{5, 5, 6, 6, 7, 7, 0}
	days := []int{0, 0, 0, 0, 4, 4, 8}
	for i, m := range matches {
		assert.Equal(t, tournamentID, m.TournamentID)
		assert.Equal(t, fmt.Sprintf("Match %d", i+1), m.Name)
		assert.Equal(t, labels[i], m.RoundLabel)
		assert.Equal(t, MatchPending, m.State)
		assert.Equal(t, testStart.Add(time.Duration(days[i])*24*time.Hour), m.StartTime)
		if next[i] == 0 {
			assert.Nil(t, m.NextMatchNumber)
		} else {
			require.NotNil(t, m.NextMatchNumber)
			assert.Equal(t, next[i], *m.NextMatchNumber)
		}
	}

	assert.Equal(t, TeamSlot(entrants[0].TeamID, "Team A"), matches[0].Participants[0])
	assert.Equal(t, TeamSlot(entrants[1].TeamID, "Team B"), matches[0].Participants[1])
	assert.Equal(t, TeamSlot(entrants[4].TeamID, "Team E"), matches[2].Participants[0])
	assert.Equal(t, ByeSlot(), matches[2].Participants[1])
	assert.Equal(t, [2]Participant{ByeSlot(), ByeSlot()}, matches[3].Participants)
	assert.Equal(t, [2]Participant{WinnerOf(5), WinnerOf(6)}, matches[6].Participants)
}

func TestGenerate_TwoTeams(t *testing.T) {
	matches, err := Generate(uuid.New(), makeEntrants(2), testStart, testEnd, NoShuffle)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	final := matches[0]
	assert.Equal(t, 1, final.Number)
	assert.Equal(t, FinalLabel, final.RoundLabel)
	assert.Nil(t, final.NextMatchNumber)
	assert.Equal(t, testStart, final.StartTime)
	for _, p := range final.Participants {
		assert.Equal(t, SlotTeam, p.Kind)
	}
}

func TestGenerate_Deduplicates(t *testing.T) {
	entrants := makeEntrants(3)
	entrants = append(entrants, entrants[0], entrants[2])

	matches, err := Generate(uuid.New(), entrants, testStart, testEnd, NoShuffle)
	require.NoError(t, err)
	assert.Len(t, matches, 3)

	_, err = Generate(uuid.New(), []Entrant{entrants[0], entrants[0]}, testStart, testEnd, NoShuffle)
	assert.ErrorIs(t, err, ErrInsufficientParticipants)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGenerate_InsufficientParticipants(t *testing.T) {
	for _, n := range []int{0, 1} {
		_, err := Generate(uuid.New(), makeEntrants(n), testStart, testEnd, NoShuffle)
		assert.ErrorIs(t, err, ErrInsufficientParticipants)
	}
}

func TestGenerate_SeededShuffleIsReproducible(t *testing.T) {
	entrants := makeEntrants(6)

	layout := func() []string {
		rng := rand.New(rand.NewPCG(42, 1))
		matches, err := Generate(uuid.New(), entrants, testStart, testEnd, rng.Shuffle)
		require.NoError(t, err)
		var refs []string
		for _, m := range matches {
			refs = append(refs, m.Participants[0].Ref(), m.Participants[1].Ref())
		}
		return refs
	}

	assert.Equal(t, layout(), layout())
}
