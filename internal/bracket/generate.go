package bracket

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Shuffler permutes n elements through swap. (*rand.Rand).Shuffle fits.
type Shuffler func(n int, swap func(i, j int))

// NoShuffle keeps entrants in the order given.
func NoShuffle(int, func(i, j int)) {}

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func BracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

func RoundCount(count int) int {
	if count <= 1 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(count))))
}

func RoundLabel(round, totalRounds int) string {
	if round == totalRounds {
		return FinalLabel
	}
	return fmt.Sprintf("Round %d", round)
}

// DaysPerRound spreads the rounds over the tournament window, never less than
// one day apart.
func DaysPerRound(start, end time.Time, rounds int) int {
	if rounds <= 0 {
		return 1
	}
	days := int(end.Sub(start) / (time.Duration(rounds) * 24 * time.Hour))
	return max(1, days)
}

func dedupe(entrants []Entrant) []Entrant {
	seen := make(map[uuid.UUID]struct{}, len(entrants))
	out := make([]Entrant, 0, len(entrants))
	for _, e := range entrants {
		if _, ok := seen[e.TeamID]; ok {
			continue
		}
		seen[e.TeamID] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Generate lays out the full single elimination bracket for the entrants.
// Round one pairs entrants in shuffled order and pads the tail with byes; each
// later round takes its slots from the winners of the two matches feeding it.
// Matches are returned ordered by Number.
func Generate(tournamentID uuid.UUID, entrants []Entrant, start, end time.Time, shuffle Shuffler) ([]Match, error) {
	teams := dedupe(entrants)
	if len(teams) < 2 {
		return nil, ErrInsufficientParticipants
	}
	if shuffle == nil {
		shuffle = NoShuffle
	}

	totalRounds := RoundCount(len(teams))
	bracketSize := BracketSize(len(teams))
	daysPerRound := DaysPerRound(start, end, totalRounds)

	shuffle(len(teams), func(i, j int) {
		teams[i], teams[j] = teams[j], teams[i]
	})

	matches := make([]Match, 0, bracketSize-1)
	rounds := make([][]int, 0, totalRounds)
	number := 1

	newMatch := func(round int, p1, p2 Participant) Match {
		m := Match{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Number:       number,
			Name:         fmt.Sprintf("Match %d", number),
			RoundNumber:  round,
			RoundLabel:   RoundLabel(round, totalRounds),
			StartTime:    start.Add(time.Duration((round-1)*daysPerRound) * 24 * time.Hour),
			State:        MatchPending,
			Participants: [2]Participant{p1, p2},
		}
		number++
		return m
	}

	next := 0
	pull := func() Participant {
		if next >= len(teams) {
			return ByeSlot()
		}
		t := teams[next]
		next++
		return TeamSlot(t.TeamID, t.Name)
	}

	var firstRound []int
	for i := 0; i < bracketSize/2; i++ {
		p1 := pull()
		p2 := pull()
		m := newMatch(1, p1, p2)
		matches = append(matches, m)
		firstRound = append(firstRound, len(matches)-1)
	}
	rounds = append(rounds, firstRound)

	for r := 2; r <= totalRounds; r++ {
		prev := rounds[len(rounds)-1]
		current := make([]int, 0, len(prev)/2)
		for i := 0; i+1 < len(prev); i += 2 {
			left := matches[prev[i]].Number
			right := matches[prev[i+1]].Number
			matches = append(matches, newMatch(r, WinnerOf(left), WinnerOf(right)))
			current = append(current, len(matches)-1)
		}
		rounds = append(rounds, current)
	}

	// Link every match to the one its winner feeds into
	for r := 0; r < len(rounds)-1; r++ {
		for i, idx := range rounds[r] {
			nextNumber := matches[rounds[r+1][i/2]].Number
			matches[idx].NextMatchNumber = &nextNumber
		}
	}

	return matches, nil
}
