package views

import (
	"sort"

	"github.com/AdamBeresnev/elim-bracket/internal/bracket"
)

type BracketData struct {
	Rounds    map[int][]bracket.Match
	RoundNums []int
	Labels    map[int]string
	Champion  *bracket.Participant
}

func PrepareBracketData(matches []bracket.Match) BracketData {
	rounds := make(map[int][]bracket.Match)
	labels := make(map[int]string)
	var roundNums []int
	var champion *bracket.Participant

	for _, m := range matches {
		if _, exists := rounds[m.RoundNumber]; !exists {
			roundNums = append(roundNums, m.RoundNumber)
			labels[m.RoundNumber] = m.RoundLabel
		}
		rounds[m.RoundNumber] = append(rounds[m.RoundNumber], m)

		if m.NextMatchNumber == nil {
			if winner, _, ok := m.Winner(); ok {
				champion = &winner
			}
		}
	}

	sort.Ints(roundNums)
	sortRounds(rounds, roundNums)

	return BracketData{
		Rounds:    rounds,
		RoundNums: roundNums,
		Labels:    labels,
		Champion:  champion,
	}
}

func sortRounds(rounds map[int][]bracket.Match, roundNums []int) {
	for _, r := range roundNums {
		sort.Slice(rounds[r], func(i, j int) bool {
			return rounds[r][i].Number < rounds[r][j].Number
		})
	}
}
