package bracket

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type MatchState string

const (
	MatchPending    MatchState = "PENDING"
	MatchInProgress MatchState = "IN_PROGRESS"
	MatchDone       MatchState = "DONE"

	// Older records use PLAYED for a finished match.
	matchPlayed MatchState = "PLAYED"
)

// ParseMatchState accepts the canonical states, the legacy PLAYED alias and
// the upcoming/ongoing/finished words used by the admin edit form.
func ParseMatchState(s string) (MatchState, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(MatchPending), "UPCOMING":
		return MatchPending, nil
	case string(MatchInProgress), "ONGOING":
		return MatchInProgress, nil
	case string(MatchDone), string(matchPlayed), "FINISHED":
		return MatchDone, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidState, s)
}

func (s MatchState) Done() bool {
	return s == MatchDone || s == matchPlayed
}

func (s MatchState) rank() int {
	switch {
	case s.Done():
		return 2
	case s == MatchInProgress:
		return 1
	default:
		return 0
	}
}

// CanTransition reports whether a match may move from s to next. States only
// move forward and DONE is terminal.
func (s MatchState) CanTransition(next MatchState) bool {
	if s.Done() {
		return next.Done()
	}
	return next.rank() >= s.rank()
}

const FinalLabel = "Final"

type Match struct {
	// Storage key. Bracket links never use it.
	ID           uuid.UUID `db:"id" json:"key"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournamentId"`

	// Tournament scoped sequence number, assigned once in round order.
	Number          int    `db:"number" json:"id"`
	Name            string `db:"name" json:"name"`
	RoundNumber     int    `db:"round_number" json:"roundNumber"`
	RoundLabel      string `db:"round_label" json:"roundLabel"`
	NextMatchNumber *int   `db:"next_match_number" json:"nextMatchId"`

	StartTime  time.Time  `db:"start_time" json:"startTime"`
	State      MatchState `db:"state" json:"state"`
	Team1Score *int       `db:"team1_score" json:"team1Score"`
	Team2Score *int       `db:"team2_score" json:"team2Score"`

	Participants [2]Participant `db:"-" json:"participants"`

	CreatedAt time.Time `db:"created_at" json:"-"`
}

func (m *Match) IsFinal() bool {
	return m.RoundLabel == FinalLabel
}

// WinnerSlot picks the winning slot index for a reported result. An explicit
// winner wins outright and a lone bye loses. When both slots are byes the
// first one goes through, so the bye keeps propagating until it meets a team.
// Otherwise the higher score wins.
func (m *Match) WinnerSlot(team1Score, team2Score *int, winnerID *uuid.UUID) (int, error) {
	for _, p := range m.Participants {
		if !p.Resolved() {
			return 0, ErrSlotUnresolved
		}
	}

	if winnerID != nil {
		for i, p := range m.Participants {
			if p.IsTeam(*winnerID) {
				return i, nil
			}
		}
		return 0, ErrNotInMatch
	}

	bye0 := m.Participants[0].Kind == SlotBye
	bye1 := m.Participants[1].Kind == SlotBye
	switch {
	case bye0 && bye1:
		return 0, nil
	case bye0:
		return 1, nil
	case bye1:
		return 0, nil
	}

	if team1Score == nil || team2Score == nil {
		return 0, ErrScoresRequired
	}
	switch {
	case *team1Score > *team2Score:
		return 0, nil
	case *team2Score > *team1Score:
		return 1, nil
	}
	return 0, ErrUndecided
}

// Complete records the result with the given winning slot and moves the
// match to DONE.
func (m *Match) Complete(winner int, team1Score, team2Score *int) {
	m.Team1Score = team1Score
	m.Team2Score = team2Score
	m.State = MatchDone

	final := m.IsFinal()
	for i := range m.Participants {
		won := i == winner
		result := ResultFor(final, won)
		m.Participants[i].IsWinner = won
		m.Participants[i].Status = ParticipantPlayed
		m.Participants[i].Result = &result
	}
}

// Winner returns the winning participant of a finished match.
func (m *Match) Winner() (Participant, int, bool) {
	if !m.State.Done() {
		return Participant{}, 0, false
	}
	for i, p := range m.Participants {
		if p.IsWinner {
			return p, i, true
		}
	}
	return Participant{}, 0, false
}

// Annotate fills in the result text of played participants that were stored
// without one, normalising legacy states along the way.
func (m *Match) Annotate() {
	if m.State.Done() {
		m.State = MatchDone
	}
	final := m.IsFinal()
	for i, p := range m.Participants {
		if p.Result != nil || p.Status != ParticipantPlayed {
			continue
		}
		result := ResultFor(final, p.IsWinner)
		m.Participants[i].Result = &result
	}
}
