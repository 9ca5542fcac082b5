package bracket

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type SlotKind string

const (
	SlotTeam    SlotKind = "team"
	SlotBye     SlotKind = "bye"
	SlotPending SlotKind = "pending"
)

// ByeRef is the wire id of a bye slot.
const ByeRef = "BYE"

type ParticipantStatus string

const (
	ParticipantPending ParticipantStatus = "PENDING"
	ParticipantPlayed  ParticipantStatus = "PLAYED"
)

type ResultText string

const (
	ResultWon      ResultText = "WON"
	ResultLost     ResultText = "LOST"
	ResultChampion ResultText = "CHAMPION"
	ResultRunnerUp ResultText = "RUNNER-UP"
)

func ResultFor(final, won bool) ResultText {
	switch {
	case final && won:
		return ResultChampion
	case final:
		return ResultRunnerUp
	case won:
		return ResultWon
	default:
		return ResultLost
	}
}

// Participant fills one slot of a match. Kind selects which fields carry
// meaning: TeamID and Name for a team, SourceMatch for a pending winner.
type Participant struct {
	Kind        SlotKind
	TeamID      uuid.UUID
	Name        string
	SourceMatch int
	IsWinner    bool
	Status      ParticipantStatus
	Result      *ResultText
}

func TeamSlot(id uuid.UUID, name string) Participant {
	return Participant{Kind: SlotTeam, TeamID: id, Name: name, Status: ParticipantPending}
}

func ByeSlot() Participant {
	return Participant{Kind: SlotBye, Status: ParticipantPending}
}

// WinnerOf is the placeholder for the not yet known winner of a match.
func WinnerOf(matchNumber int) Participant {
	return Participant{Kind: SlotPending, SourceMatch: matchNumber, Status: ParticipantPending}
}

func (p Participant) Resolved() bool {
	return p.Kind != SlotPending
}

func (p Participant) IsTeam(id uuid.UUID) bool {
	return p.Kind == SlotTeam && p.TeamID == id
}

// Ref is the identifier the participant is known by on the wire: a team id,
// BYE, or W<matchNumber> for a pending winner.
func (p Participant) Ref() string {
	switch p.Kind {
	case SlotTeam:
		return p.TeamID.String()
	case SlotBye:
		return ByeRef
	default:
		return "W" + strconv.Itoa(p.SourceMatch)
	}
}

func (p Participant) DisplayName() string {
	switch p.Kind {
	case SlotTeam:
		return p.Name
	case SlotBye:
		return ByeRef
	default:
		return fmt.Sprintf("Winner of Match %d", p.SourceMatch)
	}
}

// ParseRef is the inverse of Ref. The name is only kept for team slots.
func ParseRef(ref, name string) (Participant, error) {
	switch {
	case ref == ByeRef:
		return ByeSlot(), nil
	case strings.HasPrefix(ref, "W"):
		n, err := strconv.Atoi(ref[1:])
		if err != nil || n < 1 {
			return Participant{}, fmt.Errorf("%w: bad placeholder %q", ErrInvalidInput, ref)
		}
		return WinnerOf(n), nil
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return Participant{}, fmt.Errorf("%w: bad participant id %q", ErrInvalidInput, ref)
	}
	return TeamSlot(id, name), nil
}

type participantJSON struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	IsWinner   bool              `json:"isWinner"`
	Status     ParticipantStatus `json:"status"`
	ResultText *ResultText       `json:"resultText"`
}

func (p Participant) MarshalJSON() ([]byte, error) {
	return json.Marshal(participantJSON{
		ID:         p.Ref(),
		Name:       p.DisplayName(),
		IsWinner:   p.IsWinner,
		Status:     p.Status,
		ResultText: p.Result,
	})
}

func (p *Participant) UnmarshalJSON(data []byte) error {
	var raw participantJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseRef(raw.ID, raw.Name)
	if err != nil {
		return err
	}
	parsed.IsWinner = raw.IsWinner
	if raw.Status != "" {
		parsed.Status = raw.Status
	}
	parsed.Result = raw.ResultText
	*p = parsed
	return nil
}
