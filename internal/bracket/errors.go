package bracket

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the builder, the result engine and the
// services wraps exactly one of these.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrPersistence  = errors.New("persistence failure")
)

var (
	ErrInsufficientParticipants = fmt.Errorf("%w: at least two unique teams are required", ErrInvalidInput)
	ErrUndecided                = fmt.Errorf("%w: result does not determine a winner", ErrInvalidInput)
	ErrNotInMatch               = fmt.Errorf("%w: winner is not part of this match", ErrInvalidInput)
	ErrSlotUnresolved           = fmt.Errorf("%w: match participants are not decided yet", ErrInvalidInput)
	ErrScoresRequired           = fmt.Errorf("%w: both scores are required without an explicit winner", ErrInvalidInput)
	ErrInvalidState             = fmt.Errorf("%w: unknown match state", ErrInvalidInput)

	ErrAlreadyGenerated   = fmt.Errorf("%w: matches for this tournament have already been generated", ErrConflict)
	ErrResultRecorded     = fmt.Errorf("%w: a different result is already recorded for this match", ErrConflict)
	ErrIllegalTransition  = fmt.Errorf("%w: match state cannot move backwards", ErrConflict)
	ErrRegistrationClosed = fmt.Errorf("%w: tournament is not open for registration", ErrConflict)
	ErrTournamentFull     = fmt.Errorf("%w: tournament is full", ErrConflict)
	ErrAlreadyRegistered  = fmt.Errorf("%w: team is already registered", ErrConflict)

	ErrTournamentNotFound = fmt.Errorf("%w: tournament", ErrNotFound)
	ErrMatchNotFound      = fmt.Errorf("%w: match", ErrNotFound)
	ErrTeamNotFound       = fmt.Errorf("%w: team", ErrNotFound)
)
