package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/AdamBeresnev/elim-bracket/internal/bracket"
	"github.com/AdamBeresnev/elim-bracket/internal/metrics"
	"github.com/AdamBeresnev/elim-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TeamNameLookup resolves the display name of a registered team.
type TeamNameLookup interface {
	LookupTeamName(ctx context.Context, id uuid.UUID) (string, error)
}

type BracketService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	matches     *store.MatchStore
	names       TeamNameLookup
	shuffle     bracket.Shuffler
}

type BracketOption func(*BracketService)

// WithShuffler replaces the uniform random shuffle used to draw round one.
func WithShuffler(shuffle bracket.Shuffler) BracketOption {
	return func(s *BracketService) {
		s.shuffle = shuffle
	}
}

func NewBracketService(db *sqlx.DB, tournaments *store.TournamentStore, matches *store.MatchStore, names TeamNameLookup, opts ...BracketOption) *BracketService {
	s := &BracketService{
		db:          db,
		tournaments: tournaments,
		matches:     matches,
		names:       names,
		shuffle:     rand.Shuffle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build generates and stores the bracket for a tournament from its registered
// teams. A tournament gets at most one bracket; later calls fail with
// ErrAlreadyGenerated and leave the stored matches untouched.
func (s *BracketService) Build(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
	tournament, err := s.tournaments.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, lookupErr("get tournament", err, bracket.ErrTournamentNotFound)
	}

	teamIDs, err := s.tournaments.GetRegisteredTeamIDs(ctx, tournamentID)
	if err != nil {
		return nil, storageErr("get registered teams", err)
	}

	entrants := make([]bracket.Entrant, 0, len(teamIDs))
	for _, id := range teamIDs {
		name, err := s.names.LookupTeamName(ctx, id)
		if err != nil {
			return nil, lookupErr("lookup team name", err, fmt.Errorf("%w: %s", bracket.ErrTeamNotFound, id))
		}
		entrants = append(entrants, bracket.Entrant{TeamID: id, Name: name})
	}

	matches, err := bracket.Generate(tournament.ID, entrants, tournament.StartDate, tournament.EndDate, s.shuffle)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer tx.Rollback()

	existing, err := s.matches.CountMatchesTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, storageErr("count matches", err)
	}
	if existing > 0 {
		return nil, bracket.ErrAlreadyGenerated
	}

	if err := s.matches.MarkBracketGeneratedTx(ctx, tx, tournamentID); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, bracket.ErrAlreadyGenerated
		}
		return nil, storageErr("mark bracket generated", err)
	}

	if err := s.matches.CreateMatches(ctx, tx, matches); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, bracket.ErrAlreadyGenerated
		}
		return nil, storageErr("create matches", err)
	}

	if err := s.tournaments.UpdateTournamentStatusTx(ctx, tx, tournamentID, bracket.TournamentOngoing); err != nil {
		return nil, storageErr("update tournament status", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("commit bracket", err)
	}

	metrics.BracketsGenerated.Inc()
	metrics.MatchesCreated.Add(float64(len(matches)))
	slog.Info("bracket generated",
		"tournament_id", tournamentID,
		"teams", len(entrants),
		"matches", len(matches),
		"rounds", bracket.RoundCount(len(entrants)),
	)

	return matches, nil
}
