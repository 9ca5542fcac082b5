package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AdamBeresnev/elim-bracket/internal/bracket"
	"github.com/AdamBeresnev/elim-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

const (
	maxTournamentNameLen = 100
	minTeams             = 2
	maxTeams             = 128
)

type TournamentService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	matches     *store.MatchStore
}

func NewTournamentService(db *sqlx.DB, tournaments *store.TournamentStore, matches *store.MatchStore) *TournamentService {
	return &TournamentService{db: db, tournaments: tournaments, matches: matches}
}

type TournamentInput struct {
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	MaxTeams  int       `json:"maxTeams"`
}

func (in TournamentInput) validate() error {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return fmt.Errorf("%w: tournament name is required", bracket.ErrInvalidInput)
	case utf8.RuneCountInString(name) > maxTournamentNameLen:
		return fmt.Errorf("%w: tournament name must be at most %d characters", bracket.ErrInvalidInput, maxTournamentNameLen)
	case in.StartDate.IsZero() || in.EndDate.IsZero():
		return fmt.Errorf("%w: start and end dates are required", bracket.ErrInvalidInput)
	case !in.EndDate.After(in.StartDate):
		return fmt.Errorf("%w: end date must be after start date", bracket.ErrInvalidInput)
	case in.MaxTeams < minTeams || in.MaxTeams > maxTeams:
		return fmt.Errorf("%w: max teams must be between %d and %d", bracket.ErrInvalidInput, minTeams, maxTeams)
	}
	return nil
}

type TournamentData struct {
	Tournament *bracket.Tournament `json:"tournament"`
	Teams      []bracket.Team      `json:"teams"`
	Matches    []bracket.Match     `json:"matches"`
}

func (s *TournamentService) CreateTournament(ctx context.Context, ownerID uuid.UUID, in TournamentInput) (*bracket.Tournament, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	tournament := &bracket.Tournament{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(in.Name),
		Status:    bracket.TournamentUpcoming,
		StartDate: in.StartDate.UTC(),
		EndDate:   in.EndDate.UTC(),
		MaxTeams:  in.MaxTeams,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer tx.Rollback()

	if err := s.tournaments.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, storageErr("create tournament", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("commit tournament", err)
	}
	return tournament, nil
}

// RegisterTeam enters a team into a tournament that is still open.
func (s *TournamentService) RegisterTeam(ctx context.Context, tournamentID, teamID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return storageErr("begin transaction", err)
	}
	defer tx.Rollback()

	tournament, err := s.tournaments.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return lookupErr("get tournament", err, bracket.ErrTournamentNotFound)
	}
	if tournament.Status != bracket.TournamentUpcoming {
		return bracket.ErrRegistrationClosed
	}

	if _, err := s.tournaments.GetTeamTx(ctx, tx, teamID); err != nil {
		return lookupErr("get team", err, bracket.ErrTeamNotFound)
	}

	count, err := s.tournaments.CountRegisteredTeamsTx(ctx, tx, tournamentID)
	if err != nil {
		return storageErr("count registered teams", err)
	}
	if count >= tournament.MaxTeams {
		return bracket.ErrTournamentFull
	}

	added, err := s.tournaments.RegisterTeamTx(ctx, tx, tournamentID, teamID)
	if err != nil {
		return storageErr("register team", err)
	}
	if !added {
		return bracket.ErrAlreadyRegistered
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit registration", err)
	}
	return nil
}

// GetTournamentData loads the tournament with its teams and annotated
// matches.
func (s *TournamentService) GetTournamentData(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	data := &TournamentData{}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tournament, err := s.tournaments.GetTournament(gCtx, id)
		if err != nil {
			return lookupErr("get tournament", err, bracket.ErrTournamentNotFound)
		}
		data.Tournament = tournament
		return nil
	})

	g.Go(func() error {
		teams, err := s.tournaments.GetRegisteredTeams(gCtx, id)
		if err != nil {
			return storageErr("get registered teams", err)
		}
		data.Teams = teams
		return nil
	})

	g.Go(func() error {
		matches, err := s.matches.GetMatches(gCtx, id)
		if err != nil {
			return storageErr("get matches", err)
		}
		for i := range matches {
			matches[i].Annotate()
		}
		data.Matches = matches
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context, filter store.TournamentFilter) ([]bracket.Tournament, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown tournament status %q", bracket.ErrInvalidInput, *filter.Status)
	}

	tournaments, err := s.tournaments.ListTournaments(ctx, filter)
	if err != nil {
		return nil, storageErr("list tournaments", err)
	}
	return tournaments, nil
}
