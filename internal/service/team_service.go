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
)

const maxTeamNameLen = 50

type TeamService struct {
	store *store.TournamentStore
}

func NewTeamService(store *store.TournamentStore) *TeamService {
	return &TeamService{store: store}
}

func (s *TeamService) CreateTeam(ctx context.Context, name string) (*bracket.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: team name is required", bracket.ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxTeamNameLen {
		return nil, fmt.Errorf("%w: team name must be at most %d characters", bracket.ErrInvalidInput, maxTeamNameLen)
	}

	team := &bracket.Team{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}
	if err := s.store.CreateTeam(ctx, team); err != nil {
		return nil, storageErr("create team", err)
	}
	return team, nil
}

func (s *TeamService) GetTeam(ctx context.Context, id uuid.UUID) (*bracket.Team, error) {
	team, err := s.store.GetTeam(ctx, id)
	if err != nil {
		return nil, lookupErr("get team", err, bracket.ErrTeamNotFound)
	}
	return team, nil
}
