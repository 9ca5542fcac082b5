package store

import (
	"context"

	"github.com/AdamBeresnev/elim-bracket/internal/bracket"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

const (
	createTournamentQuery = `
		INSERT INTO tournaments (id, owner_id, name, status, start_date, end_date, max_teams)
		VALUES (:id, :owner_id, :name, :status, :start_date, :end_date, :max_teams)
	`
	getTournamentQuery          = "SELECT * FROM tournaments WHERE id = ?"
	updateTournamentStatusQuery = "UPDATE tournaments SET status = ? WHERE id = ?"

	registerTeamQuery = `
		INSERT INTO tournament_teams (tournament_id, team_id) VALUES (?, ?)
		ON CONFLICT (tournament_id, team_id) DO NOTHING
	`
	registeredTeamIDsQuery = `
		SELECT team_id FROM tournament_teams
		WHERE tournament_id = ?
		ORDER BY registered_at ASC, rowid ASC
	`
	registeredTeamsQuery = `
		SELECT t.* FROM teams t
		JOIN tournament_teams tt ON tt.team_id = t.id
		WHERE tt.tournament_id = ?
		ORDER BY tt.registered_at ASC, tt.rowid ASC
	`
	countRegisteredTeamsQuery = "SELECT COUNT(*) FROM tournament_teams WHERE tournament_id = ?"

	createTeamQuery = "INSERT INTO teams (id, name) VALUES (:id, :name)"
	getTeamQuery    = "SELECT * FROM teams WHERE id = ?"
)

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, createTournamentQuery, tournament)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	if err := s.db.GetContext(ctx, &tournament, getTournamentQuery, id); err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	if err := tx.GetContext(ctx, &tournament, getTournamentQuery, id); err != nil {
		return nil, err
	}
	return &tournament, nil
}

type TournamentFilter struct {
	Status  *bracket.TournamentStatus
	OwnerID *uuid.UUID
}

func (s *TournamentStore) ListTournaments(ctx context.Context, filter TournamentFilter) ([]bracket.Tournament, error) {
	query := sq.Select("*").From("tournaments").OrderBy("start_date ASC", "created_at DESC")
	if filter.Status != nil {
		query = query.Where(sq.Eq{"status": *filter.Status})
	}
	if filter.OwnerID != nil {
		query = query.Where(sq.Eq{"owner_id": *filter.OwnerID})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	tournaments := []bracket.Tournament{}
	err = s.db.SelectContext(ctx, &tournaments, sqlStr, args...)
	return tournaments, err
}

func (s *TournamentStore) UpdateTournamentStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status bracket.TournamentStatus) error {
	_, err := tx.ExecContext(ctx, updateTournamentStatusQuery, status, id)
	return err
}

// RegisterTeamTx adds the team to the tournament and reports whether it was
// not registered before.
func (s *TournamentStore) RegisterTeamTx(ctx context.Context, tx *sqlx.Tx, tournamentID, teamID uuid.UUID) (bool, error) {
	res, err := tx.ExecContext(ctx, registerTeamQuery, tournamentID, teamID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (s *TournamentStore) CountRegisteredTeamsTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, countRegisteredTeamsQuery, tournamentID)
	return count, err
}

func (s *TournamentStore) GetRegisteredTeamIDs(ctx context.Context, tournamentID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids, registeredTeamIDsQuery, tournamentID)
	return ids, err
}

func (s *TournamentStore) GetRegisteredTeams(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Team, error) {
	teams := []bracket.Team{}
	err := s.db.SelectContext(ctx, &teams, registeredTeamsQuery, tournamentID)
	return teams, err
}

func (s *TournamentStore) CreateTeam(ctx context.Context, team *bracket.Team) error {
	_, err := s.db.NamedExecContext(ctx, createTeamQuery, team)
	return err
}

func (s *TournamentStore) GetTeam(ctx context.Context, id uuid.UUID) (*bracket.Team, error) {
	var team bracket.Team
	if err := s.db.GetContext(ctx, &team, getTeamQuery, id); err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TournamentStore) GetTeamTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Team, error) {
	var team bracket.Team
	if err := tx.GetContext(ctx, &team, getTeamQuery, id); err != nil {
		return nil, err
	}
	return &team, nil
}

// LookupTeamName resolves the display name the bracket shows for a team.
func (s *TournamentStore) LookupTeamName(ctx context.Context, id uuid.UUID) (string, error) {
	var name string
	err := s.db.GetContext(ctx, &name, "SELECT name FROM teams WHERE id = ?", id)
	return name, err
}
