package store

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/AdamBeresnev/elim-bracket/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

type MatchStore struct {
	db *sqlx.DB
}

func NewMatchStore(db *sqlx.DB) *MatchStore {
	return &MatchStore{db: db}
}

// ErrDuplicate is returned when a write hits a primary key or unique
// constraint.
var ErrDuplicate = errors.New("duplicate row")

const (
	createMatchQuery = `
		INSERT INTO matches (
			id, tournament_id, number, name, round_number, round_label,
			next_match_number, start_time, state, team1_score, team2_score
		) VALUES (
			:id, :tournament_id, :number, :name, :round_number, :round_label,
			:next_match_number, :start_time, :state, :team1_score, :team2_score
		)
	`
	createParticipantQuery = `
		INSERT INTO match_participants (
			match_id, slot, kind, team_id, name, source_match, is_winner, status, result_text
		) VALUES (
			:match_id, :slot, :kind, :team_id, :name, :source_match, :is_winner, :status, :result_text
		)
	`
	markBracketGeneratedQuery = "INSERT INTO brackets (tournament_id) VALUES (?)"
	countMatchesQuery         = "SELECT COUNT(*) FROM matches WHERE tournament_id = ?"

	getMatchesQuery = "SELECT * FROM matches WHERE tournament_id = ? ORDER BY number ASC"
	getMatchQuery   = "SELECT * FROM matches WHERE tournament_id = ? AND number = ?"

	getParticipantsQuery = `
		SELECT mp.* FROM match_participants mp
		JOIN matches m ON m.id = mp.match_id
		WHERE m.tournament_id = ?
		ORDER BY m.number ASC, mp.slot ASC
	`
	getMatchParticipantsQuery = "SELECT * FROM match_participants WHERE match_id = ? ORDER BY slot ASC"

	updateMatchResultQuery = `
		UPDATE matches SET state = ?, team1_score = ?, team2_score = ?
		WHERE id = ?
	`
	updateParticipantResultQuery = `
		UPDATE match_participants SET is_winner = ?, status = ?, result_text = ?
		WHERE match_id = ? AND slot = ?
	`
	updateMatchDetailsQuery = `
		UPDATE matches SET state = ?, start_time = ?, team1_score = ?, team2_score = ?
		WHERE id = ?
	`

	// Only a slot still waiting on the source match is filled, so replaying
	// an advancement touches nothing.
	advanceWinnerQuery = `
		UPDATE match_participants SET kind = ?, team_id = ?, name = ?, source_match = NULL
		WHERE match_id = (SELECT id FROM matches WHERE tournament_id = ? AND number = ?)
		AND kind = 'pending' AND source_match = ?
	`
)

type slotRow struct {
	MatchID     uuid.UUID                 `db:"match_id"`
	Slot        int                       `db:"slot"`
	Kind        bracket.SlotKind          `db:"kind"`
	TeamID      *uuid.UUID                `db:"team_id"`
	Name        string                    `db:"name"`
	SourceMatch *int                      `db:"source_match"`
	IsWinner    bool                      `db:"is_winner"`
	Status      bracket.ParticipantStatus `db:"status"`
	ResultText  *bracket.ResultText       `db:"result_text"`
}

func toSlotRow(matchID uuid.UUID, slot int, p bracket.Participant) slotRow {
	row := slotRow{
		MatchID:    matchID,
		Slot:       slot,
		Kind:       p.Kind,
		Name:       p.DisplayName(),
		IsWinner:   p.IsWinner,
		Status:     p.Status,
		ResultText: p.Result,
	}
	if row.Status == "" {
		row.Status = bracket.ParticipantPending
	}
	switch p.Kind {
	case bracket.SlotTeam:
		id := p.TeamID
		row.TeamID = &id
	case bracket.SlotPending:
		n := p.SourceMatch
		row.SourceMatch = &n
	}
	return row
}

func (r slotRow) participant() bracket.Participant {
	p := bracket.Participant{
		Kind:     r.Kind,
		IsWinner: r.IsWinner,
		Status:   r.Status,
		Result:   r.ResultText,
	}
	switch r.Kind {
	case bracket.SlotTeam:
		if r.TeamID != nil {
			p.TeamID = *r.TeamID
		}
		p.Name = r.Name
	case bracket.SlotPending:
		if r.SourceMatch != nil {
			p.SourceMatch = *r.SourceMatch
		}
	}
	return p
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
		return true
	}
	return false
}

// MarkBracketGeneratedTx claims the tournament's single bracket. A second
// claim fails with ErrDuplicate.
func (s *MatchStore) MarkBracketGeneratedTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, markBracketGeneratedQuery, tournamentID)
	if isConstraintViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MatchStore) CountMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, countMatchesQuery, tournamentID)
	return count, err
}

func (s *MatchStore) CountMatches(ctx context.Context, tournamentID uuid.UUID) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, countMatchesQuery, tournamentID)
	return count, err
}

func (s *MatchStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}

	if _, err := tx.NamedExecContext(ctx, createMatchQuery, matches); err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicate
		}
		return err
	}

	rows := make([]slotRow, 0, len(matches)*2)
	for _, m := range matches {
		for slot, p := range m.Participants {
			rows = append(rows, toSlotRow(m.ID, slot, p))
		}
	}
	_, err := tx.NamedExecContext(ctx, createParticipantQuery, rows)
	return err
}

// GetMatches returns every match of the tournament with its participants,
// ordered by match number.
func (s *MatchStore) GetMatches(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
	matches := []bracket.Match{}
	if err := s.db.SelectContext(ctx, &matches, getMatchesQuery, tournamentID); err != nil {
		return nil, err
	}

	var rows []slotRow
	if err := s.db.SelectContext(ctx, &rows, getParticipantsQuery, tournamentID); err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]int, len(matches))
	for i, m := range matches {
		byID[m.ID] = i
	}
	for _, row := range rows {
		i, ok := byID[row.MatchID]
		if !ok || row.Slot < 0 || row.Slot > 1 {
			continue
		}
		matches[i].Participants[row.Slot] = row.participant()
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Number < matches[j].Number
	})
	return matches, nil
}

func (s *MatchStore) GetMatch(ctx context.Context, tournamentID uuid.UUID, number int) (*bracket.Match, error) {
	return getMatch(ctx, s.db, tournamentID, number)
}

func (s *MatchStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, number int) (*bracket.Match, error) {
	return getMatch(ctx, tx, tournamentID, number)
}

func getMatch(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID, number int) (*bracket.Match, error) {
	var match bracket.Match
	if err := sqlx.GetContext(ctx, q, &match, getMatchQuery, tournamentID, number); err != nil {
		return nil, err
	}

	var rows []slotRow
	if err := sqlx.SelectContext(ctx, q, &rows, getMatchParticipantsQuery, match.ID); err != nil {
		return nil, err
	}
	if len(rows) != 2 {
		return nil, sql.ErrNoRows
	}
	for _, row := range rows {
		match.Participants[row.Slot] = row.participant()
	}
	return &match, nil
}

// UpdateMatchResultTx persists the state, scores and per slot outcome of a
// completed match.
func (s *MatchStore) UpdateMatchResultTx(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) error {
	if _, err := tx.ExecContext(ctx, updateMatchResultQuery, match.State, match.Team1Score, match.Team2Score, match.ID); err != nil {
		return err
	}
	for slot, p := range match.Participants {
		if _, err := tx.ExecContext(ctx, updateParticipantResultQuery, p.IsWinner, p.Status, p.Result, match.ID, slot); err != nil {
			return err
		}
	}
	return nil
}

// AdvanceWinnerTx fills the slot of match nextNumber that waits on the
// winner of sourceNumber. It reports false when no such slot is left.
func (s *MatchStore) AdvanceWinnerTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, nextNumber, sourceNumber int, winner bracket.Participant) (bool, error) {
	var teamID *uuid.UUID
	if winner.Kind == bracket.SlotTeam {
		id := winner.TeamID
		teamID = &id
	}
	res, err := tx.ExecContext(ctx, advanceWinnerQuery,
		winner.Kind, teamID, winner.DisplayName(),
		tournamentID, nextNumber, sourceNumber,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateMatchDetailsTx overwrites the editable fields of a match that has not
// finished yet: state, schedule and live scores.
func (s *MatchStore) UpdateMatchDetailsTx(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) error {
	_, err := tx.ExecContext(ctx, updateMatchDetailsQuery, match.State, match.StartTime, match.Team1Score, match.Team2Score, match.ID)
	return err
}
