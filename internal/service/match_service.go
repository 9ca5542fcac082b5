package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/elim-bracket/internal/bracket"
	"github.com/AdamBeresnev/elim-bracket/internal/metrics"
	"github.com/AdamBeresnev/elim-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	matches     *store.MatchStore
}

func NewMatchService(db *sqlx.DB, tournaments *store.TournamentStore, matches *store.MatchStore) *MatchService {
	return &MatchService{db: db, tournaments: tournaments, matches: matches}
}

// ResultInput is one reported result. Number is the tournament scoped match
// id. WinnerID, when set, decides the match regardless of the scores.
type ResultInput struct {
	Number     int        `json:"id"`
	Team1Score *int       `json:"team1Score"`
	Team2Score *int       `json:"team2Score"`
	WinnerID   *uuid.UUID `json:"winnerId"`
}

// Outcome is the reported match and, when it has one, the downstream match
// its winner was advanced into.
type Outcome struct {
	Match      *bracket.Match `json:"match"`
	Downstream *bracket.Match `json:"downstream,omitempty"`
	Advanced   bool           `json:"advanced"`
}

// MatchUpdate is an administrative edit. Nil fields are left as they are.
type MatchUpdate struct {
	State      *string    `json:"state"`
	StartTime  *time.Time `json:"startTime"`
	Team1Score *int       `json:"team1Score"`
	Team2Score *int       `json:"team2Score"`
	WinnerID   *uuid.UUID `json:"winnerId"`
}

func (u MatchUpdate) empty() bool {
	return u.State == nil && u.StartTime == nil && u.Team1Score == nil && u.Team2Score == nil && u.WinnerID == nil
}

// ListMatches returns the tournament's matches ordered by number with the
// result text of every played participant filled in.
func (s *MatchService) ListMatches(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
	if _, err := s.tournaments.GetTournament(ctx, tournamentID); err != nil {
		return nil, lookupErr("get tournament", err, bracket.ErrTournamentNotFound)
	}

	matches, err := s.matches.GetMatches(ctx, tournamentID)
	if err != nil {
		return nil, storageErr("get matches", err)
	}
	for i := range matches {
		matches[i].Annotate()
	}
	return matches, nil
}

// ReportResult records the result of one match and advances its winner.
// The match and the downstream slot are written in one transaction.
func (s *MatchService) ReportResult(ctx context.Context, tournamentID uuid.UUID, in ResultInput) (*Outcome, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer tx.Rollback()

	outcome, err := s.reportTx(ctx, tx, tournamentID, in)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("commit result", err)
	}

	recordOutcome(tournamentID, outcome)
	return outcome, nil
}

// ReportResults applies a batch of results in order. Either every result is
// committed or none is.
func (s *MatchService) ReportResults(ctx context.Context, tournamentID uuid.UUID, inputs []ResultInput) ([]bracket.Match, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no results given", bracket.ErrInvalidInput)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer tx.Rollback()

	outcomes := make([]*Outcome, 0, len(inputs))
	for _, in := range inputs {
		outcome, err := s.reportTx(ctx, tx, tournamentID, in)
		if err != nil {
			return nil, fmt.Errorf("match %d: %w", in.Number, err)
		}
		outcomes = append(outcomes, outcome)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("commit results", err)
	}

	for _, outcome := range outcomes {
		recordOutcome(tournamentID, outcome)
	}
	return s.ListMatches(ctx, tournamentID)
}

// UpdateMatch edits the schedule, live scores or state of an unfinished
// match. Moving it to DONE reports the result like ReportResult does.
func (s *MatchService) UpdateMatch(ctx context.Context, tournamentID uuid.UUID, number int, update MatchUpdate) (*Outcome, error) {
	if update.empty() {
		return nil, fmt.Errorf("%w: nothing to update", bracket.ErrInvalidInput)
	}

	var target *bracket.MatchState
	if update.State != nil {
		state, err := bracket.ParseMatchState(*update.State)
		if err != nil {
			return nil, err
		}
		target = &state
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer tx.Rollback()

	match, err := s.loadMatchTx(ctx, tx, tournamentID, number)
	if err != nil {
		return nil, err
	}
	if match.State.Done() {
		return nil, fmt.Errorf("%w: match %d is finished", bracket.ErrIllegalTransition, number)
	}
	if target != nil && !match.State.CanTransition(*target) {
		return nil, fmt.Errorf("%w: %s to %s", bracket.ErrIllegalTransition, match.State, *target)
	}

	if update.StartTime != nil {
		match.StartTime = *update.StartTime
	}
	if update.Team1Score != nil {
		match.Team1Score = update.Team1Score
	}
	if update.Team2Score != nil {
		match.Team2Score = update.Team2Score
	}

	var outcome *Outcome
	if (target != nil && target.Done()) || update.WinnerID != nil {
		if err := s.matches.UpdateMatchDetailsTx(ctx, tx, match); err != nil {
			return nil, storageErr("update match", err)
		}
		outcome, err = s.reportTx(ctx, tx, tournamentID, ResultInput{
			Number:     number,
			Team1Score: match.Team1Score,
			Team2Score: match.Team2Score,
			WinnerID:   update.WinnerID,
		})
		if err != nil {
			return nil, err
		}
	} else {
		if target != nil {
			match.State = *target
		}
		if err := s.matches.UpdateMatchDetailsTx(ctx, tx, match); err != nil {
			return nil, storageErr("update match", err)
		}
		outcome = &Outcome{Match: match}
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("commit match update", err)
	}

	if outcome.Match.State.Done() {
		recordOutcome(tournamentID, outcome)
	}
	return outcome, nil
}

func (s *MatchService) loadMatchTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, number int) (*bracket.Match, error) {
	if number < 1 {
		return nil, fmt.Errorf("%w: match id must be positive", bracket.ErrInvalidInput)
	}

	match, err := s.matches.GetMatchTx(ctx, tx, tournamentID, number)
	if err == nil {
		return match, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, storageErr("get match", err)
	}

	if _, err := s.tournaments.GetTournamentTx(ctx, tx, tournamentID); err != nil {
		return nil, lookupErr("get tournament", err, bracket.ErrTournamentNotFound)
	}
	return nil, fmt.Errorf("%w: %d", bracket.ErrMatchNotFound, number)
}

func (s *MatchService) reportTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, in ResultInput) (*Outcome, error) {
	match, err := s.loadMatchTx(ctx, tx, tournamentID, in.Number)
	if err != nil {
		return nil, err
	}

	winner, err := match.WinnerSlot(in.Team1Score, in.Team2Score, in.WinnerID)
	if err != nil {
		return nil, err
	}

	if match.State.Done() {
		if _, recorded, ok := match.Winner(); ok && recorded != winner {
			return nil, bracket.ErrResultRecorded
		}
	}

	match.Complete(winner, in.Team1Score, in.Team2Score)
	if err := s.matches.UpdateMatchResultTx(ctx, tx, match); err != nil {
		return nil, storageErr("update match result", err)
	}

	outcome := &Outcome{Match: match}

	if match.NextMatchNumber == nil {
		if err := s.tournaments.UpdateTournamentStatusTx(ctx, tx, tournamentID, bracket.TournamentCompleted); err != nil {
			return nil, storageErr("update tournament status", err)
		}
		return outcome, nil
	}

	next := *match.NextMatchNumber
	champion, _, _ := match.Winner()
	advanced, err := s.matches.AdvanceWinnerTx(ctx, tx, tournamentID, next, match.Number, champion)
	if err != nil {
		return nil, storageErr("advance winner", err)
	}
	outcome.Advanced = advanced

	downstream, err := s.matches.GetMatchTx(ctx, tx, tournamentID, next)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		slog.Warn("downstream match missing", "tournament_id", tournamentID, "match", match.Number, "next_match", next)
	case err != nil:
		return nil, storageErr("get downstream match", err)
	default:
		outcome.Downstream = downstream
	}

	return outcome, nil
}

func recordOutcome(tournamentID uuid.UUID, outcome *Outcome) {
	m := outcome.Match
	metrics.ResultsReported.WithLabelValues(m.RoundLabel).Inc()

	winner, _, _ := m.Winner()
	if m.NextMatchNumber == nil {
		slog.Info("tournament completed", "tournament_id", tournamentID, "match", m.Number, "champion", winner.DisplayName())
		return
	}

	if outcome.Advanced {
		metrics.Advancements.WithLabelValues(metrics.AdvanceFilled).Inc()
		slog.Info("winner advanced",
			"tournament_id", tournamentID,
			"match", m.Number,
			"next_match", *m.NextMatchNumber,
			"winner", winner.DisplayName(),
		)
		return
	}

	metrics.Advancements.WithLabelValues(metrics.AdvanceSkipped).Inc()
	slog.Debug("advancement skipped, slot already resolved",
		"tournament_id", tournamentID,
		"match", m.Number,
		"next_match", *m.NextMatchNumber,
	)
}
