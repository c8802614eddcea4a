package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/openfooty/bracket-system/models"
)

var (
	ErrMatchNotFound         = errors.New("match not found")
	ErrMatchAlreadyConfirmed = errors.New("match is already confirmed")
)

type MatchRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	UpdateScore(ctx context.Context, exec SQLExecutor, id int, homeScore, awayScore int) error
	// Confirm flips the one-way confirmed latch. It only matches rows
	// that are still unconfirmed, so a second confirmation of the same
	// match affects zero rows and reports ErrMatchAlreadyConfirmed.
	Confirm(ctx context.Context, exec SQLExecutor, id int) error
	// ListByTournament joins in team names and player usernames.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Match, error)
	ListByStage(ctx context.Context, exec SQLExecutor, tournamentID int, stage models.MatchStage) ([]*models.Match, error)
	ListUnconfirmedScored(ctx context.Context, exec SQLExecutor, tournamentID int, groupName *string) ([]*models.Match, error)
	ListByRegistrations(ctx context.Context, registrationIDs []int) ([]*models.Match, error)
	DeleteGroupStage(ctx context.Context, exec SQLExecutor, tournamentID int) error
	DeleteKnockout(ctx context.Context, exec SQLExecutor, tournamentID int) error
	// SetSlotSide writes a resolved participant into one side of a
	// knockout placeholder, addressed by stage and bracket slot.
	SetSlotSide(ctx context.Context, exec SQLExecutor, tournamentID int, stage models.MatchStage, matchOrder, side int, regID, teamID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) BatchCreate(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(tournament_id, stage, group_name, match_order,
			 next_stage, next_match_order, next_side,
			 home_reg_id, away_reg_id, home_team_id, away_team_id,
			 home_score, away_score, confirmed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at`

	for _, m := range matches {
		err := executor.QueryRowContext(ctx, query,
			m.TournamentID, m.Stage, m.GroupName, m.MatchOrder,
			m.NextStage, m.NextOrder, m.NextSide,
			m.HomeRegID, m.AwayRegID, m.HomeTeamID, m.AwayTeamID,
			m.HomeScore, m.AwayScore, m.Confirmed,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create match (stage %s): %w", m.Stage, err)
		}
	}
	return nil
}

const matchSelectColumns = `
	m.id, m.tournament_id, m.stage, m.group_name, m.match_order,
	m.next_stage, m.next_match_order, m.next_side,
	m.home_reg_id, m.away_reg_id, m.home_team_id, m.away_team_id,
	m.home_score, m.away_score, m.confirmed, m.created_at`

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	err := rowScanner.Scan(
		&m.ID, &m.TournamentID, &m.Stage, &m.GroupName, &m.MatchOrder,
		&m.NextStage, &m.NextOrder, &m.NextSide,
		&m.HomeRegID, &m.AwayRegID, &m.HomeTeamID, &m.AwayTeamID,
		&m.HomeScore, &m.AwayScore, &m.Confirmed, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchSelectColumns + ` FROM matches m WHERE m.id = $1`
	return r.scanMatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, exec SQLExecutor, id int, homeScore, awayScore int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE matches SET home_score = $1, away_score = $2 WHERE id = $3 AND confirmed = FALSE`
	result, err := executor.ExecContext(ctx, query, homeScore, awayScore, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchAlreadyConfirmed)
}

func (r *postgresMatchRepository) Confirm(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE matches SET confirmed = TRUE WHERE id = $1 AND confirmed = FALSE`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchAlreadyConfirmed)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT` + matchSelectColumns + `,
		       ht.name, at.name, hp.username, ap.username
		FROM matches m
		LEFT JOIN teams ht ON ht.id = m.home_team_id
		LEFT JOIN teams at ON at.id = m.away_team_id
		LEFT JOIN registrations hr ON hr.id = m.home_reg_id
		LEFT JOIN players hp ON hp.id = hr.player_id
		LEFT JOIN registrations ar ON ar.id = m.away_reg_id
		LEFT JOIN players ap ON ap.id = ar.player_id
		WHERE m.tournament_id = $1
		ORDER BY m.id ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m := &models.Match{}
		var homeTeam, awayTeam, homePlayer, awayPlayer sql.NullString
		if scanErr := rows.Scan(
			&m.ID, &m.TournamentID, &m.Stage, &m.GroupName, &m.MatchOrder,
			&m.NextStage, &m.NextOrder, &m.NextSide,
			&m.HomeRegID, &m.AwayRegID, &m.HomeTeamID, &m.AwayTeamID,
			&m.HomeScore, &m.AwayScore, &m.Confirmed, &m.CreatedAt,
			&homeTeam, &awayTeam, &homePlayer, &awayPlayer,
		); scanErr != nil {
			return nil, scanErr
		}
		m.HomeTeamName = homeTeam.String
		m.AwayTeamName = awayTeam.String
		m.HomePlayer = homePlayer.String
		m.AwayPlayer = awayPlayer.String
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) ListByStage(ctx context.Context, exec SQLExecutor, tournamentID int, stage models.MatchStage) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT` + matchSelectColumns + `
		FROM matches m
		WHERE m.tournament_id = $1 AND m.stage = $2
		ORDER BY m.match_order ASC NULLS LAST, m.id ASC`
	return r.queryMatches(ctx, executor, query, tournamentID, stage)
}

func (r *postgresMatchRepository) ListUnconfirmedScored(ctx context.Context, exec SQLExecutor, tournamentID int, groupName *string) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT` + matchSelectColumns + `
		FROM matches m
		WHERE m.tournament_id = $1
		  AND m.confirmed = FALSE
		  AND m.home_score IS NOT NULL
		  AND m.away_score IS NOT NULL`
	args := []interface{}{tournamentID}
	if groupName != nil {
		query += ` AND m.group_name = $2`
		args = append(args, *groupName)
	}
	query += ` ORDER BY m.id ASC`
	return r.queryMatches(ctx, executor, query, args...)
}

func (r *postgresMatchRepository) ListByRegistrations(ctx context.Context, registrationIDs []int) ([]*models.Match, error) {
	if len(registrationIDs) == 0 {
		return []*models.Match{}, nil
	}
	query := `
		SELECT` + matchSelectColumns + `
		FROM matches m
		WHERE m.home_reg_id = ANY($1) OR m.away_reg_id = ANY($1)
		ORDER BY m.created_at ASC, m.id ASC`
	return r.queryMatches(ctx, r.db, query, pq.Array(registrationIDs))
}

func (r *postgresMatchRepository) DeleteGroupStage(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`DELETE FROM matches WHERE tournament_id = $1 AND stage = $2`,
		tournamentID, models.StageGroup)
	return err
}

func (r *postgresMatchRepository) DeleteKnockout(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`DELETE FROM matches WHERE tournament_id = $1 AND stage <> $2`,
		tournamentID, models.StageGroup)
	return err
}

func (r *postgresMatchRepository) SetSlotSide(ctx context.Context, exec SQLExecutor, tournamentID int, stage models.MatchStage, matchOrder, side int, regID, teamID int) error {
	executor := r.getExecutor(exec)
	var query string
	switch side {
	case 1:
		query = `UPDATE matches SET home_reg_id = $1, home_team_id = $2
			WHERE tournament_id = $3 AND stage = $4 AND match_order = $5`
	case 2:
		query = `UPDATE matches SET away_reg_id = $1, away_team_id = $2
			WHERE tournament_id = $3 AND stage = $4 AND match_order = $5`
	default:
		return fmt.Errorf("invalid bracket slot side %d", side)
	}
	result, err := executor.ExecContext(ctx, query, regID, teamID, tournamentID, stage, matchOrder)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
