package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openfooty/bracket-system/models"
)

var ErrGroupStandingNotFound = errors.New("group standing not found")

type GroupStandingRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, standings []*models.GroupStanding) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
	// ListByTournament returns standings grouped by group name and
	// ranked inside each group by points desc, goals-for desc.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.GroupStanding, error)
	// GetForUpdate row-locks one standing so a concurrent confirmation
	// of another match in the same group cannot interleave its
	// read-increment-write.
	GetForUpdate(ctx context.Context, exec SQLExecutor, tournamentID, registrationID int) (*models.GroupStanding, error)
	Update(ctx context.Context, exec SQLExecutor, standing *models.GroupStanding) error
}

type postgresGroupStandingRepository struct {
	db *sql.DB
}

func NewPostgresGroupStandingRepository(db *sql.DB) GroupStandingRepository {
	return &postgresGroupStandingRepository{db: db}
}

func (r *postgresGroupStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGroupStandingRepository) BatchCreate(ctx context.Context, exec SQLExecutor, standings []*models.GroupStanding) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO group_standings
			(tournament_id, group_name, registration_id, team_id,
			 played, won, drawn, lost, goals_for, goals_against, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	for _, s := range standings {
		err := executor.QueryRowContext(ctx, query,
			s.TournamentID, s.GroupName, s.RegistrationID, s.TeamID,
			s.Played, s.Won, s.Drawn, s.Lost, s.GoalsFor, s.GoalsAgainst, s.Points,
		).Scan(&s.ID)
		if err != nil {
			return fmt.Errorf("failed to create standing for registration %d: %w", s.RegistrationID, err)
		}
	}
	return nil
}

func (r *postgresGroupStandingRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM group_standings WHERE tournament_id = $1`, tournamentID)
	return err
}

func (r *postgresGroupStandingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.GroupStanding, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT gs.id, gs.tournament_id, gs.group_name, gs.registration_id, gs.team_id,
		       gs.played, gs.won, gs.drawn, gs.lost, gs.goals_for, gs.goals_against, gs.points,
		       t.name, p.username
		FROM group_standings gs
		JOIN teams t ON t.id = gs.team_id
		JOIN registrations r ON r.id = gs.registration_id
		JOIN players p ON p.id = r.player_id
		WHERE gs.tournament_id = $1
		ORDER BY gs.group_name ASC, gs.points DESC, gs.goals_for DESC, gs.registration_id ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]*models.GroupStanding, 0)
	for rows.Next() {
		s := &models.GroupStanding{}
		if scanErr := rows.Scan(
			&s.ID, &s.TournamentID, &s.GroupName, &s.RegistrationID, &s.TeamID,
			&s.Played, &s.Won, &s.Drawn, &s.Lost, &s.GoalsFor, &s.GoalsAgainst, &s.Points,
			&s.TeamName, &s.Username,
		); scanErr != nil {
			return nil, scanErr
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}

func (r *postgresGroupStandingRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, tournamentID, registrationID int) (*models.GroupStanding, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, group_name, registration_id, team_id,
		       played, won, drawn, lost, goals_for, goals_against, points
		FROM group_standings
		WHERE tournament_id = $1 AND registration_id = $2
		FOR UPDATE`

	s := &models.GroupStanding{}
	err := executor.QueryRowContext(ctx, query, tournamentID, registrationID).Scan(
		&s.ID, &s.TournamentID, &s.GroupName, &s.RegistrationID, &s.TeamID,
		&s.Played, &s.Won, &s.Drawn, &s.Lost, &s.GoalsFor, &s.GoalsAgainst, &s.Points,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupStandingNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresGroupStandingRepository) Update(ctx context.Context, exec SQLExecutor, s *models.GroupStanding) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE group_standings SET
			played = $1, won = $2, drawn = $3, lost = $4,
			goals_for = $5, goals_against = $6, points = $7
		WHERE id = $8`
	result, err := executor.ExecContext(ctx, query,
		s.Played, s.Won, s.Drawn, s.Lost,
		s.GoalsFor, s.GoalsAgainst, s.Points,
		s.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGroupStandingNotFound)
}
