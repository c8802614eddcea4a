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
	ErrRegistrationNotFound       = errors.New("registration not found")
	ErrRegistrationPlayerConflict = errors.New("player is already registered for this tournament")
	ErrRegistrationTeamConflict   = errors.New("team is already taken in this tournament")
	ErrRegistrationInvalidRef     = errors.New("registration references an unknown player, team or tournament")
)

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error
	DeleteByTournamentAndPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	FindByTournamentAndPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (*models.Registration, error)
	FindByTournamentAndTeam(ctx context.Context, exec SQLExecutor, tournamentID, teamID int) (*models.Registration, error)
	// ListByTournament joins in the player username and team name.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Registration, error)
	ListByPlayer(ctx context.Context, playerID int) ([]models.Registration, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO registrations (tournament_id, player_id, team_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		reg.TournamentID, reg.PlayerID, reg.TeamID,
	).Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "registrations_tournament_id_team_id_key" {
					return ErrRegistrationTeamConflict
				}
				return ErrRegistrationPlayerConflict
			case "23503": // foreign_key_violation
				return ErrRegistrationInvalidRef
			}
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *postgresRegistrationRepository) DeleteByTournamentAndPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM registrations WHERE tournament_id = $1 AND player_id = $2`
	result, err := executor.ExecContext(ctx, query, tournamentID, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `SELECT COUNT(*) FROM registrations WHERE tournament_id = $1`
	var count int
	if err := executor.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresRegistrationRepository) FindByTournamentAndPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (*models.Registration, error) {
	query := `
		SELECT id, tournament_id, player_id, team_id, created_at
		FROM registrations
		WHERE tournament_id = $1 AND player_id = $2`
	return r.scanOne(r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, playerID))
}

func (r *postgresRegistrationRepository) FindByTournamentAndTeam(ctx context.Context, exec SQLExecutor, tournamentID, teamID int) (*models.Registration, error) {
	query := `
		SELECT id, tournament_id, player_id, team_id, created_at
		FROM registrations
		WHERE tournament_id = $1 AND team_id = $2`
	return r.scanOne(r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, teamID))
}

func (r *postgresRegistrationRepository) scanOne(row *sql.Row) (*models.Registration, error) {
	reg := &models.Registration{}
	err := row.Scan(&reg.ID, &reg.TournamentID, &reg.PlayerID, &reg.TeamID, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Registration, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT r.id, r.tournament_id, r.player_id, r.team_id, r.created_at,
		       p.username, t.name
		FROM registrations r
		JOIN players p ON p.id = r.player_id
		JOIN teams t ON t.id = r.team_id
		WHERE r.tournament_id = $1
		ORDER BY r.created_at ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		if scanErr := rows.Scan(
			&reg.ID, &reg.TournamentID, &reg.PlayerID, &reg.TeamID, &reg.CreatedAt,
			&reg.Username, &reg.TeamName,
		); scanErr != nil {
			return nil, scanErr
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *postgresRegistrationRepository) ListByPlayer(ctx context.Context, playerID int) ([]models.Registration, error) {
	query := `
		SELECT r.id, r.tournament_id, r.player_id, r.team_id, r.created_at,
		       p.username, t.name
		FROM registrations r
		JOIN players p ON p.id = r.player_id
		JOIN teams t ON t.id = r.team_id
		WHERE r.player_id = $1
		ORDER BY r.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		if scanErr := rows.Scan(
			&reg.ID, &reg.TournamentID, &reg.PlayerID, &reg.TeamID, &reg.CreatedAt,
			&reg.Username, &reg.TeamName,
		); scanErr != nil {
			return nil, scanErr
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
