package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openfooty/bracket-system/models"
	"github.com/openfooty/bracket-system/repositories"
)

type CreateTournamentInput struct {
	Name        string                  `json:"name"`
	Description *string                 `json:"description,omitempty"`
	Capacity    int                     `json:"capacity"`
	Format      models.TournamentFormat `json:"format"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)
	// GetByID returns the tournament with its registration list
	// enriched with usernames and team names.
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
	Delete(ctx context.Context, id int) error
	Register(ctx context.Context, tournamentID, playerID, teamID int) (*models.Registration, error)
	Withdraw(ctx context.Context, tournamentID, playerID int) error
}

type tournamentService struct {
	txManager      repositories.TxManager
	tournamentRepo repositories.TournamentRepository
	regRepo        repositories.RegistrationRepository
	logger         *slog.Logger
}

func NewTournamentService(
	txManager repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	regRepo repositories.RegistrationRepository,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		txManager:      txManager,
		tournamentRepo: tournamentRepo,
		regRepo:        regRepo,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if !models.IsValidCapacity(input.Capacity) {
		return nil, ErrTournamentInvalidCapacity
	}
	if !models.IsValidFormat(input.Format) {
		return nil, ErrTournamentInvalidFormat
	}

	t := &models.Tournament{
		Name:        name,
		Description: trimDescription(input.Description),
		Capacity:    input.Capacity,
		Format:      input.Format,
		Status:      models.StatusRegistration,
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("tournament created",
		slog.Int("tournament_id", t.ID),
		slog.String("format", string(t.Format)),
		slog.Int("capacity", t.Capacity))
	return t, nil
}

func trimDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *tournamentService) List(ctx context.Context) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx)
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	var (
		tournament *models.Tournament
		regs       []models.Registration
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gCtx, nil, id)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		tournament = t
		return nil
	})
	g.Go(func() error {
		list, err := s.regRepo.ListByTournament(gCtx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to list registrations for tournament %d: %w", id, err)
		}
		regs = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tournament.Registrations = regs
	tournament.RegisteredCount = len(regs)
	return tournament, nil
}

// statusTransitions lists the legal manual lifecycle moves. The
// knockout format has no group stage, so it goes straight to knockout.
func allowedNextStatuses(t *models.Tournament) []models.TournamentStatus {
	switch t.Status {
	case models.StatusRegistration:
		if t.Format == models.FormatKnockout {
			return []models.TournamentStatus{models.StatusKnockout}
		}
		return []models.TournamentStatus{models.StatusGroupStage}
	case models.StatusGroupStage:
		return []models.TournamentStatus{models.StatusKnockout}
	case models.StatusKnockout:
		return []models.TournamentStatus{models.StatusCompleted}
	}
	return nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	if !models.IsValidStatus(status) {
		return nil, ErrTournamentInvalidStatus
	}

	var updated *models.Tournament
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByID(ctx, exec, id)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}

		legal := false
		for _, next := range allowedNextStatuses(t) {
			if next == status {
				legal = true
				break
			}
		}
		if !legal {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, t.Status, status)
		}

		now := time.Now()
		var startedAt, completedAt *time.Time
		if t.Status == models.StatusRegistration {
			startedAt = &now
		}
		if status == models.StatusCompleted {
			completedAt = &now
		}

		if err := s.tournamentRepo.UpdateStatus(ctx, exec, id, status, startedAt, completedAt); err != nil {
			return err
		}

		t.Status = status
		if startedAt != nil {
			t.StartedAt = startedAt
		}
		if completedAt != nil {
			t.CompletedAt = completedAt
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tournament status updated",
		slog.Int("tournament_id", id),
		slog.String("status", string(status)))
	return updated, nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	err := s.tournamentRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return ErrTournamentNotFound
	}
	return err
}

// Register checks the open/full/uniqueness rules and inserts inside a
// single transaction; the unique constraints on registrations are the
// backstop for concurrent duplicates.
func (s *tournamentService) Register(ctx context.Context, tournamentID, playerID, teamID int) (*models.Registration, error) {
	reg := &models.Registration{
		TournamentID: tournamentID,
		PlayerID:     playerID,
		TeamID:       teamID,
	}

	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if t.Status != models.StatusRegistration {
			return ErrRegistrationNotOpen
		}

		count, err := s.regRepo.CountByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if count >= t.Capacity {
			return ErrTournamentFull
		}

		if _, err := s.regRepo.FindByTournamentAndPlayer(ctx, exec, tournamentID, playerID); err == nil {
			return ErrPlayerAlreadyEntered
		} else if !errors.Is(err, repositories.ErrRegistrationNotFound) {
			return err
		}
		if _, err := s.regRepo.FindByTournamentAndTeam(ctx, exec, tournamentID, teamID); err == nil {
			return ErrTeamAlreadyTaken
		} else if !errors.Is(err, repositories.ErrRegistrationNotFound) {
			return err
		}

		if err := s.regRepo.Create(ctx, exec, reg); err != nil {
			switch {
			case errors.Is(err, repositories.ErrRegistrationPlayerConflict):
				return ErrPlayerAlreadyEntered
			case errors.Is(err, repositories.ErrRegistrationTeamConflict):
				return ErrTeamAlreadyTaken
			case errors.Is(err, repositories.ErrRegistrationInvalidRef):
				return ErrNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("player registered",
		slog.Int("tournament_id", tournamentID),
		slog.Int("player_id", playerID),
		slog.Int("team_id", teamID))
	return reg, nil
}

func (s *tournamentService) Withdraw(ctx context.Context, tournamentID, playerID int) error {
	return s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if t.Status != models.StatusRegistration {
			return ErrWithdrawClosed
		}

		if err := s.regRepo.DeleteByTournamentAndPlayer(ctx, exec, tournamentID, playerID); err != nil {
			if errors.Is(err, repositories.ErrRegistrationNotFound) {
				return ErrRegistrationNotFound
			}
			return err
		}
		return nil
	})
}
