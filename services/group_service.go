package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/openfooty/bracket-system/brackets"
	"github.com/openfooty/bracket-system/models"
	"github.com/openfooty/bracket-system/repositories"
)

type GroupService interface {
	// GenerateGroups shuffles the registration pool into groups of four
	// and creates every round-robin fixture. Destructive: existing
	// standings and group matches for the tournament are replaced.
	GenerateGroups(ctx context.Context, tournamentID int) ([]*models.GroupStanding, error)
	ListStandings(ctx context.Context, tournamentID int) ([]*models.GroupStanding, error)
}

type groupService struct {
	txManager      repositories.TxManager
	tournamentRepo repositories.TournamentRepository
	regRepo        repositories.RegistrationRepository
	standingRepo   repositories.GroupStandingRepository
	matchRepo      repositories.MatchRepository
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewGroupService(
	txManager repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	regRepo repositories.RegistrationRepository,
	standingRepo repositories.GroupStandingRepository,
	matchRepo repositories.MatchRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) GroupService {
	return &groupService{
		txManager:      txManager,
		tournamentRepo: tournamentRepo,
		regRepo:        regRepo,
		standingRepo:   standingRepo,
		matchRepo:      matchRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *groupService) GenerateGroups(ctx context.Context, tournamentID int) ([]*models.GroupStanding, error) {
	var standings []*models.GroupStanding
	var matchCount int

	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if t.Format != models.FormatGroupKnockout {
			return fmt.Errorf("%w: %s tournaments have no group stage", ErrTournamentInvalidFormat, t.Format)
		}
		// Regeneration is allowed while the group stage is running, but
		// not once the knockout has been drawn.
		if t.Status != models.StatusRegistration && t.Status != models.StatusGroupStage {
			return fmt.Errorf("%w: cannot generate groups while status is %s", ErrInvalidStatusTransition, t.Status)
		}

		regs, err := s.regRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}

		entrants := make([]brackets.Entrant, len(regs))
		for i, reg := range regs {
			entrants[i] = brackets.Entrant{RegistrationID: reg.ID, TeamID: reg.TeamID}
		}

		groups, err := brackets.AllocateGroups(nil, entrants, brackets.DefaultGroupSize)
		if err != nil {
			if errors.Is(err, brackets.ErrNotEnoughEntrants) {
				return ErrNotEnoughRegistrations
			}
			if errors.Is(err, brackets.ErrLoneGroup) {
				return ErrUnevenRegistrations
			}
			return err
		}

		// Wipe the previous allocation before inserting the new one.
		if err := s.standingRepo.DeleteByTournament(ctx, exec, tournamentID); err != nil {
			return err
		}
		if err := s.matchRepo.DeleteGroupStage(ctx, exec, tournamentID); err != nil {
			return err
		}

		standings = standings[:0]
		var fixtures []*models.Match
		for _, group := range groups {
			for _, entrant := range group.Entrants {
				standings = append(standings, &models.GroupStanding{
					TournamentID:   tournamentID,
					GroupName:      group.Name,
					RegistrationID: entrant.RegistrationID,
					TeamID:         entrant.TeamID,
				})
			}
			fixtures = append(fixtures, roundRobinMatches(tournamentID, group)...)
		}

		if err := s.standingRepo.BatchCreate(ctx, exec, standings); err != nil {
			return err
		}
		if err := s.matchRepo.BatchCreate(ctx, exec, fixtures); err != nil {
			return err
		}
		matchCount = len(fixtures)

		var startedAt *time.Time
		if t.Status == models.StatusRegistration {
			now := time.Now()
			startedAt = &now
		}
		return s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusGroupStage, startedAt, nil)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("groups generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("standings", len(standings)),
		slog.Int("fixtures", matchCount))

	s.hub.BroadcastToRoom(tournamentRoom(tournamentID), brackets.WebSocketMessage{
		Type:    brackets.EventStandingsUpdated,
		RoomID:  tournamentRoom(tournamentID),
		Payload: standings,
	})
	return standings, nil
}

// roundRobinMatches turns one allocated group into its fixture rows.
func roundRobinMatches(tournamentID int, group brackets.Group) []*models.Match {
	fixtures := brackets.RoundRobinFixtures(group)
	matches := make([]*models.Match, 0, len(fixtures))
	for _, f := range fixtures {
		groupName := f.GroupName
		homeReg, awayReg := f.Home.RegistrationID, f.Away.RegistrationID
		homeTeam, awayTeam := f.Home.TeamID, f.Away.TeamID
		matches = append(matches, &models.Match{
			TournamentID: tournamentID,
			Stage:        models.StageGroup,
			GroupName:    &groupName,
			HomeRegID:    &homeReg,
			AwayRegID:    &awayReg,
			HomeTeamID:   &homeTeam,
			AwayTeamID:   &awayTeam,
		})
	}
	return matches
}

func (s *groupService) ListStandings(ctx context.Context, tournamentID int) ([]*models.GroupStanding, error) {
	return s.standingRepo.ListByTournament(ctx, nil, tournamentID)
}

func tournamentRoom(tournamentID int) string {
	return "tournament_" + strconv.Itoa(tournamentID)
}
