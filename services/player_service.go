package services

import (
	"context"
	"errors"
	"sort"

	"github.com/openfooty/bracket-system/models"
	"github.com/openfooty/bracket-system/repositories"
)

// PlayerMatchRecord is one entry of a player's match history, with the
// outcome stated from the player's point of view.
type PlayerMatchRecord struct {
	Match  *models.Match `json:"match"`
	Result string        `json:"result"` // "win", "loss", "draw", "pending"
}

type PlayerService interface {
	List(ctx context.Context) ([]*models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	ListRegistrations(ctx context.Context, playerID int) ([]models.Registration, error)
	// MatchHistory returns every confirmed or scheduled match across
	// all of the player's registrations, newest tournament first.
	MatchHistory(ctx context.Context, playerID int) ([]PlayerMatchRecord, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	regRepo    repositories.RegistrationRepository
	matchRepo  repositories.MatchRepository
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	regRepo repositories.RegistrationRepository,
	matchRepo repositories.MatchRepository,
) PlayerService {
	return &playerService{playerRepo: playerRepo, regRepo: regRepo, matchRepo: matchRepo}
}

func (s *playerService) List(ctx context.Context) ([]*models.Player, error) {
	return s.playerRepo.List(ctx)
}

func (s *playerService) GetByID(ctx context.Context, id int) (*models.Player, error) {
	p, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *playerService) ListRegistrations(ctx context.Context, playerID int) ([]models.Registration, error) {
	if _, err := s.GetByID(ctx, playerID); err != nil {
		return nil, err
	}
	return s.regRepo.ListByPlayer(ctx, playerID)
}

func (s *playerService) MatchHistory(ctx context.Context, playerID int) ([]PlayerMatchRecord, error) {
	regs, err := s.ListRegistrations(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if len(regs) == 0 {
		return []PlayerMatchRecord{}, nil
	}

	regIDs := make([]int, len(regs))
	mine := make(map[int]bool, len(regs))
	for i, reg := range regs {
		regIDs[i] = reg.ID
		mine[reg.ID] = true
	}

	matches, err := s.matchRepo.ListByRegistrations(ctx, regIDs)
	if err != nil {
		return nil, err
	}

	records := make([]PlayerMatchRecord, 0, len(matches))
	for _, m := range matches {
		records = append(records, PlayerMatchRecord{Match: m, Result: resultFor(m, mine)})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Match.CreatedAt.After(records[j].Match.CreatedAt)
	})
	return records, nil
}

// resultFor states a match outcome from the side the player occupied.
func resultFor(m *models.Match, mine map[int]bool) string {
	if !m.Confirmed || m.HomeScore == nil || m.AwayScore == nil {
		return "pending"
	}
	playedHome := m.HomeRegID != nil && mine[*m.HomeRegID]
	switch m.WinnerSide() {
	case 0:
		return "draw"
	case 1:
		if playedHome {
			return "win"
		}
		return "loss"
	default:
		if playedHome {
			return "loss"
		}
		return "win"
	}
}
