package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/openfooty/bracket-system/brackets"
	"github.com/openfooty/bracket-system/models"
	"github.com/openfooty/bracket-system/repositories"
)

type MatchService interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	// SaveScore records a provisional score on an unconfirmed match.
	// Scores can be corrected any number of times until confirmation.
	SaveScore(ctx context.Context, matchID, homeScore, awayScore int) (*models.Match, error)
	// Confirm locks a scored match and, for group matches, applies the
	// result to both standings rows exactly once.
	Confirm(ctx context.Context, matchID int) (*models.Match, error)
	// ConfirmAll confirms every scored, unconfirmed match of the
	// tournament, optionally narrowed to one group. Drawn knockout
	// scores are skipped, not confirmed. Returns how many matches were
	// confirmed.
	ConfirmAll(ctx context.Context, tournamentID int, groupName *string) (int, error)
	// GenerateKnockout seeds and persists the full single-elimination
	// bracket, TBD placeholders included. Destructive for any previous
	// knockout draw.
	GenerateKnockout(ctx context.Context, tournamentID int) ([]*models.Match, error)
	// ResolveRound copies the winners of a fully confirmed knockout
	// round into their next-round slots; resolving the final completes
	// the tournament.
	ResolveRound(ctx context.Context, tournamentID int, stage models.MatchStage) ([]*models.Match, error)
}

type matchService struct {
	txManager      repositories.TxManager
	tournamentRepo repositories.TournamentRepository
	regRepo        repositories.RegistrationRepository
	standingRepo   repositories.GroupStandingRepository
	matchRepo      repositories.MatchRepository
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewMatchService(
	txManager repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	regRepo repositories.RegistrationRepository,
	standingRepo repositories.GroupStandingRepository,
	matchRepo repositories.MatchRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		txManager:      txManager,
		tournamentRepo: tournamentRepo,
		regRepo:        regRepo,
		standingRepo:   standingRepo,
		matchRepo:      matchRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	sortMatches(matches)
	return matches, nil
}

// sortMatches orders a mixed fixture list the way a viewer reads a
// tournament: group matches first (by group, then id), then knockout
// rounds from the largest field down to the final, by bracket slot.
func sortMatches(matches []*models.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if ra, rb := models.StageRank(a.Stage), models.StageRank(b.Stage); ra != rb {
			return ra < rb
		}
		if a.Stage == models.StageGroup {
			ga, gb := "", ""
			if a.GroupName != nil {
				ga = *a.GroupName
			}
			if b.GroupName != nil {
				gb = *b.GroupName
			}
			if ga != gb {
				return ga < gb
			}
			return a.ID < b.ID
		}
		oa, ob := 0, 0
		if a.MatchOrder != nil {
			oa = *a.MatchOrder
		}
		if b.MatchOrder != nil {
			ob = *b.MatchOrder
		}
		return oa < ob
	})
}

func (s *matchService) SaveScore(ctx context.Context, matchID, homeScore, awayScore int) (*models.Match, error) {
	if homeScore < 0 || awayScore < 0 {
		return nil, fmt.Errorf("%w: scores cannot be negative", ErrValidationFailed)
	}

	var match *models.Match
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		m, err := s.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}
		if m.HomeRegID == nil || m.AwayRegID == nil {
			return fmt.Errorf("%w: both sides must be decided before scoring", ErrValidationFailed)
		}
		if err := s.matchRepo.UpdateScore(ctx, exec, matchID, homeScore, awayScore); err != nil {
			if errors.Is(err, repositories.ErrMatchAlreadyConfirmed) {
				return ErrMatchAlreadyConfirmed
			}
			return err
		}
		m.HomeScore = &homeScore
		m.AwayScore = &awayScore
		match = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastMatch(match)
	return match, nil
}

func (s *matchService) Confirm(ctx context.Context, matchID int) (*models.Match, error) {
	var match *models.Match
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		m, err := s.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}
		if err := s.confirmOne(ctx, exec, m); err != nil {
			return err
		}
		match = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match confirmed", slog.Int("match_id", match.ID), slog.String("stage", string(match.Stage)))
	s.broadcastMatch(match)
	if match.Stage == models.StageGroup {
		s.broadcastStandings(ctx, match.TournamentID)
	}
	return match, nil
}

func (s *matchService) ConfirmAll(ctx context.Context, tournamentID int, groupName *string) (int, error) {
	confirmed := 0
	var hadGroupMatch bool
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		matches, err := s.matchRepo.ListUnconfirmedScored(ctx, exec, tournamentID, groupName)
		if err != nil {
			return err
		}
		for _, m := range matches {
			if err := s.confirmOne(ctx, exec, m); err != nil {
				// A drawn knockout score is left unconfirmed for
				// correction instead of failing the whole sweep.
				if errors.Is(err, ErrKnockoutDrawNotAllowed) {
					continue
				}
				return fmt.Errorf("confirming match %d: %w", m.ID, err)
			}
			confirmed++
			if m.Stage == models.StageGroup {
				hadGroupMatch = true
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("matches confirmed in bulk",
		slog.Int("tournament_id", tournamentID),
		slog.Int("count", confirmed))
	if hadGroupMatch {
		s.broadcastStandings(ctx, tournamentID)
	}
	return confirmed, nil
}

// confirmOne locks one match and applies its result. Runs inside the
// caller's transaction so the latch and the standings writes commit
// together.
func (s *matchService) confirmOne(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	if m.Confirmed {
		return ErrMatchAlreadyConfirmed
	}
	if m.HomeScore == nil || m.AwayScore == nil {
		return ErrScoresMissing
	}
	if m.Stage != models.StageGroup && *m.HomeScore == *m.AwayScore {
		return ErrKnockoutDrawNotAllowed
	}

	if err := s.matchRepo.Confirm(ctx, exec, m.ID); err != nil {
		if errors.Is(err, repositories.ErrMatchAlreadyConfirmed) {
			return ErrMatchAlreadyConfirmed
		}
		return err
	}
	m.Confirmed = true

	if m.Stage != models.StageGroup {
		return nil
	}

	// Lock both standings rows in a fixed order so two concurrent
	// confirmations cannot deadlock.
	firstReg, secondReg := *m.HomeRegID, *m.AwayRegID
	if secondReg < firstReg {
		firstReg, secondReg = secondReg, firstReg
	}
	first, err := s.standingRepo.GetForUpdate(ctx, exec, m.TournamentID, firstReg)
	if err != nil {
		return err
	}
	second, err := s.standingRepo.GetForUpdate(ctx, exec, m.TournamentID, secondReg)
	if err != nil {
		return err
	}

	home, away := first, second
	if home.RegistrationID != *m.HomeRegID {
		home, away = second, first
	}
	applyMatchResult(home, away, *m.HomeScore, *m.AwayScore)

	if err := s.standingRepo.Update(ctx, exec, home); err != nil {
		return err
	}
	return s.standingRepo.Update(ctx, exec, away)
}

func (s *matchService) GenerateKnockout(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	var created []*models.Match
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}

		entrants, fromStatus, err := s.knockoutEntrants(ctx, exec, t)
		if err != nil {
			return err
		}
		if len(entrants) < 2 {
			return ErrNotEnoughQualifiers
		}

		if err := s.matchRepo.DeleteKnockout(ctx, exec, tournamentID); err != nil {
			return err
		}

		created = knockoutRows(tournamentID, brackets.BuildKnockout(entrants))
		if err := s.matchRepo.BatchCreate(ctx, exec, created); err != nil {
			return err
		}

		var startedAt *time.Time
		if fromStatus == models.StatusRegistration {
			now := time.Now()
			startedAt = &now
		}
		return s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusKnockout, startedAt, nil)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("knockout generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("matches", len(created)))
	s.hub.BroadcastToRoom(tournamentRoom(tournamentID), brackets.WebSocketMessage{
		Type:    brackets.EventBracketUpdated,
		RoomID:  tournamentRoom(tournamentID),
		Payload: created,
	})
	return created, nil
}

// knockoutEntrants produces the seeded entrant order for the bracket:
// group-stage qualifiers in mirror order, or the whole shuffled
// registration pool for pure knockout tournaments.
func (s *matchService) knockoutEntrants(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) ([]brackets.Entrant, models.TournamentStatus, error) {
	switch t.Format {
	case models.FormatGroupKnockout:
		if t.Status != models.StatusGroupStage {
			return nil, "", fmt.Errorf("%w: knockout requires a finished group stage, status is %s", ErrInvalidStatusTransition, t.Status)
		}
		groupMatches, err := s.matchRepo.ListByStage(ctx, exec, t.ID, models.StageGroup)
		if err != nil {
			return nil, "", err
		}
		if len(groupMatches) == 0 {
			return nil, "", ErrGroupStageNotFinished
		}
		for _, m := range groupMatches {
			if !m.Confirmed {
				return nil, "", ErrGroupStageNotFinished
			}
		}
		standings, err := s.standingRepo.ListByTournament(ctx, exec, t.ID)
		if err != nil {
			return nil, "", err
		}
		entrants, err := brackets.SeedFromStandings(standings)
		if err != nil {
			if errors.Is(err, brackets.ErrGroupIncomplete) {
				return nil, "", ErrNotEnoughQualifiers
			}
			return nil, "", err
		}
		return entrants, t.Status, nil

	case models.FormatKnockout:
		if t.Status != models.StatusRegistration {
			return nil, "", fmt.Errorf("%w: bracket already drawn, status is %s", ErrInvalidStatusTransition, t.Status)
		}
		regs, err := s.regRepo.ListByTournament(ctx, exec, t.ID)
		if err != nil {
			return nil, "", err
		}
		entrants := make([]brackets.Entrant, len(regs))
		for i, reg := range regs {
			entrants[i] = brackets.Entrant{RegistrationID: reg.ID, TeamID: reg.TeamID}
		}
		return brackets.ShuffleEntrants(nil, entrants), t.Status, nil
	}
	return nil, "", ErrTournamentInvalidFormat
}

// knockoutRows converts the generated bracket into persistable rows.
// TBD slots stay NULL until the previous round resolves. Each row
// keeps the feed link the generator computed for it, since a bracket
// with byes is not a plain halving of round names.
func knockoutRows(tournamentID int, bracket []brackets.KnockoutMatch) []*models.Match {
	rows := make([]*models.Match, 0, len(bracket))
	for _, km := range bracket {
		order := km.Order
		row := &models.Match{
			TournamentID: tournamentID,
			Stage:        km.Stage,
			MatchOrder:   &order,
		}
		if km.NextStage != "" {
			nextStage, nextOrder, nextSide := km.NextStage, km.NextOrder, km.NextSide
			row.NextStage, row.NextOrder, row.NextSide = &nextStage, &nextOrder, &nextSide
		}
		if km.Home != nil {
			regID, teamID := km.Home.RegistrationID, km.Home.TeamID
			row.HomeRegID, row.HomeTeamID = &regID, &teamID
		}
		if km.Away != nil {
			regID, teamID := km.Away.RegistrationID, km.Away.TeamID
			row.AwayRegID, row.AwayTeamID = &regID, &teamID
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *matchService) ResolveRound(ctx context.Context, tournamentID int, stage models.MatchStage) ([]*models.Match, error) {
	if stage == models.StageGroup {
		return nil, fmt.Errorf("%w: the group stage is not a knockout round", ErrValidationFailed)
	}
	if _, ok := models.EntrantCount(stage); !ok {
		return nil, fmt.Errorf("%w: unknown stage %q", ErrValidationFailed, stage)
	}

	var resolved []*models.Match
	var completed bool
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		matches, err := s.matchRepo.ListByStage(ctx, exec, tournamentID, stage)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return ErrMatchNotFound
		}
		for _, m := range matches {
			if !m.Confirmed {
				return ErrRoundNotFinished
			}
		}

		if stage == models.StageFinal {
			// Resolving the final closes the tournament.
			now := time.Now()
			if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusCompleted, nil, &now); err != nil {
				return err
			}
			completed = true
			resolved = matches
			return nil
		}

		// Winners follow the feed links written at generation time.
		// A straight halving of round names would miss the slots byes
		// already occupy in uneven brackets.
		for _, m := range matches {
			winnerReg, winnerTeam, err := winner(m)
			if err != nil {
				return err
			}
			if m.NextStage == nil || m.NextOrder == nil || m.NextSide == nil {
				return fmt.Errorf("match %d in stage %s has no advancement slot", m.ID, m.Stage)
			}
			if err := s.matchRepo.SetSlotSide(ctx, exec, tournamentID, *m.NextStage, *m.NextOrder, *m.NextSide, winnerReg, winnerTeam); err != nil {
				return err
			}
		}
		resolved = matches
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("knockout round resolved",
		slog.Int("tournament_id", tournamentID),
		slog.String("stage", string(stage)),
		slog.Bool("tournament_completed", completed))
	s.hub.BroadcastToRoom(tournamentRoom(tournamentID), brackets.WebSocketMessage{
		Type:    brackets.EventBracketUpdated,
		RoomID:  tournamentRoom(tournamentID),
		Payload: resolved,
	})
	return resolved, nil
}

func winner(m *models.Match) (regID, teamID int, err error) {
	switch m.WinnerSide() {
	case 1:
		return *m.HomeRegID, *m.HomeTeamID, nil
	case 2:
		return *m.AwayRegID, *m.AwayTeamID, nil
	}
	return 0, 0, fmt.Errorf("%w: match %d has no winner", ErrKnockoutDrawNotAllowed, m.ID)
}

func (s *matchService) broadcastMatch(m *models.Match) {
	s.hub.BroadcastToRoom(tournamentRoom(m.TournamentID), brackets.WebSocketMessage{
		Type:    brackets.EventMatchUpdated,
		RoomID:  tournamentRoom(m.TournamentID),
		Payload: m,
	})
}

func (s *matchService) broadcastStandings(ctx context.Context, tournamentID int) {
	standings, err := s.standingRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		s.logger.Error("failed to load standings for broadcast",
			slog.Int("tournament_id", tournamentID),
			slog.String("error", err.Error()))
		return
	}
	s.hub.BroadcastToRoom(tournamentRoom(tournamentID), brackets.WebSocketMessage{
		Type:    brackets.EventStandingsUpdated,
		RoomID:  tournamentRoom(tournamentID),
		Payload: standings,
	})
}
