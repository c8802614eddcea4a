package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/openfooty/bracket-system/models"
	"github.com/openfooty/bracket-system/repositories"
	"github.com/openfooty/bracket-system/storage"
)

// crestExtensions maps the accepted crest image content types to the
// stored object key extension.
var crestExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

type TeamService interface {
	List(ctx context.Context) ([]*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	// ListAvailable returns the teams not yet taken by a registration
	// in the given tournament.
	ListAvailable(ctx context.Context, tournamentID int) ([]*models.Team, error)
	// UploadCrest stores a new crest image for the team and removes the
	// previous one. Requires a configured object store.
	UploadCrest(ctx context.Context, teamID int, contentType string, reader io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

// NewTeamService accepts a nil uploader; crest uploads then fail with
// ErrUploaderUnavailable while reads keep working.
func NewTeamService(teamRepo repositories.TeamRepository, uploader storage.FileUploader, logger *slog.Logger) TeamService {
	return &teamService{teamRepo: teamRepo, uploader: uploader, logger: logger}
}

func (s *teamService) List(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.attachCrestURLs(teams)
	return teams, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	s.attachCrestURLs([]*models.Team{team})
	return team, nil
}

func (s *teamService) ListAvailable(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListAvailable(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	s.attachCrestURLs(teams)
	return teams, nil
}

func (s *teamService) UploadCrest(ctx context.Context, teamID int, contentType string, reader io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, ErrUploaderUnavailable
	}
	ext, ok := crestExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported crest content type %q", ErrValidationFailed, contentType)
	}

	team, err := s.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("crests/team_%d_%d.%s", teamID, time.Now().Unix(), ext)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("uploading crest for team %d: %w", teamID, err)
	}

	previousKey := team.CrestKey
	if err := s.teamRepo.UpdateCrestKey(ctx, teamID, &result.Key); err != nil {
		// Best effort: drop the orphaned object before reporting.
		if delErr := s.uploader.Delete(ctx, result.Key); delErr != nil {
			s.logger.Warn("failed to clean up orphaned crest object",
				slog.String("key", result.Key),
				slog.String("error", delErr.Error()))
		}
		return nil, err
	}

	if previousKey != nil && *previousKey != result.Key {
		if err := s.uploader.Delete(ctx, *previousKey); err != nil {
			s.logger.Warn("failed to delete previous crest object",
				slog.String("key", *previousKey),
				slog.String("error", err.Error()))
		}
	}

	team.CrestKey = &result.Key
	s.attachCrestURLs([]*models.Team{team})
	s.logger.Info("team crest updated", slog.Int("team_id", teamID), slog.String("key", result.Key))
	return team, nil
}

func (s *teamService) attachCrestURLs(teams []*models.Team) {
	if s.uploader == nil {
		return
	}
	for _, team := range teams {
		if team.CrestKey != nil {
			url := s.uploader.GetPublicURL(*team.CrestKey)
			team.CrestURL = &url
		}
	}
}
