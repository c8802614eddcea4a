package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/openfooty/bracket-system/models"
	"github.com/openfooty/bracket-system/repositories"
	"github.com/openfooty/bracket-system/utils"
)

const (
	RoleAdmin  = "admin"
	RolePlayer = "player"

	tokenTTL = 24 * time.Hour
)

type PlayerLoginResult struct {
	Player  *models.Player `json:"player"`
	Token   string         `json:"token"`
	Created bool           `json:"created"`
}

// AuthService exchanges credentials for signed tokens carrying a role
// claim. The admin shared secret is compared against a bcrypt hash and
// never travels further than this exchange; everything downstream
// checks the token.
type AuthService interface {
	AdminLogin(ctx context.Context, password string) (string, error)
	// PlayerLogin authenticates by username + whatsapp handle, creating
	// the player account on first login.
	PlayerLogin(ctx context.Context, creds models.PlayerCredentials) (*PlayerLoginResult, error)
}

type authService struct {
	playerRepo        repositories.PlayerRepository
	jwtSecret         []byte
	adminPasswordHash string
}

func NewAuthService(playerRepo repositories.PlayerRepository, jwtSecret []byte, adminPasswordHash string) AuthService {
	return &authService{
		playerRepo:        playerRepo,
		jwtSecret:         jwtSecret,
		adminPasswordHash: adminPasswordHash,
	}
}

func (s *authService) AdminLogin(_ context.Context, password string) (string, error) {
	if !utils.CheckPasswordHash(password, s.adminPasswordHash) {
		return "", ErrAuthInvalidCredentials
	}
	return s.signToken(jwt.MapClaims{"role": RoleAdmin})
}

func (s *authService) PlayerLogin(ctx context.Context, creds models.PlayerCredentials) (*PlayerLoginResult, error) {
	username := strings.TrimSpace(creds.Username)
	whatsapp := strings.TrimSpace(creds.Whatsapp)
	if username == "" || whatsapp == "" {
		return nil, fmt.Errorf("%w: username and whatsapp are required", ErrValidationFailed)
	}

	player, err := s.playerRepo.GetByUsername(ctx, username)
	if err == nil {
		if player.Whatsapp != whatsapp {
			return nil, ErrAuthInvalidCredentials
		}
		return s.loginResult(player, false)
	}
	if !errors.Is(err, repositories.ErrPlayerNotFound) {
		return nil, err
	}

	player = &models.Player{Username: username, Whatsapp: whatsapp}
	if createErr := s.playerRepo.Create(ctx, player); createErr != nil {
		// Lost a create race: someone claimed the username between the
		// lookup and the insert.
		if errors.Is(createErr, repositories.ErrPlayerUsernameConflict) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, createErr
	}
	return s.loginResult(player, true)
}

func (s *authService) loginResult(player *models.Player, created bool) (*PlayerLoginResult, error) {
	token, err := s.signToken(jwt.MapClaims{
		"role":      RolePlayer,
		"player_id": player.ID,
	})
	if err != nil {
		return nil, err
	}
	return &PlayerLoginResult{Player: player, Token: token, Created: created}, nil
}

func (s *authService) signToken(claims jwt.MapClaims) (string, error) {
	now := time.Now()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(tokenTTL).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
