package services

import "errors"

// Shared errors used across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed          = errors.New("validation failed")
	ErrTournamentNameRequired    = errors.New("tournament name is required")
	ErrTournamentInvalidCapacity = errors.New("tournament capacity must be one of 8, 16, 32, 64, 128")
	ErrTournamentInvalidFormat   = errors.New("tournament format must be group_knockout or knockout")
	ErrTournamentInvalidStatus   = errors.New("invalid tournament status provided")
	ErrInvalidStatusTransition   = errors.New("invalid tournament status transition")
	ErrRegistrationNotOpen       = errors.New("tournament registration is not open")
	ErrTournamentFull            = errors.New("tournament is full")
	ErrNotEnoughRegistrations    = errors.New("not enough registrations to generate groups")
	ErrUnevenRegistrations       = errors.New("registration count would leave a group of one; it could never qualify a runner-up")
	ErrScoresMissing             = errors.New("scores must be entered before confirming")
	ErrKnockoutDrawNotAllowed    = errors.New("knockout matches cannot end in a draw")
	ErrGroupStageNotFinished     = errors.New("all group matches must be confirmed before the knockout draw")
	ErrNotEnoughQualifiers       = errors.New("not enough qualified entrants for a knockout bracket")
	ErrRoundNotFinished          = errors.New("all matches in the round must be confirmed before advancing")
	ErrWithdrawClosed            = errors.New("cannot withdraw after the tournament has started")

	// Conflicts
	ErrMatchAlreadyConfirmed = errors.New("match has been confirmed and locked")
	ErrPlayerAlreadyEntered  = errors.New("player is already registered for this tournament")
	ErrTeamAlreadyTaken      = errors.New("team is already taken in this tournament")

	// Authentication / authorization
	ErrAuthInvalidCredentials = errors.New("invalid credentials")
	ErrForbiddenOperation     = errors.New("operation not allowed")

	// Entity-specific not-found variants
	ErrPlayerNotFound       = errors.New("player not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrMatchNotFound        = errors.New("match not found")

	ErrUploaderUnavailable = errors.New("file storage is not configured")
)
