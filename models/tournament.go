package models

import "time"

// TournamentStatus mirrors the ENUM in the database.
type TournamentStatus string

const (
	StatusRegistration TournamentStatus = "registration"
	StatusGroupStage   TournamentStatus = "group_stage"
	StatusKnockout     TournamentStatus = "knockout"
	StatusCompleted    TournamentStatus = "completed"
)

type TournamentFormat string

const (
	FormatGroupKnockout TournamentFormat = "group_knockout"
	FormatKnockout      TournamentFormat = "knockout"
)

// ValidCapacities are the entrant counts a tournament can be created with.
var ValidCapacities = []int{8, 16, 32, 64, 128}

type Tournament struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Description *string          `json:"description,omitempty" db:"description"`
	Capacity    int              `json:"capacity" db:"capacity"`
	Format      TournamentFormat `json:"format" db:"format"`
	Status      TournamentStatus `json:"status" db:"status"`
	StartedAt   *time.Time       `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`

	// Computed / joined, not mapped directly.
	RegisteredCount int            `json:"registered_count" db:"-"`
	Registrations   []Registration `json:"registrations,omitempty" db:"-"`
}

func IsValidCapacity(capacity int) bool {
	for _, c := range ValidCapacities {
		if c == capacity {
			return true
		}
	}
	return false
}

func IsValidFormat(format TournamentFormat) bool {
	return format == FormatGroupKnockout || format == FormatKnockout
}

func IsValidStatus(status TournamentStatus) bool {
	switch status {
	case StatusRegistration, StatusGroupStage, StatusKnockout, StatusCompleted:
		return true
	}
	return false
}
