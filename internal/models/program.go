package models

import "time"

// ProgramStatus enumerates the lifecycle states of a program.
type ProgramStatus string

const (
	ProgramStatusDraft     ProgramStatus = "draft"
	ProgramStatusActive    ProgramStatus = "active"
	ProgramStatusCompleted ProgramStatus = "completed"
	ProgramStatusArchived  ProgramStatus = "archived"
)

// CEFRLevel is an optional language proficiency level attached to a program.
type CEFRLevel string

const (
	CEFRLevelA1 CEFRLevel = "A1"
	CEFRLevelA2 CEFRLevel = "A2"
	CEFRLevelB1 CEFRLevel = "B1"
	CEFRLevelB2 CEFRLevel = "B2"
	CEFRLevelC1 CEFRLevel = "C1"
	CEFRLevelC2 CEFRLevel = "C2"
)

// Program represents a multi-month training pathway. Duration sizes the
// timeline grid and is not retroactively reflowed when changed.
type Program struct {
	ID          string        `db:"id" json:"id"`
	Title       string        `db:"title" json:"title"`
	Description string        `db:"description" json:"description"`
	Duration    int           `db:"duration" json:"duration"`
	TotalHours  float64       `db:"total_hours" json:"total_hours"`
	Status      ProgramStatus `db:"status" json:"status"`
	CEFRLevel   *CEFRLevel    `db:"cefr_level" json:"cefr_level,omitempty"`
	CreatedBy   string        `db:"created_by" json:"created_by"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// ProgramDetail is a program with its junction-table memberships resolved.
type ProgramDetail struct {
	Program
	Participants []ProgramMember `json:"participants"`
	Trainers     []ProgramMember `json:"trainers"`
}

// ProgramMember is a user attached to a program through a junction table.
type ProgramMember struct {
	UserID   string   `db:"user_id" json:"user_id"`
	Email    string   `db:"email" json:"email"`
	FullName string   `db:"full_name" json:"full_name"`
	Role     UserRole `db:"role" json:"role"`
}

// ProgramFilter captures filtering criteria for listing programs.
type ProgramFilter struct {
	Status    ProgramStatus
	CreatedBy string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
