package models

import "time"

// WorkshopStatus enumerates workshop lifecycle states.
type WorkshopStatus string

const (
	WorkshopStatusScheduled WorkshopStatus = "scheduled"
	WorkshopStatusCompleted WorkshopStatus = "completed"
	WorkshopStatusCancelled WorkshopStatus = "cancelled"
)

// Workshop is a facilitated session; included here chiefly as an anchor
// target for resources.
type Workshop struct {
	ID            string         `db:"id" json:"id"`
	ProgramID     string         `db:"program_id" json:"program_id"`
	Title         string         `db:"title" json:"title"`
	Description   string         `db:"description" json:"description"`
	Facilitator   string         `db:"facilitator" json:"facilitator"`
	ScheduledAt   *time.Time     `db:"scheduled_at" json:"scheduled_at,omitempty"`
	DurationHours float64        `db:"duration_hours" json:"duration_hours"`
	Capacity      int            `db:"capacity" json:"capacity"`
	Status        WorkshopStatus `db:"status" json:"status"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// WorkshopFilter captures filtering criteria for listing workshops.
type WorkshopFilter struct {
	ProgramID string
	Status    WorkshopStatus
	Page      int
	PageSize  int
}
