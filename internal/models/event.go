package models

import "time"

// EventType enumerates the kinds of learning events.
type EventType string

const (
	EventTypeWorkshop   EventType = "workshop"
	EventTypeElearning  EventType = "elearning"
	EventTypeAssessment EventType = "assessment"
	EventTypeAssignment EventType = "assignment"
	EventTypeGroup      EventType = "group"
	EventTypeCheckpoint EventType = "checkpoint"
)

// EventFormat enumerates delivery formats.
type EventFormat string

const (
	EventFormatOnline  EventFormat = "online"
	EventFormatOffline EventFormat = "offline"
	EventFormatBlended EventFormat = "blended"
)

// Event is a learning activity placed at a month/week coordinate within a
// program timeline. Placement is immutable; moving an event is delete and
// recreate.
type Event struct {
	ID            string      `db:"id" json:"id"`
	PathwayID     string      `db:"pathway_id" json:"pathway_id"`
	Title         string      `db:"title" json:"title"`
	Type          EventType   `db:"type" json:"type"`
	StartDate     *time.Time  `db:"start_date" json:"start_date,omitempty"`
	EndDate       *time.Time  `db:"end_date" json:"end_date,omitempty"`
	DurationHours float64     `db:"duration_hours" json:"duration_hours"`
	Format        EventFormat `db:"format" json:"format"`
	Objectives    StringList  `db:"objectives" json:"objectives"`
	ResourceRefs  StringList  `db:"resource_refs" json:"resource_refs"`
	Dependencies  StringList  `db:"dependencies" json:"dependencies"`
	MonthIndex    int         `db:"month_index" json:"month_index"`
	WeekIndex     int         `db:"week_index" json:"week_index"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}

// EventFilter captures filtering criteria for listing events.
type EventFilter struct {
	PathwayID  string
	Type       EventType
	MonthIndex int
	Page       int
	PageSize   int
}
