package dto

import "github.com/trainwell/pathway-api/internal/models"

// WeeksPerMonth is the fixed width of the placement grid.
const WeeksPerMonth = 4

// TimelineWeek is one slot of the month/week placement grid.
type TimelineWeek struct {
	Events []models.Event `json:"events"`
}

// TimelineMonth holds the four week slots of a single month.
type TimelineMonth struct {
	Number int            `json:"number"`
	Weeks  []TimelineWeek `json:"weeks"`
}

// Timeline is the full placement grid for a program.
type Timeline struct {
	ProgramID string          `json:"programId"`
	Duration  int             `json:"duration"`
	Months    []TimelineMonth `json:"months"`
}

// StructureComponent is a grouping target inside a synthesized month view.
// Real events carry their event id; placeholder components carry generated
// ids such as "orientation-3".
type StructureComponent struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// StructureMonth is one month of the synthesized program structure.
type StructureMonth struct {
	Number     int                  `json:"number"`
	Title      string               `json:"title"`
	Components []StructureComponent `json:"components"`
}

// ProgramStructure is the nested Program → Month → Component view. It is
// derived on every read and never persisted.
type ProgramStructure struct {
	ProgramID string           `json:"programId"`
	Months    []StructureMonth `json:"months"`
}
