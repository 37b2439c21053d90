package dto

import "github.com/trainwell/pathway-api/internal/models"

// ResourceContext is the query context a resource library view is filtered
// against: a selected program, optionally narrowed to a month and a
// component.
type ResourceContext struct {
	ProgramID   string
	MonthNumber *int
	ComponentID *string
}

// LinkResourceRequest creates an association row between a resource and an
// anchor entity.
type LinkResourceRequest struct {
	ResourceID   string                  `json:"resourceId" validate:"required"`
	AnchorID     string                  `json:"anchorId" validate:"required"`
	ResourceType models.LinkResourceType `json:"resourceType,omitempty"`
	DisplayOrder int                     `json:"displayOrder,omitempty"`
}
