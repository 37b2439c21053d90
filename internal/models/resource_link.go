package models

import "time"

// AnchorKind identifies which link table an association row lives in.
type AnchorKind string

const (
	AnchorWorkshop      AnchorKind = "workshop"
	AnchorAgendaItem    AnchorKind = "agenda-item"
	AnchorLearningEvent AnchorKind = "learning-event"
)

// Valid reports whether the kind names a known link table.
func (k AnchorKind) Valid() bool {
	switch k {
	case AnchorWorkshop, AnchorAgendaItem, AnchorLearningEvent:
		return true
	}
	return false
}

// LinkResourceType qualifies how strongly a resource belongs to its anchor.
type LinkResourceType string

const (
	LinkRequired      LinkResourceType = "required"
	LinkOptional      LinkResourceType = "optional"
	LinkSupplementary LinkResourceType = "supplementary"
)

// ResourceLink is a many-to-many association row between a resource and an
// anchor entity. (resource_id, anchor_id) pairs are not unique at the store
// level; reads deduplicate by resource id.
type ResourceLink struct {
	ResourceID   string           `db:"resource_id" json:"resource_id"`
	AnchorID     string           `db:"anchor_id" json:"anchor_id"`
	ResourceType LinkResourceType `db:"resource_type" json:"resource_type"`
	DisplayOrder int              `db:"display_order" json:"display_order"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}
