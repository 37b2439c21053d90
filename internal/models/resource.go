package models

import "time"

// ResourceStatus enumerates the review lifecycle of a resource.
type ResourceStatus string

const (
	ResourceStatusDraft    ResourceStatus = "draft"
	ResourceStatusReview   ResourceStatus = "review"
	ResourceStatusApproved ResourceStatus = "approved"
	ResourceStatusArchived ResourceStatus = "archived"
)

// Resource is a learning material. Every anchor is optional; a resource may
// be anchored directly (program/month/component columns) and linked through
// the association tables at the same time, and both paths are honored when
// resolving visibility.
type Resource struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Type        string         `db:"type" json:"type"`
	Format      string         `db:"format" json:"format"`
	Category    string         `db:"category" json:"category"`
	URL         *string        `db:"url" json:"url,omitempty"`
	FileSize    *int64         `db:"file_size" json:"file_size,omitempty"`
	MimeType    *string        `db:"mime_type" json:"mime_type,omitempty"`
	Tags        StringList     `db:"tags" json:"tags"`
	Status      ResourceStatus `db:"status" json:"status"`
	IsPublic    bool           `db:"is_public" json:"is_public"`
	Version     string         `db:"version" json:"version"`
	UploadedBy  string         `db:"uploaded_by" json:"uploaded_by"`

	ProgramID        *string `db:"program_id" json:"program_id,omitempty"`
	MonthNumber      *int    `db:"month_number" json:"month_number,omitempty"`
	ComponentID      *string `db:"component_id" json:"component_id,omitempty"`
	WorkshopID       *string `db:"workshop_id" json:"workshop_id,omitempty"`
	AgendaItemID     *string `db:"agenda_item_id" json:"agenda_item_id,omitempty"`
	LearningEventID  *string `db:"learning_event_id" json:"learning_event_id,omitempty"`
	AssignedToUserID *string `db:"assigned_to_user_id" json:"assigned_to_user_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ResourceFilter captures filtering criteria for listing resources.
type ResourceFilter struct {
	Category string
	Status   ResourceStatus
	Search   string
	Page     int
	PageSize int
}
