package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trainwell/pathway-api/internal/models"
)

// anchorTables maps an anchor kind to its link table and the matching direct
// anchor column on the resources table.
var anchorTables = map[models.AnchorKind]struct {
	table        string
	directColumn string
}{
	models.AnchorWorkshop:      {table: "resource_workshop_links", directColumn: "workshop_id"},
	models.AnchorAgendaItem:    {table: "resource_agenda_item_links", directColumn: "agenda_item_id"},
	models.AnchorLearningEvent: {table: "resource_event_links", directColumn: "learning_event_id"},
}

// ResourceLinkRepository handles the resource↔anchor association tables.
type ResourceLinkRepository struct {
	db *sqlx.DB
}

// NewResourceLinkRepository constructs the repository.
func NewResourceLinkRepository(db *sqlx.DB) *ResourceLinkRepository {
	return &ResourceLinkRepository{db: db}
}

// CreateLink inserts a new association row. Duplicate (resource, anchor)
// pairs are permitted; deduplication happens at read time.
func (r *ResourceLinkRepository) CreateLink(ctx context.Context, kind models.AnchorKind, link *models.ResourceLink) error {
	target, ok := anchorTables[kind]
	if !ok {
		return fmt.Errorf("unknown anchor kind %q", kind)
	}
	if link.ResourceType == "" {
		link.ResourceType = models.LinkOptional
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	query := fmt.Sprintf(`INSERT INTO %s (resource_id, anchor_id, resource_type, display_order, created_at)
        VALUES (:resource_id, :anchor_id, :resource_type, :display_order, :created_at)`, target.table)
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("create %s link: %w", kind, err)
	}
	return nil
}

// DeleteLink removes matching association rows and reports how many were
// affected. Zero rows means the link never existed.
func (r *ResourceLinkRepository) DeleteLink(ctx context.Context, kind models.AnchorKind, resourceID, anchorID string) (int64, error) {
	target, ok := anchorTables[kind]
	if !ok {
		return 0, fmt.Errorf("unknown anchor kind %q", kind)
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE resource_id = $1 AND anchor_id = $2", target.table)
	res, err := r.db.ExecContext(ctx, query, resourceID, anchorID)
	if err != nil {
		return 0, fmt.Errorf("delete %s link: %w", kind, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete %s link rows affected: %w", kind, err)
	}
	return affected, nil
}

// ListLinked returns resources reachable through the link table for an
// anchor, ordered by display_order ascending then link creation time.
func (r *ResourceLinkRepository) ListLinked(ctx context.Context, kind models.AnchorKind, anchorID string) ([]models.Resource, error) {
	target, ok := anchorTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown anchor kind %q", kind)
	}
	query := fmt.Sprintf(`SELECT r.%s FROM resources r
        JOIN %s l ON l.resource_id = r.id
        WHERE l.anchor_id = $1
        ORDER BY l.display_order ASC, l.created_at ASC`, resourceColumnList("r"), target.table)
	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, query, anchorID); err != nil {
		return nil, fmt.Errorf("list %s linked resources: %w", kind, err)
	}
	return resources, nil
}

// ListDirect returns resources whose direct anchor column equals the anchor
// id, ordered by creation time.
func (r *ResourceLinkRepository) ListDirect(ctx context.Context, kind models.AnchorKind, anchorID string) ([]models.Resource, error) {
	target, ok := anchorTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown anchor kind %q", kind)
	}
	query := fmt.Sprintf("SELECT %s FROM resources WHERE %s = $1 ORDER BY created_at ASC",
		resourceColumns, target.directColumn)
	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, query, anchorID); err != nil {
		return nil, fmt.Errorf("list %s anchored resources: %w", kind, err)
	}
	return resources, nil
}
