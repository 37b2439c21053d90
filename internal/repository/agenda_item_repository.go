package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/trainwell/pathway-api/internal/models"
)

const agendaItemColumns = `id, workshop_id, title, description, duration_minutes, order_index, created_at, updated_at`

// AgendaItemRepository handles persistence of workshop agenda items.
type AgendaItemRepository struct {
	db *sqlx.DB
}

// NewAgendaItemRepository constructs the repository.
func NewAgendaItemRepository(db *sqlx.DB) *AgendaItemRepository {
	return &AgendaItemRepository{db: db}
}

// ListByWorkshop returns agenda items ordered by their position.
func (r *AgendaItemRepository) ListByWorkshop(ctx context.Context, workshopID string) ([]models.AgendaItem, error) {
	query := fmt.Sprintf("SELECT %s FROM agenda_items WHERE workshop_id = $1 ORDER BY order_index ASC, created_at ASC", agendaItemColumns)
	var items []models.AgendaItem
	if err := r.db.SelectContext(ctx, &items, query, workshopID); err != nil {
		return nil, fmt.Errorf("list agenda items: %w", err)
	}
	return items, nil
}

// FindByID returns an agenda item by its ID.
func (r *AgendaItemRepository) FindByID(ctx context.Context, id string) (*models.AgendaItem, error) {
	query := fmt.Sprintf("SELECT %s FROM agenda_items WHERE id = $1", agendaItemColumns)
	var item models.AgendaItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create persists a new agenda item.
func (r *AgendaItemRepository) Create(ctx context.Context, item *models.AgendaItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	const query = `INSERT INTO agenda_items (id, workshop_id, title, description, duration_minutes, order_index, created_at, updated_at)
        VALUES (:id, :workshop_id, :title, :description, :duration_minutes, :order_index, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create agenda item: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of an agenda item.
func (r *AgendaItemRepository) Update(ctx context.Context, item *models.AgendaItem) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE agenda_items SET title = :title, description = :description,
        duration_minutes = :duration_minutes, order_index = :order_index, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("update agenda item: %w", err)
	}
	return nil
}

// Reorder rewrites order_index for the given items of a workshop in a single
// transaction. Positions are assigned from the slice order.
func (r *AgendaItemRepository) Reorder(ctx context.Context, workshopID string, itemIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder agenda: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE agenda_items SET order_index = $3, updated_at = $4 WHERE id = $1 AND workshop_id = $2`
	now := time.Now().UTC()
	for position, itemID := range itemIDs {
		if _, err := tx.ExecContext(ctx, query, itemID, workshopID, position, now); err != nil {
			return fmt.Errorf("reorder agenda item %s: %w", itemID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder agenda: %w", err)
	}
	return nil
}

// Delete removes an agenda item and reports how many rows were affected.
func (r *AgendaItemRepository) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM agenda_items WHERE id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("delete agenda item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete agenda item rows affected: %w", err)
	}
	return affected, nil
}
