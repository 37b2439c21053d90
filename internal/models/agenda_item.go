package models

import "time"

// AgendaItem is an ordered entry within a workshop agenda.
type AgendaItem struct {
	ID              string    `db:"id" json:"id"`
	WorkshopID      string    `db:"workshop_id" json:"workshop_id"`
	Title           string    `db:"title" json:"title"`
	Description     string    `db:"description" json:"description"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	OrderIndex      int       `db:"order_index" json:"order_index"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
