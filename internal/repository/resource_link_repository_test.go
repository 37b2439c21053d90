package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/trainwell/pathway-api/internal/models"
)

func resourceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "description", "type", "format", "category", "url", "file_size", "mime_type",
		"tags", "status", "is_public", "version", "uploaded_by", "program_id", "month_number", "component_id",
		"workshop_id", "agenda_item_id", "learning_event_id", "assigned_to_user_id", "created_at", "updated_at",
	})
}

func addResourceRow(rows *sqlmock.Rows, id string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, "Handbook", "", "handbook", "pdf", "materials", nil, nil, nil,
		`[]`, models.ResourceStatusApproved, false, "1.0", "usr-1", nil, nil, nil,
		nil, nil, nil, nil, now, now)
}

func TestResourceLinkRepositoryListLinkedOrdersByDisplayOrder(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResourceLinkRepository(db)

	rows := addResourceRow(addResourceRow(resourceRows(), "res-1"), "res-2")
	mock.ExpectQuery(`JOIN resource_workshop_links l ON l\.resource_id = r\.id\s+WHERE l\.anchor_id = \$1\s+ORDER BY l\.display_order ASC`).
		WithArgs("ws-1").
		WillReturnRows(rows)

	resources, err := repo.ListLinked(context.Background(), models.AnchorWorkshop, "ws-1")
	require.NoError(t, err)
	require.Len(t, resources, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceLinkRepositoryDeleteLinkZeroRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResourceLinkRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM resource_event_links WHERE resource_id = $1 AND anchor_id = $2")).
		WithArgs("res-1", "evt-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.DeleteLink(context.Background(), models.AnchorLearningEvent, "res-1", "evt-1")
	require.NoError(t, err)
	require.Zero(t, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceLinkRepositoryRejectsUnknownKind(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResourceLinkRepository(db)

	_, err := repo.ListLinked(context.Background(), models.AnchorKind("course"), "x")
	require.Error(t, err)
}
