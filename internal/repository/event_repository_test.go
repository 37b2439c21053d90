package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/trainwell/pathway-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func eventRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "pathway_id", "title", "type", "start_date", "end_date", "duration_hours", "format",
		"objectives", "resource_refs", "dependencies", "month_index", "week_index", "created_at",
	})
}

func TestEventRepositoryFindLatestByPathway(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	rows := eventRows().
		AddRow("evt-1", "prog-1", "Kickoff", models.EventTypeWorkshop, nil, nil, 2.0, models.EventFormatOnline,
			`["intro"]`, `[]`, `[]`, 1, 1, time.Now())
	mock.ExpectQuery(`SELECT .+ FROM events WHERE pathway_id = \$1 ORDER BY created_at DESC LIMIT 1`).
		WithArgs("prog-1").
		WillReturnRows(rows)

	event, err := repo.FindLatestByPathway(context.Background(), "prog-1")
	require.NoError(t, err)
	require.Equal(t, "evt-1", event.ID)
	require.Equal(t, models.StringList{"intro"}, event.Objectives)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryListByPathway(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	rows := eventRows().
		AddRow("evt-1", "prog-1", "Kickoff", models.EventTypeWorkshop, nil, nil, 2.0, models.EventFormatOnline,
			`[]`, `[]`, `[]`, 1, 1, time.Now()).
		AddRow("evt-2", "prog-1", "Module quiz", models.EventTypeAssessment, nil, nil, 1.0, models.EventFormatOnline,
			`[]`, `[]`, `[]`, 1, 2, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM events WHERE pathway_id = $1")).
		WithArgs("prog-1").
		WillReturnRows(rows)

	events, err := repo.ListByPathway(context.Background(), "prog-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryDeleteReportsAffectedRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM events WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.Delete(context.Background(), "missing")
	require.NoError(t, err)
	require.Zero(t, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}
