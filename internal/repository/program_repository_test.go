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

func TestProgramRepositoryUpdateReplacesMembersWholesale(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE programs SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Empty participants slice still clears existing junction rows and
	// inserts nothing back.
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM program_participants WHERE program_id = $1")).
		WithArgs("prog-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	program := &models.Program{
		ID:        "prog-1",
		Title:     "B2 Track",
		Duration:  6,
		Status:    models.ProgramStatusActive,
		CreatedAt: time.Now(),
	}
	participants := []string{}
	err := repo.Update(context.Background(), program, &participants, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryCreateLinksMembersInOneTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO programs`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO program_participants (program_id, user_id) VALUES ($1, $2), ($3, $4)")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO program_trainers (program_id, user_id) VALUES ($1, $2)")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	program := &models.Program{Title: "A1 Starter", Duration: 3, CreatedBy: "usr-1"}
	err := repo.Create(context.Background(), program, []string{"usr-2", "usr-3"}, []string{"usr-4"})
	require.NoError(t, err)
	require.NotEmpty(t, program.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryCreateRollsBackOnMemberFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO programs`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO program_participants`).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	program := &models.Program{Title: "C1 Track", Duration: 4, CreatedBy: "usr-1"}
	err := repo.Create(context.Background(), program, []string{"usr-2"}, nil)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
