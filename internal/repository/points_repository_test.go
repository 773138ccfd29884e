package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probuilder/lms-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPointsRepositoryInsertAssignsIDAndTimestamp(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewPointsRepository(db)

	mock.ExpectExec("INSERT INTO points_transactions").
		WithArgs(sqlmock.AnyArg(), "user-1", 10, "course_completion", nil, nil, "Completed a course", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	tx := &models.PointsTransaction{
		UserID:          "user-1",
		Points:          10,
		TransactionType: models.TransactionCourseCompletion,
		Description:     "Completed a course",
	}
	err := repo.Insert(context.Background(), tx)
	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)
	assert.False(t, tx.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPointsRepositorySumByUser(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewPointsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(points), 0) FROM points_transactions WHERE user_id = $1")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(42))

	total, err := repo.SumByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 42, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPointsRepositorySumByUserEmptyLedgerIsZero(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewPointsRepository(db)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("user-none").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))

	total, err := repo.SumByUser(context.Background(), "user-none")
	require.NoError(t, err)
	assert.Zero(t, total)
}
