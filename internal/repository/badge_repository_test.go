package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/probuilder/lms-api/pkg/errors"
)

func TestBadgeRepositoryInsertUserBadge(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBadgeRepository(db)

	mock.ExpectExec("INSERT INTO user_badges").
		WithArgs(sqlmock.AnyArg(), "user-1", "badge-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	award, err := repo.InsertUserBadge(context.Background(), "user-1", "badge-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", award.UserID)
	assert.Equal(t, "badge-1", award.BadgeID)
	assert.NotEmpty(t, award.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBadgeRepositoryInsertUserBadgeDuplicateMapsToAlreadyExists(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBadgeRepository(db)

	mock.ExpectExec("INSERT INTO user_badges").
		WithArgs(sqlmock.AnyArg(), "user-1", "badge-1", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: pq.ErrorCode(pqUniqueViolation)})

	_, err := repo.InsertUserBadge(context.Background(), "user-1", "badge-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyExists))
}

func TestBadgeRepositoryListUserBadgeIDs(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBadgeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT badge_id FROM user_badges WHERE user_id = $1")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"badge_id"}).AddRow("badge-1").AddRow("badge-2"))

	ids, err := repo.ListUserBadgeIDs(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"badge-1", "badge-2"}, ids)
}

func TestBadgeRepositoryListEarnedByUser(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBadgeRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "title", "description", "image_url", "badge_type", "requirements", "created_at", "updated_at", "earned_at"}).
		AddRow("badge-1", "First Course", "", "", "milestone", []byte(`{"course_completions":1}`), now, now, now)
	mock.ExpectQuery("SELECT b.id, b.title").
		WithArgs("user-1").
		WillReturnRows(rows)

	earned, err := repo.ListEarnedByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, earned, 1)
	assert.Equal(t, "First Course", earned[0].Title)
	assert.Equal(t, now, earned[0].EarnedAt)
}
