package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardRepositoryTopUsers(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLeaderboardRepository(db)

	rows := sqlmock.NewRows([]string{"user_id", "username", "full_name", "total_points", "badge_count"}).
		AddRow("user-1", "alice", "Alice A", 120, 3).
		AddRow("user-2", "bob", "Bob B", 80, 5)
	mock.ExpectQuery("SELECT u.id AS user_id").
		WithArgs(10).
		WillReturnRows(rows)

	entries, err := repo.TopUsers(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, 120, entries[0].TotalPoints)
	assert.Equal(t, 3, entries[0].BadgeCount)
	assert.Equal(t, "user-2", entries[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboardRepositoryTopUsersEmpty(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLeaderboardRepository(db)

	mock.ExpectQuery("SELECT u.id AS user_id").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "full_name", "total_points", "badge_count"}))

	entries, err := repo.TopUsers(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
