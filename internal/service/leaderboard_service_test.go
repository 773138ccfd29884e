package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probuilder/lms-api/internal/models"
	"github.com/probuilder/lms-api/pkg/config"
	appErrors "github.com/probuilder/lms-api/pkg/errors"
)

type mockBoard struct {
	entries []models.LeaderboardEntry
	calls   int
}

func (m *mockBoard) TopUsers(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	m.calls++
	if limit < len(m.entries) {
		return m.entries[:limit], nil
	}
	return m.entries, nil
}

type mockLedgerReader struct {
	total   int
	history []models.PointsTransaction
}

func (m *mockLedgerReader) SumByUser(ctx context.Context, userID string) (int, error) {
	return m.total, nil
}

func (m *mockLedgerReader) ListByUser(ctx context.Context, userID string) ([]models.PointsTransaction, error) {
	return m.history, nil
}

type mockEarnedReader struct {
	earned []models.EarnedBadge
}

func (m *mockEarnedReader) ListEarnedByUser(ctx context.Context, userID string) ([]models.EarnedBadge, error) {
	return m.earned, nil
}

type mockSummaryStats struct {
	courses     int
	programs    int
	lessons     int
	submissions int
	perfect     bool
}

func (m *mockSummaryStats) CountCompletedCourses(ctx context.Context, userID string) (int, error) {
	return m.courses, nil
}

func (m *mockSummaryStats) CountCompletedPrograms(ctx context.Context, userID string) (int, error) {
	return m.programs, nil
}

func (m *mockSummaryStats) CountLessonCompletions(ctx context.Context, userID string) (int, error) {
	return m.lessons, nil
}

func (m *mockSummaryStats) CountSubmissions(ctx context.Context, userID string) (int, error) {
	return m.submissions, nil
}

func (m *mockSummaryStats) HasPerfectScore(ctx context.Context, userID string) (bool, error) {
	return m.perfect, nil
}

type mockCache struct {
	store map[string][]byte
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.store == nil {
		m.store = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = raw
	return nil
}

func leaderboardConfig() config.LeaderboardConfig {
	return config.LeaderboardConfig{CacheTTL: time.Minute, DefaultLimit: 10, MaxLimit: 100}
}

func TestLeaderboardServiceAssignsRanks(t *testing.T) {
	board := &mockBoard{entries: []models.LeaderboardEntry{
		{UserID: "user-1", Username: "alice", TotalPoints: 120},
		{UserID: "user-2", Username: "bob", TotalPoints: 80},
		{UserID: "user-3", Username: "carol", TotalPoints: 80},
	}}
	svc := NewLeaderboardService(board, &mockLedgerReader{}, &mockEarnedReader{}, &mockSummaryStats{}, nil, leaderboardConfig(), nil)

	entries, err := svc.GetLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestLeaderboardServiceClampsLimit(t *testing.T) {
	board := &mockBoard{}
	svc := NewLeaderboardService(board, &mockLedgerReader{}, &mockEarnedReader{}, &mockSummaryStats{}, nil, leaderboardConfig(), nil)

	_, err := svc.GetLeaderboard(context.Background(), 0)
	require.NoError(t, err)
	_, err = svc.GetLeaderboard(context.Background(), 10000)
	require.NoError(t, err)
	assert.Equal(t, 2, board.calls)
}

func TestLeaderboardServiceServesFromCache(t *testing.T) {
	board := &mockBoard{entries: []models.LeaderboardEntry{
		{UserID: "user-1", Username: "alice", TotalPoints: 50},
	}}
	cache := &mockCache{}
	svc := NewLeaderboardService(board, &mockLedgerReader{}, &mockEarnedReader{}, &mockSummaryStats{}, cache, leaderboardConfig(), nil)

	first, err := svc.GetLeaderboard(context.Background(), 5)
	require.NoError(t, err)
	second, err := svc.GetLeaderboard(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, board.calls)
}

func TestLeaderboardServiceUserSummaryTotalsComeFromLedger(t *testing.T) {
	history := []models.PointsTransaction{
		{ID: "tx-1", Points: 10, TransactionType: models.TransactionCourseCompletion},
		{ID: "tx-2", Points: 5, TransactionType: models.TransactionAssessmentCompletion},
		{ID: "tx-3", Points: 5, TransactionType: models.TransactionPerfectScore},
	}
	svc := NewLeaderboardService(
		&mockBoard{},
		&mockLedgerReader{total: 20, history: history},
		&mockEarnedReader{earned: []models.EarnedBadge{{Badge: models.Badge{ID: "badge-1"}}}},
		&mockSummaryStats{courses: 1, lessons: 4, submissions: 1, perfect: true},
		nil,
		leaderboardConfig(),
		nil,
	)

	summary, err := svc.GetUserSummary(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 20, summary.TotalPoints)
	assert.Len(t, summary.PointsHistory, 3)
	assert.Len(t, summary.Badges, 1)
	assert.Equal(t, 1, summary.Stats.CourseCompletions)
	assert.Equal(t, 4, summary.Stats.LessonCompletions)
	assert.True(t, summary.Stats.HasPerfectScore)

	var sum int
	for _, tx := range summary.PointsHistory {
		sum += tx.Points
	}
	assert.Equal(t, summary.TotalPoints, sum)
}

func TestLeaderboardServiceExportCSV(t *testing.T) {
	board := &mockBoard{entries: []models.LeaderboardEntry{
		{UserID: "user-1", Username: "alice", FullName: "Alice A", TotalPoints: 120, BadgeCount: 3},
	}}
	svc := NewLeaderboardService(board, &mockLedgerReader{}, &mockEarnedReader{}, &mockSummaryStats{}, nil, leaderboardConfig(), nil)

	payload, contentType, filename, err := svc.ExportLeaderboard(context.Background(), 10, ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	body := string(payload)
	assert.Contains(t, body, "Rank,Username,Full Name,Total Points,Badges")
	assert.Contains(t, body, "1,alice,Alice A,120,3")
}

func TestLeaderboardServiceExportPDF(t *testing.T) {
	board := &mockBoard{entries: []models.LeaderboardEntry{
		{UserID: "user-1", Username: "alice", FullName: "Alice A", TotalPoints: 120, BadgeCount: 3},
	}}
	svc := NewLeaderboardService(board, &mockLedgerReader{}, &mockEarnedReader{}, &mockSummaryStats{}, nil, leaderboardConfig(), nil)

	payload, contentType, filename, err := svc.ExportLeaderboard(context.Background(), 10, ExportPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestLeaderboardServiceExportUnknownFormat(t *testing.T) {
	svc := NewLeaderboardService(&mockBoard{}, &mockLedgerReader{}, &mockEarnedReader{}, &mockSummaryStats{}, nil, leaderboardConfig(), nil)

	_, _, _, err := svc.ExportLeaderboard(context.Background(), 10, ExportFormat("xml"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
