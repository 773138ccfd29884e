package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probuilder/lms-api/internal/models"
	appErrors "github.com/probuilder/lms-api/pkg/errors"
)

type mockEvaluator struct {
	qualifying []string
	err        error
	calls      int
}

func (m *mockEvaluator) Evaluate(ctx context.Context, userID string) ([]string, error) {
	m.calls++
	return m.qualifying, m.err
}

type mockAwarder struct {
	awarded  []models.UserBadge
	failWith map[string]error
}

func (m *mockAwarder) InsertUserBadge(ctx context.Context, userID, badgeID string) (*models.UserBadge, error) {
	if err, ok := m.failWith[badgeID]; ok {
		return nil, err
	}
	award := models.UserBadge{ID: "award-" + badgeID, UserID: userID, BadgeID: badgeID}
	m.awarded = append(m.awarded, award)
	return &award, nil
}

type mockInvalidator struct {
	patterns []string
	err      error
}

func (m *mockInvalidator) DeleteByPattern(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return m.err
}

func newAwardFixture(ledger *mockLedger, evaluator *mockEvaluator, awarder *mockAwarder, cache *mockInvalidator) *AwardService {
	points := NewPointsService(ledger, defaultTable(), nil, nil)
	var invalidator cacheInvalidator
	if cache != nil {
		invalidator = cache
	}
	return NewAwardService(points, evaluator, awarder, invalidator, nil, nil, nil, true)
}

func TestAwardServicePerfectScoreProducesTwoTransactions(t *testing.T) {
	ledger := &mockLedger{}
	svc := newAwardFixture(ledger, &mockEvaluator{}, &mockAwarder{}, nil)

	score := 100
	result, err := svc.HandleEvent(context.Background(), HandleEventRequest{
		UserID:        "user-1",
		EventType:     models.TransactionAssessmentCompletion,
		ReferenceID:   "assessment-1",
		ReferenceType: "assessment",
		Score:         &score,
	})
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)
	assert.Equal(t, models.TransactionAssessmentCompletion, result.Transactions[0].TransactionType)
	assert.Equal(t, models.TransactionPerfectScore, result.Transactions[1].TransactionType)

	total := result.Transactions[0].Points + result.Transactions[1].Points
	assert.Equal(t, 10, total)
}

func TestAwardServiceImperfectScoreSingleTransaction(t *testing.T) {
	ledger := &mockLedger{}
	svc := newAwardFixture(ledger, &mockEvaluator{}, &mockAwarder{}, nil)

	score := 99
	result, err := svc.HandleEvent(context.Background(), HandleEventRequest{
		UserID:    "user-1",
		EventType: models.TransactionAssessmentCompletion,
		Score:     &score,
	})
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, 5, result.Transactions[0].Points)
}

func TestAwardServiceAwardsQualifyingBadges(t *testing.T) {
	awarder := &mockAwarder{}
	svc := newAwardFixture(&mockLedger{}, &mockEvaluator{qualifying: []string{"badge-1", "badge-2"}}, awarder, nil)

	result, err := svc.HandleEvent(context.Background(), HandleEventRequest{
		UserID:    "user-1",
		EventType: models.TransactionCourseCompletion,
	})
	require.NoError(t, err)
	assert.Len(t, result.NewBadges, 2)
	assert.Len(t, awarder.awarded, 2)
}

func TestAwardServiceDuplicateBadgeIsBenign(t *testing.T) {
	awarder := &mockAwarder{failWith: map[string]error{
		"badge-1": appErrors.Clone(appErrors.ErrAlreadyExists, "badge already awarded"),
	}}
	svc := newAwardFixture(&mockLedger{}, &mockEvaluator{qualifying: []string{"badge-1", "badge-2"}}, awarder, nil)

	result, err := svc.HandleEvent(context.Background(), HandleEventRequest{
		UserID:    "user-1",
		EventType: models.TransactionCourseCompletion,
	})
	require.NoError(t, err)
	require.Len(t, result.NewBadges, 1)
	assert.Equal(t, "badge-2", result.NewBadges[0].BadgeID)
}

func TestAwardServiceDuplicateEventOneBadgeTwoTransactions(t *testing.T) {
	// The same completion event processed twice writes two ledger entries
	// but the unique constraint keeps the badge count at one.
	ledger := &mockLedger{}
	evaluator := &mockEvaluator{qualifying: []string{"badge-1"}}
	awarder := &mockAwarder{}
	svc := newAwardFixture(ledger, evaluator, awarder, nil)

	req := HandleEventRequest{UserID: "user-1", EventType: models.TransactionCourseCompletion}
	first, err := svc.HandleEvent(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first.NewBadges, 1)

	awarder.failWith = map[string]error{"badge-1": appErrors.Clone(appErrors.ErrAlreadyExists, "badge already awarded")}
	second, err := svc.HandleEvent(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, second.NewBadges)

	assert.Len(t, ledger.inserted, 2)
	assert.Len(t, awarder.awarded, 1)
}

func TestAwardServiceAccrualFailureAbortsBeforeEvaluation(t *testing.T) {
	ledger := &mockLedger{failWith: errors.New("disk full")}
	evaluator := &mockEvaluator{}
	svc := newAwardFixture(ledger, evaluator, &mockAwarder{}, nil)

	_, err := svc.HandleEvent(context.Background(), HandleEventRequest{
		UserID:    "user-1",
		EventType: models.TransactionCourseCompletion,
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrStorageUnavailable))
	assert.Zero(t, evaluator.calls)
}

func TestAwardServiceInvalidatesLeaderboardCache(t *testing.T) {
	cache := &mockInvalidator{}
	svc := newAwardFixture(&mockLedger{}, &mockEvaluator{}, &mockAwarder{}, cache)

	_, err := svc.HandleEvent(context.Background(), HandleEventRequest{
		UserID:    "user-1",
		EventType: models.TransactionLessonCompletion,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"leaderboard:*"}, cache.patterns)
}

func TestAwardServiceCacheFailureIsNonFatal(t *testing.T) {
	cache := &mockInvalidator{err: errors.New("redis down")}
	svc := newAwardFixture(&mockLedger{}, &mockEvaluator{}, &mockAwarder{}, cache)

	_, err := svc.HandleEvent(context.Background(), HandleEventRequest{
		UserID:    "user-1",
		EventType: models.TransactionLessonCompletion,
	})
	assert.NoError(t, err)
}

func TestAwardServiceDisabledIsNoOp(t *testing.T) {
	ledger := &mockLedger{}
	evaluator := &mockEvaluator{qualifying: []string{"badge-1"}}
	points := NewPointsService(ledger, defaultTable(), nil, nil)
	svc := NewAwardService(points, evaluator, &mockAwarder{}, nil, nil, nil, nil, false)

	result, err := svc.HandleEvent(context.Background(), HandleEventRequest{
		UserID:    "user-1",
		EventType: models.TransactionCourseCompletion,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Transactions)
	assert.Empty(t, result.NewBadges)
	assert.Empty(t, ledger.inserted)
	assert.Zero(t, evaluator.calls)
}
