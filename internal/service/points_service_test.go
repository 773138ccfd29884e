package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probuilder/lms-api/internal/models"
	"github.com/probuilder/lms-api/pkg/config"
	appErrors "github.com/probuilder/lms-api/pkg/errors"
)

type mockLedger struct {
	inserted []models.PointsTransaction
	failWith error
}

func (m *mockLedger) Insert(ctx context.Context, tx *models.PointsTransaction) error {
	if m.failWith != nil {
		return m.failWith
	}
	tx.ID = "tx-" + string(rune('1'+len(m.inserted)))
	m.inserted = append(m.inserted, *tx)
	return nil
}

func defaultTable() PointsTable {
	return PointsTableFromConfig(config.GamificationConfig{
		CourseCompletionPoints:     10,
		LessonCompletionPoints:     2,
		AssessmentCompletionPoints: 5,
		PerfectScorePoints:         5,
		ProgramCompletionPoints:    20,
		DailyLoginPoints:           1,
	})
}

func TestPointsServiceAccrueWritesOneLedgerEntry(t *testing.T) {
	ledger := &mockLedger{}
	svc := NewPointsService(ledger, defaultTable(), nil, nil)

	tx, err := svc.Accrue(context.Background(), AccrueRequest{
		UserID:        "user-1",
		EventType:     models.TransactionCourseCompletion,
		ReferenceID:   "course-1",
		ReferenceType: "course",
		Description:   "Completed a course",
	})
	require.NoError(t, err)
	require.Len(t, ledger.inserted, 1)
	assert.Equal(t, 10, tx.Points)
	assert.Equal(t, "user-1", tx.UserID)
	require.NotNil(t, tx.ReferenceID)
	assert.Equal(t, "course-1", *tx.ReferenceID)
}

func TestPointsServiceAccrueEveryConfiguredEventType(t *testing.T) {
	expectations := map[models.TransactionType]int{
		models.TransactionCourseCompletion:     10,
		models.TransactionLessonCompletion:     2,
		models.TransactionAssessmentCompletion: 5,
		models.TransactionPerfectScore:         5,
		models.TransactionProgramCompletion:    20,
		models.TransactionDailyLogin:           1,
	}
	for eventType, points := range expectations {
		ledger := &mockLedger{}
		svc := NewPointsService(ledger, defaultTable(), nil, nil)
		tx, err := svc.Accrue(context.Background(), AccrueRequest{UserID: "user-1", EventType: eventType})
		require.NoError(t, err, string(eventType))
		assert.Equal(t, points, tx.Points, string(eventType))
	}
}

func TestPointsServiceAccrueUnknownEventType(t *testing.T) {
	ledger := &mockLedger{}
	svc := NewPointsService(ledger, defaultTable(), nil, nil)

	_, err := svc.Accrue(context.Background(), AccrueRequest{UserID: "user-1", EventType: "mystery_event"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidEventType))
	assert.Empty(t, ledger.inserted)
}

func TestPointsServiceAccrueMissingUser(t *testing.T) {
	svc := NewPointsService(&mockLedger{}, defaultTable(), nil, nil)

	_, err := svc.Accrue(context.Background(), AccrueRequest{EventType: models.TransactionDailyLogin})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestPointsServiceAccrueLedgerFailure(t *testing.T) {
	ledger := &mockLedger{failWith: errors.New("connection reset")}
	svc := NewPointsService(ledger, defaultTable(), nil, nil)

	_, err := svc.Accrue(context.Background(), AccrueRequest{UserID: "user-1", EventType: models.TransactionLessonCompletion})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrStorageUnavailable))
}
