package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probuilder/lms-api/internal/models"
	appErrors "github.com/probuilder/lms-api/pkg/errors"
)

type mockProgressStore struct {
	programEnrollments map[string]*models.ProgramEnrollment
	courseEnrollments  map[string]*models.CourseEnrollment
	lessonDone         map[string]bool
	submissions        []models.AssessmentSubmission
	completedCourses   []string
	completedPrograms  []string
}

func newMockProgressStore() *mockProgressStore {
	return &mockProgressStore{
		programEnrollments: make(map[string]*models.ProgramEnrollment),
		courseEnrollments:  make(map[string]*models.CourseEnrollment),
		lessonDone:         make(map[string]bool),
	}
}

func (m *mockProgressStore) CreateProgramEnrollment(ctx context.Context, e *models.ProgramEnrollment) error {
	key := e.UserID + "/" + e.ProgramID
	if _, ok := m.programEnrollments[key]; ok {
		return appErrors.Clone(appErrors.ErrAlreadyExists, "already enrolled")
	}
	e.ID = "enroll-" + e.ProgramID
	m.programEnrollments[key] = e
	return nil
}

func (m *mockProgressStore) CreateCourseEnrollment(ctx context.Context, e *models.CourseEnrollment) error {
	key := e.UserID + "/" + e.CourseID
	if _, ok := m.courseEnrollments[key]; ok {
		return appErrors.Clone(appErrors.ErrAlreadyExists, "already enrolled")
	}
	e.ID = "enroll-" + e.CourseID
	m.courseEnrollments[key] = e
	return nil
}

func (m *mockProgressStore) FindProgramEnrollment(ctx context.Context, userID, programID string) (*models.ProgramEnrollment, error) {
	if e, ok := m.programEnrollments[userID+"/"+programID]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProgressStore) FindCourseEnrollment(ctx context.Context, userID, courseID string) (*models.CourseEnrollment, error) {
	if e, ok := m.courseEnrollments[userID+"/"+courseID]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProgressStore) MarkCourseCompleted(ctx context.Context, enrollmentID string, completedAt time.Time) error {
	m.completedCourses = append(m.completedCourses, enrollmentID)
	return nil
}

func (m *mockProgressStore) MarkProgramCompleted(ctx context.Context, enrollmentID string, completedAt time.Time) error {
	m.completedPrograms = append(m.completedPrograms, enrollmentID)
	return nil
}

func (m *mockProgressStore) InsertLessonCompletion(ctx context.Context, c *models.LessonCompletion) error {
	key := c.UserID + "/" + c.LessonID
	if m.lessonDone[key] {
		return appErrors.Clone(appErrors.ErrAlreadyExists, "lesson already completed")
	}
	m.lessonDone[key] = true
	c.ID = "completion-" + c.LessonID
	return nil
}

func (m *mockProgressStore) InsertSubmission(ctx context.Context, s *models.AssessmentSubmission) error {
	s.ID = "submission-1"
	m.submissions = append(m.submissions, *s)
	return nil
}

type mockRewards struct {
	events []HandleEventRequest
	err    error
}

func (m *mockRewards) HandleEvent(ctx context.Context, req HandleEventRequest) (*EventResult, error) {
	m.events = append(m.events, req)
	if m.err != nil {
		return nil, m.err
	}
	return &EventResult{}, nil
}

func TestProgressServiceCompleteLessonEmitsEvent(t *testing.T) {
	store := newMockProgressStore()
	rewards := &mockRewards{}
	svc := NewProgressService(store, rewards, nil, nil)

	completion, err := svc.CompleteLesson(context.Background(), "user-1", "lesson-1")
	require.NoError(t, err)
	require.NotNil(t, completion)
	require.Len(t, rewards.events, 1)
	assert.Equal(t, models.TransactionLessonCompletion, rewards.events[0].EventType)
	assert.Equal(t, "lesson-1", rewards.events[0].ReferenceID)
}

func TestProgressServiceCompleteLessonTwiceNoSecondEvent(t *testing.T) {
	store := newMockProgressStore()
	rewards := &mockRewards{}
	svc := NewProgressService(store, rewards, nil, nil)

	_, err := svc.CompleteLesson(context.Background(), "user-1", "lesson-1")
	require.NoError(t, err)
	completion, err := svc.CompleteLesson(context.Background(), "user-1", "lesson-1")
	require.NoError(t, err)
	assert.Nil(t, completion)
	assert.Len(t, rewards.events, 1)
}

func TestProgressServiceRewardFailureDoesNotFailOperation(t *testing.T) {
	store := newMockProgressStore()
	rewards := &mockRewards{err: errors.New("reward pipeline down")}
	svc := NewProgressService(store, rewards, nil, nil)

	completion, err := svc.CompleteLesson(context.Background(), "user-1", "lesson-1")
	require.NoError(t, err)
	assert.NotNil(t, completion)
}

func TestProgressServiceCompleteCourse(t *testing.T) {
	store := newMockProgressStore()
	rewards := &mockRewards{}
	svc := NewProgressService(store, rewards, nil, nil)

	_, err := svc.EnrollCourse(context.Background(), "user-1", "course-1")
	require.NoError(t, err)

	enrollment, err := svc.CompleteCourse(context.Background(), "user-1", "course-1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusCompleted, enrollment.Status)
	assert.NotNil(t, enrollment.CompletedAt)
	require.Len(t, rewards.events, 1)
	assert.Equal(t, models.TransactionCourseCompletion, rewards.events[0].EventType)
}

func TestProgressServiceCompleteCourseWithoutEnrollment(t *testing.T) {
	svc := NewProgressService(newMockProgressStore(), &mockRewards{}, nil, nil)

	_, err := svc.CompleteCourse(context.Background(), "user-1", "course-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestProgressServiceCompleteCourseTwiceConflicts(t *testing.T) {
	store := newMockProgressStore()
	rewards := &mockRewards{}
	svc := NewProgressService(store, rewards, nil, nil)

	_, err := svc.EnrollCourse(context.Background(), "user-1", "course-1")
	require.NoError(t, err)
	_, err = svc.CompleteCourse(context.Background(), "user-1", "course-1")
	require.NoError(t, err)

	_, err = svc.CompleteCourse(context.Background(), "user-1", "course-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyExists))
	assert.Len(t, rewards.events, 1)
}

func TestProgressServiceCompleteProgram(t *testing.T) {
	store := newMockProgressStore()
	rewards := &mockRewards{}
	svc := NewProgressService(store, rewards, nil, nil)

	_, err := svc.EnrollProgram(context.Background(), "user-1", "program-1")
	require.NoError(t, err)

	enrollment, err := svc.CompleteProgram(context.Background(), "user-1", "program-1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusCompleted, enrollment.Status)
	require.Len(t, rewards.events, 1)
	assert.Equal(t, models.TransactionProgramCompletion, rewards.events[0].EventType)
}

func TestProgressServiceEnrollTwiceConflicts(t *testing.T) {
	svc := NewProgressService(newMockProgressStore(), &mockRewards{}, nil, nil)

	_, err := svc.EnrollProgram(context.Background(), "user-1", "program-1")
	require.NoError(t, err)
	_, err = svc.EnrollProgram(context.Background(), "user-1", "program-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyExists))
}

func TestProgressServiceSubmitGradedAssessmentEmitsEventWithScore(t *testing.T) {
	store := newMockProgressStore()
	rewards := &mockRewards{}
	svc := NewProgressService(store, rewards, nil, nil)

	score := 100
	submission, err := svc.SubmitAssessment(context.Background(), SubmitAssessmentRequest{
		UserID:       "user-1",
		AssessmentID: "assessment-1",
		Answers:      json.RawMessage(`{"q1":"a"}`),
		Score:        &score,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, submission.ID)
	require.Len(t, rewards.events, 1)
	assert.Equal(t, models.TransactionAssessmentCompletion, rewards.events[0].EventType)
	require.NotNil(t, rewards.events[0].Score)
	assert.Equal(t, 100, *rewards.events[0].Score)
}

func TestProgressServiceSubmitUngradedAssessmentEmitsNoEvent(t *testing.T) {
	store := newMockProgressStore()
	rewards := &mockRewards{}
	svc := NewProgressService(store, rewards, nil, nil)

	_, err := svc.SubmitAssessment(context.Background(), SubmitAssessmentRequest{
		UserID:       "user-1",
		AssessmentID: "assessment-1",
		Answers:      json.RawMessage(`{"q1":"a"}`),
	})
	require.NoError(t, err)
	assert.Empty(t, rewards.events)
	assert.Len(t, store.submissions, 1)
}

func TestProgressServiceNilRewardsDispatcher(t *testing.T) {
	svc := NewProgressService(newMockProgressStore(), nil, nil, nil)

	completion, err := svc.CompleteLesson(context.Background(), "user-1", "lesson-1")
	require.NoError(t, err)
	assert.NotNil(t, completion)
}
