package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/probuilder/lms-api/internal/models"
	appErrors "github.com/probuilder/lms-api/pkg/errors"
)

type progressStore interface {
	CreateProgramEnrollment(ctx context.Context, enrollment *models.ProgramEnrollment) error
	CreateCourseEnrollment(ctx context.Context, enrollment *models.CourseEnrollment) error
	FindProgramEnrollment(ctx context.Context, userID, programID string) (*models.ProgramEnrollment, error)
	FindCourseEnrollment(ctx context.Context, userID, courseID string) (*models.CourseEnrollment, error)
	MarkCourseCompleted(ctx context.Context, enrollmentID string, completedAt time.Time) error
	MarkProgramCompleted(ctx context.Context, enrollmentID string, completedAt time.Time) error
	InsertLessonCompletion(ctx context.Context, completion *models.LessonCompletion) error
	InsertSubmission(ctx context.Context, submission *models.AssessmentSubmission) error
}

type rewardDispatcher interface {
	HandleEvent(ctx context.Context, req HandleEventRequest) (*EventResult, error)
}

// SubmitAssessmentRequest records an assessment attempt. Score is absent for
// submissions pending manual grading.
type SubmitAssessmentRequest struct {
	UserID       string          `validate:"required"`
	AssessmentID string          `validate:"required"`
	Answers      json.RawMessage `validate:"required"`
	Score        *int            `validate:"omitempty,min=0,max=100"`
}

// ProgressService tracks learner progress through programs, courses, lessons
// and assessments, and forwards completion events to the reward pipeline.
// Reward failures never fail the learning operation that triggered them.
type ProgressService struct {
	store     progressStore
	rewards   rewardDispatcher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProgressService constructs ProgressService. The reward dispatcher may be
// nil when gamification is disabled.
func NewProgressService(store progressStore, rewards rewardDispatcher, validate *validator.Validate, logger *zap.Logger) *ProgressService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{store: store, rewards: rewards, validator: validate, logger: logger}
}

// EnrollProgram registers the user on a program. Re-enrolling is a conflict.
func (s *ProgressService) EnrollProgram(ctx context.Context, userID, programID string) (*models.ProgramEnrollment, error) {
	enrollment := &models.ProgramEnrollment{
		ProgramID: programID,
		UserID:    userID,
		Status:    models.EnrollmentStatusActive,
	}
	if err := s.store.CreateProgramEnrollment(ctx, enrollment); err != nil {
		if appErrors.Is(err, appErrors.ErrAlreadyExists) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "already enrolled in this program")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll in program")
	}
	return enrollment, nil
}

// EnrollCourse registers the user on a course. Re-enrolling is a conflict.
func (s *ProgressService) EnrollCourse(ctx context.Context, userID, courseID string) (*models.CourseEnrollment, error) {
	enrollment := &models.CourseEnrollment{
		CourseID: courseID,
		UserID:   userID,
		Status:   models.EnrollmentStatusActive,
	}
	if err := s.store.CreateCourseEnrollment(ctx, enrollment); err != nil {
		if appErrors.Is(err, appErrors.ErrAlreadyExists) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "already enrolled in this course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll in course")
	}
	return enrollment, nil
}

// CompleteLesson marks a lesson done and rewards the first completion.
// Completing the same lesson twice is a no-op: no duplicate row, no second
// reward event.
func (s *ProgressService) CompleteLesson(ctx context.Context, userID, lessonID string) (*models.LessonCompletion, error) {
	completion := &models.LessonCompletion{
		LessonID: lessonID,
		UserID:   userID,
	}
	if err := s.store.InsertLessonCompletion(ctx, completion); err != nil {
		if appErrors.Is(err, appErrors.ErrAlreadyExists) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record lesson completion")
	}

	s.dispatch(ctx, HandleEventRequest{
		UserID:        userID,
		EventType:     models.TransactionLessonCompletion,
		ReferenceID:   lessonID,
		ReferenceType: "lesson",
	})
	return completion, nil
}

// CompleteCourse transitions an active course enrollment to completed and
// rewards the transition. An already-completed enrollment is a conflict so
// the reward cannot fire twice.
func (s *ProgressService) CompleteCourse(ctx context.Context, userID, courseID string) (*models.CourseEnrollment, error) {
	enrollment, err := s.store.FindCourseEnrollment(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "not enrolled in this course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course enrollment")
	}
	if enrollment.Status == models.EnrollmentStatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "course already completed")
	}

	now := time.Now().UTC()
	if err := s.store.MarkCourseCompleted(ctx, enrollment.ID, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete course")
	}
	enrollment.Status = models.EnrollmentStatusCompleted
	enrollment.CompletedAt = &now

	s.dispatch(ctx, HandleEventRequest{
		UserID:        userID,
		EventType:     models.TransactionCourseCompletion,
		ReferenceID:   courseID,
		ReferenceType: "course",
	})
	return enrollment, nil
}

// CompleteProgram transitions an active program enrollment to completed and
// rewards the transition.
func (s *ProgressService) CompleteProgram(ctx context.Context, userID, programID string) (*models.ProgramEnrollment, error) {
	enrollment, err := s.store.FindProgramEnrollment(ctx, userID, programID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "not enrolled in this program")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program enrollment")
	}
	if enrollment.Status == models.EnrollmentStatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "program already completed")
	}

	now := time.Now().UTC()
	if err := s.store.MarkProgramCompleted(ctx, enrollment.ID, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete program")
	}
	enrollment.Status = models.EnrollmentStatusCompleted
	enrollment.CompletedAt = &now

	s.dispatch(ctx, HandleEventRequest{
		UserID:        userID,
		EventType:     models.TransactionProgramCompletion,
		ReferenceID:   programID,
		ReferenceType: "program",
	})
	return enrollment, nil
}

// SubmitAssessment records an attempt. Graded submissions reward the learner;
// a score of 100 additionally earns the perfect-score bonus inside the reward
// pipeline. Ungraded submissions emit no event.
func (s *ProgressService) SubmitAssessment(ctx context.Context, req SubmitAssessmentRequest) (*models.AssessmentSubmission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	submission := &models.AssessmentSubmission{
		AssessmentID: req.AssessmentID,
		UserID:       req.UserID,
		Answers:      req.Answers,
		Score:        req.Score,
	}
	if err := s.store.InsertSubmission(ctx, submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record submission")
	}

	if req.Score != nil {
		s.dispatch(ctx, HandleEventRequest{
			UserID:        req.UserID,
			EventType:     models.TransactionAssessmentCompletion,
			ReferenceID:   req.AssessmentID,
			ReferenceType: "assessment",
			Score:         req.Score,
		})
	}
	return submission, nil
}

// dispatch forwards an event to the reward pipeline. Failures are logged and
// swallowed so gamification never breaks a learning operation.
func (s *ProgressService) dispatch(ctx context.Context, req HandleEventRequest) {
	if s.rewards == nil {
		return
	}
	if _, err := s.rewards.HandleEvent(ctx, req); err != nil {
		s.logger.Error("reward pipeline failed",
			zap.String("user_id", req.UserID),
			zap.String("event_type", string(req.EventType)),
			zap.Error(err),
		)
	}
}
