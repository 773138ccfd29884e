package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/probuilder/lms-api/internal/models"
	appErrors "github.com/probuilder/lms-api/pkg/errors"
)

type courseStore interface {
	ListByProgram(ctx context.Context, programID string) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	ListLessons(ctx context.Context, courseID string) ([]models.Lesson, error)
	FindLessonByID(ctx context.Context, id string) (*models.Lesson, error)
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	ListAssessments(ctx context.Context, courseID string) ([]models.Assessment, error)
	FindAssessmentByID(ctx context.Context, id string) (*models.Assessment, error)
	CreateAssessment(ctx context.Context, assessment *models.Assessment) error
}

// CourseRequest is the create/update payload for a course.
type CourseRequest struct {
	ProgramID     string `json:"program_id" validate:"required"`
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description"`
	SequenceOrder int    `json:"sequence_order" validate:"min=0"`
	Published     bool   `json:"published"`
}

// LessonRequest is the create payload for a lesson.
type LessonRequest struct {
	CourseID          string `json:"course_id" validate:"required"`
	Title             string `json:"title" validate:"required"`
	Description       string `json:"description"`
	Content           string `json:"content"`
	SequenceOrder     int    `json:"sequence_order" validate:"min=0"`
	EstimatedDuration int    `json:"estimated_duration" validate:"min=0"`
	Published         bool   `json:"published"`
}

// AssessmentRequest is the create payload for an assessment.
type AssessmentRequest struct {
	CourseID       string                `json:"course_id" validate:"required"`
	Title          string                `json:"title" validate:"required"`
	Description    string                `json:"description"`
	AssessmentType models.AssessmentType `json:"assessment_type" validate:"required,oneof=quiz assignment project"`
	PassingScore   int                   `json:"passing_score" validate:"min=0,max=100"`
	TimeLimit      int                   `json:"time_limit" validate:"min=0"`
	Published      bool                  `json:"published"`
}

// CourseService manages courses and their lessons and assessments.
type CourseService struct {
	store     courseStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(store courseStore, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{store: store, validator: validate, logger: logger}
}

// ListByProgram returns a program's courses in sequence order.
func (s *CourseService) ListByProgram(ctx context.Context, programID string) ([]models.Course, error) {
	courses, err := s.store.ListByProgram(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Get returns a single course.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create persists a new course.
func (s *CourseService) Create(ctx context.Context, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course := &models.Course{
		ProgramID:     req.ProgramID,
		Title:         req.Title,
		Description:   req.Description,
		SequenceOrder: req.SequenceOrder,
		Published:     req.Published,
	}
	if err := s.store.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// Update replaces the mutable fields of a course.
func (s *CourseService) Update(ctx context.Context, id string, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	course.Title = req.Title
	course.Description = req.Description
	course.SequenceOrder = req.SequenceOrder
	course.Published = req.Published
	if err := s.store.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// ListLessons returns a course's lessons in sequence order.
func (s *CourseService) ListLessons(ctx context.Context, courseID string) ([]models.Lesson, error) {
	lessons, err := s.store.ListLessons(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	return lessons, nil
}

// GetLesson returns a single lesson.
func (s *CourseService) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	lesson, err := s.store.FindLessonByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	return lesson, nil
}

// CreateLesson persists a new lesson.
func (s *CourseService) CreateLesson(ctx context.Context, req LessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}

	lesson := &models.Lesson{
		CourseID:          req.CourseID,
		Title:             req.Title,
		Description:       req.Description,
		Content:           req.Content,
		SequenceOrder:     req.SequenceOrder,
		EstimatedDuration: req.EstimatedDuration,
		Published:         req.Published,
	}
	if err := s.store.CreateLesson(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson")
	}
	return lesson, nil
}

// ListAssessments returns a course's assessments.
func (s *CourseService) ListAssessments(ctx context.Context, courseID string) ([]models.Assessment, error) {
	assessments, err := s.store.ListAssessments(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assessments")
	}
	return assessments, nil
}

// GetAssessment returns a single assessment.
func (s *CourseService) GetAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	assessment, err := s.store.FindAssessmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment")
	}
	return assessment, nil
}

// CreateAssessment persists a new assessment.
func (s *CourseService) CreateAssessment(ctx context.Context, req AssessmentRequest) (*models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}

	assessment := &models.Assessment{
		CourseID:       req.CourseID,
		Title:          req.Title,
		Description:    req.Description,
		AssessmentType: req.AssessmentType,
		PassingScore:   req.PassingScore,
		TimeLimit:      req.TimeLimit,
		Published:      req.Published,
	}
	if err := s.store.CreateAssessment(ctx, assessment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assessment")
	}
	return assessment, nil
}
