package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/probuilder/lms-api/internal/models"
	appErrors "github.com/probuilder/lms-api/pkg/errors"
)

// ProgressRepository persists enrollments, lesson completions and assessment
// submissions, and serves the aggregate counts the badge evaluator reads.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository constructs the repository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// CreateProgramEnrollment registers a learner to a program.
func (r *ProgressRepository) CreateProgramEnrollment(ctx context.Context, enrollment *models.ProgramEnrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}
	const query = `INSERT INTO program_enrollments (id, program_id, user_id, status, enrolled_at, completed_at)
        VALUES (:id, :program_id, :user_id, :status, :enrolled_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return appErrors.Clone(appErrors.ErrAlreadyExists, "already enrolled in program")
		}
		return fmt.Errorf("create program enrollment: %w", err)
	}
	return nil
}

// CreateCourseEnrollment registers a learner to a course.
func (r *ProgressRepository) CreateCourseEnrollment(ctx context.Context, enrollment *models.CourseEnrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}
	const query = `INSERT INTO course_enrollments (id, course_id, user_id, status, enrolled_at, completed_at)
        VALUES (:id, :course_id, :user_id, :status, :enrolled_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return appErrors.Clone(appErrors.ErrAlreadyExists, "already enrolled in course")
		}
		return fmt.Errorf("create course enrollment: %w", err)
	}
	return nil
}

// FindProgramEnrollment returns the user's enrollment for a program.
func (r *ProgressRepository) FindProgramEnrollment(ctx context.Context, userID, programID string) (*models.ProgramEnrollment, error) {
	const query = `SELECT id, program_id, user_id, status, enrolled_at, completed_at
        FROM program_enrollments WHERE user_id = $1 AND program_id = $2`
	var enrollment models.ProgramEnrollment
	if err := r.db.GetContext(ctx, &enrollment, query, userID, programID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindCourseEnrollment returns the user's enrollment for a course.
func (r *ProgressRepository) FindCourseEnrollment(ctx context.Context, userID, courseID string) (*models.CourseEnrollment, error) {
	const query = `SELECT id, course_id, user_id, status, enrolled_at, completed_at
        FROM course_enrollments WHERE user_id = $1 AND course_id = $2`
	var enrollment models.CourseEnrollment
	if err := r.db.GetContext(ctx, &enrollment, query, userID, courseID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// MarkCourseCompleted transitions a course enrollment to completed.
func (r *ProgressRepository) MarkCourseCompleted(ctx context.Context, enrollmentID string, completedAt time.Time) error {
	const query = `UPDATE course_enrollments SET status = $2, completed_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, enrollmentID, models.EnrollmentStatusCompleted, completedAt); err != nil {
		return fmt.Errorf("mark course completed: %w", err)
	}
	return nil
}

// MarkProgramCompleted transitions a program enrollment to completed.
func (r *ProgressRepository) MarkProgramCompleted(ctx context.Context, enrollmentID string, completedAt time.Time) error {
	const query = `UPDATE program_enrollments SET status = $2, completed_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, enrollmentID, models.EnrollmentStatusCompleted, completedAt); err != nil {
		return fmt.Errorf("mark program completed: %w", err)
	}
	return nil
}

// InsertLessonCompletion records a lesson as done. The table carries a unique
// constraint on (user_id, lesson_id); re-completing is reported as
// ErrAlreadyExists.
func (r *ProgressRepository) InsertLessonCompletion(ctx context.Context, completion *models.LessonCompletion) error {
	if completion.ID == "" {
		completion.ID = uuid.NewString()
	}
	if completion.CompletedAt.IsZero() {
		completion.CompletedAt = time.Now().UTC()
	}
	const query = `INSERT INTO lesson_completions (id, lesson_id, user_id, completed_at)
        VALUES (:id, :lesson_id, :user_id, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, completion); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return appErrors.Clone(appErrors.ErrAlreadyExists, "lesson already completed")
		}
		return fmt.Errorf("insert lesson completion: %w", err)
	}
	return nil
}

// InsertSubmission records an assessment submission.
func (r *ProgressRepository) InsertSubmission(ctx context.Context, submission *models.AssessmentSubmission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assessment_submissions (id, assessment_id, user_id, answers, score, feedback, graded_by, submitted_at, graded_at)
        VALUES (:id, :assessment_id, :user_id, :answers, :score, :feedback, :graded_by, :submitted_at, :graded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// CountCompletedCourses returns the user's completed-course count.
func (r *ProgressRepository) CountCompletedCourses(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM course_enrollments WHERE user_id = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, models.EnrollmentStatusCompleted); err != nil {
		return 0, fmt.Errorf("count completed courses: %w", err)
	}
	return count, nil
}

// CountCompletedPrograms returns the user's completed-program count.
func (r *ProgressRepository) CountCompletedPrograms(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM program_enrollments WHERE user_id = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, models.EnrollmentStatusCompleted); err != nil {
		return 0, fmt.Errorf("count completed programs: %w", err)
	}
	return count, nil
}

// CountLessonCompletions returns the user's completed-lesson count.
func (r *ProgressRepository) CountLessonCompletions(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM lesson_completions WHERE user_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count lesson completions: %w", err)
	}
	return count, nil
}

// CountSubmissions returns the user's assessment submission count.
func (r *ProgressRepository) CountSubmissions(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM assessment_submissions WHERE user_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return count, nil
}

// HasPerfectScore reports whether the user has at least one submission with
// a score of 100.
func (r *ProgressRepository) HasPerfectScore(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT 1 FROM assessment_submissions WHERE user_id = $1 AND score = 100 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check perfect score: %w", err)
	}
	return true, nil
}
