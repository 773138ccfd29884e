package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
)

// ProgramEnrollment registers a learner to a program.
type ProgramEnrollment struct {
	ID          string           `db:"id" json:"id"`
	ProgramID   string           `db:"program_id" json:"program_id"`
	UserID      string           `db:"user_id" json:"user_id"`
	Status      EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt  time.Time        `db:"enrolled_at" json:"enrolled_at"`
	CompletedAt *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
}

// CourseEnrollment registers a learner to a course.
type CourseEnrollment struct {
	ID          string           `db:"id" json:"id"`
	CourseID    string           `db:"course_id" json:"course_id"`
	UserID      string           `db:"user_id" json:"user_id"`
	Status      EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt  time.Time        `db:"enrolled_at" json:"enrolled_at"`
	CompletedAt *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
}

// LessonCompletion marks a lesson as done for a learner. One row per
// (user, lesson) pair.
type LessonCompletion struct {
	ID          string    `db:"id" json:"id"`
	LessonID    string    `db:"lesson_id" json:"lesson_id"`
	UserID      string    `db:"user_id" json:"user_id"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}
