package models

import (
	"encoding/json"
	"time"
)

// AssessmentType distinguishes how an assessment is delivered and graded.
type AssessmentType string

const (
	AssessmentTypeQuiz       AssessmentType = "quiz"
	AssessmentTypeAssignment AssessmentType = "assignment"
	AssessmentTypeProject    AssessmentType = "project"
)

// Assessment is a graded activity attached to a course.
type Assessment struct {
	ID             string         `db:"id" json:"id"`
	CourseID       string         `db:"course_id" json:"course_id"`
	Title          string         `db:"title" json:"title"`
	Description    string         `db:"description" json:"description,omitempty"`
	AssessmentType AssessmentType `db:"assessment_type" json:"assessment_type"`
	PassingScore   int            `db:"passing_score" json:"passing_score,omitempty"`
	TimeLimit      int            `db:"time_limit" json:"time_limit,omitempty"`
	Published      bool           `db:"published" json:"published"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// AssessmentSubmission records a learner's answers and grade.
type AssessmentSubmission struct {
	ID           string          `db:"id" json:"id"`
	AssessmentID string          `db:"assessment_id" json:"assessment_id"`
	UserID       string          `db:"user_id" json:"user_id"`
	Answers      json.RawMessage `db:"answers" json:"answers"`
	Score        *int            `db:"score" json:"score,omitempty"`
	Feedback     string          `db:"feedback" json:"feedback,omitempty"`
	GradedBy     *string         `db:"graded_by" json:"graded_by,omitempty"`
	SubmittedAt  time.Time       `db:"submitted_at" json:"submitted_at"`
	GradedAt     *time.Time      `db:"graded_at" json:"graded_at,omitempty"`
}
