package models

import "time"

// Course belongs to a program and groups lessons and assessments.
type Course struct {
	ID            string    `db:"id" json:"id"`
	ProgramID     string    `db:"program_id" json:"program_id"`
	Title         string    `db:"title" json:"title"`
	Description   string    `db:"description" json:"description,omitempty"`
	SequenceOrder int       `db:"sequence_order" json:"sequence_order"`
	Published     bool      `db:"published" json:"published"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Lesson is a single content unit within a course.
type Lesson struct {
	ID                string    `db:"id" json:"id"`
	CourseID          string    `db:"course_id" json:"course_id"`
	Title             string    `db:"title" json:"title"`
	Description       string    `db:"description" json:"description,omitempty"`
	Content           string    `db:"content" json:"content,omitempty"`
	SequenceOrder     int       `db:"sequence_order" json:"sequence_order"`
	EstimatedDuration int       `db:"estimated_duration" json:"estimated_duration,omitempty"`
	Published         bool      `db:"published" json:"published"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
