package models

import "time"

// Program is the top-level learning unit composed of ordered courses.
type Program struct {
	ID             string    `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description,omitempty"`
	Objectives     string    `db:"objectives" json:"objectives,omitempty"`
	TargetAudience string    `db:"target_audience" json:"target_audience,omitempty"`
	CreatorID      string    `db:"creator_id" json:"creator_id"`
	Published      bool      `db:"published" json:"published"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ProgramFilter provides filters for listing programs.
type ProgramFilter struct {
	CreatorID string
	Published *bool
	Search    string
	Page      int
	PageSize  int
}
