package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TransactionType identifies the learning event a points transaction was
// accrued for.
type TransactionType string

const (
	TransactionCourseCompletion     TransactionType = "course_completion"
	TransactionLessonCompletion     TransactionType = "lesson_completion"
	TransactionAssessmentCompletion TransactionType = "assessment_completion"
	TransactionPerfectScore         TransactionType = "perfect_score"
	TransactionProgramCompletion    TransactionType = "program_completion"
	TransactionDailyLogin           TransactionType = "daily_login"
	TransactionOther                TransactionType = "other"
)

// PointsTransaction is an immutable, append-only ledger entry. The sum of a
// user's transactions is the single source of truth for their point total.
type PointsTransaction struct {
	ID              string          `db:"id" json:"id"`
	UserID          string          `db:"user_id" json:"user_id"`
	Points          int             `db:"points" json:"points"`
	TransactionType TransactionType `db:"transaction_type" json:"transaction_type"`
	ReferenceID     *string         `db:"reference_id" json:"reference_id,omitempty"`
	ReferenceType   *string         `db:"reference_type" json:"reference_type,omitempty"`
	Description     string          `db:"description" json:"description,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// BadgeType categorises catalog badges.
type BadgeType string

const (
	BadgeTypeAchievement   BadgeType = "achievement"
	BadgeTypeMilestone     BadgeType = "milestone"
	BadgeTypeParticipation BadgeType = "participation"
)

// RequirementKind enumerates the recognized badge requirement predicates.
type RequirementKind string

const (
	RequirementCourseCompletions  RequirementKind = "course_completions"
	RequirementProgramCompletions RequirementKind = "program_completions"
	RequirementAssessmentScore    RequirementKind = "assessment_score"
	RequirementConsecutiveLogins  RequirementKind = "consecutive_logins"
	RequirementInstructorAwarded  RequirementKind = "instructor_awarded"
)

// BadgeRequirement is one tagged predicate variant. Threshold is meaningless
// for the instructor_awarded kind.
type BadgeRequirement struct {
	Kind      RequirementKind `json:"kind"`
	Threshold int             `json:"threshold,omitempty"`
}

// BadgeRequirements is the parsed, validated rule set of a badge. A badge
// qualifies when ANY of its requirements is satisfied.
type BadgeRequirements []BadgeRequirement

// InstructorOnly reports whether the badge can only be granted manually,
// i.e. its sole requirement is instructor_awarded.
func (r BadgeRequirements) InstructorOnly() bool {
	if len(r) != 1 {
		return false
	}
	return r[0].Kind == RequirementInstructorAwarded
}

// ParseBadgeRequirements decodes and validates the raw requirements blob of a
// catalog badge. The stored shape is a flat object mapping requirement kind to
// threshold, e.g. {"course_completions": 1}.
func ParseBadgeRequirements(raw json.RawMessage) (BadgeRequirements, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("requirements are empty")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode requirements: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("requirements declare no rules")
	}

	reqs := make(BadgeRequirements, 0, len(fields))
	for key, value := range fields {
		kind := RequirementKind(key)
		switch kind {
		case RequirementCourseCompletions, RequirementProgramCompletions, RequirementConsecutiveLogins:
			var threshold int
			if err := json.Unmarshal(value, &threshold); err != nil {
				return nil, fmt.Errorf("requirement %q: %w", key, err)
			}
			if threshold < 1 {
				return nil, fmt.Errorf("requirement %q: threshold must be positive", key)
			}
			reqs = append(reqs, BadgeRequirement{Kind: kind, Threshold: threshold})
		case RequirementAssessmentScore:
			var score int
			if err := json.Unmarshal(value, &score); err != nil {
				return nil, fmt.Errorf("requirement %q: %w", key, err)
			}
			if score != 100 {
				return nil, fmt.Errorf("requirement %q: only a perfect score (100) is supported", key)
			}
			reqs = append(reqs, BadgeRequirement{Kind: kind, Threshold: score})
		case RequirementInstructorAwarded:
			var flag bool
			if err := json.Unmarshal(value, &flag); err != nil {
				return nil, fmt.Errorf("requirement %q: %w", key, err)
			}
			if !flag {
				return nil, fmt.Errorf("requirement %q: must be true when declared", key)
			}
			reqs = append(reqs, BadgeRequirement{Kind: kind})
		default:
			return nil, fmt.Errorf("unknown requirement kind %q", key)
		}
	}

	return reqs, nil
}

// Badge is a catalog entry managed by administrators.
type Badge struct {
	ID           string          `db:"id" json:"id"`
	Title        string          `db:"title" json:"title"`
	Description  string          `db:"description" json:"description,omitempty"`
	ImageURL     string          `db:"image_url" json:"image_url,omitempty"`
	BadgeType    BadgeType       `db:"badge_type" json:"badge_type"`
	Requirements json.RawMessage `db:"requirements" json:"requirements"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Rules parses the badge's raw requirement blob.
func (b *Badge) Rules() (BadgeRequirements, error) {
	return ParseBadgeRequirements(b.Requirements)
}

// UserBadge links a badge to the user who earned it. Exactly one row may
// exist per (user, badge) pair, enforced by a storage-level unique constraint.
type UserBadge struct {
	ID       string    `db:"id" json:"id"`
	UserID   string    `db:"user_id" json:"user_id"`
	BadgeID  string    `db:"badge_id" json:"badge_id"`
	EarnedAt time.Time `db:"earned_at" json:"earned_at"`
}

// EarnedBadge joins catalog data with the earn timestamp for display.
type EarnedBadge struct {
	Badge
	EarnedAt time.Time `db:"earned_at" json:"earned_at"`
}

// StatsSnapshot is the per-user progress snapshot the evaluator matches badge
// rules against. Derived from enrollment and submission tables, never from
// the points ledger.
type StatsSnapshot struct {
	CourseCompletions     int  `json:"course_completions"`
	ProgramCompletions    int  `json:"program_completions"`
	LessonCompletions     int  `json:"lesson_completions"`
	AssessmentCompletions int  `json:"assessment_completions"`
	HasPerfectScore       bool `json:"has_perfect_score"`
}

// GamificationSummary is the read-only per-user aggregate view.
type GamificationSummary struct {
	UserID        string              `json:"user_id"`
	TotalPoints   int                 `json:"total_points"`
	Badges        []EarnedBadge       `json:"badges"`
	PointsHistory []PointsTransaction `json:"points_history"`
	Stats         StatsSnapshot       `json:"stats"`
}
