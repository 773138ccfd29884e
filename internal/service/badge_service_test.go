package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probuilder/lms-api/internal/models"
	appErrors "github.com/probuilder/lms-api/pkg/errors"
)

type mockBadgeCatalog struct {
	badges   []models.Badge
	earned   []string
	awarded  []models.UserBadge
	awardErr error
}

func (m *mockBadgeCatalog) ListAll(ctx context.Context) ([]models.Badge, error) {
	return m.badges, nil
}

func (m *mockBadgeCatalog) FindByID(ctx context.Context, id string) (*models.Badge, error) {
	for i := range m.badges {
		if m.badges[i].ID == id {
			return &m.badges[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockBadgeCatalog) Create(ctx context.Context, badge *models.Badge) error {
	badge.ID = "badge-new"
	m.badges = append(m.badges, *badge)
	return nil
}

func (m *mockBadgeCatalog) Update(ctx context.Context, badge *models.Badge) error {
	for i := range m.badges {
		if m.badges[i].ID == badge.ID {
			m.badges[i] = *badge
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockBadgeCatalog) ListUserBadgeIDs(ctx context.Context, userID string) ([]string, error) {
	return m.earned, nil
}

func (m *mockBadgeCatalog) InsertUserBadge(ctx context.Context, userID, badgeID string) (*models.UserBadge, error) {
	if m.awardErr != nil {
		return nil, m.awardErr
	}
	award := models.UserBadge{ID: "award-1", UserID: userID, BadgeID: badgeID}
	m.awarded = append(m.awarded, award)
	return &award, nil
}

type mockStats struct {
	courses  int
	programs int
	perfect  bool
}

func (m *mockStats) CountCompletedCourses(ctx context.Context, userID string) (int, error) {
	return m.courses, nil
}

func (m *mockStats) CountCompletedPrograms(ctx context.Context, userID string) (int, error) {
	return m.programs, nil
}

func (m *mockStats) HasPerfectScore(ctx context.Context, userID string) (bool, error) {
	return m.perfect, nil
}

func badgeWithRules(id, raw string) models.Badge {
	return models.Badge{ID: id, Title: id, BadgeType: models.BadgeTypeMilestone, Requirements: json.RawMessage(raw)}
}

func TestBadgeServiceEvaluateThresholdMet(t *testing.T) {
	catalog := &mockBadgeCatalog{badges: []models.Badge{
		badgeWithRules("first-course", `{"course_completions": 1}`),
	}}
	svc := NewBadgeService(catalog, &mockStats{courses: 1}, nil, nil)

	ids, err := svc.Evaluate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first-course"}, ids)
}

func TestBadgeServiceEvaluateThresholdNotMet(t *testing.T) {
	catalog := &mockBadgeCatalog{badges: []models.Badge{
		badgeWithRules("five-courses", `{"course_completions": 5}`),
	}}
	svc := NewBadgeService(catalog, &mockStats{courses: 4}, nil, nil)

	ids, err := svc.Evaluate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestBadgeServiceEvaluateOrSemantics(t *testing.T) {
	// One satisfied requirement is enough even when the others are not met.
	catalog := &mockBadgeCatalog{badges: []models.Badge{
		badgeWithRules("multi", `{"course_completions": 10, "assessment_score": 100}`),
	}}
	svc := NewBadgeService(catalog, &mockStats{courses: 0, perfect: true}, nil, nil)

	ids, err := svc.Evaluate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"multi"}, ids)
}

func TestBadgeServiceEvaluateSkipsEarnedBadges(t *testing.T) {
	catalog := &mockBadgeCatalog{
		badges: []models.Badge{badgeWithRules("first-course", `{"course_completions": 1}`)},
		earned: []string{"first-course"},
	}
	svc := NewBadgeService(catalog, &mockStats{courses: 3}, nil, nil)

	ids, err := svc.Evaluate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestBadgeServiceEvaluateSkipsInstructorOnlyBadges(t *testing.T) {
	catalog := &mockBadgeCatalog{badges: []models.Badge{
		badgeWithRules("special", `{"instructor_awarded": true}`),
	}}
	svc := NewBadgeService(catalog, &mockStats{courses: 100, programs: 100, perfect: true}, nil, nil)

	ids, err := svc.Evaluate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestBadgeServiceEvaluateConsecutiveLoginsNeverAutoMatches(t *testing.T) {
	catalog := &mockBadgeCatalog{badges: []models.Badge{
		badgeWithRules("streak", `{"consecutive_logins": 1}`),
	}}
	svc := NewBadgeService(catalog, &mockStats{courses: 10}, nil, nil)

	ids, err := svc.Evaluate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestBadgeServiceEvaluateMalformedRuleSkipsOnlyThatBadge(t *testing.T) {
	catalog := &mockBadgeCatalog{badges: []models.Badge{
		badgeWithRules("broken", `{"mystery_rule": 3}`),
		badgeWithRules("first-course", `{"course_completions": 1}`),
	}}
	svc := NewBadgeService(catalog, &mockStats{courses: 1}, nil, nil)

	ids, err := svc.Evaluate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first-course"}, ids)
}

func TestBadgeServiceAwardByInstructor(t *testing.T) {
	catalog := &mockBadgeCatalog{badges: []models.Badge{
		badgeWithRules("special", `{"instructor_awarded": true}`),
	}}
	svc := NewBadgeService(catalog, &mockStats{}, nil, nil)

	award, err := svc.AwardByInstructor(context.Background(), "user-1", "special")
	require.NoError(t, err)
	assert.Equal(t, "special", award.BadgeID)
}

func TestBadgeServiceAwardByInstructorUnknownBadge(t *testing.T) {
	svc := NewBadgeService(&mockBadgeCatalog{}, &mockStats{}, nil, nil)

	_, err := svc.AwardByInstructor(context.Background(), "user-1", "missing")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestBadgeServiceAwardByInstructorDuplicate(t *testing.T) {
	catalog := &mockBadgeCatalog{
		badges:   []models.Badge{badgeWithRules("special", `{"instructor_awarded": true}`)},
		awardErr: appErrors.Clone(appErrors.ErrAlreadyExists, "badge already awarded"),
	}
	svc := NewBadgeService(catalog, &mockStats{}, nil, nil)

	_, err := svc.AwardByInstructor(context.Background(), "user-1", "special")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyExists))
}

func TestBadgeServiceCreateBadgeRejectsMalformedRequirements(t *testing.T) {
	svc := NewBadgeService(&mockBadgeCatalog{}, &mockStats{}, nil, nil)

	_, err := svc.CreateBadge(context.Background(), CreateBadgeRequest{
		Title:        "Broken",
		BadgeType:    models.BadgeTypeAchievement,
		Requirements: map[string]any{"course_completions": 0},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrMalformedBadgeRule))
}

func TestBadgeServiceCreateBadgeValid(t *testing.T) {
	catalog := &mockBadgeCatalog{}
	svc := NewBadgeService(catalog, &mockStats{}, nil, nil)

	badge, err := svc.CreateBadge(context.Background(), CreateBadgeRequest{
		Title:        "Program Finisher",
		BadgeType:    models.BadgeTypeMilestone,
		Requirements: map[string]any{"program_completions": 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "badge-new", badge.ID)

	rules, err := badge.Rules()
	require.NoError(t, err)
	assert.False(t, rules.InstructorOnly())
}
