package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBadgeRequirementsValid(t *testing.T) {
	reqs, err := ParseBadgeRequirements(json.RawMessage(`{"course_completions": 5}`))
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, RequirementCourseCompletions, reqs[0].Kind)
	assert.Equal(t, 5, reqs[0].Threshold)
}

func TestParseBadgeRequirementsMultipleKinds(t *testing.T) {
	reqs, err := ParseBadgeRequirements(json.RawMessage(`{"course_completions": 3, "program_completions": 1, "assessment_score": 100}`))
	require.NoError(t, err)
	assert.Len(t, reqs, 3)
}

func TestParseBadgeRequirementsInstructorAwarded(t *testing.T) {
	reqs, err := ParseBadgeRequirements(json.RawMessage(`{"instructor_awarded": true}`))
	require.NoError(t, err)
	assert.True(t, reqs.InstructorOnly())
}

func TestParseBadgeRequirementsInstructorAwardedWithOthersNotInstructorOnly(t *testing.T) {
	reqs, err := ParseBadgeRequirements(json.RawMessage(`{"instructor_awarded": true, "course_completions": 1}`))
	require.NoError(t, err)
	assert.False(t, reqs.InstructorOnly())
}

func TestParseBadgeRequirementsRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty object":            `{}`,
		"unknown kind":            `{"longest_streak": 3}`,
		"zero threshold":          `{"course_completions": 0}`,
		"negative threshold":      `{"program_completions": -1}`,
		"non-numeric threshold":   `{"course_completions": "five"}`,
		"imperfect score":         `{"assessment_score": 90}`,
		"instructor flag false":   `{"instructor_awarded": false}`,
		"instructor flag numeric": `{"instructor_awarded": 1}`,
		"not an object":           `[1,2,3]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseBadgeRequirements(json.RawMessage(raw))
			assert.Error(t, err)
		})
	}
}

func TestParseBadgeRequirementsEmptyBlob(t *testing.T) {
	_, err := ParseBadgeRequirements(nil)
	assert.Error(t, err)
}

func TestBadgeRulesParsesStoredBlob(t *testing.T) {
	badge := Badge{Requirements: json.RawMessage(`{"consecutive_logins": 7}`)}
	reqs, err := badge.Rules()
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, RequirementConsecutiveLogins, reqs[0].Kind)
	assert.Equal(t, 7, reqs[0].Threshold)
}
