package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndicators(t *testing.T) {
	results := []ScoreResult{
		{Reasons: []string{ReasonMissingPhone, ReasonGibberishName}},
		{Reasons: []string{ReasonExactDuplicate}},
		{Reasons: []string{ReasonExactDuplicate, ReasonMissingPhone}},
		{Reasons: []string{}},
	}

	indicators := BuildIndicators(results)
	require.Len(t, indicators, 3)

	// ties on count are broken by name
	assert.Equal(t, ReasonExactDuplicate, indicators[0].Name)
	assert.Equal(t, CategoryDuplicate, indicators[0].Category)
	assert.Equal(t, 2, indicators[0].AffectedLeadCount)
	assert.InDelta(t, 50.0, indicators[0].Percentage, 1e-9)
	assert.Equal(t, 15, indicators[0].PointsPerLead)
	assert.Equal(t, 30, indicators[0].TotalPoints)

	assert.Equal(t, ReasonMissingPhone, indicators[1].Name)
	assert.Equal(t, CategoryContact, indicators[1].Category)
	assert.Equal(t, 20, indicators[1].TotalPoints)

	assert.Equal(t, ReasonGibberishName, indicators[2].Name)
	assert.Equal(t, CategoryQuality, indicators[2].Category)
	assert.Equal(t, 1, indicators[2].AffectedLeadCount)
	assert.InDelta(t, 25.0, indicators[2].Percentage, 1e-9)
}

func TestBuildIndicators_NoReasons(t *testing.T) {
	assert.Nil(t, BuildIndicators(nil))
	assert.Nil(t, BuildIndicators([]ScoreResult{{}, {}}))
}

func TestReasonCategoryAndPoints(t *testing.T) {
	assert.Equal(t, CategoryContact, ReasonCategory(ReasonRepeatedEmail))
	assert.Equal(t, CategoryQuality, ReasonCategory(ReasonMissingFields))
	assert.Equal(t, CategoryQuality, ReasonCategory("something new"))
	assert.Equal(t, 15, ReasonPoints(ReasonExactDuplicate))
	assert.Equal(t, 10, ReasonPoints(ReasonDisposableEmail))
}
