package study

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeProgress(t *testing.T) {
	s := Subject{
		TargetHours: 20,
		StudyData: map[string]float64{
			"2024-12-01": 2,
			"2024-12-02": 1.5,
			"2024-12-05": 1.5,
		},
	}

	p := ComputeProgress(s)
	assert.Equal(t, 3, p.TotalStudyDays)
	assert.Equal(t, 5.0, p.TotalStudyHours)
	assert.Equal(t, 25.0, p.ProgressPercentage)
}

func TestComputeProgress_NoTarget(t *testing.T) {
	p := ComputeProgress(Subject{StudyData: map[string]float64{"2024-12-01": 3}})
	assert.Zero(t, p.ProgressPercentage)
	assert.Equal(t, 1, p.TotalStudyDays)
}

func TestComputeProgress_OverTarget(t *testing.T) {
	p := ComputeProgress(Subject{TargetHours: 2, StudyData: map[string]float64{"2024-12-01": 3}})
	assert.Equal(t, 150.0, p.ProgressPercentage)
}

func TestCheckName(t *testing.T) {
	name, err := CheckName("  Linear Algebra ")
	require.NoError(t, err)
	assert.Equal(t, "Linear Algebra", name)

	for _, bad := range []string{"", "   ", "math/physics"} {
		_, err := CheckName(bad)
		assert.ErrorIs(t, err, ErrInvalidName, bad)
	}
}

func TestCheckHours(t *testing.T) {
	assert.NoError(t, CheckHours(0))
	assert.NoError(t, CheckHours(24))
	assert.ErrorIs(t, CheckHours(-1), ErrInvalidHours)
	assert.ErrorIs(t, CheckHours(24.5), ErrInvalidHours)
	assert.ErrorIs(t, CheckTarget(-3), ErrInvalidTarget)
}

func TestFromDocument(t *testing.T) {
	s, err := FromDocument(map[string]any{
		"targetHours": float64(10),
		"studyData":   map[string]any{"2024-12-01": float64(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, s.TargetHours)
	assert.Equal(t, 2.0, s.StudyData["2024-12-01"])

	s, err = FromDocument(map[string]any{"targetHours": float64(4)})
	require.NoError(t, err)
	assert.NotNil(t, s.StudyData)
}
