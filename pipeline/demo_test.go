package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-collision/severity"
)

func TestForceAccidentLevels(t *testing.T) {
	tests := []struct {
		level        severity.Level
		wantVehicles int
		wantScore    float64
	}{
		{severity.LevelMinor, 2, 25},
		{severity.LevelMajor, 3, 55},
		{severity.LevelCritical, 4, 85},
	}

	for _, tc := range tests {
		t.Run(string(tc.level), func(t *testing.T) {
			p := newTestPipeline(t, &MockLocalizer{})
			p.ForceAccident(tc.level)
			res := p.ProcessFrame(testFrame(t))

			require.True(t, res.AccidentDetected)
			assert.Equal(t, tc.level, res.Severity)
			assert.Equal(t, tc.wantScore, res.SeverityScore)
			assert.Equal(t, tc.wantVehicles, res.VehicleCount)
			assert.Len(t, res.Vehicles, tc.wantVehicles)
			assert.Equal(t, 0.9, res.Confidence)
			assert.Equal(t, float64(85), res.SeverityConfidence,
				"synthetic accidents carry assumed, not measured, confidence")
			assert.True(t, res.ShouldAlert)
			assert.Equal(t, tc.wantScore/2, res.Motion)
		})
	}
}

func TestForceAccidentDeterministic(t *testing.T) {
	for _, level := range []severity.Level{
		severity.LevelMinor, severity.LevelMajor, severity.LevelCritical,
	} {
		p := newTestPipeline(t, &MockLocalizer{})

		p.ForceAccident(level)
		first := p.ProcessFrame(testFrame(t))
		p.ForceAccident(level)
		second := p.ProcessFrame(testFrame(t))

		assert.Equal(t, first.SeverityScore, second.SeverityScore)
		assert.Equal(t, first.VehicleCount, second.VehicleCount)
		assert.Equal(t, first.Factors, second.Factors)
	}
}

func TestForceAccidentIsOneShot(t *testing.T) {
	p := newTestPipeline(t, &MockLocalizer{})
	p.ForceAccident(severity.LevelCritical)

	res := p.ProcessFrame(testFrame(t))
	require.True(t, res.AccidentDetected)

	res = p.ProcessFrame(testFrame(t))
	assert.False(t, res.AccidentDetected, "normal processing resumes after the override")
}

func TestForceAccidentIgnoresUnknownLevel(t *testing.T) {
	p := newTestPipeline(t, &MockLocalizer{})
	p.ForceAccident(severity.Level("CATASTROPHIC"))

	res := p.ProcessFrame(testFrame(t))
	assert.False(t, res.AccidentDetected)
}

func TestForceAccidentFactors(t *testing.T) {
	p := newTestPipeline(t, &MockLocalizer{})
	p.ForceAccident(severity.LevelMajor)
	res := p.ProcessFrame(testFrame(t))

	assert.Equal(t, float32(55), res.Factors.Overlap)
	assert.Equal(t, float32(75), res.Factors.VehicleCount)
	assert.Equal(t, float32(45), res.Factors.Motion)
	assert.Equal(t, float32(50), res.Factors.Debris)
}
