package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compound Growth Validation Tests
//
// Standard compound interest formula:
// S[i] = V × (1 + r)^i
// Where:
//   V = starting value (the fetched price)
//   r = annual growth rate (as decimal)
//   i = years since the first sample

const growthTolerance = 0.01

func assertGrowthEquals(t *testing.T, expected, actual float64, description string) {
	t.Helper()
	if math.Abs(expected-actual) > growthTolerance*math.Max(1, math.Abs(expected)/1e6) {
		t.Errorf("%s: expected %.2f, got %.2f (diff: %.2f)",
			description, expected, actual, actual-expected)
	}
}

// =============================================================================
// Trajectory
// =============================================================================

func TestTrajectory_ZeroRateIsFlat(t *testing.T) {
	got := Trajectory(1, 0, 22)
	require.Len(t, got, 22)
	for i, v := range got {
		assert.Equal(t, 1.0, v, "sample %d", i)
	}
}

func TestTrajectory_Doubling(t *testing.T) {
	assert.Equal(t, []float64{100, 200, 400}, Trajectory(100, 1.0, 3))
}

func TestTrajectory_NonPositiveLength(t *testing.T) {
	assert.Empty(t, Trajectory(100, 0.29, 0))
	assert.Empty(t, Trajectory(100, 0.29, -3))
	assert.NotNil(t, Trajectory(100, 0.29, 0))
}

func TestTrajectory_FirstSampleIsStartValue(t *testing.T) {
	for _, rate := range []float64{-0.5, 0, 0.21, 0.29, 0.37, 2} {
		got := Trajectory(650000, rate, 5)
		assert.Equal(t, 650000.0, got[0], "rate %.2f", rate)
	}
}

func TestTrajectory_MultiYear(t *testing.T) {
	tests := []struct {
		value       float64
		rate        float64
		years       int
		expected    float64
		description string
	}{
		{100000, 0.05, 10, 162889.46, "100k @ 5% for 10 years"},
		{100000, 0.10, 10, 259374.25, "100k @ 10% for 10 years"},
		{1000, 0.29, 21, 1000 * math.Pow(1.29, 21), "1000 @ 29% for 21 years"},
		{500000, 0.21, 4, 1071794.41, "500k @ 21% for 4 years"},
		{100, -0.10, 2, 81, "100 @ -10% for 2 years"},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			got := Trajectory(tc.value, tc.rate, tc.years+1)
			assertGrowthEquals(t, tc.expected, got[tc.years], tc.description)
		})
	}
}

// =============================================================================
// Scenario projection
// =============================================================================

func TestProjectScenarios(t *testing.T) {
	rates := ScenarioRates{Bear: 0.21, Base: 0.29, Bull: 0.37}
	p := ProjectScenarios(1000, rates, 2025, DefaultHorizon)

	require.Equal(t, DefaultHorizon, p.Len())
	assert.Equal(t, 2025, p.Years[0])
	assert.Equal(t, 2046, p.Years[DefaultHorizon-1])
	assert.Equal(t, 1000.0, p.StartValue)
	assert.Equal(t, rates, p.Rates)
	assert.Equal(t, Trajectory(1000, 0.29, DefaultHorizon), p.Base)

	bear, base, bull := p.Final()
	assertGrowthEquals(t, 1000*math.Pow(1.21, 21), bear, "final bear")
	assertGrowthEquals(t, 1000*math.Pow(1.29, 21), base, "final base")
	assertGrowthEquals(t, 1000*math.Pow(1.37, 21), bull, "final bull")
}

func TestProjectScenarios_EmptyHorizon(t *testing.T) {
	p := ProjectScenarios(1000, ScenarioRates{}, 2025, 0)
	assert.Equal(t, 0, p.Len())
	bear, base, bull := p.Final()
	assert.Zero(t, bear+base+bull)
}

func TestScenarioProjection_YearValues(t *testing.T) {
	p := ProjectScenarios(1, ScenarioRates{}, 2030, 3)
	assert.Equal(t, []float64{2030, 2031, 2032}, p.YearValues())
}
