package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func testProjection() *ScenarioProjection {
	p := ProjectScenarios(650000, defaultRates, 2025, DefaultHorizon)
	p.Price = 650000
	return &p
}

func TestScenarioChart_Annotations(t *testing.T) {
	cone := ScenarioChart(testConfig(t), testProjection())

	annotations := cone.Annotations()
	require.Len(t, annotations, 6) // samples 0, 4, 8, 12, 16, 20
	assert.Equal(t, 2025.0, annotations[0].XValue)
	assert.Equal(t, "650,000", annotations[0].Label)
	assert.Equal(t, 2029.0, annotations[1].XValue)
	assert.Equal(t, 2045.0, annotations[5].XValue)
	for _, a := range annotations {
		assert.Contains(t, a.Label, ",")
	}
}

func TestConeChart_AnnotationsDisabled(t *testing.T) {
	cone := ScenarioChart(testConfig(t), testProjection())
	cone.AnnotateEvery = 0
	assert.Empty(t, cone.Annotations())
}

func TestScenarioChart_Labels(t *testing.T) {
	cone := ScenarioChart(testConfig(t), testProjection())

	assert.Equal(t, "Year", cone.XLabel)
	assert.Equal(t, "Bitcoin Value (SEK)", cone.YLabel)
	assert.Contains(t, cone.Title, "650,000 SEK")
	assert.Equal(t, "Base case (29%)", cone.FocalName)
	assert.Equal(t, "Bear case (21%)", cone.LowerName)
	assert.Equal(t, "Bull case (37%)", cone.UpperName)
}

func TestScenarioChart_RenderPNG(t *testing.T) {
	data, err := ScenarioChart(testConfig(t), testProjection()).RenderBytes(ChartPNG)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngSignature))
}

func TestScenarioChart_RenderSVG(t *testing.T) {
	data, err := ScenarioChart(testConfig(t), testProjection()).RenderBytes(ChartSVG)
	require.NoError(t, err)

	svg := string(data)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(svg), "<svg"))
	assert.Contains(t, svg, "Bitcoin Value (SEK)")
	assert.Contains(t, svg, "Base case (29%)")
}

func TestBandChart_Render(t *testing.T) {
	config := testConfig(t)
	rows, err := LoadBandCSV("testdata/forecast.csv")
	require.NoError(t, err)

	cone := BandChart(config, rows)
	assert.Contains(t, cone.Title, "800,000 Satoshis (0.008 BTC)")
	assert.InDeltaSlice(t, []float64{900, 1500, 2000}, cone.Lower, 1e-9)
	assert.Empty(t, cone.LowerName)

	data, err := cone.RenderBytes(ChartPNG)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngSignature))

	svg, err := cone.RenderBytes(ChartSVG)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "Cone of Uncertainty")
}

func TestConeChart_Validate(t *testing.T) {
	assert.Error(t, ConeChart{Title: "empty"}.Validate())

	mismatched := ConeChart{
		Years: []float64{2025, 2026},
		Focal: []float64{1, 2},
		Lower: []float64{1},
		Upper: []float64{1, 2},
	}
	assert.Error(t, mismatched.Validate())
	_, err := mismatched.RenderBytes(ChartPNG)
	assert.Error(t, err)
}

func TestValueTicks(t *testing.T) {
	ticks := valueTicks(0, 1_000_000, 5)
	require.NotEmpty(t, ticks)
	assert.Equal(t, 0.0, ticks[0].Value)
	assert.Equal(t, "200,000", ticks[1].Label)
	assert.GreaterOrEqual(t, ticks[len(ticks)-1].Value, 1_000_000.0)
}

func TestNiceStep(t *testing.T) {
	tests := []struct {
		raw, want float64
	}{
		{0.7, 1},
		{1.5, 2},
		{2.2, 2.5},
		{3, 5},
		{7, 10},
		{180000, 200000},
		{0, 1},
	}
	for _, tc := range tests {
		assert.InDelta(t, tc.want, niceStep(tc.raw), 1e-9, "raw %v", tc.raw)
	}
}

func TestYearTicks(t *testing.T) {
	short := yearTicks([]float64{2025, 2026, 2027})
	assert.Len(t, short, 3)
	assert.Equal(t, "2026", short[1].Label)

	long := yearTicks(testProjection().YearValues())
	assert.Len(t, long, 11)
}

func TestRenderAppIcon(t *testing.T) {
	data, err := renderAppIcon(64)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngSignature))
}
