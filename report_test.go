package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateProjectionPDF(t *testing.T) {
	data, err := GenerateProjectionPDF(testConfig(t), testProjection())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Greater(t, len(data), 1000)
}

func TestGenerateBandPDF(t *testing.T) {
	rows, err := LoadBandCSV(filepath.Join("testdata", "forecast.csv"))
	require.NoError(t, err)

	data, err := GenerateBandPDF(testConfig(t), rows)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestGenerateProjectionHTMLReport(t *testing.T) {
	dir := t.TempDir()
	path, err := GenerateProjectionHTMLReport(testConfig(t), testProjection(), dir)
	require.NoError(t, err)

	assert.Equal(t, "projection.html", filepath.Base(path))
	assert.True(t, strings.HasPrefix(path, dir))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "<title>Bitcoin Scenario Projection</title>")
	assert.Contains(t, html, "<svg")
	assert.Contains(t, html, "Bear (SEK)")
	assert.Contains(t, html, `<tr class="annotated"><td>2025</td>`)
	assert.Contains(t, html, "bear 21% / base 29% / bull 37%")
}

func TestGenerateBandHTMLReport(t *testing.T) {
	rows, err := LoadBandCSV(filepath.Join("testdata", "forecast.csv"))
	require.NoError(t, err)

	path, err := GenerateBandHTMLReport(testConfig(t), rows, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "cone.html", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Potential future value of 800,000 Satoshis (0.008 BTC)")
	assert.Contains(t, string(data), "<td>6,000</td>")
}

func TestPrintProjectionTable(t *testing.T) {
	var out bytes.Buffer
	config := testConfig(t)
	p := testProjection()

	PrintProjectionHeader(&out, config, p)
	PrintProjectionTable(&out, config, p)

	text := out.String()
	assert.Contains(t, text, "650,000 SEK")
	assert.Contains(t, text, "2025*")
	assert.Contains(t, text, "2046 ")
	assert.Contains(t, text, "After 21 years:")
}

func TestPrintBandTable(t *testing.T) {
	rows, err := LoadBandCSV(filepath.Join("testdata", "forecast.csv"))
	require.NoError(t, err)

	var out bytes.Buffer
	PrintBandTable(&out, testConfig(t), rows)

	text := out.String()
	assert.Contains(t, text, "800,000 Satoshis (0.008 BTC)")
	assert.Contains(t, text, "4,000")
	assert.Contains(t, text, "50%")
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "29%", formatPercent(0.29))
	assert.Equal(t, "21.5%", formatPercent(0.215))
	assert.Equal(t, "-10%", formatPercent(-0.1))
}
