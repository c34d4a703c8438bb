package main

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

// reportRow is a table row in an HTML report; Cells[0] is the year
type reportRow struct {
	Cells     []string
	Annotated bool
}

type reportPage struct {
	Title     string
	Subtitle  string
	Chart     template.HTML
	Headers   []string
	Rows      []reportRow
	Generated string
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; background: #f1f5f9; color: #1e293b; margin: 0; padding: 24px; }
  .card { background: #fff; border-radius: 8px; box-shadow: 0 1px 3px rgba(0,0,0,.1); padding: 20px; margin-bottom: 20px; }
  h1 { margin: 0 0 4px; color: #1f4e9c; }
  .sub { color: #64748b; margin-bottom: 12px; }
  .chart svg { width: 100%; height: auto; }
  table { border-collapse: collapse; width: 100%; font-variant-numeric: tabular-nums; }
  th { background: #1f4e9c; color: #fff; padding: 6px 10px; text-align: right; }
  th:first-child, td:first-child { text-align: left; }
  td { padding: 4px 10px; border-bottom: 1px solid #e2e8f0; text-align: right; }
  tr.annotated td { font-weight: 600; background: #fff7ed; }
  footer { color: #94a3b8; font-size: 12px; }
</style>
</head>
<body>
<div class="card">
  <h1>{{.Title}}</h1>
  <div class="sub">{{.Subtitle}}</div>
  <div class="chart">{{.Chart}}</div>
</div>
<div class="card">
  <table>
    <thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
    <tbody>
    {{range .Rows}}<tr{{if .Annotated}} class="annotated"{{end}}>{{range .Cells}}<td>{{.}}</td>{{end}}</tr>
    {{end}}</tbody>
  </table>
</div>
<footer>Generated {{.Generated}}. Projections are illustrative and not financial advice.</footer>
</body>
</html>
`))

// GenerateProjectionHTMLReport writes the scenario report into a dated folder under outputDir
// and returns the path of the HTML file
func GenerateProjectionHTMLReport(config *Config, p *ScenarioProjection, outputDir string) (string, error) {
	svg, err := ScenarioChart(config, p).RenderBytes(ChartSVG)
	if err != nil {
		return "", err
	}
	currency := config.CurrencyLabel()
	page := reportPage{
		Title: "Bitcoin Scenario Projection",
		Subtitle: fmt.Sprintf("Starting price %s, bear %s / base %s / bull %s",
			FormatCurrency(p.Price, currency),
			formatPercent(p.Rates.Bear), formatPercent(p.Rates.Base), formatPercent(p.Rates.Bull)),
		Chart:   template.HTML(svg),
		Headers: []string{"Year", "Bear (" + currency + ")", "Base (" + currency + ")", "Bull (" + currency + ")"},
	}
	for i, year := range p.Years {
		page.Rows = append(page.Rows, reportRow{
			Cells:     []string{fmt.Sprintf("%d", year), FormatAmount(p.Bear[i]), FormatAmount(p.Base[i]), FormatAmount(p.Bull[i])},
			Annotated: config.Projection.AnnotateEvery > 0 && i%config.Projection.AnnotateEvery == 0,
		})
	}
	return writeHTMLReport(page, outputDir, "projection.html")
}

// GenerateBandHTMLReport writes the cone of uncertainty report into a dated folder under outputDir
func GenerateBandHTMLReport(config *Config, rows []ProjectionRow, outputDir string) (string, error) {
	svg, err := BandChart(config, rows).RenderBytes(ChartSVG)
	if err != nil {
		return "", err
	}
	currency := config.CurrencyLabel()
	page := reportPage{
		Title:    "Bitcoin Potential Development with Cone of Uncertainty",
		Subtitle: "Potential future value of " + HoldingsLabel(config.Projection.HoldingsBTC),
		Chart:    template.HTML(svg),
		Headers:  []string{"Year", "Average (" + currency + ")", "+/- %", "Min value", "Max value"},
	}
	for _, row := range rows {
		page.Rows = append(page.Rows, reportRow{Cells: []string{
			fmt.Sprintf("%d", row.Year), FormatAmount(row.Average), fmt.Sprintf("%g", row.Percentage),
			FormatAmount(row.MinValue), FormatAmount(row.MaxValue),
		}})
	}
	return writeHTMLReport(page, outputDir, "cone.html")
}

func writeHTMLReport(page reportPage, outputDir, filename string) (string, error) {
	now := time.Now()
	page.Generated = now.Format("2006-01-02 15:04")

	dir := filepath.Join(outputDir, now.Format("2006-01-02_150405"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, page); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", err
	}
	return path, nil
}
