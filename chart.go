package main

import (
	"bytes"
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartFormat selects the chart output encoding
type ChartFormat string

const (
	ChartPNG ChartFormat = "png"
	ChartSVG ChartFormat = "svg"
)

// ContentType returns the MIME type of the format
func (f ChartFormat) ContentType() string {
	if f == ChartSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f ChartFormat) provider() chart.RendererProvider {
	if f == ChartSVG {
		return chart.SVG
	}
	return chart.PNG
}

// bandSeries shades the area between a lower and an upper bound
type bandSeries struct {
	Name    string
	Style   chart.Style
	XValues []float64
	Lower   []float64
	Upper   []float64
}

func (bs bandSeries) GetName() string { return bs.Name }
func (bs bandSeries) GetStyle() chart.Style { return bs.Style }
func (bs bandSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (bs bandSeries) Len() int { return len(bs.XValues) }
func (bs bandSeries) GetBoundedValues(index int) (x, y1, y2 float64) {
	return bs.XValues[index], bs.Upper[index], bs.Lower[index]
}

func (bs bandSeries) Validate() error {
	if len(bs.XValues) == 0 {
		return fmt.Errorf("band series %q has no values", bs.Name)
	}
	if len(bs.Lower) != len(bs.XValues) || len(bs.Upper) != len(bs.XValues) {
		return fmt.Errorf("band series %q has mismatched lengths", bs.Name)
	}
	return nil
}

func (bs bandSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := bs.Style.InheritFrom(defaults)
	chart.Draw.BoundedSeries(r, canvasBox, xrange, yrange, style, bs)
}

// ConeChart is everything needed to draw a focal line inside a shaded band
type ConeChart struct {
	Title         string
	XLabel        string
	YLabel        string
	Width         int
	Height        int
	Years         []float64
	Focal         []float64
	FocalName     string
	Lower         []float64
	LowerName     string // empty hides the bound line
	Upper         []float64
	UpperName     string
	BandName      string
	AnnotateEvery int
	LineColor     drawing.Color
	BandColor     drawing.Color
}

// Validate checks that all series line up
func (c ConeChart) Validate() error {
	n := len(c.Years)
	if n == 0 {
		return fmt.Errorf("chart %q has no data", c.Title)
	}
	if len(c.Focal) != n || len(c.Lower) != n || len(c.Upper) != n {
		return fmt.Errorf("chart %q: series lengths differ from %d years", c.Title, n)
	}
	return nil
}

// Annotations returns labels for every AnnotateEvery-th focal sample, starting at the first
func (c ConeChart) Annotations() []chart.Value2 {
	every := c.AnnotateEvery
	if every <= 0 {
		return nil
	}
	var out []chart.Value2
	for i := 0; i < len(c.Years) && i < len(c.Focal); i += every {
		out = append(out, chart.Value2{
			XValue: c.Years[i],
			YValue: c.Focal[i],
			Label:  FormatAmount(c.Focal[i]),
		})
	}
	return out
}

// Render writes the chart in the given format
func (c ConeChart) Render(format ChartFormat, w io.Writer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	graph := c.build()
	if err := graph.Render(format.provider(), w); err != nil {
		return fmt.Errorf("render %s chart: %w", format, err)
	}
	return nil
}

// RenderBytes renders the chart into memory
func (c ConeChart) RenderBytes(format ChartFormat) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(format, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c ConeChart) build() chart.Chart {
	bandFill := c.BandColor.WithAlpha(80)
	boundStroke := c.BandColor.WithAlpha(200)

	series := []chart.Series{
		bandSeries{
			Name:    c.BandName,
			Style:   chart.Style{FillColor: bandFill, StrokeColor: bandFill, StrokeWidth: 0.5},
			XValues: c.Years,
			Lower:   c.Lower,
			Upper:   c.Upper,
		},
	}
	boundStyle := chart.Style{StrokeColor: boundStroke, StrokeWidth: 1.5, StrokeDashArray: []float64{5, 3}}
	if c.LowerName != "" {
		series = append(series, chart.ContinuousSeries{Name: c.LowerName, Style: boundStyle, XValues: c.Years, YValues: c.Lower})
	}
	if c.UpperName != "" {
		series = append(series, chart.ContinuousSeries{Name: c.UpperName, Style: boundStyle, XValues: c.Years, YValues: c.Upper})
	}
	series = append(series, chart.ContinuousSeries{
		Name:    c.FocalName,
		Style:   chart.Style{StrokeColor: c.LineColor, StrokeWidth: 2.5, DotColor: c.LineColor, DotWidth: 3},
		XValues: c.Years,
		YValues: c.Focal,
	})
	if annotations := c.Annotations(); len(annotations) > 0 {
		series = append(series, chart.AnnotationSeries{
			Style: chart.Style{
				FillColor:   drawing.ColorWhite,
				StrokeColor: c.LineColor,
				FontColor:   c.LineColor,
				FontSize:    8,
			},
			Annotations: annotations,
		})
	}

	lo, hi := c.valueBounds()
	yRange := &chart.ContinuousRange{Min: lo, Max: hi}

	graph := chart.Chart{
		Title:      c.Title,
		TitleStyle: chart.Style{FontSize: 13},
		Width:      c.Width,
		Height:     c.Height,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 30, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:           c.XLabel,
			ValueFormatter: yearFormatter,
			Ticks:          yearTicks(c.Years),
			GridMajorStyle: gridStyle(),
		},
		YAxis: chart.YAxis{
			Name:           c.YLabel,
			ValueFormatter: thousandsFormatter,
			Range:          yRange,
			Ticks:          valueTicks(lo, hi, 6),
			GridMajorStyle: gridStyle(),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}

// valueBounds returns a padded y range covering the band and the focal line
func (c ConeChart) valueBounds() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range [][]float64{c.Focal, c.Lower, c.Upper} {
		for _, v := range s {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi <= lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.05
	lo -= pad
	if lo < 0 && c.minPositive() {
		lo = 0
	}
	return lo, hi + pad
}

func (c ConeChart) minPositive() bool {
	for _, s := range [][]float64{c.Focal, c.Lower, c.Upper} {
		for _, v := range s {
			if v < 0 {
				return false
			}
		}
	}
	return true
}

func gridStyle() chart.Style {
	return chart.Style{StrokeColor: drawing.ColorFromHex("e2e8f0"), StrokeWidth: 1}
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprintf("%v", v)
}

func thousandsFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return FormatAmount(f)
	}
	return fmt.Sprintf("%v", v)
}

// yearTicks labels every year, or every other year for long horizons
func yearTicks(years []float64) []chart.Tick {
	step := 1
	if len(years) > 12 {
		step = 2
	}
	ticks := make([]chart.Tick, 0, len(years)/step+1)
	for i := 0; i < len(years); i += step {
		ticks = append(ticks, chart.Tick{Value: years[i], Label: yearFormatter(years[i])})
	}
	return ticks
}

// valueTicks spreads n+1 round ticks across [lo, hi]
func valueTicks(lo, hi float64, n int) []chart.Tick {
	step := niceStep((hi - lo) / float64(n))
	start := math.Floor(lo/step) * step
	var ticks []chart.Tick
	for v := start; v <= hi+step/2; v += step {
		ticks = append(ticks, chart.Tick{Value: v, Label: FormatAmount(v)})
	}
	return ticks
}

// niceStep rounds a raw tick step up to 1, 2, 2.5 or 5 times a power of ten
func niceStep(raw float64) float64 {
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if raw <= m*mag {
			return m * mag
		}
	}
	return 10 * mag
}

// colorOrDefault parses a hex colour, falling back when it is empty
func colorOrDefault(hex string, fallback drawing.Color) drawing.Color {
	if hex == "" {
		return fallback
	}
	return drawing.ColorFromHex(hex)
}

// ScenarioChart describes the bear/base/bull chart of a projection
func ScenarioChart(config *Config, p *ScenarioProjection) ConeChart {
	currency := config.CurrencyLabel()
	subject := "1 BTC"
	if p.HoldingsBTC > 0 {
		subject = HoldingsLabel(p.HoldingsBTC)
	}
	return ConeChart{
		Title: fmt.Sprintf("Bitcoin Projection for %s from %s (bear %s / base %s / bull %s)",
			subject, FormatCurrency(p.Price, currency),
			formatPercent(p.Rates.Bear), formatPercent(p.Rates.Base), formatPercent(p.Rates.Bull)),
		XLabel:        "Year",
		YLabel:        fmt.Sprintf("Bitcoin Value (%s)", currency),
		Width:         config.Chart.Width,
		Height:        config.Chart.Height,
		Years:         p.YearValues(),
		Focal:         p.Base,
		FocalName:     fmt.Sprintf("Base case (%s)", formatPercent(p.Rates.Base)),
		Lower:         p.Bear,
		LowerName:     fmt.Sprintf("Bear case (%s)", formatPercent(p.Rates.Bear)),
		Upper:         p.Bull,
		UpperName:     fmt.Sprintf("Bull case (%s)", formatPercent(p.Rates.Bull)),
		BandName:      "Bear to bull range",
		AnnotateEvery: config.Projection.AnnotateEvery,
		LineColor:     colorOrDefault(config.Chart.LineColor, chart.ColorBlue),
		BandColor:     colorOrDefault(config.Chart.BandColor, chart.ColorOrange),
	}
}

// BandChart describes the cone of uncertainty chart of a forecast table
func BandChart(config *Config, rows []ProjectionRow) ConeChart {
	years := make([]float64, len(rows))
	avg := make([]float64, len(rows))
	lo := make([]float64, len(rows))
	hi := make([]float64, len(rows))
	for i, row := range rows {
		years[i] = float64(row.Year)
		avg[i] = row.Average
		lo[i] = row.MinValue
		hi[i] = row.MaxValue
	}
	return ConeChart{
		Title: fmt.Sprintf("Bitcoin Potential Development with Cone of Uncertainty - potential future value of %s",
			HoldingsLabel(config.Projection.HoldingsBTC)),
		XLabel:        "Year",
		YLabel:        fmt.Sprintf("Bitcoin Value (%s)", config.CurrencyLabel()),
		Width:         config.Chart.Width,
		Height:        config.Chart.Height,
		Years:         years,
		Focal:         avg,
		FocalName:     "Average",
		Lower:         lo,
		Upper:         hi,
		BandName:      "Cone of Uncertainty",
		AnnotateEvery: config.Projection.AnnotateEvery,
		LineColor:     colorOrDefault(config.Chart.LineColor, chart.ColorBlue),
		BandColor:     colorOrDefault(config.Chart.BandColor, chart.ColorOrange),
	}
}
