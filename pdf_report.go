package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// PDFReport renders a chart and its table into a landscape A4 document
type PDFReport struct {
	pdf       *fpdf.Fpdf
	config    *Config
	generated time.Time
}

func newPDFReport(config *Config, title string) *PDFReport {
	r := &PDFReport{
		pdf:       fpdf.New("L", "mm", "A4", ""),
		config:    config,
		generated: time.Now(),
	}
	r.pdf.SetTitle(title, true)
	r.pdf.SetCreator("goBTCProjection", true)
	r.pdf.SetMargins(marginLeft, marginTop, marginRight)
	r.pdf.SetAutoPageBreak(true, marginBottom)
	r.pdf.SetFooterFunc(func() {
		r.pdf.SetY(-12)
		r.pdf.SetFont("Arial", "I", 8)
		r.pdf.SetTextColor(128, 128, 128)
		r.pdf.CellFormat(contentWidth, 5,
			fmt.Sprintf("Generated %s - projections are illustrative, not financial advice. Page %d",
				r.generated.Format("2006-01-02 15:04"), r.pdf.PageNo()),
			"", 0, "C", false, 0, "")
	})
	return r
}

// GenerateProjectionPDF creates a report with the scenario chart and the yearly table
func GenerateProjectionPDF(config *Config, p *ScenarioProjection) ([]byte, error) {
	cone := ScenarioChart(config, p)
	png, err := cone.RenderBytes(ChartPNG)
	if err != nil {
		return nil, err
	}

	r := newPDFReport(config, "Bitcoin Scenario Projection")
	r.pdf.AddPage()
	r.drawTitle("Bitcoin Scenario Projection", fmt.Sprintf("Starting price %s, rates bear %s / base %s / bull %s",
		FormatCurrency(p.Price, config.CurrencyLabel()),
		formatPercent(p.Rates.Bear), formatPercent(p.Rates.Base), formatPercent(p.Rates.Bull)))
	r.drawChart("scenario", png)

	r.pdf.AddPage()
	r.drawSectionHeader("Year by Year")
	currency := config.CurrencyLabel()
	widths := []float64{30, 70, 70, 70}
	r.drawTableHeader([]string{"Year", "Bear (" + currency + ")", "Base (" + currency + ")", "Bull (" + currency + ")"}, widths)
	for i, year := range p.Years {
		annotated := config.Projection.AnnotateEvery > 0 && i%config.Projection.AnnotateEvery == 0
		r.drawTableRow([]string{
			fmt.Sprintf("%d", year),
			FormatAmount(p.Bear[i]),
			FormatAmount(p.Base[i]),
			FormatAmount(p.Bull[i]),
		}, widths, annotated)
	}

	return r.output()
}

// GenerateBandPDF creates a report with the cone of uncertainty chart and the forecast table
func GenerateBandPDF(config *Config, rows []ProjectionRow) ([]byte, error) {
	cone := BandChart(config, rows)
	png, err := cone.RenderBytes(ChartPNG)
	if err != nil {
		return nil, err
	}

	r := newPDFReport(config, "Cone of Uncertainty")
	r.pdf.AddPage()
	r.drawTitle("Bitcoin Potential Development", "Potential future value of "+HoldingsLabel(config.Projection.HoldingsBTC))
	r.drawChart("band", png)

	r.pdf.AddPage()
	r.drawSectionHeader("Forecast Table")
	currency := config.CurrencyLabel()
	widths := []float64{30, 65, 30, 70, 70}
	r.drawTableHeader([]string{"Year", "Average (" + currency + ")", "+/- %", "Min value", "Max value"}, widths)
	for _, row := range rows {
		r.drawTableRow([]string{
			fmt.Sprintf("%d", row.Year),
			FormatAmount(row.Average),
			fmt.Sprintf("%g", row.Percentage),
			FormatAmount(row.MinValue),
			FormatAmount(row.MaxValue),
		}, widths, false)
	}

	return r.output()
}

func (r *PDFReport) output() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *PDFReport) drawTitle(title, subtitle string) {
	r.pdf.SetFont("Arial", "B", 20)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 10, title, "", 1, "L", false, 0, "")
	r.pdf.SetFont("Arial", "", 11)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.CellFormat(contentWidth, 7, subtitle, "", 1, "L", false, 0, "")
	r.pdf.Ln(3)
}

// drawChart places a PNG chart scaled to the content width
func (r *PDFReport) drawChart(name string, png []byte) {
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	info := r.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	if info == nil || r.pdf.Err() {
		return
	}
	w := contentWidth
	h := w * info.Height() / info.Width()
	maxH := pageHeight - r.pdf.GetY() - marginBottom - 5
	if h > maxH {
		h = maxH
		w = h * info.Width() / info.Height()
	}
	r.pdf.ImageOptions(name, marginLeft+(contentWidth-w)/2, r.pdf.GetY(), w, h, false, opts, 0, "")
}

func (r *PDFReport) drawSectionHeader(title string) {
	r.pdf.SetFont("Arial", "B", 16)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 10, title, "", 1, "L", false, 0, "")
	r.pdf.SetDrawColor(0, 51, 102)
	r.pdf.Line(marginLeft, r.pdf.GetY(), marginLeft+contentWidth, r.pdf.GetY())
	r.pdf.Ln(5)
}

func (r *PDFReport) drawTableHeader(headers []string, widths []float64) {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 9)

	for i, header := range headers {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 6, header, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *PDFReport) drawTableRow(cells []string, widths []float64, isBold bool) {
	r.pdf.SetFillColor(250, 250, 250)
	r.pdf.SetTextColor(50, 50, 50)

	if isBold {
		r.pdf.SetFont("Arial", "B", 9)
		r.pdf.SetFillColor(240, 240, 240)
	} else {
		r.pdf.SetFont("Arial", "", 9)
	}

	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 5, cell, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}
