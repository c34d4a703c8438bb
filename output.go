package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F7931A")).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#1F4E9C")).
			Padding(0, 2)
	labelStyle = lipgloss.NewStyle().Bold(true)
	bearStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626"))
	baseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563EB")).Bold(true)
	bullStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B"))
)

// formatPercent formats a decimal as percentage
func formatPercent(rate float64) string {
	s := strconv.FormatFloat(rate*100, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + "%"
}

// PrintProjectionHeader prints the banner and the inputs of a scenario projection
func PrintProjectionHeader(w io.Writer, config *Config, p *ScenarioProjection) {
	fmt.Fprintln(w, headerStyle.Render("BITCOIN SCENARIO PROJECTION"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Current price:"), FormatCurrency(p.Price, config.CurrencyLabel()))
	if p.HoldingsBTC > 0 {
		fmt.Fprintf(w, "%s %s = %s\n", labelStyle.Render("Holdings:     "),
			HoldingsLabel(p.HoldingsBTC), FormatCurrency(p.StartValue, config.CurrencyLabel()))
	}
	fmt.Fprintf(w, "%s %s / %s / %s\n", labelStyle.Render("Rates:        "),
		bearStyle.Render("bear "+formatPercent(p.Rates.Bear)),
		baseStyle.Render("base "+formatPercent(p.Rates.Base)),
		bullStyle.Render("bull "+formatPercent(p.Rates.Bull)))
	fmt.Fprintln(w)
}

// PrintProjectionTable prints one line per projected year
func PrintProjectionTable(w io.Writer, config *Config, p *ScenarioProjection) {
	currency := config.CurrencyLabel()
	fmt.Fprintf(w, "%-6s %20s %20s %20s\n", "Year",
		"Bear ("+currency+")", "Base ("+currency+")", "Bull ("+currency+")")
	fmt.Fprintln(w, strings.Repeat("─", 69))
	for i, year := range p.Years {
		marker := " "
		if config.Projection.AnnotateEvery > 0 && i%config.Projection.AnnotateEvery == 0 {
			marker = "*"
		}
		fmt.Fprintf(w, "%-5d%s %20s %20s %20s\n", year, marker,
			FormatAmount(p.Bear[i]), FormatAmount(p.Base[i]), FormatAmount(p.Bull[i]))
	}
	fmt.Fprintln(w, strings.Repeat("─", 69))
	bear, base, bull := p.Final()
	fmt.Fprintf(w, "%s bear %s, base %s, bull %s\n",
		labelStyle.Render(fmt.Sprintf("After %d years:", max(p.Len()-1, 0))),
		bearStyle.Render(FormatCurrency(bear, currency)),
		baseStyle.Render(FormatCurrency(base, currency)),
		bullStyle.Render(FormatCurrency(bull, currency)))
	fmt.Fprintln(w, mutedStyle.Render("* annotated on the chart"))
}

// PrintBandTable prints the forecast table with its derived bounds
func PrintBandTable(w io.Writer, config *Config, rows []ProjectionRow) {
	currency := config.CurrencyLabel()
	fmt.Fprintln(w, headerStyle.Render("CONE OF UNCERTAINTY"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n\n", labelStyle.Render("Holding:"), HoldingsLabel(config.Projection.HoldingsBTC))
	fmt.Fprintf(w, "%-6s %18s %8s %18s %18s\n", "Year", "Average ("+currency+")", "+/-", "Min value", "Max value")
	fmt.Fprintln(w, strings.Repeat("─", 72))
	for _, row := range rows {
		fmt.Fprintf(w, "%-6d %18s %8s %18s %18s\n", row.Year,
			FormatAmount(row.Average),
			strconv.FormatFloat(row.Percentage, 'f', -1, 64)+"%",
			bearStyle.Render(fmt.Sprintf("%18s", FormatAmount(row.MinValue))),
			bullStyle.Render(fmt.Sprintf("%18s", FormatAmount(row.MaxValue))))
	}
	fmt.Fprintln(w, strings.Repeat("─", 72))
}
