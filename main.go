package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// options collects the command line flags
type options struct {
	configFile string
	console    bool
	web        bool
	ui         bool
	addr       string
	csvFile    string
	html       bool
	pdf        bool
	pngFile    string
	bear       string
	base       string
	bull       string
	saveConfig bool
}

// ratesGiven reports whether all three rates were passed on the command line
func (o options) ratesGiven() bool {
	return o.bear != "" && o.base != "" && o.bull != ""
}

func main() {
	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Bitcoin Projection

Visualises possible Bitcoin value developments as line charts with a shaded
band of uncertainty.

MODES:
  SCENARIO PROJECTION (default)
    Fetches the current BTC price and projects bear, base and bull annual
    growth rates over the configured number of years (22 by default).
    - A desktop window with a form is opened (embedded browser)
    - Press "Fetch Data" first; "Plot Projections" unlocks after a
      successful fetch

  CONE OF UNCERTAINTY (-csv flag)
    Reads a forecast table with Year, Average and Percentage columns and
    plots the average with a band from Average*(1-p) to Average*(1+p).

Usage:
  %s [options]

Options:
`, os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  %s                                  Desktop window (falls back to console)
  %s -web -addr :8080                 Web server on a specific port
  %s -console                         Prompt for rates in the terminal
  %s -console -bear 15 -base 25 -bull 40 -pdf
                                      Project without prompting, write a PDF
  %s -csv bitcoin_forecast.csv -png cone.png
                                      Cone of uncertainty as a PNG image
  %s -save-config                     Write the defaults to config.yaml

Configuration:
  Edit config.yaml to change default rates, the price endpoint, the quote
  currency or the chart size. Without a config file built-in defaults apply.
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
	}

	var opts options
	flag.StringVar(&opts.configFile, "config", "config.yaml", "Path to YAML configuration file")
	flag.BoolVar(&opts.console, "console", false, "Use console interface instead of GUI (default is GUI)")
	flag.BoolVar(&opts.web, "web", false, "Start web server mode (opens external browser)")
	flag.BoolVar(&opts.ui, "ui", false, "Start embedded browser mode (webview window)")
	flag.StringVar(&opts.addr, "addr", "localhost:0", "Web server address (for -web mode, use :0 for auto port)")
	flag.StringVar(&opts.csvFile, "csv", "", "Plot the cone of uncertainty from a forecast CSV file")
	flag.BoolVar(&opts.html, "html", false, "Write an HTML report into a dated folder under the export directory")
	flag.BoolVar(&opts.pdf, "pdf", false, "Write a PDF report into the export directory")
	flag.StringVar(&opts.pngFile, "png", "", "Write the chart as a PNG image to this file")
	flag.StringVar(&opts.bear, "bear", "", "Bear case annual growth in percent (console mode)")
	flag.StringVar(&opts.base, "base", "", "Base case annual growth in percent (console mode)")
	flag.StringVar(&opts.bull, "bull", "", "Bull case annual growth in percent (console mode)")
	flag.BoolVar(&opts.saveConfig, "save-config", false, "Write the effective configuration to the -config path and exit")
	flag.Parse()

	os.Exit(run(opts))
}

func run(opts options) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := LoadConfigOrDefault(opts.configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	logger, err := NewLogger(config.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if opts.saveConfig {
		if err := SaveConfig(config, opts.configFile); err != nil {
			logger.Error("Saving config failed", zap.String("path", opts.configFile), zap.Error(err))
			return 1
		}
		fmt.Printf("Configuration saved to %s\n", opts.configFile)
		fmt.Println("You can edit this file to adjust settings for future runs.")
		return 0
	}

	if opts.csvFile != "" {
		if err := runBandMode(config, opts, os.Stdout, logger); err != nil {
			logger.Error("Cone of uncertainty failed", zap.Error(err))
			return 1
		}
		return 0
	}

	session := NewSession(config, NewHTTPPriceFetcher(config.Price, logger), logger)

	// Embedded browser mode
	if opts.ui {
		if err := runEmbeddedUI(ctx, session, logger); err != nil {
			logger.Error("Embedded UI error", zap.Error(err))
			return 1
		}
		return 0
	}

	// Web server mode (external browser)
	if opts.web {
		if err := NewWebServer(session, opts.addr, logger).Start(ctx); err != nil {
			logger.Error("Web server error", zap.Error(err))
			return 1
		}
		return 0
	}

	// Any output flag implies console mode, for automation/scripting
	useConsole := opts.console || opts.html || opts.pdf || opts.pngFile != "" || opts.ratesGiven()
	if !useConsole {
		err := runEmbeddedUI(ctx, session, logger)
		if err == nil {
			return 0
		}
		logger.Warn("GUI unavailable, falling back to console mode", zap.Error(err))
	}

	if err := runConsoleMode(ctx, session, opts, os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nInterrupted.")
			return 130
		}
		logger.Error("Projection failed", zap.Error(err))
		return 1
	}
	return 0
}

// runConsoleMode fetches the price, asks for the rates unless given as flags,
// prints the projection table and writes the requested artefacts
func runConsoleMode(ctx context.Context, session *Session, opts options, in io.Reader, out io.Writer) error {
	config := session.Config()

	fmt.Fprintf(out, "Fetching current %s price in %s...\n", config.Price.Coin, config.CurrencyLabel())
	if _, err := session.FetchPrice(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w", describeFetchError(err), err)
	}
	fmt.Fprintln(out, session.Status())
	fmt.Fprintln(out)

	var rates ScenarioRates
	var err error
	if opts.ratesGiven() {
		rates, err = ParseRates(opts.bear, opts.base, opts.bull)
	} else {
		rates, err = NewRatePrompter(in, out).PromptRates(ctx, config.Scenario)
	}
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	projection, err := session.Plot(rates)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	PrintProjectionHeader(out, config, projection)
	PrintProjectionTable(out, config, projection)

	return writeProjectionArtefacts(ctx, config, projection, opts, out)
}

// writeProjectionArtefacts writes the requested files, stopping before the
// next one once ctx is cancelled
func writeProjectionArtefacts(ctx context.Context, config *Config, p *ScenarioProjection, opts options, out io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if opts.pngFile != "" {
		if err := writeChartFile(ScenarioChart(config, p), opts.pngFile); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nChart written to %s\n", opts.pngFile)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if opts.html {
		path, err := GenerateProjectionHTMLReport(config, p, config.ExportDir)
		if err != nil {
			return fmt.Errorf("generate HTML report: %w", err)
		}
		fmt.Fprintf(out, "\nHTML report written to %s\n", path)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if opts.pdf {
		data, err := GenerateProjectionPDF(config, p)
		if err != nil {
			return fmt.Errorf("generate PDF: %w", err)
		}
		path, err := writeExport(config.ExportDir, exportName("btc-projection", "pdf"), data)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nPDF written to %s\n", path)
	}
	return nil
}

// runBandMode plots the cone of uncertainty from opts.csvFile
func runBandMode(config *Config, opts options, out io.Writer, logger *zap.Logger) error {
	log := withOperation(logger, "cone_of_uncertainty")

	rows, err := LoadBandCSV(opts.csvFile)
	if err != nil {
		return err
	}
	log.Info("Forecast loaded", zap.String("path", opts.csvFile), zap.Int("rows", len(rows)))

	PrintBandTable(out, config, rows)

	pngFile := opts.pngFile
	if pngFile == "" && !opts.html && !opts.pdf {
		pngFile = filepath.Join(config.ExportDir, exportName("btc-cone", "png"))
	}
	if pngFile != "" {
		if err := writeChartFile(BandChart(config, rows), pngFile); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nChart written to %s\n", pngFile)
	}
	if opts.html {
		path, err := GenerateBandHTMLReport(config, rows, config.ExportDir)
		if err != nil {
			return fmt.Errorf("generate HTML report: %w", err)
		}
		fmt.Fprintf(out, "\nHTML report written to %s\n", path)
	}
	if opts.pdf {
		data, err := GenerateBandPDF(config, rows)
		if err != nil {
			return fmt.Errorf("generate PDF: %w", err)
		}
		path, err := writeExport(config.ExportDir, exportName("btc-cone", "pdf"), data)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nPDF written to %s\n", path)
	}
	return nil
}

// writeChartFile renders cone as PNG, or SVG when path ends in .svg
func writeChartFile(cone ConeChart, path string) error {
	format := ChartPNG
	if filepath.Ext(path) == ".svg" {
		format = ChartSVG
	}
	data, err := cone.RenderBytes(format)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

func exportName(prefix, ext string) string {
	return prefix + "-" + time.Now().Format("2006-01-02-150405") + "." + ext
}
