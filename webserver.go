package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WebServer serves the projection form and its JSON API
type WebServer struct {
	session *Session
	addr    string
	logger  *zap.Logger
}

// NewWebServer creates a new web server instance
func NewWebServer(session *Session, addr string, logger *zap.Logger) *WebServer {
	return &WebServer{
		session: session,
		addr:    addr,
		logger:  logger.With(zap.String("component", "web")),
	}
}

// APIRatesRequest carries the three form inputs in percent
type APIRatesRequest struct {
	Bear string `json:"bear"`
	Base string `json:"base"`
	Bull string `json:"bull"`
}

// APIConfigResponse describes the form defaults
type APIConfigResponse struct {
	Bear          string  `json:"bear"`
	Base          string  `json:"base"`
	Bull          string  `json:"bull"`
	Currency      string  `json:"currency"`
	Years         int     `json:"years"`
	HoldingsBTC   float64 `json:"holdings_btc"`
	Holdings      string  `json:"holdings"`
	CanPlot       bool    `json:"can_plot"`
	Status        string  `json:"status"`
	BandAvailable bool    `json:"band_available"`
}

// APIPriceResponse is returned by the fetch endpoint
type APIPriceResponse struct {
	Success   bool    `json:"success"`
	Error     string  `json:"error,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Formatted string  `json:"formatted,omitempty"`
	CanPlot   bool    `json:"can_plot"`
	Status    string  `json:"status"`
}

// APIYearRow is one year of a projection
type APIYearRow struct {
	Year      int    `json:"year"`
	Bear      string `json:"bear"`
	Base      string `json:"base"`
	Bull      string `json:"bull"`
	Annotated bool   `json:"annotated"`
}

// APIPlotResponse carries the rendered chart and its table
type APIPlotResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error,omitempty"`
	Field   string       `json:"field,omitempty"`
	SVG     string       `json:"svg,omitempty"`
	Rows    []APIYearRow `json:"rows,omitempty"`
	Status  string       `json:"status"`
}

// APIBandRow is one row of the forecast table
type APIBandRow struct {
	Year       int    `json:"year"`
	Average    string `json:"average"`
	Percentage string `json:"percentage"`
	Min        string `json:"min"`
	Max        string `json:"max"`
}

// APIBandResponse carries the cone of uncertainty chart
type APIBandResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error,omitempty"`
	SVG     string       `json:"svg,omitempty"`
	Rows    []APIBandRow `json:"rows,omitempty"`
}

// ExportResponse reports where an export was written
type ExportResponse struct {
	Success  bool   `json:"success"`
	FilePath string `json:"file_path,omitempty"`
	Message  string `json:"message"`
}

// OpenFolderRequest represents a request to open a folder
type OpenFolderRequest struct {
	FilePath string `json:"file_path"`
}

// Handler returns the HTTP routes
func (ws *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", ws.handleIndex)
	mux.HandleFunc("/api/config", ws.handleGetConfig)
	mux.HandleFunc("/api/fetch-price", ws.handleFetchPrice)
	mux.HandleFunc("/api/plot", ws.handlePlot)
	mux.HandleFunc("/api/chart.png", ws.handleChartPNG)
	mux.HandleFunc("/api/band", ws.handleBand)
	mux.HandleFunc("/api/export-pdf", ws.handleExportPDF)
	mux.HandleFunc("/api/open-folder", ws.handleOpenFolder)
	return mux
}

// listen opens the listener and returns the browsable URL
func (ws *WebServer) listen() (net.Listener, string, error) {
	listener, err := net.Listen("tcp", ws.addr)
	if err != nil {
		return nil, "", err
	}

	actualAddr := listener.Addr().String()
	url := fmt.Sprintf("http://%s", actualAddr)

	// If listening on all interfaces, use localhost for the URL
	if strings.HasPrefix(actualAddr, ":") || strings.HasPrefix(actualAddr, "0.0.0.0:") || strings.HasPrefix(actualAddr, "[::]:") {
		port := actualAddr[strings.LastIndex(actualAddr, ":")+1:]
		url = fmt.Sprintf("http://localhost:%s", port)
	}
	return listener, url, nil
}

// Start serves until ctx is cancelled, opening the system browser once listening
func (ws *WebServer) Start(ctx context.Context) error {
	listener, url, err := ws.listen()
	if err != nil {
		return err
	}
	server := &http.Server{Handler: ws.Handler(), ReadHeaderTimeout: 10 * time.Second}

	ws.logger.Info("Starting web server", zap.String("addr", listener.Addr().String()), zap.String("url", url))
	go openBrowser(url, ws.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		ws.logger.Info("Shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// StartForEmbedded starts the server and returns the URL and a cleanup function.
// Unlike Start(), this does NOT open the browser and does NOT block.
func (ws *WebServer) StartForEmbedded() (url string, cleanup func(), err error) {
	listener, url, err := ws.listen()
	if err != nil {
		return "", nil, err
	}

	ws.logger.Info("Starting embedded web server", zap.String("addr", listener.Addr().String()))
	server := &http.Server{Handler: ws.Handler(), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			ws.logger.Error("Server error", zap.Error(err))
		}
	}()

	cleanup = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			ws.logger.Warn("Server shutdown", zap.Error(err))
		}
	}
	return url, cleanup, nil
}

// handleIndex serves the main web UI
func (ws *WebServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, webUIHTML)
}

func (ws *WebServer) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	config := ws.session.Config()
	_, bandErr := os.Stat(config.CSV.Path)
	writeJSON(w, http.StatusOK, APIConfigResponse{
		Bear:          FormatRateInput(config.Scenario.Bear),
		Base:          FormatRateInput(config.Scenario.Base),
		Bull:          FormatRateInput(config.Scenario.Bull),
		Currency:      config.CurrencyLabel(),
		Years:         config.Projection.Years,
		HoldingsBTC:   config.Projection.HoldingsBTC,
		Holdings:      HoldingsLabel(config.Projection.HoldingsBTC),
		CanPlot:       ws.session.CanPlot(),
		Status:        ws.session.Status(),
		BandAvailable: config.CSV.Path != "" && bandErr == nil,
	})
}

func (ws *WebServer) handleFetchPrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	price, err := ws.session.FetchPrice(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, APIPriceResponse{
			Success: false,
			Error:   describeFetchError(err),
			CanPlot: false,
			Status:  ws.session.Status(),
		})
		return
	}
	writeJSON(w, http.StatusOK, APIPriceResponse{
		Success:   true,
		Price:     price,
		Formatted: FormatCurrency(price, ws.session.Config().CurrencyLabel()),
		CanPlot:   true,
		Status:    ws.session.Status(),
	})
}

func (ws *WebServer) handlePlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req APIRatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIPlotResponse{Error: "Invalid request: " + err.Error(), Status: ws.session.Status()})
		return
	}

	rates, err := ParseRates(req.Bear, req.Base, req.Bull)
	if err != nil {
		resp := APIPlotResponse{Error: err.Error(), Status: ws.session.Status()}
		var ve ValidationError
		if errors.As(err, &ve) {
			resp.Field = ve.Field
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	projection, err := ws.session.Plot(rates)
	if err != nil {
		writeJSON(w, http.StatusConflict, APIPlotResponse{Error: err.Error(), Status: ws.session.Status()})
		return
	}

	config := ws.session.Config()
	svg, err := ScenarioChart(config, projection).RenderBytes(ChartSVG)
	if err != nil {
		ws.logger.Error("Render failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, APIPlotResponse{Error: err.Error(), Status: ws.session.Status()})
		return
	}

	rows := make([]APIYearRow, projection.Len())
	for i, year := range projection.Years {
		rows[i] = APIYearRow{
			Year:      year,
			Bear:      FormatAmount(projection.Bear[i]),
			Base:      FormatAmount(projection.Base[i]),
			Bull:      FormatAmount(projection.Bull[i]),
			Annotated: config.Projection.AnnotateEvery > 0 && i%config.Projection.AnnotateEvery == 0,
		}
	}
	writeJSON(w, http.StatusOK, APIPlotResponse{
		Success: true,
		SVG:     string(svg),
		Rows:    rows,
		Status:  ws.session.Status(),
	})
}

func (ws *WebServer) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	projection := ws.session.LastProjection()
	if projection == nil {
		http.Error(w, "Nothing plotted yet", http.StatusNotFound)
		return
	}
	png, err := ScenarioChart(ws.session.Config(), projection).RenderBytes(ChartPNG)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ChartPNG.ContentType())
	w.Header().Set("Content-Disposition", `inline; filename="btc-projection.png"`)
	w.Write(png)
}

func (ws *WebServer) handleBand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	config := ws.session.Config()
	rows, err := LoadBandCSV(config.CSV.Path)
	if err != nil {
		ws.logger.Warn("Forecast CSV unavailable", zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, APIBandResponse{Error: err.Error()})
		return
	}
	svg, err := BandChart(config, rows).RenderBytes(ChartSVG)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, APIBandResponse{Error: err.Error()})
		return
	}
	resp := APIBandResponse{Success: true, SVG: string(svg)}
	for _, row := range rows {
		resp.Rows = append(resp.Rows, APIBandRow{
			Year:       row.Year,
			Average:    FormatAmount(row.Average),
			Percentage: fmt.Sprintf("%g%%", row.Percentage),
			Min:        FormatAmount(row.MinValue),
			Max:        FormatAmount(row.MaxValue),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleExportPDF writes a PDF report of the last projection to the export directory
func (ws *WebServer) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ExportResponse{Message: "Method not allowed"})
		return
	}
	projection := ws.session.LastProjection()
	if projection == nil {
		writeJSON(w, http.StatusConflict, ExportResponse{Message: "Plot a projection before exporting"})
		return
	}

	config := ws.session.Config()
	pdfBytes, err := GenerateProjectionPDF(config, projection)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ExportResponse{Message: "Failed to generate PDF: " + err.Error()})
		return
	}

	path, err := writeExport(config.ExportDir, exportName("btc-projection", "pdf"), pdfBytes)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ExportResponse{Message: err.Error()})
		return
	}
	ws.logger.Info("Exported PDF", zap.String("path", path))
	writeJSON(w, http.StatusOK, ExportResponse{
		Success:  true,
		FilePath: path,
		Message:  fmt.Sprintf("PDF saved to %s", path),
	})
}

// handleOpenFolder opens the folder containing the specified file in the system file browser
func (ws *WebServer) handleOpenFolder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req OpenFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FilePath == "" {
		writeJSON(w, http.StatusBadRequest, ExportResponse{Message: "Invalid request"})
		return
	}

	if err := openPath(filepath.Dir(req.FilePath)); err != nil {
		writeJSON(w, http.StatusInternalServerError, ExportResponse{Message: "Failed to open folder: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ExportResponse{Success: true, Message: "Folder opened"})
}

// writeExport saves data under dir and returns the absolute path
func writeExport(dir, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path, nil
}

// describeFetchError turns fetch failures into a message for the dialog
func describeFetchError(err error) string {
	var netErr *NetworkError
	var dataErr *DataFormatError
	switch {
	case errors.As(err, &netErr) && netErr.StatusCode != 0:
		return fmt.Sprintf("The price service answered with HTTP %d. Try again later.", netErr.StatusCode)
	case errors.As(err, &netErr):
		return "Could not reach the price service: " + err.Error()
	case errors.As(err, &dataErr):
		return "The price service returned unexpected data: " + err.Error()
	default:
		return err.Error()
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func openPath(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("explorer", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}

func openBrowser(url string, logger *zap.Logger) {
	// Give the server a moment to start accepting connections
	time.Sleep(300 * time.Millisecond)
	if err := openPath(url); err != nil {
		logger.Warn("Could not open browser", zap.String("url", url), zap.Error(err))
	}
}
