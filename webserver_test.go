package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestWebServer(t *testing.T, fetcher PriceFetcher) (*WebServer, *Config) {
	t.Helper()
	config := testConfig(t)
	config.ExportDir = t.TempDir()
	config.CSV.Path = filepath.Join("testdata", "forecast.csv")
	session := newTestSession(t, config, fetcher)
	return NewWebServer(session, "localhost:0", zaptest.NewLogger(t)), config
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestWebServer_Index(t *testing.T) {
	ws, _ := newTestWebServer(t, fixedPrice(1000))
	h := ws.Handler()

	rec := doRequest(t, h, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<button id="fetch">Fetch Data</button>`)
	assert.Contains(t, rec.Body.String(), `<button id="plot" disabled>`)

	rec = doRequest(t, h, http.MethodGet, "/favicon.ico", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebServer_IndexReportsTransportErrors(t *testing.T) {
	ws, _ := newTestWebServer(t, fixedPrice(1000))
	body := doRequest(t, ws.Handler(), http.MethodGet, "/", nil).Body.String()

	// Every button handler must turn a failed request into a dialog
	for _, msg := range []string{
		`alert('Fetch failed\n\n' + e)`,
		`alert('Plot failed\n\n' + e)`,
		`alert('Export failed\n\n' + e)`,
		`alert('Could not load the forecast CSV\n\n' + e)`,
	} {
		assert.Contains(t, body, msg)
	}
	assert.Equal(t, strings.Count(body, "addEventListener('click'"), strings.Count(body, "} catch (e) {\n"))
}

func TestWebServer_Config(t *testing.T) {
	ws, _ := newTestWebServer(t, fixedPrice(1000))

	rec := doRequest(t, ws.Handler(), http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[APIConfigResponse](t, rec)
	assert.Equal(t, "21", resp.Bear)
	assert.Equal(t, "29", resp.Base)
	assert.Equal(t, "37", resp.Bull)
	assert.Equal(t, "SEK", resp.Currency)
	assert.False(t, resp.CanPlot)
	assert.True(t, resp.BandAvailable)
	assert.Equal(t, "800,000 Satoshis (0.008 BTC)", resp.Holdings)
}

func TestWebServer_FetchThenPlot(t *testing.T) {
	ws, _ := newTestWebServer(t, fixedPrice(650000))
	h := ws.Handler()

	rec := doRequest(t, h, http.MethodPost, "/api/fetch-price", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	price := decodeBody[APIPriceResponse](t, rec)
	assert.True(t, price.Success)
	assert.True(t, price.CanPlot)
	assert.Equal(t, "650,000 SEK", price.Formatted)

	rec = doRequest(t, h, http.MethodPost, "/api/plot", APIRatesRequest{Bear: "21", Base: "29", Bull: "37"})
	require.Equal(t, http.StatusOK, rec.Code)
	plot := decodeBody[APIPlotResponse](t, rec)
	assert.True(t, plot.Success)
	assert.Contains(t, plot.SVG, "<svg")
	require.Len(t, plot.Rows, DefaultHorizon)
	assert.Equal(t, "650,000", plot.Rows[0].Base)
	assert.True(t, plot.Rows[0].Annotated)
	assert.False(t, plot.Rows[1].Annotated)
	assert.True(t, plot.Rows[4].Annotated)

	rec = doRequest(t, h, http.MethodGet, "/api/chart.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), pngSignature))
}

func TestWebServer_FetchFailure(t *testing.T) {
	ws, _ := newTestWebServer(t, failingFetcher(&NetworkError{URL: "http://quotes", StatusCode: 503}))
	h := ws.Handler()

	rec := doRequest(t, h, http.MethodPost, "/api/fetch-price", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decodeBody[APIPriceResponse](t, rec)
	assert.False(t, resp.Success)
	assert.False(t, resp.CanPlot)
	assert.Contains(t, resp.Error, "HTTP 503")
	assert.Equal(t, statusFetchFail, resp.Status)

	rec = doRequest(t, h, http.MethodPost, "/api/plot", APIRatesRequest{Bear: "21", Base: "29", Bull: "37"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	plot := decodeBody[APIPlotResponse](t, rec)
	assert.False(t, plot.Success)
	assert.Empty(t, plot.SVG)
}

func TestWebServer_PlotInvalidInput(t *testing.T) {
	ws, _ := newTestWebServer(t, fixedPrice(1000))
	h := ws.Handler()
	doRequest(t, h, http.MethodPost, "/api/fetch-price", nil)

	rec := doRequest(t, h, http.MethodPost, "/api/plot", APIRatesRequest{Bear: "21", Base: "29", Bull: "lots"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[APIPlotResponse](t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "bull", resp.Field)
	assert.Empty(t, resp.SVG)
	assert.Nil(t, ws.session.LastProjection())

	req := httptest.NewRequest(http.MethodPost, "/api/plot", strings.NewReader("{"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebServer_MethodNotAllowed(t *testing.T) {
	ws, _ := newTestWebServer(t, fixedPrice(1000))
	h := ws.Handler()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/fetch-price"},
		{http.MethodGet, "/api/plot"},
		{http.MethodPost, "/api/config"},
		{http.MethodPost, "/api/band"},
		{http.MethodGet, "/api/export-pdf"},
	} {
		rec := doRequest(t, h, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestWebServer_Band(t *testing.T) {
	ws, config := newTestWebServer(t, fixedPrice(1000))

	rec := doRequest(t, ws.Handler(), http.MethodGet, "/api/band", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[APIBandResponse](t, rec)
	assert.True(t, resp.Success)
	require.Len(t, resp.Rows, 3)
	assert.Equal(t, "900", resp.Rows[0].Min)
	assert.Equal(t, "10%", resp.Rows[0].Percentage)

	config.CSV.Path = filepath.Join("testdata", "forecast_missing_column.csv")
	rec = doRequest(t, ws.Handler(), http.MethodGet, "/api/band", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeBody[APIBandResponse](t, rec).Error, "missing column")
}

func TestWebServer_ExportPDF(t *testing.T) {
	ws, config := newTestWebServer(t, fixedPrice(650000))
	h := ws.Handler()

	rec := doRequest(t, h, http.MethodPost, "/api/export-pdf", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	doRequest(t, h, http.MethodPost, "/api/fetch-price", nil)
	doRequest(t, h, http.MethodPost, "/api/plot", APIRatesRequest{Bear: "21", Base: "29", Bull: "37"})

	rec = doRequest(t, h, http.MethodPost, "/api/export-pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[ExportResponse](t, rec)
	assert.True(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.FilePath, config.ExportDir) || filepath.IsAbs(resp.FilePath))

	data, err := os.ReadFile(resp.FilePath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestWebServer_OpenFolderRejectsEmptyPath(t *testing.T) {
	ws, _ := newTestWebServer(t, fixedPrice(1000))
	rec := doRequest(t, ws.Handler(), http.MethodPost, "/api/open-folder", OpenFolderRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDescribeFetchError(t *testing.T) {
	assert.Contains(t, describeFetchError(&NetworkError{URL: "u", StatusCode: 429}), "HTTP 429")
	assert.Contains(t, describeFetchError(&NetworkError{URL: "u", Err: errors.New("dial tcp: refused")}), "Could not reach")
	assert.Contains(t, describeFetchError(&DataFormatError{Source: "u", Err: errors.New("bad")}), "unexpected data")
	assert.Equal(t, "boom", describeFetchError(errors.New("boom")))
}
