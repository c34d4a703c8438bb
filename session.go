package main

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Status line texts
const (
	statusIdle      = "Enter growth rates and fetch the current price."
	statusFetching  = "Fetching current price..."
	statusFetchFail = "Fetching price failed. Plotting is disabled."
)

// Session is the command layer behind the form: it owns the fetched price and
// decides when plotting is allowed. It holds no UI types.
type Session struct {
	mu        sync.Mutex
	config    *Config
	fetcher   PriceFetcher
	logger    *zap.Logger
	now       func() time.Time
	price     float64
	fetchedAt time.Time
	canPlot   bool
	status    string
	last      *ScenarioProjection
}

// NewSession creates a session with plotting disabled
func NewSession(config *Config, fetcher PriceFetcher, logger *zap.Logger) *Session {
	return &Session{
		config:  config,
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
		status:  statusIdle,
	}
}

// Config returns the session configuration
func (s *Session) Config() *Config {
	return s.config
}

// FetchPrice fetches the current price. On failure plotting is disabled until
// the next successful fetch.
func (s *Session) FetchPrice(ctx context.Context) (float64, error) {
	log := withOperation(s.logger, "fetch_price")

	s.mu.Lock()
	s.status = statusFetching
	s.mu.Unlock()

	price, err := s.fetcher.FetchPrice(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.canPlot = false
		s.status = statusFetchFail
		log.Warn("Fetch failed, plotting disabled", zap.Error(err))
		return 0, err
	}
	s.price = price
	s.fetchedAt = s.now()
	s.canPlot = true
	s.status = fmt.Sprintf("Current price: %s (fetched %s). Ready to plot.",
		FormatCurrency(price, s.config.CurrencyLabel()), s.fetchedAt.Format("15:04:05"))
	log.Info("Price ready", zap.Float64("price", price))
	return price, nil
}

// CanPlot reports whether a price has been fetched successfully
func (s *Session) CanPlot() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canPlot
}

// Status returns the current status line
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Price returns the last fetched price and whether it is usable
func (s *Session) Price() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.price, s.canPlot
}

// LastProjection returns the most recent projection, or nil
func (s *Session) LastProjection() *ScenarioProjection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Plot computes the three trajectories from the fetched price
func (s *Session) Plot(rates ScenarioRates) (*ScenarioProjection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canPlot {
		return nil, ErrPriceNotFetched
	}

	projection := buildProjection(s.config, s.price, rates, s.now())
	s.last = &projection
	s.status = fmt.Sprintf("Plotted %d years from %d.", projection.Len(), projection.Years[0])

	s.logger.Info("Projection computed",
		zap.Float64("bear", rates.Bear),
		zap.Float64("base", rates.Base),
		zap.Float64("bull", rates.Bull),
		zap.Int("years", projection.Len()))
	if !rates.Ordered() {
		s.logger.Warn("Scenario rates are not ordered bear <= base <= bull")
	}
	return &projection, nil
}

// buildProjection applies the projection settings of config to a price
func buildProjection(config *Config, price float64, rates ScenarioRates, now time.Time) ScenarioProjection {
	startValue := price
	holdings := 0.0
	if config.Projection.ProjectHoldings {
		holdings = config.Projection.HoldingsBTC
		startValue = price * holdings
	}
	horizon := config.Projection.Years
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	projection := ProjectScenarios(startValue, rates, config.StartYear(now), horizon)
	projection.Price = price
	projection.HoldingsBTC = holdings
	return projection
}

// ParseRates validates the three form inputs, given in percent ("21", "21%", "21.5").
// Nothing is mutated when an input is invalid.
func ParseRates(bear, base, bull string) (ScenarioRates, error) {
	var rates ScenarioRates
	fields := []struct {
		name  string
		input string
		dst   *float64
	}{
		{"bear", bear, &rates.Bear},
		{"base", base, &rates.Base},
		{"bull", bull, &rates.Bull},
	}
	for _, f := range fields {
		v, err := parsePercentInput(f.name, f.input)
		if err != nil {
			return ScenarioRates{}, err
		}
		*f.dst = v
	}
	return rates, nil
}

// thousandsGrouped matches "1,000" or "1,000.5"; a lone comma elsewhere is a
// decimal comma ("29,5")
var thousandsGrouped = regexp.MustCompile(`^[+-]?[1-9]\d{0,2}(,\d{3})+(\.\d+)?$`)

// parsePercentInput converts a percentage string into a fraction
func parsePercentInput(field, input string) (float64, error) {
	s := strings.TrimSpace(input)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	switch {
	case thousandsGrouped.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1 && !strings.Contains(s, "."):
		s = strings.Replace(s, ",", ".", 1)
	}
	if s == "" {
		return 0, ValidationError{Field: field, Message: "a growth rate is required"}
	}
	pct, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ValidationError{Field: field, Message: fmt.Sprintf("%q is not a number", strings.TrimSpace(input))}
	}
	if pct.LessThanOrEqual(decimal.NewFromInt(-100)) {
		return 0, ValidationError{Field: field, Message: "growth rate must be greater than -100%"}
	}
	if pct.GreaterThan(decimal.NewFromInt(1000)) {
		return 0, ValidationError{Field: field, Message: "growth rate must be at most 1000%"}
	}
	return pct.Div(decimal.NewFromInt(100)).InexactFloat64(), nil
}

// FormatRateInput renders a fraction as the percent string used by the form (0.29 -> "29")
func FormatRateInput(rate float64) string {
	return decimal.NewFromFloat(rate).Mul(decimal.NewFromInt(100)).String()
}
