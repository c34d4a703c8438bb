package main

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed default-config.yaml
var defaultConfigYAML string

var validate = validator.New()

// ScenarioRates holds the three assumed annual rates of return as fractions (0.29 = 29%)
type ScenarioRates struct {
	Bear float64 `yaml:"bear" json:"bear" default:"0.21" validate:"gt=-1"`
	Base float64 `yaml:"base" json:"base" default:"0.29" validate:"gt=-1"`
	Bull float64 `yaml:"bull" json:"bull" default:"0.37" validate:"gt=-1"`
}

// Ordered reports whether bear <= base <= bull
func (r ScenarioRates) Ordered() bool {
	return r.Bear <= r.Base && r.Base <= r.Bull
}

// ProjectionConfig controls the compound trajectories
type ProjectionConfig struct {
	Years         int     `yaml:"years" json:"years" default:"22" validate:"gte=1,lte=100"`
	StartYear     int     `yaml:"start_year,omitempty" json:"start_year,omitempty" validate:"omitempty,gte=1900,lte=3000"` // 0 = current year
	AnnotateEvery int     `yaml:"annotate_every" json:"annotate_every" default:"4" validate:"gte=1"`
	HoldingsBTC   float64 `yaml:"holdings_btc" json:"holdings_btc" default:"0.008" validate:"gte=0"`
	// ProjectHoldings projects the value of HoldingsBTC instead of one whole coin
	ProjectHoldings bool `yaml:"project_holdings" json:"project_holdings"`
}

// PriceConfig describes the quote endpoint
type PriceConfig struct {
	Endpoint   string        `yaml:"endpoint" json:"endpoint" default:"https://api.coingecko.com/api/v3/simple/price" validate:"required,url"`
	Coin       string        `yaml:"coin" json:"coin" default:"bitcoin" validate:"required"`
	Currency   string        `yaml:"currency" json:"currency" default:"sek" validate:"required,alpha"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout" default:"10s" validate:"gt=0"`
	MaxRetries uint          `yaml:"max_retries" json:"max_retries" default:"3" validate:"gte=1,lte=10"`
}

// CSVConfig points at the forecast table used by the cone of uncertainty chart
type CSVConfig struct {
	Path string `yaml:"path" json:"path" default:"bitcoin_forecast.csv"`
}

// ChartConfig holds rendering options
type ChartConfig struct {
	Width     int    `yaml:"width" json:"width" default:"1200" validate:"gte=300,lte=4000"`
	Height    int    `yaml:"height" json:"height" default:"600" validate:"gte=200,lte=3000"`
	LineColor string `yaml:"line_color" json:"line_color" default:"1f4e9c" validate:"hexadecimal,len=6"`
	BandColor string `yaml:"band_color" json:"band_color" default:"f7931a" validate:"hexadecimal,len=6"`
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	File        string `yaml:"file,omitempty" json:"file,omitempty"`
	Level       string `yaml:"level" json:"level" default:"info" validate:"oneof=debug info warn error"`
	MaxSizeMB   int    `yaml:"max_size_mb" json:"max_size_mb" default:"10" validate:"gte=1"`
	MaxBackups  int    `yaml:"max_backups" json:"max_backups" default:"3" validate:"gte=0"`
	MaxAgeDays  int    `yaml:"max_age_days" json:"max_age_days" default:"28" validate:"gte=0"`
	Compress    bool   `yaml:"compress" json:"compress"`
	Development bool   `yaml:"development" json:"development"`
}

// Config holds the complete configuration
type Config struct {
	Scenario   ScenarioRates    `yaml:"scenario" json:"scenario"`
	Projection ProjectionConfig `yaml:"projection" json:"projection"`
	Price      PriceConfig      `yaml:"price" json:"price"`
	CSV        CSVConfig        `yaml:"csv" json:"csv"`
	Chart      ChartConfig      `yaml:"chart" json:"chart"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
	ExportDir  string           `yaml:"export_dir" json:"export_dir" default:"exports" validate:"required"`
}

// CurrencyLabel returns the quote currency in upper case (e.g. "SEK")
func (c *Config) CurrencyLabel() string {
	return strings.ToUpper(c.Price.Currency)
}

// StartYear returns the configured first projection year, or the year of now
func (c *Config) StartYear(now time.Time) int {
	if c.Projection.StartYear > 0 {
		return c.Projection.StartYear
	}
	return now.Year()
}

// LoadConfig loads configuration from a YAML file.
// A missing file is returned as-is so callers can test it with os.IsNotExist.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return parseConfig(string(data))
}

// LoadDefaultConfig loads the default configuration embedded in the binary
func LoadDefaultConfig() (*Config, error) {
	return parseConfig(defaultConfigYAML)
}

// LoadConfigOrDefault loads filename, falling back to the embedded defaults when it does not exist
func LoadConfigOrDefault(filename string) (*Config, error) {
	config, err := LoadConfig(filename)
	if os.IsNotExist(err) {
		return LoadDefaultConfig()
	}
	return config, err
}

func parseConfig(content string) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal([]byte(preprocessPercentages(content)), &config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := config.finalize(); err != nil {
		return nil, err
	}
	return &config, nil
}

// finalize fills unset fields from the struct defaults and validates the result.
// A rate of exactly zero counts as unset here; zero can still be entered in the UI.
func (c *Config) finalize() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("apply config defaults: %w", err)
	}
	if err := validate.Struct(c); err != nil {
		return describeValidation(err)
	}
	return nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	header := []byte(`# BTC Projection Configuration
#
# scenario:   assumed annual rates of return (0.29 = 29%, "29%" is also accepted)
# projection: horizon in years, first year (0 = current), annotation spacing
# price:      quote endpoint returning {"<coin>": {"<currency>": <price>}}
# csv:        forecast table with Year, Average and Percentage columns
#
#   ./goBTCProjection                  Desktop window (default)
#   ./goBTCProjection -web             Web UI in the system browser
#   ./goBTCProjection -console -html   Console mode with HTML report
#   ./goBTCProjection -csv forecast.csv -png cone.png

`)
	content := append(header, data...)
	return os.WriteFile(filename, content, 0644)
}

// preprocessPercentages converts percentage values like "21%" to decimal "0.21"
func preprocessPercentages(content string) string {
	re := regexp.MustCompile(`(:\s*)(-?\d+\.?\d*)%`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) >= 3 {
			num, err := strconv.ParseFloat(parts[2], 64)
			if err == nil {
				return parts[1] + strconv.FormatFloat(num/100.0, 'f', -1, 64)
			}
		}
		return match
	})
}

// describeValidation turns validator errors into a single readable error
func describeValidation(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		msgs = append(msgs, validationMessage(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "len":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must have length %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
