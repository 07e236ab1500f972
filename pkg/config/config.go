package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SscSPs/income_converter/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	// Rate service
	APIBaseURL      string        `validate:"required,url"`
	Table           string        `validate:"required,oneof=A B"`
	HTTPTimeout     time.Duration `validate:"gt=0"`
	MaxLookbackDays int           `validate:"min=1,max=366"`
	ServiceRetries  int           `validate:"min=0,max=10"`
	RateLimit       string        `validate:"required"` // limiter format, e.g. "10-S"
	RateCacheSize   int           `validate:"min=0"`

	// Conversion
	DefaultCurrency string `validate:"required,currency"`
	LocalCurrency   string `validate:"required,len=3"`

	// Input
	IncomeFile string
	Strict     bool

	LogLevel     string `validate:"oneof=debug info warn warning error"`
	IsProduction bool
}

// BatchMode reports whether a record file replaces the interactive prompt.
func (c *Config) BatchMode() bool {
	return c.IncomeFile != ""
}

// NewFlagSet declares the command line flags understood by LoadConfig.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("file", "f", "", "semicolon separated income file (date; amount; currency); skips the interactive prompt")
	fs.Bool("strict", false, "exit with status 2 when any batch row was skipped")
	fs.String("default-currency", "", "currency used when an amount has none")
	fs.Int("max-lookback-days", 0, "how many days before the query date to search for a published rate")
	fs.String("log-level", "", "debug, info, warn or error")
	return fs
}

// LoadConfig loads configuration from defaults, the .env file, environment
// variables and finally the command line, in increasing order of precedence.
func LoadConfig(args []string) (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("NBP_API_URL", "https://api.nbp.pl/api")
	v.SetDefault("NBP_TABLE", "A")
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("MAX_LOOKBACK_DAYS", 10)
	v.SetDefault("SERVICE_RETRIES", 2)
	v.SetDefault("NBP_RATE_LIMIT", "10-S")
	v.SetDefault("RATE_CACHE_SIZE", 512)
	v.SetDefault("DEFAULT_CURRENCY", "USD")
	v.SetDefault("LOCAL_CURRENCY", "PLN")
	v.SetDefault("INCOME_FILE", "")
	v.SetDefault("STRICT", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("IS_PRODUCTION", false)
	v.AutomaticEnv()

	fs := NewFlagSet("income_converter")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	bindings := map[string]string{
		"INCOME_FILE":       "file",
		"STRICT":            "strict",
		"DEFAULT_CURRENCY":  "default-currency",
		"MAX_LOOKBACK_DAYS": "max-lookback-days",
		"LOG_LEVEL":         "log-level",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("failed to bind flag --%s: %w", flag, err)
		}
	}
	if fs.NArg() > 0 && v.GetString("INCOME_FILE") == "" {
		// A bare positional argument is treated as the income file.
		v.Set("INCOME_FILE", fs.Arg(0))
	}

	cfg := &Config{
		APIBaseURL:      strings.TrimRight(v.GetString("NBP_API_URL"), "/"),
		Table:           strings.ToUpper(v.GetString("NBP_TABLE")),
		HTTPTimeout:     v.GetDuration("HTTP_TIMEOUT"),
		MaxLookbackDays: v.GetInt("MAX_LOOKBACK_DAYS"),
		ServiceRetries:  v.GetInt("SERVICE_RETRIES"),
		RateLimit:       v.GetString("NBP_RATE_LIMIT"),
		RateCacheSize:   v.GetInt("RATE_CACHE_SIZE"),
		DefaultCurrency: strings.ToUpper(v.GetString("DEFAULT_CURRENCY")),
		LocalCurrency:   strings.ToUpper(v.GetString("LOCAL_CURRENCY")),
		IncomeFile:      v.GetString("INCOME_FILE"),
		Strict:          v.GetBool("STRICT"),
		LogLevel:        strings.ToLower(v.GetString("LOG_LEVEL")),
		IsProduction:    v.GetBool("IS_PRODUCTION"),
	}

	if cfg.RateCacheSize == 0 {
		log.Println("Warning: RATE_CACHE_SIZE is 0, every entry will query the rate service.")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var configValidator = func() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return domain.CurrencyCode(fl.Field().String()).IsSupported()
	})
	return v
}()

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
