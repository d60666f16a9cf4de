// Package config reads the runtime configuration from the environment.
//
// A .env file in the working directory is loaded first; variables already
// set in the environment take precedence over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingConfig is returned when required variables are unset.
var ErrMissingConfig = errors.New("missing required configuration")

// ReportFormat selects how the run report is printed.
type ReportFormat string

const (
	ReportText ReportFormat = "text"
	ReportJSON ReportFormat = "json"
)

// KnownSites lists the site names DANCE_EVENTS_SITES accepts, in run order.
var KnownSites = []string{"chaillot", "theatredelaville", "offi"}

// Config captures runtime configuration for a scrape run.
type Config struct {
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	AirtableAPIKey string
	AirtableBaseID string
	AirtableTable  string
	AirtableAPIURL string

	Sites           []string
	TDLVListingURL  string
	Timeout         time.Duration
	RenderTimeout   time.Duration
	OffiDays        int
	SummaryLanguage string
	ChromePath      string
	DryRun          bool

	LogLevel     string
	LogFile      string
	MetricsFile  string
	DataDir      string
	ReportFormat ReportFormat
}

// FromEnv creates a configuration instance sourced from environment variables.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		AirtableAPIKey:  getEnv("AIRTABLE_API_KEY", ""),
		AirtableBaseID:  getEnv("AIRTABLE_BASE_ID", ""),
		AirtableTable:   getEnv("AIRTABLE_TABLE_NAME", ""),
		AirtableAPIURL:  getEnv("AIRTABLE_API_URL", "https://api.airtable.com/v0"),
		TDLVListingURL:  getEnv("DANCE_EVENTS_TDLV_URL", ""),
		Timeout:         15 * time.Second,
		RenderTimeout:   30 * time.Second,
		OffiDays:        20,
		SummaryLanguage: getEnv("DANCE_EVENTS_SUMMARY_LANGUAGE", "English"),
		ChromePath:      getEnv("DANCE_EVENTS_CHROME_PATH", ""),
		LogLevel:        getEnv("DANCE_EVENTS_LOG_LEVEL", "info"),
		MetricsFile:     getEnv("DANCE_EVENTS_METRICS_FILE", ""),
		DataDir:         getEnv("DANCE_EVENTS_DATA_DIR", ""),
	}

	// An explicitly empty log file disables file logging.
	cfg.LogFile = "scraper.log"
	if v, ok := os.LookupEnv("DANCE_EVENTS_LOG_FILE"); ok {
		cfg.LogFile = strings.TrimSpace(v)
	}

	sites, err := parseSites(getEnv("DANCE_EVENTS_SITES", strings.Join(KnownSites, ",")))
	if err != nil {
		return Config{}, err
	}
	cfg.Sites = sites

	if v := os.Getenv("DANCE_EVENTS_TIMEOUT"); v != "" {
		if cfg.Timeout, err = parseDuration("DANCE_EVENTS_TIMEOUT", v); err != nil {
			return Config{}, err
		}
	}

	if v := os.Getenv("DANCE_EVENTS_RENDER_TIMEOUT"); v != "" {
		if cfg.RenderTimeout, err = parseDuration("DANCE_EVENTS_RENDER_TIMEOUT", v); err != nil {
			return Config{}, err
		}
	}

	if v := os.Getenv("DANCE_EVENTS_OFFI_DAYS"); v != "" {
		days, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || days < 0 {
			return Config{}, fmt.Errorf("parse DANCE_EVENTS_OFFI_DAYS: %q is not a non-negative integer", v)
		}
		cfg.OffiDays = days
	}

	if v := os.Getenv("DANCE_EVENTS_DRY_RUN"); v != "" {
		if cfg.DryRun, err = strconv.ParseBool(strings.TrimSpace(v)); err != nil {
			return Config{}, fmt.Errorf("parse DANCE_EVENTS_DRY_RUN: %w", err)
		}
	}

	switch format := ReportFormat(strings.ToLower(getEnv("DANCE_EVENTS_REPORT_FORMAT", "text"))); format {
	case ReportText, ReportJSON:
		cfg.ReportFormat = format
	default:
		return Config{}, fmt.Errorf("invalid DANCE_EVENTS_REPORT_FORMAT: %s (must be 'text' or 'json')", format)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// validate reports every missing credential at once. A dry run needs none.
func (c Config) validate() error {
	if c.DryRun {
		return nil
	}

	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"OPENAI_API_KEY", c.OpenAIAPIKey},
		{"AIRTABLE_API_KEY", c.AirtableAPIKey},
		{"AIRTABLE_BASE_ID", c.AirtableBaseID},
		{"AIRTABLE_TABLE_NAME", c.AirtableTable},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

func parseSites(list string) ([]string, error) {
	var sites []string
	seen := make(map[string]bool)

	for _, name := range strings.Split(list, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		if !isKnownSite(name) {
			return nil, fmt.Errorf("unknown site %q in DANCE_EVENTS_SITES (known: %s)", name, strings.Join(KnownSites, ", "))
		}
		seen[name] = true
		sites = append(sites, name)
	}

	if len(sites) == 0 {
		return nil, fmt.Errorf("DANCE_EVENTS_SITES selects no site")
	}
	return sites, nil
}

func isKnownSite(name string) bool {
	for _, known := range KnownSites {
		if known == name {
			return true
		}
	}
	return false
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse %s: duration must be positive", key)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
