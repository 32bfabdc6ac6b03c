package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobseeker/internal/model"
)

// Config is the root configuration for the jobseeker client.
type Config struct {
	Backend      BackendConfig
	StorePath    string
	Watch        WatchConfig
	Filters      FilterConfig
	Notification NotificationConfig
	RateLimit    RateLimitConfig
	Retry        RetryConfig
}

// BackendConfig locates the job-assistant backend.
type BackendConfig struct {
	BaseURL          string
	CustomizerPrefix string        // mount point of the resume customizer
	Timeout          time.Duration // per-request HTTP timeout
}

// WatchConfig drives the unattended scrape → review → notify cycle.
type WatchConfig struct {
	Interval       time.Duration
	ScrapeDays     int  // how many days back the scraper looks
	AutoReview     bool // review newly scraped jobs right away
	UpdateStatuses bool // also run the closed-posting status check
	Destinations   []model.Destination
}

// EnabledDestinations returns the destinations to scrape.
func (w WatchConfig) EnabledDestinations() []model.Destination {
	var out []model.Destination
	for _, d := range w.Destinations {
		if d.Enabled {
			out = append(out, d)
		}
	}
	return out
}

// FilterConfig holds keyword, location and score filter settings.
type FilterConfig struct {
	TitleKeywords        []string
	TitleExcludeKeywords []string
	Locations            []string
	ExcludeLocations     []string
	MinScore             float64 // jobs scoring below are not notified; 0 disables
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// RateLimitConfig spaces out live job-detail fetches (the backend scrapes
// the job board on every call).
type RateLimitConfig struct {
	DetailMinDelay time.Duration
}

// RetryConfig controls retries of job-list refreshes.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

const (
	defaultBaseURL          = "http://localhost:5000"
	defaultCustomizerPrefix = "/customizer"
	defaultStorePath        = "jobseeker.db"
	slackWebhookPrefix      = "https://hooks.slack.com/"
)

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:          defaultBaseURL,
			CustomizerPrefix: defaultCustomizerPrefix,
			Timeout:          30 * time.Second,
		},
		StorePath: defaultStorePath,
		Watch: WatchConfig{
			Interval:   time.Hour,
			ScrapeDays: 1,
		},
		Notification: NotificationConfig{Type: "log"},
		RateLimit:    RateLimitConfig{DetailMinDelay: 2 * time.Second},
		Retry:        RetryConfig{MaxRetries: 3, BaseDelay: 2 * time.Second},
	}
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Backend      rawBackendConfig   `yaml:"backend"`
	StorePath    string             `yaml:"store_path"`
	Watch        rawWatchConfig     `yaml:"watch"`
	Filters      rawFilterConfig    `yaml:"filters"`
	Notification NotificationConfig `yaml:"notification"`
	RateLimit    rawRateLimitConfig `yaml:"rate_limit"`
	Retry        rawRetryConfig     `yaml:"retry"`
}

type rawBackendConfig struct {
	BaseURL          string  `yaml:"base_url"`
	CustomizerPrefix *string `yaml:"customizer_prefix"`
	Timeout          string  `yaml:"timeout"`
}

type rawWatchConfig struct {
	Interval       string              `yaml:"interval"`
	ScrapeDays     *int                `yaml:"scrape_days"`
	AutoReview     bool                `yaml:"auto_review"`
	UpdateStatuses bool                `yaml:"update_statuses"`
	Destinations   []model.Destination `yaml:"destinations"`
}

type rawFilterConfig struct {
	TitleKeywords        []string `yaml:"title_keywords"`
	TitleExcludeKeywords []string `yaml:"title_exclude_keywords"`
	Locations            []string `yaml:"locations"`
	ExcludeLocations     []string `yaml:"exclude_locations"`
	MinScore             float64  `yaml:"min_score"`
}

type rawRateLimitConfig struct {
	DetailMinDelay string `yaml:"detail_min_delay"`
}

type rawRetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

// envOverrides lets the environment (or a .env file) override the few
// settings that differ between machines.
type envOverrides struct {
	BaseURL      string `env:"JOBSEEKER_BACKEND_URL"`
	StorePath    string `env:"JOBSEEKER_STORE_PATH"`
	SlackWebhook string `env:"JOBSEEKER_SLACK_WEBHOOK"`
}

// LoadDotEnv loads a .env file from the working directory when present.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("load .env file: %w", err)
		}
	}
	return nil
}

// Load reads and parses the YAML config file at path, applies environment
// overrides, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path, or returns the defaults (with environment
// overrides) when path does not exist and missingOK is set.
func LoadOrDefault(path string, missingOK bool) (*Config, error) {
	if _, err := os.Stat(path); missingOK && errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := applyEnv(cfg); err != nil {
			return nil, err
		}
		if err := validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(path)
}

func fromRaw(raw rawConfig) (*Config, error) {
	cfg := Default()
	var err error

	if raw.Backend.BaseURL != "" {
		cfg.Backend.BaseURL = raw.Backend.BaseURL
	}
	if raw.Backend.CustomizerPrefix != nil {
		cfg.Backend.CustomizerPrefix = *raw.Backend.CustomizerPrefix
	}
	if raw.Backend.Timeout != "" {
		cfg.Backend.Timeout, err = time.ParseDuration(raw.Backend.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse backend.timeout %q: %w", raw.Backend.Timeout, err)
		}
	}

	if raw.StorePath != "" {
		cfg.StorePath = raw.StorePath
	}

	if raw.Watch.Interval != "" {
		cfg.Watch.Interval, err = time.ParseDuration(raw.Watch.Interval)
		if err != nil {
			return nil, fmt.Errorf("parse watch.interval %q: %w", raw.Watch.Interval, err)
		}
	}
	if raw.Watch.ScrapeDays != nil {
		cfg.Watch.ScrapeDays = *raw.Watch.ScrapeDays
	}
	cfg.Watch.AutoReview = raw.Watch.AutoReview
	cfg.Watch.UpdateStatuses = raw.Watch.UpdateStatuses
	cfg.Watch.Destinations = raw.Watch.Destinations

	cfg.Filters = FilterConfig{
		TitleKeywords:        raw.Filters.TitleKeywords,
		TitleExcludeKeywords: raw.Filters.TitleExcludeKeywords,
		Locations:            raw.Filters.Locations,
		ExcludeLocations:     raw.Filters.ExcludeLocations,
		MinScore:             raw.Filters.MinScore,
	}

	if raw.Notification.Type != "" {
		cfg.Notification = raw.Notification
	}

	if raw.RateLimit.DetailMinDelay != "" {
		cfg.RateLimit.DetailMinDelay, err = time.ParseDuration(raw.RateLimit.DetailMinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.detail_min_delay %q: %w", raw.RateLimit.DetailMinDelay, err)
		}
	}

	if raw.Retry.MaxRetries != nil {
		cfg.Retry.MaxRetries = *raw.Retry.MaxRetries
	}
	if raw.Retry.BaseDelay != "" {
		cfg.Retry.BaseDelay, err = time.ParseDuration(raw.Retry.BaseDelay)
		if err != nil {
			return nil, fmt.Errorf("parse retry.base_delay %q: %w", raw.Retry.BaseDelay, err)
		}
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if o.BaseURL != "" {
		cfg.Backend.BaseURL = o.BaseURL
	}
	if o.StorePath != "" {
		cfg.StorePath = o.StorePath
	}
	if o.SlackWebhook != "" {
		cfg.Notification.WebhookURL = o.SlackWebhook
	}
	return nil
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an http(s) URL, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive, got %v", cfg.Backend.Timeout)
	}
	if cfg.StorePath == "" {
		return fmt.Errorf("store_path must not be empty")
	}

	if cfg.Watch.Interval < time.Minute {
		return fmt.Errorf("watch.interval must be at least 1m, got %v", cfg.Watch.Interval)
	}
	if cfg.Watch.ScrapeDays < 1 {
		return fmt.Errorf("watch.scrape_days must be at least 1, got %d", cfg.Watch.ScrapeDays)
	}
	for i, d := range cfg.Watch.Destinations {
		if strings.TrimSpace(d.Location) == "" {
			return fmt.Errorf("watch.destinations[%d].location is required", i)
		}
		switch d.RemoteType {
		case "", "any", "remote", "hybrid", "on-site":
		default:
			return fmt.Errorf("watch.destinations[%d].remote_type must be one of any, remote, hybrid, on-site, got %q", i, d.RemoteType)
		}
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	if cfg.RateLimit.DetailMinDelay < 0 {
		return fmt.Errorf("rate_limit.detail_min_delay must not be negative, got %v", cfg.RateLimit.DetailMinDelay)
	}
	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", cfg.Retry.MaxRetries)
	}
	if cfg.Retry.BaseDelay <= 0 {
		return fmt.Errorf("retry.base_delay must be positive, got %v", cfg.Retry.BaseDelay)
	}

	return nil
}
