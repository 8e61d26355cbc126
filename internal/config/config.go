package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	configPathEnv    = "NEWS_CONFIG"
	databaseURLEnv   = "DATABASE_URL"
	telegramTokenEnv = "TG_API_KEY"
	telegramChatEnv  = "CHAT_ID"
	xaiAPIKeyEnv     = "XAI_API_KEY"
)

// Run modes accepted by Validate.
const (
	ModeIngest    = "ingest"
	ModeSummarize = "summarize"
	ModeDigest    = "digest"
	ModeServe     = "serve"
)

// Config holds every setting required across the application. It is built
// once at process start and passed by reference; there are no
// environment-derived singletons.
type Config struct {
	Database  DatabaseConfig          `yaml:"database"`
	Logging   LoggingConfig           `yaml:"logging"`
	Scheduler SchedulerConfig         `yaml:"scheduler"`
	Telegram  TelegramConfig          `yaml:"telegram"`
	Grok      GrokConfig              `yaml:"grok"`
	Summary   SummaryConfig           `yaml:"summary"`
	Settings  ParserSettings          `yaml:"settings"`
	Feeds     map[string][]FeedConfig `yaml:"feeds"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines when the recurring jobs run.
type SchedulerConfig struct {
	IngestCron    string         `yaml:"ingestCron"`
	SummarizeCron string         `yaml:"summarizeCron"`
	DigestCron    string         `yaml:"digestCron"`
	Timezone      string         `yaml:"timezone"`
	location      *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// GrokConfig defines how to contact the xAI chat completions API.
type GrokConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"apiKey"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"maxTokens"`
	Timeout     int     `yaml:"timeout"`
}

// TimeoutDuration returns the summarizer call timeout.
func (g GrokConfig) TimeoutDuration() time.Duration {
	if g.Timeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(g.Timeout) * time.Second
}

// SummaryLimits bounds the cardinality of structured summary fields. These
// are product-level choices, kept configurable rather than hard-coded.
type SummaryLimits struct {
	MainEvents  int `yaml:"mainEvents"`
	KeyThemes   int `yaml:"keyThemes"`
	TopArticles int `yaml:"topArticles"`
}

// SummaryConfig groups aggregation parameters.
type SummaryConfig struct {
	LookbackDays int           `yaml:"lookbackDays"`
	Limits       SummaryLimits `yaml:"limits"`
}

// ParserSettings carries scalar operating parameters for the feed loop.
type ParserSettings struct {
	DelayBetweenFeeds  float64 `yaml:"delayBetweenFeeds"`
	MaxArticlesPerFeed int     `yaml:"maxArticlesPerFeed"`
	Timeout            int     `yaml:"timeout"`
	RetryAttempts      int     `yaml:"retryAttempts"`
	UserAgent          string  `yaml:"userAgent"`
}

// Delay returns the courtesy throttle between feed fetches.
func (p ParserSettings) Delay() time.Duration {
	if p.DelayBetweenFeeds <= 0 {
		return 0
	}
	return time.Duration(p.DelayBetweenFeeds * float64(time.Second))
}

// TimeoutDuration returns the per-fetch timeout.
func (p ParserSettings) TimeoutDuration() time.Duration {
	if p.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(p.Timeout) * time.Second
}

// FeedConfig describes a single feed source.
type FeedConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
	Country  string `yaml:"country"`
	Language string `yaml:"language"`
	Enabled  *bool  `yaml:"enabled"`
}

// IsEnabled treats an absent enabled flag as true.
func (f FeedConfig) IsEnabled() bool {
	return f.Enabled == nil || *f.Enabled
}

// EnabledFeeds flattens the category groups into the list of sources to
// ingest, in stable group order.
func (c Config) EnabledFeeds() []FeedConfig {
	groups := make([]string, 0, len(c.Feeds))
	for group := range c.Feeds {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	var feeds []FeedConfig
	for _, group := range groups {
		for _, feed := range c.Feeds[group] {
			if feed.IsEnabled() {
				feeds = append(feeds, feed)
			}
		}
	}
	return feeds
}

// Load reads YAML configuration and applies environment overrides. A path
// argument wins over the NEWS_CONFIG variable; with neither set the
// defaults apply. Unlike feed-level failures, configuration failures are
// fatal: a broken file refuses to load.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	if err := cfg.bindTimezone(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that every setting required by the given run mode is
// present. Missing required settings are fatal at startup.
func (c Config) Validate(mode string) error {
	if c.Database.URL == "" {
		return fmt.Errorf("config: database.url is required (set %s)", databaseURLEnv)
	}

	switch mode {
	case ModeIngest:
		if len(c.EnabledFeeds()) == 0 {
			return fmt.Errorf("config: no enabled feeds configured")
		}
	case ModeSummarize:
		if c.Grok.APIKey == "" {
			return fmt.Errorf("config: grok.apiKey is required (set %s)", xaiAPIKeyEnv)
		}
	case ModeDigest:
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("config: telegram.botToken is required (set %s)", telegramTokenEnv)
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("config: telegram.chatId is required (set %s)", telegramChatEnv)
		}
	case ModeServe:
		for _, m := range []string{ModeIngest, ModeSummarize, ModeDigest} {
			if err := c.Validate(m); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("config: unknown mode %q", mode)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseURLEnv); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv(xaiAPIKeyEnv); v != "" {
		c.Grok.APIKey = v
	}
}

func (c *Config) bindTimezone() error {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("config: unknown timezone %s: %w", tz, err)
	}
	c.Scheduler.location = loc
	return nil
}

func mergeConfig(base, override Config) Config {
	if override.Database.URL != "" {
		base.Database = override.Database
	}
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Scheduler.IngestCron != "" {
		base.Scheduler.IngestCron = override.Scheduler.IngestCron
	}
	if override.Scheduler.SummarizeCron != "" {
		base.Scheduler.SummarizeCron = override.Scheduler.SummarizeCron
	}
	if override.Scheduler.DigestCron != "" {
		base.Scheduler.DigestCron = override.Scheduler.DigestCron
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}
	if override.Telegram.ChatID != "" {
		base.Telegram.ChatID = override.Telegram.ChatID
	}

	if override.Grok.Endpoint != "" {
		base.Grok.Endpoint = override.Grok.Endpoint
	}
	if override.Grok.Model != "" {
		base.Grok.Model = override.Grok.Model
	}
	if override.Grok.APIKey != "" {
		base.Grok.APIKey = override.Grok.APIKey
	}
	if override.Grok.Temperature != 0 {
		base.Grok.Temperature = override.Grok.Temperature
	}
	if override.Grok.MaxTokens != 0 {
		base.Grok.MaxTokens = override.Grok.MaxTokens
	}
	if override.Grok.Timeout != 0 {
		base.Grok.Timeout = override.Grok.Timeout
	}

	if override.Summary.LookbackDays != 0 {
		base.Summary.LookbackDays = override.Summary.LookbackDays
	}
	if override.Summary.Limits.MainEvents != 0 {
		base.Summary.Limits.MainEvents = override.Summary.Limits.MainEvents
	}
	if override.Summary.Limits.KeyThemes != 0 {
		base.Summary.Limits.KeyThemes = override.Summary.Limits.KeyThemes
	}
	if override.Summary.Limits.TopArticles != 0 {
		base.Summary.Limits.TopArticles = override.Summary.Limits.TopArticles
	}

	if override.Settings.DelayBetweenFeeds != 0 {
		base.Settings.DelayBetweenFeeds = override.Settings.DelayBetweenFeeds
	}
	if override.Settings.MaxArticlesPerFeed != 0 {
		base.Settings.MaxArticlesPerFeed = override.Settings.MaxArticlesPerFeed
	}
	if override.Settings.Timeout != 0 {
		base.Settings.Timeout = override.Settings.Timeout
	}
	if override.Settings.RetryAttempts != 0 {
		base.Settings.RetryAttempts = override.Settings.RetryAttempts
	}
	if override.Settings.UserAgent != "" {
		base.Settings.UserAgent = override.Settings.UserAgent
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database: DatabaseConfig{URL: ""},
		Logging:  LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{
			IngestCron:    "0 * * * *",
			SummarizeCron: "30 0 * * *",
			DigestCron:    "0 7 * * *",
			Timezone:      defaultTimezone,
			location:      tz,
		},
		Telegram: TelegramConfig{},
		Grok: GrokConfig{
			Endpoint:    "https://api.x.ai/v1/chat/completions",
			Model:       "grok-4-fast",
			Temperature: 0.3,
			MaxTokens:   4096,
			Timeout:     60,
		},
		Summary: SummaryConfig{
			LookbackDays: 1,
			Limits:       SummaryLimits{MainEvents: 5, KeyThemes: 3, TopArticles: 10},
		},
		Settings: ParserSettings{
			DelayBetweenFeeds:  1.0,
			MaxArticlesPerFeed: 100,
			Timeout:            30,
			RetryAttempts:      3,
			UserAgent:          "NewsOfTheWorld/1.0",
		},
		Feeds: map[string][]FeedConfig{},
	}
}
