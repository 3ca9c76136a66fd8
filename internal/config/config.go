// Package config loads runtime settings: built-in defaults, an optional
// config.yaml and CONTENTCORE_* environment variables, in that order.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// MinPoliteDelay is the smallest pause allowed between two requests to the
// same feed host.
const MinPoliteDelay = 500 * time.Millisecond

type Config struct {
	Feeds      Feeds      `mapstructure:"feeds"`
	Scraper    Scraper    `mapstructure:"scraper"`
	Gemini     Gemini     `mapstructure:"gemini"`
	Relevance  Relevance  `mapstructure:"relevance"`
	Plagiarism Plagiarism `mapstructure:"plagiarism"`
	Monitoring Monitoring `mapstructure:"monitoring"`
	MCP        MCP        `mapstructure:"mcp"`

	Debug bool `mapstructure:"debug"`
}

// Feeds controls the Feed Fetcher.
type Feeds struct {
	CatalogPath          string        `mapstructure:"catalog_path"`
	RequestTimeout       time.Duration `mapstructure:"request_timeout"`
	PoliteDelay          time.Duration `mapstructure:"polite_delay"`
	Concurrency          int           `mapstructure:"concurrency"`
	EntriesPerEndpoint   int           `mapstructure:"entries_per_endpoint"`
	EndpointsPerCategory int           `mapstructure:"endpoints_per_category"`
	RetryAttempts        int           `mapstructure:"retry_attempts"`
	RetryDelay           time.Duration `mapstructure:"retry_delay"`
	CacheTTL             time.Duration `mapstructure:"cache_ttl"`
	UserAgent            string        `mapstructure:"user_agent"`
	CredibleDomains      []string      `mapstructure:"credible_domains"`
}

// Scraper controls full-article extraction.
type Scraper struct {
	MaxArticles int           `mapstructure:"max_articles"` // 0 disables the step
	Timeout     time.Duration `mapstructure:"timeout"`
	MinContent  int           `mapstructure:"min_content"`
}

// Gemini controls the optional LLM summariser.
type Gemini struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	MaxRequests int    `mapstructure:"max_requests"` // per day, 0 = unlimited
	MaxArticles int    `mapstructure:"max_articles"` // articles summarised per run
}

// Relevance holds the post-ranking filter thresholds.
type Relevance struct {
	SustainabilityThreshold float64 `mapstructure:"sustainability_threshold"`
	DefaultThreshold        float64 `mapstructure:"default_threshold"`
}

// Plagiarism holds the originality gate settings.
type Plagiarism struct {
	SimilarityThreshold float64       `mapstructure:"similarity_threshold"`
	RecencyWindow       time.Duration `mapstructure:"recency_window"`
}

type Monitoring struct {
	Port string `mapstructure:"port"`
}

type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// DefaultCredibleDomains is the allowlist used when neither the config nor
// the feed catalog provides one.
var DefaultCredibleDomains = []string{
	"techcrunch.com", "wired.com", "arstechnica.com", "theverge.com",
	"venturebeat.com", "reuters.com", "bloomberg.com", "wsj.com",
	"nytimes.com", "washingtonpost.com", "bbc.com", "cnn.com",
}

// Defaults returns a Config with the production defaults.
func Defaults() Config {
	return Config{
		Feeds: Feeds{
			CatalogPath:          "configs/feeds.yaml",
			RequestTimeout:       10 * time.Second,
			PoliteDelay:          MinPoliteDelay,
			Concurrency:          4,
			EntriesPerEndpoint:   10,
			EndpointsPerCategory: 2,
			RetryAttempts:        2,
			RetryDelay:           time.Second,
			CacheTTL:             10 * time.Minute,
			UserAgent:            "Mozilla/5.0 (compatible; contentcore/1.0)",
			CredibleDomains:      append([]string(nil), DefaultCredibleDomains...),
		},
		Scraper: Scraper{
			MaxArticles: 0,
			Timeout:     15 * time.Second,
			MinContent:  200,
		},
		Gemini: Gemini{
			Model:       "gemini-1.5-flash",
			MaxRequests: 20,
			MaxArticles: 3,
		},
		Relevance: Relevance{
			SustainabilityThreshold: 0.3,
			DefaultThreshold:        0.1,
		},
		Plagiarism: Plagiarism{
			SimilarityThreshold: 0.8,
			RecencyWindow:       30 * 24 * time.Hour,
		},
		Monitoring: Monitoring{Port: "8080"},
		MCP: MCP{
			Name:    "contentcore",
			Version: "1.0.0",
		},
	}
}

// Load merges defaults, the config file (explicit path, or config.yaml in
// ./configs or .) and CONTENTCORE_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// CONTENTCORE_FEEDS_POLITE_DELAY -> feeds.polite_delay
	v.SetEnvPrefix("CONTENTCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// unprefixed names used by older deployments
	_ = v.BindEnv("gemini.api_key", "CONTENTCORE_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("debug", "CONTENTCORE_DEBUG", "DEBUG")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "read config")
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "decode config")
	}

	if cfg.Feeds.PoliteDelay < MinPoliteDelay {
		cfg.Feeds.PoliteDelay = MinPoliteDelay
	}

	return &cfg, cfg.Validate()
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("feeds.catalog_path", d.Feeds.CatalogPath)
	v.SetDefault("feeds.request_timeout", d.Feeds.RequestTimeout)
	v.SetDefault("feeds.polite_delay", d.Feeds.PoliteDelay)
	v.SetDefault("feeds.concurrency", d.Feeds.Concurrency)
	v.SetDefault("feeds.entries_per_endpoint", d.Feeds.EntriesPerEndpoint)
	v.SetDefault("feeds.endpoints_per_category", d.Feeds.EndpointsPerCategory)
	v.SetDefault("feeds.retry_attempts", d.Feeds.RetryAttempts)
	v.SetDefault("feeds.retry_delay", d.Feeds.RetryDelay)
	v.SetDefault("feeds.cache_ttl", d.Feeds.CacheTTL)
	v.SetDefault("feeds.user_agent", d.Feeds.UserAgent)
	v.SetDefault("feeds.credible_domains", d.Feeds.CredibleDomains)
	v.SetDefault("scraper.max_articles", d.Scraper.MaxArticles)
	v.SetDefault("scraper.timeout", d.Scraper.Timeout)
	v.SetDefault("scraper.min_content", d.Scraper.MinContent)
	v.SetDefault("gemini.api_key", d.Gemini.APIKey)
	v.SetDefault("gemini.model", d.Gemini.Model)
	v.SetDefault("gemini.max_requests", d.Gemini.MaxRequests)
	v.SetDefault("gemini.max_articles", d.Gemini.MaxArticles)
	v.SetDefault("relevance.sustainability_threshold", d.Relevance.SustainabilityThreshold)
	v.SetDefault("relevance.default_threshold", d.Relevance.DefaultThreshold)
	v.SetDefault("plagiarism.similarity_threshold", d.Plagiarism.SimilarityThreshold)
	v.SetDefault("plagiarism.recency_window", d.Plagiarism.RecencyWindow)
	v.SetDefault("monitoring.port", d.Monitoring.Port)
	v.SetDefault("mcp.name", d.MCP.Name)
	v.SetDefault("mcp.version", d.MCP.Version)
	v.SetDefault("debug", d.Debug)
}

func (c *Config) Validate() error {
	if c.Feeds.RequestTimeout <= 0 {
		return eris.New("feeds.request_timeout must be positive")
	}
	if c.Feeds.Concurrency < 1 {
		return eris.New("feeds.concurrency must be at least 1")
	}
	if c.Feeds.EntriesPerEndpoint < 1 {
		return eris.New("feeds.entries_per_endpoint must be at least 1")
	}
	if c.Plagiarism.SimilarityThreshold <= 0 || c.Plagiarism.SimilarityThreshold > 1 {
		return eris.New("plagiarism.similarity_threshold must be in (0,1]")
	}
	for name, v := range map[string]float64{
		"relevance.sustainability_threshold": c.Relevance.SustainabilityThreshold,
		"relevance.default_threshold":        c.Relevance.DefaultThreshold,
	} {
		if v < 0 || v > 1 {
			return eris.Errorf("%s must be in [0,1]", name)
		}
	}
	if c.Scraper.MaxArticles < 0 || c.Gemini.MaxArticles < 0 {
		return eris.New("max_articles settings must not be negative")
	}
	return nil
}
