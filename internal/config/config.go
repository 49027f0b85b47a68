/*
Package config loads bot settings from ~/.nikkei-bot/config.yaml and the
environment.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/CRaLFa/nikkei-bot/internal/disclosure"
	"github.com/CRaLFa/nikkei-bot/internal/notify"

	"gopkg.in/yaml.v3"
)

const (
	EnvBotToken     = "BOT_TOKEN"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvSMTPPass     = "SMTP_PASS"
	EnvStoreDSN     = "NIKKEIBOT_STORE_DSN"

	DefaultTimezone    = "Asia/Tokyo"
	DefaultSchedule    = "* * * * *"
	DefaultSettleDelay = 35 * time.Second
	DefaultChannelName = "一般"
)

var ErrMissingToken = fmt.Errorf("Environment variable '%s' is not set", EnvBotToken)

type DiscordConfig struct {
	ChannelName string `yaml:"channel_name"`
}

type StoreConfig struct {
	Type string `yaml:"type"`
	DSN  string `yaml:"dsn"`
}

type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	SMTPUser   string `yaml:"smtp_user"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

type AIConfig struct {
	Model string `yaml:"model"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the merged result of defaults, the config file and the environment.
type Config struct {
	Timezone          string        `yaml:"timezone"`
	Schedule          string        `yaml:"schedule"`
	SettleDelay       time.Duration `yaml:"settle_delay"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout"`
	EnrichConcurrency int           `yaml:"enrich_concurrency"`
	MaxPages          int           `yaml:"max_pages"`
	Sites             []string      `yaml:"sites"`
	Keywords          []string      `yaml:"keywords"`
	Discord           DiscordConfig `yaml:"discord"`
	Store             StoreConfig   `yaml:"store"`
	Email             EmailConfig   `yaml:"email"`
	AI                AIConfig      `yaml:"ai"`
	Log               LogConfig     `yaml:"log"`

	BotToken     string `yaml:"-"`
	GeminiAPIKey string `yaml:"-"`
	SMTPPass     string `yaml:"-"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Timezone:          DefaultTimezone,
		Schedule:          DefaultSchedule,
		SettleDelay:       DefaultSettleDelay,
		FetchTimeout:      disclosure.DefaultTimeout,
		EnrichConcurrency: disclosure.DefaultEnrichConcurrency,
		Sites:             []string{disclosure.NikkeiSiteName},
		Keywords:          append([]string(nil), disclosure.DefaultKeywords...),
		Discord:           DiscordConfig{ChannelName: DefaultChannelName},
		Store:             StoreConfig{Type: "sqlite"},
		Email:             EmailConfig{SMTPServer: "smtp.gmail.com", SMTPPort: 587},
		Log:               LogConfig{Level: "info", Format: "console"},
	}
}

// DefaultPath returns ~/.nikkei-bot/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".nikkei-bot", "config.yaml"), nil
}

// Load reads the file at path over the defaults and then applies the
// environment. A missing file is not an error. An empty path means
// DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	c.BotToken = strings.TrimSpace(getenv(EnvBotToken))
	c.GeminiAPIKey = strings.TrimSpace(getenv(EnvGeminiAPIKey))
	c.SMTPPass = getenv(EnvSMTPPass)
	if dsn := getenv(EnvStoreDSN); dsn != "" {
		c.Store.DSN = dsn
	}
}

// Validate checks everything that can be checked without the network.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Sites) == 0 {
		errs = append(errs, errors.New("at least one site is required"))
	}
	for _, name := range c.Sites {
		if _, err := disclosure.NewSite(name); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := disclosure.CompilePatterns(c.Keywords); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.SettleDelay < 0 {
		errs = append(errs, fmt.Errorf("settle_delay must not be negative: %s", c.SettleDelay))
	}
	if c.EnrichConcurrency < 1 {
		errs = append(errs, fmt.Errorf("enrich_concurrency must be positive: %d", c.EnrichConcurrency))
	}
	if c.MaxPages < 0 {
		errs = append(errs, fmt.Errorf("max_pages must not be negative: %d", c.MaxPages))
	}

	return errors.Join(errs...)
}

// RequireToken returns ErrMissingToken when BOT_TOKEN was not provided.
func (c *Config) RequireToken() error {
	if c.BotToken == "" {
		return ErrMissingToken
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// EmailSettings converts the email section for notify.
func (c *Config) EmailSettings() notify.EmailConfig {
	return notify.EmailConfig{
		SMTPServer: c.Email.SMTPServer,
		SMTPPort:   c.Email.SMTPPort,
		SMTPUser:   c.Email.SMTPUser,
		SMTPPass:   c.SMTPPass,
		FromEmail:  c.Email.FromEmail,
		ToEmail:    c.Email.ToEmail,
	}
}
