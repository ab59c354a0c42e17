package internal

import (
	"fmt"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Vault    VaultConfig       `yaml:"vault"`
	Index    IndexConfig       `yaml:"index"`
	Chat     ChatConfig        `yaml:"chat"`
	Model    ModelConfig       `yaml:"model"`
	Briefing BriefingConfig    `yaml:"briefing"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	if err := c.Chat.Validate(); err != nil {
		return err
	}
	if err := c.Model.Validate(); err != nil {
		return err
	}
	return c.Briefing.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration for the events webhook.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig holds the path to the Markdown vault directory.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// IndexConfig holds the SQLite search index configuration.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ChatConfig holds the workspace credentials for the messaging transport.
type ChatConfig struct {
	BotToken      string `yaml:"bot_token"`
	SigningSecret string `yaml:"signing_secret"`
}

// Validate validates the chat configuration.
func (c *ChatConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BotToken, validation.Required),
		validation.Field(&c.SigningSecret, validation.Required),
	)
}

// ModelConfig holds the generative model credentials.
type ModelConfig struct {
	APIKey string `yaml:"api_key"`
	Name   string `yaml:"name"`
}

// Validate validates the model configuration.
func (c *ModelConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIKey, validation.Required),
	)
}

var briefingTimeRe = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

// BriefingConfig controls the daily briefing. An empty channel disables it.
type BriefingConfig struct {
	Time    string `yaml:"time"`
	Channel string `yaml:"channel"`
}

// Validate validates the briefing configuration.
func (c *BriefingConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Time, validation.Required, validation.Match(briefingTimeRe)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		Index: IndexConfig{
			Path: "./curator.db",
		},
		Model: ModelConfig{
			Name: "gemini-2.5-flash",
		},
		Briefing: BriefingConfig{
			Time: "07:30",
		},
	}
}
