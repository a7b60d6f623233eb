package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Schedule      string            `yaml:"schedule"`
	RunOnStart    bool              `yaml:"run_on_start"`
	HoursLookback int               `yaml:"hours_lookback"`
	Newsletters   NewslettersConfig `yaml:"newsletters"`
	Summarizer    SummarizerConfig  `yaml:"summarizer"`
	Digest        DigestConfig      `yaml:"digest"`
	Gmail         GmailConfig       `yaml:"gmail"`
	Publisher     PublisherConfig   `yaml:"publisher"`
}

type NewslettersConfig struct {
	AllowedSenders []string `yaml:"allowed_senders"`
}

type SummarizerConfig struct {
	Type        string  `yaml:"type"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

type DigestConfig struct {
	Categories     []string `yaml:"categories"`
	MaxPerCategory int      `yaml:"max_per_category"`
	From           string   `yaml:"from"`
	Recipient      string   `yaml:"recipient"`
}

type GmailConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
}

type PublisherConfig struct {
	Type    string        `yaml:"type"`
	Discord DiscordConfig `yaml:"discord"`
}

type DiscordConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func expandEnvVars(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

func setDefaults(cfg *Config) {
	if cfg.Schedule == "" {
		cfg.Schedule = "0 8 * * *"
	}
	if cfg.HoursLookback == 0 {
		cfg.HoursLookback = 24
	}
	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = "anthropic"
	}
	if cfg.Summarizer.Model == "" {
		cfg.Summarizer.Model = "claude-sonnet-4-20250514"
	}
	if cfg.Summarizer.MaxTokens == 0 {
		cfg.Summarizer.MaxTokens = 4096
	}
	if cfg.Summarizer.Temperature == 0 {
		cfg.Summarizer.Temperature = 0.3
	}
	if len(cfg.Digest.Categories) == 0 {
		cfg.Digest.Categories = []string{"Papers", "News", "Tools", "Industry Updates"}
	}
	if cfg.Digest.MaxPerCategory == 0 {
		cfg.Digest.MaxPerCategory = 5
	}
	if cfg.Publisher.Type == "" {
		cfg.Publisher.Type = "stdout"
	}
}

func validate(cfg *Config) error {
	if len(cfg.Newsletters.AllowedSenders) == 0 {
		return fmt.Errorf("config: newsletters.allowed_senders is required")
	}
	switch cfg.Summarizer.Type {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("config: unsupported summarizer type %q (supported: anthropic, openai)", cfg.Summarizer.Type)
	}
	if cfg.Summarizer.APIKey == "" {
		return fmt.Errorf("config: summarizer.api_key is required (set ANTHROPIC_API_KEY or OPENAI_API_KEY env var)")
	}
	if cfg.Gmail.ClientID == "" || cfg.Gmail.ClientSecret == "" || cfg.Gmail.RefreshToken == "" {
		return fmt.Errorf("config: gmail.client_id, gmail.client_secret and gmail.refresh_token are required")
	}
	switch cfg.Publisher.Type {
	case "stdout", "gmail", "discord":
	default:
		return fmt.Errorf("config: unsupported publisher type %q (supported: stdout, gmail, discord)", cfg.Publisher.Type)
	}
	if cfg.Publisher.Type == "gmail" {
		if cfg.Digest.From == "" {
			return fmt.Errorf("config: digest.from is required for gmail publisher")
		}
		if cfg.Digest.Recipient == "" {
			return fmt.Errorf("config: digest.recipient is required for gmail publisher")
		}
	}
	if cfg.Publisher.Type == "discord" {
		if cfg.Publisher.Discord.WebhookURL == "" {
			return fmt.Errorf("config: publisher.discord.webhook_url is required for discord publisher")
		}
	}
	return nil
}

// Load reads the config file, expands environment variables, applies defaults,
// and validates the configuration. A .env file in the working directory, if
// present, is loaded first so ${VAR} references resolve against it.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
