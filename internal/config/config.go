package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultPort             = 8080
	defaultDatabase         = "slack_chess"
	defaultImportsPerMinute = 10
	defaultGamesPerMinute   = 10
	defaultSlackUsername    = "Slack Chess"
)

type Config struct {
	Environment string `json:"environment"`
	Server      struct {
		Host string `json:"host"`
		Port int    `json:"port"`
	} `json:"server"`
	// An empty URI keeps games in memory
	MongoDB struct {
		URI      string `json:"uri"`
		Database string `json:"database"`
	} `json:"mongodb"`
	Frontend struct {
		URL string `json:"url"`
	} `json:"frontend"`
	Slack struct {
		WebhookURL string `json:"webhookUrl"`
		Channel    string `json:"channel"`
		Username   string `json:"username"`
	} `json:"slack"`
	Rules struct {
		// Compute check, checkmate and stalemate after every move
		DetectCheck bool `json:"detectCheck"`
	} `json:"rules"`
	RateLimit struct {
		ImportsPerMinute int `json:"importsPerMinute"`
		GamesPerMinute   int `json:"gamesPerMinute"`
	} `json:"rateLimit"`
	Cleanup struct {
		// Games untouched for this many days are deleted. 0 keeps games forever.
		IdleDays int `json:"idleDays"`
	} `json:"cleanup"`
}

func Load(env string) (*Config, error) {
	configDir := os.Getenv("CONFIG_DIR")
	if configDir == "" {
		// Default to configs directory relative to working directory
		configDir = "configs"
	}

	filename := fmt.Sprintf("config.%s.json", env)
	configPath := filepath.Join(configDir, filename)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var cfg Config
	if err := json.Unmarshal([]byte(expandEnvVars(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Environment = env
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.MongoDB.Database == "" {
		c.MongoDB.Database = defaultDatabase
	}
	if c.Slack.Username == "" {
		c.Slack.Username = defaultSlackUsername
	}
	if c.RateLimit.ImportsPerMinute <= 0 {
		c.RateLimit.ImportsPerMinute = defaultImportsPerMinute
	}
	if c.RateLimit.GamesPerMinute <= 0 {
		c.RateLimit.GamesPerMinute = defaultGamesPerMinute
	}
}

// IdleAfter is how long a game may sit untouched before cleanup removes it
func (c *Config) IdleAfter() time.Duration {
	return time.Duration(c.Cleanup.IdleDays) * 24 * time.Hour
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// UseMongo reports whether games are persisted in MongoDB
func (c *Config) UseMongo() bool {
	return c.MongoDB.URI != ""
}

// expandEnvVars replaces ${VAR_NAME} with environment variable values
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		return os.Getenv(key)
	})
}

func GetEnv() string {
	env := os.Getenv("SLACK_CHESS_ENV")
	if env == "" {
		return "dev"
	}
	return env
}
