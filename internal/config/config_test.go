package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, env, body string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config."+env+".json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_DIR", dir)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	writeConfig(t, "test", `{
		"server": {"host": "127.0.0.1", "port": 9090},
		"mongodb": {"uri": "${TEST_MONGO_URI}", "database": "chess_test"},
		"slack": {"webhookUrl": "${TEST_SLACK_HOOK}", "channel": "#chess"},
		"rules": {"detectCheck": true},
		"rateLimit": {"importsPerMinute": 3},
		"cleanup": {"idleDays": 7}
	}`)
	t.Setenv("TEST_MONGO_URI", "mongodb://db:27017")
	t.Setenv("TEST_SLACK_HOOK", "https://hooks.slack.com/services/T/B/X")

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != "test" {
		t.Fatalf("environment = %q", cfg.Environment)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Fatalf("addr = %q", cfg.Addr())
	}
	if !cfg.UseMongo() || cfg.MongoDB.URI != "mongodb://db:27017" {
		t.Fatalf("mongo uri = %q", cfg.MongoDB.URI)
	}
	if cfg.Slack.WebhookURL != "https://hooks.slack.com/services/T/B/X" || cfg.Slack.Channel != "#chess" {
		t.Fatalf("slack = %+v", cfg.Slack)
	}
	if !cfg.Rules.DetectCheck {
		t.Fatal("detectCheck not read")
	}
	if cfg.IdleAfter() != 7*24*time.Hour {
		t.Fatalf("idle after = %v", cfg.IdleAfter())
	}
	if cfg.RateLimit.ImportsPerMinute != 3 || cfg.RateLimit.GamesPerMinute != defaultGamesPerMinute {
		t.Fatalf("rate limit = %+v", cfg.RateLimit)
	}
}

func TestLoadDefaults(t *testing.T) {
	writeConfig(t, "bare", `{}`)

	cfg, err := Load("bare")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != defaultPort || cfg.MongoDB.Database != defaultDatabase {
		t.Fatalf("port=%d database=%q", cfg.Server.Port, cfg.MongoDB.Database)
	}
	if cfg.UseMongo() {
		t.Fatal("empty uri should use the memory store")
	}
	if cfg.Slack.Username != defaultSlackUsername {
		t.Fatalf("slack username = %q", cfg.Slack.Username)
	}
}

func TestLoadErrors(t *testing.T) {
	writeConfig(t, "broken", `{"server":`)
	if _, err := Load("broken"); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := Load("missing"); err == nil {
		t.Fatal("expected read error")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("SLACK_CHESS_ENV", "")
	if got := GetEnv(); got != "dev" {
		t.Fatalf("got %q, want dev", got)
	}
	t.Setenv("SLACK_CHESS_ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Fatalf("got %q, want prod", got)
	}
}
