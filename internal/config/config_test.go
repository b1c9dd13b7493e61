package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
telegram:
  bot_token: "test_token"
database:
  path: "test.db"
bot:
  pagination_size: 10
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Telegram.BotToken != "test_token" {
		t.Errorf("expected bot_token test_token, got %s", cfg.Telegram.BotToken)
	}
	if cfg.Bot.PaginationSize != 10 {
		t.Errorf("expected pagination_size 10, got %d", cfg.Bot.PaginationSize)
	}
}

func TestLoadConfig_EnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
telegram:
  bot_token: "${TEST_SMENA_TOKEN}"
database:
  path: "test.db"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	t.Setenv("TEST_SMENA_TOKEN", "env_token")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Telegram.BotToken != "env_token" {
		t.Errorf("expected bot_token env_token, got %s", cfg.Telegram.BotToken)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
telegram:
  bot_token: "test_token"
database:
  path: "test.db"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("expected default api port 8080, got %d", cfg.API.Port)
	}
	if cfg.API.Auth.HeaderAPIKey != "x-api-key" {
		t.Errorf("expected default api key header, got %s", cfg.API.Auth.HeaderAPIKey)
	}
	if cfg.Bot.PaginationSize != 15 {
		t.Errorf("expected default pagination 15, got %d", cfg.Bot.PaginationSize)
	}
	if cfg.Geocoder.Language != "ru" {
		t.Errorf("expected default geocoder language ru, got %s", cfg.Geocoder.Language)
	}
	if cfg.Exports.Path != "exports" {
		t.Errorf("expected default exports path, got %s", cfg.Exports.Path)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Database: DatabaseConfig{Path: "path"},
			},
			wantErr: false,
		},
		{
			name: "missing token",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: ""},
				Database: DatabaseConfig{Path: "path"},
			},
			wantErr: true,
		},
		{
			name: "placeholder token",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "YOUR_BOT_TOKEN_HERE"},
				Database: DatabaseConfig{Path: "path"},
			},
			wantErr: true,
		},
		{
			name: "missing database path",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAdmins(t *testing.T) {
	tests := []struct {
		name    string
		admins  []int64
		wantErr bool
	}{
		{"valid", []int64{1, 2, 3}, false},
		{"empty", nil, true},
		{"zero id", []int64{1, 0}, true},
		{"duplicate", []int64{1, 2, 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdmins(tt.admins)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAdmins() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
