package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pcetile-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tempDir)

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				TempDir:                 tempDir,
				Timeout:                 30 * time.Second,
				LogLevel:                "info",
				DefaultBackgroundColor:  "#000000",
				DefaultBATWidth:         32,
				DefaultBATHeight:        32,
			},
			wantErr: false,
		},
		{
			name: "invalid timeout",
			config: &Config{
				TempDir:                tempDir,
				Timeout:                -1 * time.Second,
				LogLevel:               "info",
				DefaultBackgroundColor: "#000000",
				DefaultBATWidth:        32,
				DefaultBATHeight:       32,
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			config: &Config{
				TempDir:                tempDir,
				Timeout:                30 * time.Second,
				LogLevel:               "invalid",
				DefaultBackgroundColor: "#000000",
				DefaultBATWidth:        32,
				DefaultBATHeight:       32,
			},
			wantErr: true,
		},
		{
			name: "invalid background color",
			config: &Config{
				TempDir:                tempDir,
				Timeout:                30 * time.Second,
				LogLevel:               "info",
				DefaultBackgroundColor: "not-a-color",
				DefaultBATWidth:        32,
				DefaultBATHeight:       32,
			},
			wantErr: true,
		},
		{
			name: "invalid bat dimensions",
			config: &Config{
				TempDir:                tempDir,
				Timeout:                30 * time.Second,
				LogLevel:               "info",
				DefaultBackgroundColor: "#000000",
				DefaultBATWidth:        0,
				DefaultBATHeight:       32,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadAppliesDefaultsWhenConfigFileMissing(t *testing.T) {
	tempDir := t.TempDir()
	origGetPath := getConfigFilePath
	getConfigFilePath = func() string { return filepath.Join(tempDir, "does-not-exist.json") }
	defer func() { getConfigFilePath = origGetPath }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.DefaultBackgroundColor != DefaultBackgroundColorDefault {
		t.Errorf("DefaultBackgroundColor = %v, want %v", cfg.DefaultBackgroundColor, DefaultBackgroundColorDefault)
	}
	if cfg.DefaultBATWidth != DefaultBATWidthDefault || cfg.DefaultBATHeight != DefaultBATHeightDefault {
		t.Errorf("default BAT dimensions = %dx%d, want %dx%d", cfg.DefaultBATWidth, cfg.DefaultBATHeight, DefaultBATWidthDefault, DefaultBATHeightDefault)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.json")
	body := `{"log_level":"debug","default_background_color":"#112233","default_bat_width":16,"default_bat_height":16,"timeout":5}`
	if err := os.WriteFile(configPath, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	origGetPath := getConfigFilePath
	getConfigFilePath = func() string { return configPath }
	defer func() { getConfigFilePath = origGetPath }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.DefaultBackgroundColor != "#112233" {
		t.Errorf("DefaultBackgroundColor = %v, want #112233", cfg.DefaultBackgroundColor)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
}
