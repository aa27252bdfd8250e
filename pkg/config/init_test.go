package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// useTempHome points the default config location at a temporary directory.
func useTempHome(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	return tmpDir
}

func TestInitConfig_Success(t *testing.T) {
	tmpDir := useTempHome(t)

	configPath, err := InitConfig(false)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	expectedPath := filepath.Join(tmpDir, ".config", "dittolist", "config.yaml")
	if configPath != expectedPath {
		t.Errorf("Expected config at %s, got %s", expectedPath, configPath)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	contentStr := string(content)
	expectedSections := []string{
		"# DittoList Configuration File",
		"logging:",
		"listing:",
		"cache:",
		"api:",
		"store:",
	}

	for _, section := range expectedSections {
		if !strings.Contains(contentStr, section) {
			t.Errorf("Config file missing section: %s", section)
		}
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(content, &parsed); err != nil {
		t.Fatalf("Generated config is not valid YAML: %v", err)
	}
}

func TestInitConfig_AlreadyExists(t *testing.T) {
	useTempHome(t)

	if _, err := InitConfig(false); err != nil {
		t.Fatalf("First InitConfig failed: %v", err)
	}

	_, err := InitConfig(false)
	if err == nil {
		t.Fatal("Expected error when config already exists")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Expected 'already exists' error, got: %v", err)
	}
}

func TestInitConfig_ForceOverwrite(t *testing.T) {
	useTempHome(t)

	configPath, err := InitConfig(false)
	if err != nil {
		t.Fatalf("First InitConfig failed: %v", err)
	}

	if err := os.WriteFile(configPath, []byte("existing"), 0644); err != nil {
		t.Fatalf("Failed to modify config: %v", err)
	}

	if _, err := InitConfig(true); err != nil {
		t.Fatalf("Force InitConfig failed: %v", err)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}
	if string(content) == "existing" {
		t.Error("File was not overwritten")
	}
}

func TestInitConfigToPath_CreatesDirectories(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	if err := InitConfigToPath(configPath, false); err != nil {
		t.Fatalf("InitConfigToPath failed: %v", err)
	}

	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("Config file was not created: %v", err)
	}
}

func TestGenerateYAMLWithComments_ValidConfig(t *testing.T) {
	out, err := generateYAMLWithComments(GetDefaultConfig())
	if err != nil {
		t.Fatalf("generateYAMLWithComments failed: %v", err)
	}

	for _, want := range []string{
		"# Listing engine",
		"streaming_threshold: 10000",
		"overscan_limit: 1000",
		"skip_mode: abort",
		"db_path: ./data",
		"INFO",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Generated YAML missing %q", want)
		}
	}

	// Sections follow sectionOrder
	last := -1
	for _, section := range sectionOrder {
		idx := strings.Index(out, "\n"+section+":")
		if idx < 0 {
			t.Fatalf("Generated YAML missing section %s", section)
		}
		if idx < last {
			t.Errorf("Section %s is out of order", section)
		}
		last = idx
	}
}

func TestGeneratedConfigIsLoadable(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	if err := InitConfigToPath(configPath, false); err != nil {
		t.Fatalf("Failed to generate config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}

	defaults := GetDefaultConfig()
	if cfg.Listing.StreamTimeout != defaults.Listing.StreamTimeout {
		t.Errorf("Expected stream timeout %v, got %v", defaults.Listing.StreamTimeout, cfg.Listing.StreamTimeout)
	}
	if cfg.API.WriteTimeout != defaults.API.WriteTimeout {
		t.Errorf("Expected write timeout %v, got %v", defaults.API.WriteTimeout, cfg.API.WriteTimeout)
	}
	if cfg.Listing.OverscanLimit != defaults.Listing.OverscanLimit {
		t.Errorf("Expected overscan limit %d, got %d", defaults.Listing.OverscanLimit, cfg.Listing.OverscanLimit)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected INFO log level in generated config, got %q", cfg.Logging.Level)
	}
	if len(cfg.API.CORS.AllowedOrigins) != 1 || cfg.API.CORS.AllowedOrigins[0] != "*" {
		t.Errorf("Expected CORS origins [*], got %v", cfg.API.CORS.AllowedOrigins)
	}
}
