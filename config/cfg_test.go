package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigurationNoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}

	if cfg.Version != 1 {
		t.Errorf("default config version = %d, want 1", cfg.Version)
	}
	if cfg.API.BaseURL == "" {
		t.Error("default api base_url is empty")
	}
	if cfg.API.Timeout <= 0 {
		t.Errorf("default api timeout = %v, want > 0", cfg.API.Timeout)
	}
	if cfg.Document.Markdown.TableMode != TableModeAuto {
		t.Errorf("default table mode = %v, want auto", cfg.Document.Markdown.TableMode)
	}
	if !cfg.Document.Markdown.NormalizeNumerals {
		t.Error("default normalize_numerals = false, want true")
	}
}

func TestLoadConfigurationWithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
api:
  base_url: https://example.com/api/1
  timeout: 5s
document:
  output_name_template: "{{.Title}}"
  file_name_transliterate: true
  markdown:
    table_mode: html
    normalize_numerals: false
    normalize_unicode: true
  images:
    download: true
    cache_dir: ` + filepath.ToSlash(filepath.Join(tmpDir, "images")) + `
    max_width: 1200
logging:
  console:
    level: debug
  file:
    level: normal
    destination: ` + filepath.ToSlash(filepath.Join(tmpDir, "test.log")) + `
    mode: append
reporting:
  destination: ` + filepath.ToSlash(filepath.Join(tmpDir, "report.zip")) + `
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.API.BaseURL != "https://example.com/api/1" {
		t.Errorf("api base_url = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("api timeout = %v, want 5s", cfg.API.Timeout)
	}
	if cfg.Document.Markdown.TableMode != TableModeHTML {
		t.Errorf("table mode = %v, want html", cfg.Document.Markdown.TableMode)
	}
	if cfg.Document.Markdown.NormalizeNumerals {
		t.Error("normalize_numerals = true, want false")
	}
	if !cfg.Document.Markdown.NormalizeUnicode {
		t.Error("normalize_unicode = false, want true")
	}
	if !cfg.Document.Images.Download || cfg.Document.Images.MaxWidth != 1200 {
		t.Errorf("images: %+v", cfg.Document.Images)
	}
	if cfg.Logging.ConsoleLogger.Level != "debug" {
		t.Errorf("console level = %q", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfigurationRejectsUnknownFields(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
document:
  no_such_option: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadConfiguration(configPath); err == nil {
		t.Error("want error for unknown field")
	}
}

func TestLoadConfigurationRejectsBadTableMode(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
document:
  markdown:
    table_mode: fancy
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Fatal("want error for bad table mode")
	}
	if !strings.Contains(err.Error(), "table mode") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPrepareAndDumpRoundTrip(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Prepare() returned empty data")
	}

	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	dumped, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(string(dumped), "table_mode: auto") {
		t.Errorf("dump missing table mode:\n%s", dumped)
	}
}

func TestParseTableMode(t *testing.T) {
	for _, name := range TableModeNames() {
		m, err := ParseTableMode(name)
		if err != nil {
			t.Errorf("ParseTableMode(%q): %v", name, err)
		}
		if m.String() != name {
			t.Errorf("round trip %q -> %v", name, m)
		}
	}
	if _, err := ParseTableMode("bogus"); err == nil {
		t.Error("want error for unknown mode")
	}
}

func TestCleanFileName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"simple", "simple"},
		{"", "_bad_file_name_"},
	}
	for _, tc := range tests {
		if got := CleanFileName(tc.in); got != tc.want {
			t.Errorf("CleanFileName(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
	if got := CleanFileName("a" + string(os.PathSeparator) + "b"); strings.ContainsRune(got, os.PathSeparator) {
		t.Errorf("separator not removed: %q", got)
	}
}
