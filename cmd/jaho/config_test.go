package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jaho.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileConfig(t *testing.T) {
	path := writeConfig(t, `
page_size: Letter
landscape: true
margin: 2.0
wait: load
load_timeout: 15s
no_js: true
header: "<div>H</div>"
chrome: /opt/chromium/chrome
`)
	cfg, err := loadFileConfig(path)
	if err != nil {
		t.Fatalf("loadFileConfig: %v", err)
	}
	if cfg.PageSize != "Letter" {
		t.Errorf("PageSize = %q", cfg.PageSize)
	}
	if cfg.Landscape == nil || !*cfg.Landscape {
		t.Error("Landscape not parsed")
	}
	if cfg.Margin == nil || *cfg.Margin != 2.0 {
		t.Error("Margin not parsed")
	}
	if cfg.LoadTimeout == nil || *cfg.LoadTimeout != 15*time.Second {
		t.Error("LoadTimeout not parsed")
	}
	if cfg.ChromePath != "/opt/chromium/chrome" {
		t.Errorf("ChromePath = %q", cfg.ChromePath)
	}
}

func TestLoadFileConfig_Missing(t *testing.T) {
	if _, err := loadFileConfig("/nonexistent/jaho.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadFileConfig_Invalid(t *testing.T) {
	path := writeConfig(t, "page_size: [not a string\n")
	if _, err := loadFileConfig(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestApplyFileConfig_FlagsWin(t *testing.T) {
	// margin comes from the command line, page size from the file.
	opts, _, fs, err := parseArgs([]string{"--margin", "3.0"})
	if err != nil {
		t.Fatal(err)
	}

	landscape := true
	margin := 0.5
	cfg := &fileConfig{
		PageSize:  "Legal",
		Landscape: &landscape,
		Margin:    &margin,
	}
	applyFileConfig(opts, cfg, fs)

	if opts.margin != 3.0 {
		t.Errorf("margin = %v, command line should win", opts.margin)
	}
	if opts.pageSize != "Legal" {
		t.Errorf("pageSize = %q, file value should apply", opts.pageSize)
	}
	if !opts.landscape {
		t.Error("landscape from file not applied")
	}
}

func TestApplyFileConfig_UnsetFieldsKeepDefaults(t *testing.T) {
	opts, _, fs, err := parseArgs(nil)
	if err != nil {
		t.Fatal(err)
	}
	applyFileConfig(opts, &fileConfig{}, fs)

	if opts.pageSize != "A4" {
		t.Errorf("pageSize = %q, want default A4", opts.pageSize)
	}
	if opts.wait != "network-idle" {
		t.Errorf("wait = %q, want default", opts.wait)
	}
	if opts.loadTimeout != 30*time.Second {
		t.Errorf("loadTimeout = %v, want default 30s", opts.loadTimeout)
	}
}

func TestApplyFileConfig_ExplicitFalseOverridesFile(t *testing.T) {
	opts, _, fs, err := parseArgs([]string{"--no-sandbox=false"})
	if err != nil {
		t.Fatal(err)
	}
	noSandbox := true
	applyFileConfig(opts, &fileConfig{NoSandbox: &noSandbox}, fs)

	if opts.noSandbox {
		t.Error("explicit --no-sandbox=false should beat the file value")
	}
}
