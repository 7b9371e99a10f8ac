package main

import (
	"strings"
	"testing"
	"time"

	"github.com/Lokiaa21/jaho"
)

func TestParseArgs_Defaults(t *testing.T) {
	opts, input, _, err := parseArgs(nil)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if input != "" {
		t.Errorf("input = %q, want stdin", input)
	}
	if opts.pageSize != "A4" {
		t.Errorf("pageSize = %q, want A4", opts.pageSize)
	}
	if opts.margin != 1.0 || opts.scale != 1.0 {
		t.Errorf("margin/scale = %v/%v, want 1.0/1.0", opts.margin, opts.scale)
	}
	if opts.wait != "network-idle" {
		t.Errorf("wait = %q, want network-idle", opts.wait)
	}
	if opts.loadTimeout != 30*time.Second {
		t.Errorf("loadTimeout = %v, want 30s", opts.loadTimeout)
	}
	if opts.timeout != 0 {
		t.Errorf("timeout = %v, want 0", opts.timeout)
	}
}

func TestParseArgs_Flags(t *testing.T) {
	args := []string{
		"-o", "report.pdf", "-m", "--page-size", "letter", "--landscape",
		"--margin", "2.5", "--wait", "load", "--load-timeout", "10s",
		"--no-js", "--header", "<div>H</div>", "--browser-flag", "lang=de",
		"--browser-flag", "disable-gpu", "doc.md",
	}
	opts, input, _, err := parseArgs(args)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if input != "doc.md" {
		t.Errorf("input = %q", input)
	}
	if opts.output != "report.pdf" || !opts.markdown || !opts.landscape || !opts.noJS {
		t.Errorf("flag values wrong: %+v", opts)
	}
	if opts.pageSize != "letter" || opts.margin != 2.5 {
		t.Errorf("page flags wrong: %+v", opts)
	}
	if opts.wait != "load" || opts.loadTimeout != 10*time.Second {
		t.Errorf("wait flags wrong: %+v", opts)
	}
	if len(opts.browserArgs) != 2 || opts.browserArgs[0] != "lang=de" {
		t.Errorf("browserArgs = %v", opts.browserArgs)
	}
}

func TestParseArgs_StdinDash(t *testing.T) {
	_, input, _, err := parseArgs([]string{"-"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if input != "" {
		t.Errorf("input = %q, want stdin", input)
	}
}

func TestParseArgs_TooManyInputs(t *testing.T) {
	if _, _, _, err := parseArgs([]string{"a.html", "b.html"}); err == nil {
		t.Error("expected error for two positional arguments")
	}
}

func TestConvertConfig(t *testing.T) {
	opts, _, _, err := parseArgs([]string{"--page-size", "Legal", "--landscape", "--no-js"})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := convertConfig(opts)
	if err != nil {
		t.Fatalf("convertConfig: %v", err)
	}
	if cfg.Page.Size != jaho.Legal {
		t.Errorf("size = %v, want Legal", cfg.Page.Size)
	}
	if cfg.Page.Orientation != jaho.Landscape {
		t.Error("orientation not landscape")
	}
	if !cfg.DisableJavaScript {
		t.Error("DisableJavaScript not set")
	}
	if !cfg.Page.PrintBackground {
		t.Error("PrintBackground should default to true")
	}
	if cfg.WaitUntil != jaho.WaitNetworkIdle {
		t.Errorf("wait = %v, want WaitNetworkIdle", cfg.WaitUntil)
	}
}

func TestConvertConfig_BadPageSize(t *testing.T) {
	opts, _, _, _ := parseArgs(nil)
	opts.pageSize = "A7"
	if _, err := convertConfig(opts); err == nil {
		t.Error("expected error for unknown page size")
	}
}

func TestConvertConfig_BadWait(t *testing.T) {
	opts, _, _, _ := parseArgs(nil)
	opts.wait = "domcontentloaded"
	if _, err := convertConfig(opts); err == nil {
		t.Error("expected error for unknown wait condition")
	}
}

func TestConvertConfig_PageSizeCaseInsensitive(t *testing.T) {
	for _, name := range []string{"a4", "A4", "TABLOID", "Letter"} {
		opts, _, _, _ := parseArgs(nil)
		opts.pageSize = name
		if _, err := convertConfig(opts); err != nil {
			t.Errorf("convertConfig(%q): %v", name, err)
		}
	}
}

func TestLaunchOptions_BadBrowserFlag(t *testing.T) {
	opts, _, _, _ := parseArgs(nil)
	opts.browserArgs = []string{"=value-without-name"}
	if _, err := launchOptions(opts); err == nil {
		t.Error("expected error for browser flag without a name")
	}
}

func TestLaunchOptions_Count(t *testing.T) {
	opts, _, _, _ := parseArgs(nil)
	opts.chromePath = "/usr/bin/chromium"
	opts.noSandbox = true
	opts.timeout = time.Minute
	opts.browserArgs = []string{"lang=de", "disable-gpu"}

	launch, err := launchOptions(opts)
	if err != nil {
		t.Fatalf("launchOptions: %v", err)
	}
	if len(launch) != 5 {
		t.Errorf("got %d options, want 5", len(launch))
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		flag, input, want string
	}{
		{"explicit.pdf", "doc.html", "explicit.pdf"},
		{"", "doc.html", "doc.pdf"},
		{"", "doc.with.dots.md", "doc.with.dots.pdf"},
		{"", "noext", "noext.pdf"},
		{"", "", "out.pdf"},
		{"", ".hidden", ".hidden.pdf"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.flag, tt.input); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.flag, tt.input, got, tt.want)
		}
	}
}

func TestRun_Version(t *testing.T) {
	var out strings.Builder
	if err := run([]string{"--version"}, strings.NewReader(""), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "jaho") {
		t.Errorf("version output = %q", out.String())
	}
}
