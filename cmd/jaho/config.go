package main

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	flag "github.com/spf13/pflag"
)

// fileConfig mirrors the flags that make sense to persist. Flags set on the
// command line always win over the file.
type fileConfig struct {
	PageSize    string         `yaml:"page_size"`
	Landscape   *bool          `yaml:"landscape"`
	Margin      *float64       `yaml:"margin"`
	Scale       *float64       `yaml:"scale"`
	Wait        string         `yaml:"wait"`
	LoadTimeout *time.Duration `yaml:"load_timeout"`
	Timeout     *time.Duration `yaml:"timeout"`
	NoJS        *bool          `yaml:"no_js"`
	Header      string         `yaml:"header"`
	Footer      string         `yaml:"footer"`
	ChromePath  string         `yaml:"chrome"`
	NoSandbox   *bool          `yaml:"no_sandbox"`
}

// loadFileConfig reads and parses a YAML config file.
func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// applyFileConfig copies file values into opts for every flag the user did
// not set explicitly.
func applyFileConfig(opts *cliOptions, cfg *fileConfig, fs *flag.FlagSet) {
	set := func(name string) bool { return fs.Changed(name) }

	if cfg.PageSize != "" && !set("page-size") {
		opts.pageSize = cfg.PageSize
	}
	if cfg.Landscape != nil && !set("landscape") {
		opts.landscape = *cfg.Landscape
	}
	if cfg.Margin != nil && !set("margin") {
		opts.margin = *cfg.Margin
	}
	if cfg.Scale != nil && !set("scale") {
		opts.scale = *cfg.Scale
	}
	if cfg.Wait != "" && !set("wait") {
		opts.wait = cfg.Wait
	}
	if cfg.LoadTimeout != nil && !set("load-timeout") {
		opts.loadTimeout = *cfg.LoadTimeout
	}
	if cfg.Timeout != nil && !set("timeout") {
		opts.timeout = *cfg.Timeout
	}
	if cfg.NoJS != nil && !set("no-js") {
		opts.noJS = *cfg.NoJS
	}
	if cfg.Header != "" && !set("header") {
		opts.header = cfg.Header
	}
	if cfg.Footer != "" && !set("footer") {
		opts.footer = cfg.Footer
	}
	if cfg.ChromePath != "" && !set("chrome") {
		opts.chromePath = cfg.ChromePath
	}
	if cfg.NoSandbox != nil && !set("no-sandbox") {
		opts.noSandbox = *cfg.NoSandbox
	}
}
