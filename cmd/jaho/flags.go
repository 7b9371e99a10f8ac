package main

import (
	"fmt"
	"time"

	flag "github.com/spf13/pflag"
)

// cliOptions holds everything the command line and the config file can set.
type cliOptions struct {
	output      string
	configPath  string
	markdown    bool
	extractText bool
	verbose     bool
	version     bool

	pageSize  string
	landscape bool
	margin    float64
	scale     float64

	wait        string
	loadTimeout time.Duration
	timeout     time.Duration
	noJS        bool
	header      string
	footer      string

	chromePath  string
	noSandbox   bool
	download    bool
	browserArgs []string
}

// parseArgs parses the command line. It returns the options, the positional
// input path (empty means stdin), and the flag set for Changed lookups when
// merging a config file.
func parseArgs(args []string) (*cliOptions, string, *flag.FlagSet, error) {
	opts := &cliOptions{}
	fs := flag.NewFlagSet("jaho", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }

	fs.StringVarP(&opts.output, "output", "o", "", "output PDF path (default: input name with .pdf)")
	fs.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	fs.BoolVarP(&opts.markdown, "markdown", "m", false, "treat input as Markdown")
	fs.BoolVar(&opts.extractText, "extract-text", false, "print the plain text of a PDF input instead of converting")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	fs.StringVar(&opts.pageSize, "page-size", "A4", "paper size: A3, A4, A5, Letter, Legal, Tabloid")
	fs.BoolVar(&opts.landscape, "landscape", false, "landscape orientation")
	fs.Float64Var(&opts.margin, "margin", 1.0, "uniform page margin in centimeters")
	fs.Float64Var(&opts.scale, "scale", 1.0, "rendering scale (0.1-2.0)")

	fs.StringVar(&opts.wait, "wait", "network-idle", "load condition: network-idle or load")
	fs.DurationVar(&opts.loadTimeout, "load-timeout", 30*time.Second, "page-load wait bound")
	fs.DurationVar(&opts.timeout, "timeout", 0, "bound for the whole conversion (0 = unbounded)")
	fs.BoolVar(&opts.noJS, "no-js", false, "disable JavaScript on the page")
	fs.StringVar(&opts.header, "header", "", "HTML injected at the start of the document body")
	fs.StringVar(&opts.footer, "footer", "", "HTML appended to the end of the document body")

	fs.StringVar(&opts.chromePath, "chrome", "", "path to the Chrome/Chromium executable")
	fs.BoolVar(&opts.noSandbox, "no-sandbox", false, "disable the Chrome sandbox (Docker, root)")
	fs.BoolVar(&opts.download, "download-browser", false, "download Chromium when none is installed")
	fs.StringArrayVar(&opts.browserArgs, "browser-flag", nil, "extra browser flag, name=value (repeatable)")

	if err := fs.Parse(args); err != nil {
		return nil, "", nil, err
	}
	if fs.NArg() > 1 {
		return nil, "", nil, fmt.Errorf("at most one input file, got %d", fs.NArg())
	}

	input := ""
	if fs.NArg() == 1 && fs.Arg(0) != "-" {
		input = fs.Arg(0)
	}
	return opts, input, fs, nil
}

const usage = `jaho - convert HTML or Markdown to PDF with headless Chrome

Usage:
  jaho [flags] [input]

The input is an HTML file, a Markdown file with --markdown, or standard
input when the argument is omitted or "-". With --extract-text the input is
read as a PDF and its plain text is printed instead.

Flags:
  -o, --output string       output PDF path (default: input name with .pdf)
  -c, --config string       YAML config file
  -m, --markdown            treat input as Markdown
      --extract-text        print the plain text of a PDF input
      --page-size string    A3, A4, A5, Letter, Legal, Tabloid (default A4)
      --landscape           landscape orientation
      --margin float        uniform page margin in centimeters (default 1.0)
      --scale float         rendering scale 0.1-2.0 (default 1.0)
      --wait string         load condition: network-idle or load
      --load-timeout dur    page-load wait bound (default 30s)
      --timeout dur         bound for the whole conversion (default unbounded)
      --no-js               disable JavaScript on the page
      --header string       HTML injected at the start of the body
      --footer string       HTML appended to the end of the body
      --chrome string       path to the Chrome/Chromium executable
      --no-sandbox          disable the Chrome sandbox (Docker, root)
      --download-browser    download Chromium when none is installed
      --browser-flag list   extra browser flag, name=value (repeatable)
  -v, --verbose             log progress to stderr
      --version             print version and exit
`
