// jaho converts HTML or Markdown documents to PDF using headless Chrome.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Lokiaa21/jaho"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// maxprocs.Set only fails on an invalid GOMAXPROCS env var, in which
	// case the runtime default applies and the program continues.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))

	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "jaho: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	opts, input, fs, err := parseArgs(args)
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Fprintf(stdout, "jaho %s\n", Version)
		return nil
	}
	if opts.configPath != "" {
		cfg, err := loadFileConfig(opts.configPath)
		if err != nil {
			return err
		}
		applyFileConfig(opts, cfg, fs)
	}

	content, err := readInput(input, stdin)
	if err != nil {
		return err
	}

	if opts.extractText {
		pages, err := jaho.ExtractText(content)
		if err != nil {
			return err
		}
		for i, text := range pages {
			if i > 0 {
				fmt.Fprintln(stdout)
			}
			fmt.Fprintln(stdout, text)
		}
		return nil
	}

	cfg, err := convertConfig(opts)
	if err != nil {
		return err
	}
	launch, err := launchOptions(opts)
	if err != nil {
		return err
	}

	logf(opts, "converting %s", describeInput(input))
	ctx := context.Background()
	var res *jaho.Result
	if opts.markdown {
		res, err = jaho.ConvertMarkdown(ctx, string(content), cfg, launch...)
	} else {
		res, err = jaho.Convert(ctx, string(content), cfg, launch...)
	}
	if err != nil {
		return err
	}

	out := outputPath(opts.output, input)
	if err := res.WriteToFile(out, 0o644); err != nil {
		return err
	}
	logf(opts, "wrote %s (%d bytes)", out, res.Len())
	return nil
}

// pageSizes maps the --page-size flag to paper dimensions.
var pageSizes = map[string]jaho.PageSize{
	"a3":      jaho.A3,
	"a4":      jaho.A4,
	"a5":      jaho.A5,
	"letter":  jaho.Letter,
	"legal":   jaho.Legal,
	"tabloid": jaho.Tabloid,
}

// convertConfig translates CLI options into a ConvertConfig.
func convertConfig(opts *cliOptions) (*jaho.ConvertConfig, error) {
	size, ok := pageSizes[strings.ToLower(opts.pageSize)]
	if !ok {
		return nil, fmt.Errorf("unknown page size %q", opts.pageSize)
	}

	var wait jaho.WaitUntil
	switch opts.wait {
	case "network-idle", "":
		wait = jaho.WaitNetworkIdle
	case "load":
		wait = jaho.WaitLoad
	default:
		return nil, fmt.Errorf("unknown wait condition %q (want network-idle or load)", opts.wait)
	}

	orientation := jaho.Portrait
	if opts.landscape {
		orientation = jaho.Landscape
	}

	return &jaho.ConvertConfig{
		Page: &jaho.PageOptions{
			Size:            size,
			Orientation:     orientation,
			Margin:          jaho.UniformMargin(opts.margin),
			Scale:           opts.scale,
			PrintBackground: true,
		},
		DisableJavaScript: opts.noJS,
		WaitUntil:         wait,
		NavigationTimeout: opts.loadTimeout,
		HeaderHTML:        opts.header,
		FooterHTML:        opts.footer,
	}, nil
}

// launchOptions translates CLI options into browser launch Options.
func launchOptions(opts *cliOptions) ([]jaho.Option, error) {
	var launch []jaho.Option
	if opts.chromePath != "" {
		launch = append(launch, jaho.WithChromePath(opts.chromePath))
	}
	if opts.noSandbox {
		launch = append(launch, jaho.WithNoSandbox())
	}
	if opts.download {
		launch = append(launch, jaho.WithAutoDownload())
	}
	if opts.timeout > 0 {
		launch = append(launch, jaho.WithTimeout(opts.timeout))
	}
	for _, raw := range opts.browserArgs {
		name, value, found := strings.Cut(raw, "=")
		if name == "" {
			return nil, fmt.Errorf("invalid browser flag %q (want name=value)", raw)
		}
		if !found {
			launch = append(launch, jaho.WithBrowserFlag(name, true))
			continue
		}
		launch = append(launch, jaho.WithBrowserFlag(name, value))
	}
	return launch, nil
}

// readInput loads the input file, or stdin when path is empty.
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// outputPath picks the output file name: explicit flag, input name with a
// .pdf extension, or out.pdf for stdin.
func outputPath(flagValue, input string) string {
	if flagValue != "" {
		return flagValue
	}
	if input == "" {
		return "out.pdf"
	}
	base := input
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base + ".pdf"
}

func describeInput(input string) string {
	if input == "" {
		return "stdin"
	}
	return input
}

func logf(opts *cliOptions, format string, args ...any) {
	if opts.verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
