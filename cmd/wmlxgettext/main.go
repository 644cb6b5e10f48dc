// Command wmlxgettext walks a configuration corpus, cross-references its
// macro definitions and call sites, expands every translatable string
// found through the macros it was written inside, and writes the result
// as a gettext .po catalog.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/wesnoth-tools/wmlxgettext/internal/catalog"
	"github.com/wesnoth-tools/wmlxgettext/internal/corpus"
	"github.com/wesnoth-tools/wmlxgettext/internal/domain"
	"github.com/wesnoth-tools/wmlxgettext/internal/expand"
	"github.com/wesnoth-tools/wmlxgettext/internal/wml/scan"
	"github.com/wesnoth-tools/wmlxgettext/internal/xref"
)

func main() {
	app := &cli.App{
		Name:  "wmlxgettext",
		Usage: "extract a translation catalog from a macro-driven configuration corpus",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:     "root",
				Usage:    "corpus root directory to scan",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "pattern",
				Usage: "glob pattern (relative to root) selecting files to scan; may be repeated",
				Value: cli.NewStringSlice("**/*.cfg"),
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "glob pattern (relative to root) excluding files from the scan; may be repeated",
			},
			&cli.StringFlag{
				Name:  "domain-default",
				Usage: "textdomain assumed for strings that precede any #textdomain directive",
				Value: "wesnoth",
			},
			&cli.PathFlag{
				Name:  "output",
				Usage: "catalog output path; defaults to stdout",
			},
			&cli.PathFlag{
				Name:  "globals",
				Usage: "YAML file overriding the built-in well-known macro table (LEFT_BRACE, ON_DIFFICULTY, ...)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log every soft-fault diagnostic the scanner and expansion driver produce",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cli.HandleExitCoder(err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger, err := newLogger(c.Bool("verbose"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("logger: %v", err), 1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	warnf := func(format string, args ...any) { sugar.Warnf(format, args...) }

	files, err := corpus.Discover(c.Path("root"), c.StringSlice("pattern"), c.StringSlice("exclude"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("discovering corpus: %v", err), 1)
	}
	if len(files) == 0 {
		sugar.Warnw("no files matched", "root", c.Path("root"))
	}

	builder := xref.NewBuilder()
	for _, f := range files {
		builder.AddFile(f.Name, f.Raw())
	}
	idx := builder.Build()

	globals := expand.DefaultGlobals()
	if path := c.Path("globals"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("opening globals file: %v", err), 1)
		}
		globals, err = expand.LoadGlobals(f)
		f.Close()
		if err != nil {
			return cli.Exit(fmt.Sprintf("loading globals file: %v", err), 1)
		}
	}
	driver := expand.NewDriver(idx, globals, expand.Logger(warnf))

	collector := domain.NewCollector(idx, driver, c.String("domain-default"))
	for _, f := range files {
		collector.BeginFile(f.Name)
		scanCtx := scan.NewContext(collector, warnf)
		for lineno, line := range f.Lines() {
			if err := scanCtx.ScanLine(lineno, line); err != nil {
				sugar.Errorw("aborting file after invariant violation", "file", f.Name, "line", lineno, "error", err)
				break
			}
		}
		scanCtx.Flush()
	}

	out := os.Stdout
	if path := c.Path("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("creating output file: %v", err), 1)
		}
		defer f.Close()
		out = f
	}
	if err := catalog.NewPOWriter(out).Write(collector.Entries); err != nil {
		return cli.Exit(fmt.Sprintf("writing catalog: %v", err), 1)
	}

	sugar.Infow("catalog written", "entries", len(collector.Entries), "files", len(files))
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg.DisableStacktrace = true
	}
	return cfg.Build()
}
