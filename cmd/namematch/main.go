package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/standardbeagle/namematch/internal/config"
	"github.com/standardbeagle/namematch/internal/dataset"
	"github.com/standardbeagle/namematch/internal/index"
	"github.com/standardbeagle/namematch/internal/version"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	// Apply CLI flag overrides
	if data := c.String("data"); data != "" {
		cfg.Dataset.Path = data
	}
	return cfg, nil
}

// buildLogger wires zap to stderr so stdout stays parseable. Default
// level is warn; --verbose opens up debug output including per-query
// timings.
func buildLogger(c *cli.Context) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	if c.Bool("verbose") {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return zcfg.Build()
}

// loadIndex loads the dataset behind the config and builds the
// candidate index over it.
func loadIndex(c *cli.Context, cfg *config.Config, logger *zap.Logger) (*dataset.Source, *index.Index, error) {
	src, err := dataset.Load(cfg.Dataset.Path, datasetOptions(c, cfg, logger))
	if err != nil {
		return nil, nil, err
	}
	return src, index.Build(src.Names, indexOptions(cfg, logger)), nil
}

func datasetOptions(c *cli.Context, cfg *config.Config, logger *zap.Logger) dataset.Options {
	return dataset.Options{
		Column:  c.String("column"),
		Columns: cfg.Dataset.NameColumns,
		Logger:  logger,
	}
}

func indexOptions(cfg *config.Config, logger *zap.Logger) index.Options {
	return index.Options{
		MinShortlist:      cfg.Index.MinShortlist,
		MaxShortlist:      cfg.Index.MaxShortlist,
		PhoneticKeyLength: cfg.Index.PhoneticKeyLength,
		Logger:            logger,
	}
}

func main() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintln(c.App.Writer, version.FullInfo())
	}
	app := &cli.App{
		Name:                   "namematch",
		Usage:                  "Rank the closest names in a dataset, tolerant of initials, typos, and transliteration",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   config.DefaultPath,
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Dataset path or glob, CSV or TSV with a header row (overrides config)",
			},
			&cli.StringFlag{
				Name:  "column",
				Usage: "Name column: a header name, or #N for a 1-based position",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Show debug information",
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "match",
				Aliases: []string{"m"},
				Usage:   "Rank candidates for one query name",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Query name",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of results",
						Value:   config.DefaultTopK,
					},
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: matchCommand,
			},
			{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Interactive prompt: type names, 'top N', or 'quit'",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Reindex automatically when the dataset changes on disk",
					},
				},
				Action: interactiveCommand,
			},
			{
				Name:    "stats",
				Usage:   "Show dataset and index statistics",
				Aliases: []string{"st"},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: statsCommand,
			},
		},
		Action: func(c *cli.Context) error {
			// Bare arguments run a one-shot match with defaults.
			if c.NArg() > 0 {
				return runMatch(c, joinArgs(c), config.DefaultTopK, false)
			}
			return interactiveCommand(c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
