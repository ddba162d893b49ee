package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/computebench/arsenal/internal/config"
	"github.com/computebench/arsenal/placement"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/slog"
)

func main() {
	var configPath string
	var subset string
	var verbosity string
	var cfg *config.Config
	var logger *slog.Logger

	app := &cli.App{
		Name:  "usmbench",
		Usage: "Allocate, touch and release memory for every placement and device selection",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Path to a YAML configuration file",
				EnvVars:     []string{"USMBENCH_CONFIG"},
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "subset",
				Usage:       "Placement subset to run: all, stable, limited, non-runtime or device-or-host",
				Destination: &subset,
			},
			&cli.StringFlag{
				Name:        "verbosity",
				Usage:       "Log level: debug, info, warn or error",
				Destination: &verbosity,
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			cfg, err = loadConfig(configPath, subset, verbosity)
			if err != nil {
				return err
			}

			level, err := cfg.Level()
			if err != nil {
				return err
			}
			logger = newLogger(os.Stderr, level)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run every feasible combination and print allocation statistics",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "detailed",
						Usage: "List live allocations in the statistics",
					},
				},
				Action: func(c *cli.Context) error {
					b, err := newBench(logger, cfg, prometheus.NewRegistry())
					if err != nil {
						return err
					}

					result, err := b.run(c.App.Writer, c.Bool("detailed"))
					err = errors.CombineErrors(err, b.close())
					if err != nil {
						return err
					}

					logger.Info("benchmark complete",
						slog.Int("Completed", result.Completed),
						slog.Int("Skipped", result.Skipped),
					)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "Print every combination and whether it can be allocated",
				Action: func(c *cli.Context) error {
					b, err := newBench(logger, cfg, prometheus.NewRegistry())
					if err != nil {
						return err
					}

					b.list(c.App.Writer)
					return b.close()
				},
			},
			{
				Name:  "placements",
				Usage: "Print the names of every placement",
				Action: func(c *cli.Context) error {
					for _, p := range placement.All() {
						fmt.Fprintln(c.App.Writer, p)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		if logger != nil {
			logger.Error("failed to run usmbench", slog.Any("error", err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// newLogger writes text records at level and above to out
func newLogger(out io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.HandlerOptions{Level: level}.NewTextHandler(out))
}

// loadConfig reads the configuration file, or the defaults when path is empty, and applies the
// command-line overrides
func loadConfig(path, subset, verbosity string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}

	if subset != "" {
		cfg.Benchmark.Subset = subset
		cfg.Benchmark.Placements = nil
	}
	if verbosity != "" {
		cfg.Logger.Verbosity = verbosity
	}

	return cfg, cfg.Validate()
}
