package main

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/computebench/arsenal/internal/config"
	"github.com/computebench/arsenal/metrics"
	"github.com/computebench/arsenal/placement"
	"github.com/computebench/arsenal/runtime/host"
	"github.com/computebench/arsenal/topology"
	"github.com/computebench/arsenal/usm"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/slog"
)

type bench struct {
	logger     *slog.Logger
	config     *config.Config
	placements []placement.Placement
	runtime    *host.Runtime
	resolver   *usm.Resolver
	collector  *metrics.Collector
}

type combination struct {
	Placement placement.Placement
	Selection topology.Selection
}

type summary struct {
	Completed int
	Skipped   int
}

func newBench(logger *slog.Logger, cfg *config.Config, reg prometheus.Registerer) (*bench, error) {
	placements, err := cfg.PlacementList()
	if err != nil {
		return nil, err
	}

	provider := cfg.Provider()
	runtime, err := host.New(logger, provider, cfg.HostOptions())
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector(reg)
	resolver, err := usm.New(logger, provider, runtime, runtime, usm.CreateOptions{
		CallbackOptions: collector.Callbacks(),
	})
	if err != nil {
		return nil, errors.CombineErrors(err, runtime.Destroy())
	}

	return &bench{
		logger:     logger,
		config:     cfg,
		placements: placements,
		runtime:    runtime,
		resolver:   resolver,
		collector:  collector,
	}, nil
}

// combinations pairs every placement with every configured selection. Plain heap placements do not
// look at the selection, so they are paired with the host alone.
func (b *bench) combinations() []combination {
	var combinations []combination
	for _, p := range b.placements {
		if !placement.IsRuntimeManaged(p) {
			combinations = append(combinations, combination{Placement: p, Selection: topology.Host})
			continue
		}

		for _, selection := range b.config.Benchmark.Selections {
			combinations = append(combinations, combination{Placement: p, Selection: selection})
		}
	}

	return combinations
}

func (b *bench) list(out io.Writer) {
	for _, combo := range b.combinations() {
		status := "feasible"
		if !b.resolver.IsFeasible(combo.Placement, combo.Selection) {
			status = "skipped"
		}
		fmt.Fprintf(out, "%-28s %-12s %s\n", combo.Placement, combo.Selection, status)
	}
}

func (b *bench) run(out io.Writer, detailed bool) (summary, error) {
	var result summary

	for _, combo := range b.combinations() {
		if !b.resolver.IsFeasible(combo.Placement, combo.Selection) {
			b.logger.Info("skipping combination",
				slog.String("Placement", combo.Placement.String()),
				slog.String("Selection", combo.Selection.String()),
			)
			b.collector.Skipped.WithLabelValues(combo.Placement.String(), combo.Selection.String()).Inc()
			result.Skipped++
			fmt.Fprintf(out, "%-28s %-12s %12s skipped\n", combo.Placement, combo.Selection, "-")
			continue
		}

		for _, size := range b.config.Benchmark.Sizes {
			for iteration := 0; iteration < b.config.Benchmark.Iterations; iteration++ {
				err := b.resolver.WithAllocation(combo.Placement, combo.Selection, size, b.touch)
				if err != nil {
					return result, errors.Wrapf(err, "%s on %s with %d bytes", combo.Placement, combo.Selection, size)
				}
			}

			result.Completed++
			fmt.Fprintf(out, "%-28s %-12s %12d ok\n", combo.Placement, combo.Selection, size)
		}
	}

	fmt.Fprintln(out, b.runtime.BuildStatsString(detailed))

	return result, b.runtime.CheckLeaks()
}

// touch writes every byte of the usable region
func (b *bench) touch(handle *usm.Handle) error {
	data, err := b.runtime.Bytes(handle.Address(), handle.Size())
	if err != nil {
		return err
	}

	for i := range data {
		data[i] = byte(i)
	}

	return nil
}

func (b *bench) close() error {
	return b.runtime.Destroy()
}
