package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/computebench/arsenal/placement"
	"github.com/computebench/arsenal/runtime/host"
	"github.com/computebench/arsenal/topology"
	"golang.org/x/exp/slog"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Logger struct {
		Verbosity string `yaml:"verbosity"`
	} `yaml:"logger"`
	Topology struct {
		Roots []topology.RootConfig `yaml:"roots"`
	} `yaml:"topology"`
	Runtime struct {
		HostPointerImport      bool `yaml:"hostPointerImport"`
		SharedAllocations      bool `yaml:"sharedAllocations"`
		HugePages              bool `yaml:"hugePages"`
		ExternallySynchronized bool `yaml:"externallySynchronized"`
	} `yaml:"runtime"`
	Benchmark struct {
		Subset     string                `yaml:"subset"`
		Placements []placement.Placement `yaml:"placements"`
		Selections []topology.Selection  `yaml:"selections"`
		Sizes      []int                 `yaml:"sizes"`
		Iterations int                   `yaml:"iterations"`
	} `yaml:"benchmark"`
}

// Default returns the configuration used when no file is given: one emulated root device with two
// sub-devices, every runtime capability, and every placement at the sizes 1B, 4KiB and 2MiB+1.
func Default() *Config {
	config := &Config{}
	config.Logger.Verbosity = "info"
	config.Topology.Roots = []topology.RootConfig{{Name: "emulated", SubDevices: 2}}
	config.Runtime.HostPointerImport = true
	config.Runtime.SharedAllocations = true
	config.Runtime.HugePages = true
	config.Benchmark.Subset = "all"
	config.Benchmark.Selections = topology.UsmSelections()
	config.Benchmark.Sizes = []int{1, 4096, 2*1024*1024 + 1}
	config.Benchmark.Iterations = 1

	return config
}

// Load reads a YAML configuration. Fields missing from the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	err = config.Validate()
	if err != nil {
		return nil, errors.Wrapf(err, "invalid configuration in %s", path)
	}

	return config, nil
}

func (c *Config) Validate() error {
	_, err := c.Level()
	if err != nil {
		return err
	}

	_, err = c.PlacementList()
	if err != nil {
		return err
	}

	for _, selection := range c.Benchmark.Selections {
		if !selection.IsValid() {
			return errors.Newf("selection %d names unknown locations", int32(selection))
		}
	}

	for _, size := range c.Benchmark.Sizes {
		if size < 1 {
			return errors.Newf("benchmark size %d must be positive", size)
		}
	}

	if c.Benchmark.Iterations < 1 {
		return errors.Newf("benchmark iterations %d must be positive", c.Benchmark.Iterations)
	}

	for _, root := range c.Topology.Roots {
		if root.SubDevices < 0 {
			return errors.Newf("root device %q has a negative sub-device count", root.Name)
		}
	}

	return nil
}

// Level parses the logger verbosity: debug, info, warn or error
func (c *Config) Level() (slog.Level, error) {
	level, ok := levelMapping[strings.ToLower(c.Logger.Verbosity)]
	if !ok {
		return slog.LevelInfo, errors.Newf("unknown logger verbosity %q", c.Logger.Verbosity)
	}
	return level, nil
}

var levelMapping = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// PlacementList returns the explicit placements if any were configured, otherwise the named subset
func (c *Config) PlacementList() ([]placement.Placement, error) {
	if len(c.Benchmark.Placements) > 0 {
		for _, p := range c.Benchmark.Placements {
			if !p.IsValid() {
				return nil, errors.Wrapf(placement.ErrUnknownPlacement, "configured placement %d", int32(p))
			}
		}
		return c.Benchmark.Placements, nil
	}

	subset, ok := placement.Subset(c.Benchmark.Subset)
	if !ok {
		return nil, errors.Newf("unknown placement subset %q", c.Benchmark.Subset)
	}
	return subset, nil
}

// Provider builds the emulated device graph
func (c *Config) Provider() *topology.StaticProvider {
	return topology.NewStaticProvider(c.Topology.Roots...)
}

// HostOptions translates the runtime section into host runtime options
func (c *Config) HostOptions() host.CreateOptions {
	var options host.CreateOptions
	if c.Runtime.ExternallySynchronized {
		options.Flags |= host.CreateExternallySynchronized
	}
	if !c.Runtime.HugePages {
		options.Flags |= host.CreateNoHugePages
	}
	options.DisableHostPointerImport = !c.Runtime.HostPointerImport
	options.DisableSharedAllocations = !c.Runtime.SharedAllocations

	return options
}
