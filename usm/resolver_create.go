package usm

import (
	"github.com/cockroachdb/errors"
	"github.com/computebench/arsenal/topology"
	"golang.org/x/exp/slog"
)

// CreateOptions contains optional settings when creating a Resolver
type CreateOptions struct {
	// CallbackOptions is an optional set of callbacks executed after every allocation and release
	// made through the Resolver
	CallbackOptions *CallbackOptions
}

// New creates a Resolver
//
// provider - The device graph that selections are resolved against. It is treated as a read-only
// snapshot.
//
// runtime - The compute runtime used for runtime-managed allocations and host pointer import
//
// host - The allocator used for plain heap placements
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, provider topology.Provider, runtime DeviceRuntime, host HostAllocator, options CreateOptions) (*Resolver, error) {
	if logger == nil {
		return nil, errors.New("usm.New was called with a nil logger")
	}
	if provider == nil {
		return nil, errors.New("usm.New was called with a nil topology provider")
	}
	if runtime == nil {
		return nil, errors.New("usm.New was called with a nil device runtime")
	}
	if host == nil {
		return nil, errors.New("usm.New was called with a nil host allocator")
	}

	resolver := &Resolver{
		logger:       logger,
		topology:     provider,
		runtime:      runtime,
		host:         host,
		capabilities: runtime.Capabilities(),
	}
	resolver.callbacks = resolverCallbacks{
		Callbacks: options.CallbackOptions,
		Resolver:  resolver,
	}

	logger.Debug("Resolver::New",
		slog.Bool("HostPointerImport", resolver.capabilities.HostPointerImport),
		slog.Bool("SharedAllocations", resolver.capabilities.SharedAllocations),
		slog.Int("RootDevices", len(provider.RootDevices())),
	)

	return resolver, nil
}
