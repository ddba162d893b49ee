package host

import (
	"github.com/cockroachdb/errors"
	"github.com/computebench/arsenal/internal/utils"
	"github.com/computebench/arsenal/memutils"
	"github.com/computebench/arsenal/topology"
	"github.com/computebench/arsenal/usm"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/core/v2/common"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific runtime behaviors to activate or deactivate
type CreateFlags int32

var createFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	createFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return createFlagsMapping.FlagsToString(f)
}

const (
	// CreateExternallySynchronized ensures that the runtime will not be synchronized internally. The
	// consumer must guarantee it is used from only one goroutine at a time.
	CreateExternallySynchronized CreateFlags = 1 << iota
	// CreateNoHugePages disables the huge page hint for 2MiB-aligned allocations
	CreateNoHugePages
)

func init() {
	CreateExternallySynchronized.Register("CreateExternallySynchronized")
	CreateNoHugePages.Register("CreateNoHugePages")
}

// CreateOptions contains optional settings when creating a host Runtime
type CreateOptions struct {
	// Flags indicates specific runtime behaviors to activate or deactivate
	Flags CreateFlags
	// DisableHostPointerImport makes the runtime report, and enforce, that host memory cannot be
	// imported
	DisableHostPointerImport bool
	// DisableSharedAllocations makes the runtime report, and enforce, that shared memory is not
	// available
	DisableSharedAllocations bool
}

// New creates a host Runtime. Runtime-managed memory is simulated in process memory and accepted
// only for devices that provider reports.
func New(logger *slog.Logger, provider topology.Provider, options CreateOptions) (*Runtime, error) {
	if logger == nil {
		return nil, errors.New("host.New was called with a nil logger")
	}
	if provider == nil {
		return nil, errors.New("host.New was called with a nil topology provider")
	}

	runtime := &Runtime{
		logger:   logger,
		topology: provider,
		flags:    options.Flags,
		capabilities: usm.Capabilities{
			HostPointerImport: !options.DisableHostPointerImport,
			SharedAllocations: !options.DisableSharedAllocations,
		},
		mutex:   utils.OptionalRWMutex{UseMutex: options.Flags&CreateExternallySynchronized == 0},
		regions: swiss.NewMap[uintptr, *region](42),
		imports: swiss.NewMap[uintptr, int](42),
	}

	for i := range runtime.stats {
		runtime.stats[i].Clear()
	}

	logger.Debug("host::New",
		slog.String("Flags", options.Flags.String()),
		slog.Bool("HostPointerImport", runtime.capabilities.HostPointerImport),
		slog.Bool("SharedAllocations", runtime.capabilities.SharedAllocations),
	)

	memutils.DebugValidate(runtime)

	return runtime, nil
}
