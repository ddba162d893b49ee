package topology

// RootConfig describes one root device of a StaticProvider
type RootConfig struct {
	Name       string `yaml:"name"`
	SubDevices int    `yaml:"subDevices"`
}

// StaticProvider is a Provider over a fixed device graph, used by emulated runtimes and tests.
// It is read-only after construction.
type StaticProvider struct {
	names      []string
	roots      []Device
	subDevices [][]Device
}

// NewStaticProvider builds a provider with one root device per entry in roots
func NewStaticProvider(roots ...RootConfig) *StaticProvider {
	provider := &StaticProvider{}
	for rootIndex, root := range roots {
		provider.names = append(provider.names, root.Name)
		provider.roots = append(provider.roots, RootDevice(rootIndex))

		subs := make([]Device, 0, root.SubDevices)
		for subIndex := 0; subIndex < root.SubDevices; subIndex++ {
			subs = append(subs, SubDevice(rootIndex, subIndex))
		}
		provider.subDevices = append(provider.subDevices, subs)
	}

	return provider
}

func (p *StaticProvider) RootDevices() []Device {
	return append([]Device(nil), p.roots...)
}

func (p *StaticProvider) SubDevices(root Device) []Device {
	if root.IsSubDevice() || root.Root < 0 || root.Root >= len(p.subDevices) {
		return nil
	}
	return append([]Device(nil), p.subDevices[root.Root]...)
}

// Contains reports whether device is part of the device graph
func (p *StaticProvider) Contains(device Device) bool {
	if device.Root < 0 || device.Root >= len(p.roots) {
		return false
	}
	return device.Sub >= -1 && device.Sub < len(p.subDevices[device.Root])
}

// Name returns the configured name of the root device owning device
func (p *StaticProvider) Name(device Device) string {
	if device.Root < 0 || device.Root >= len(p.names) {
		return ""
	}
	return p.names[device.Root]
}
