package topology

import "fmt"

// Device is a stable handle to a root device or one of its sub-devices
type Device struct {
	// Root is the index of the root device
	Root int
	// Sub is the index of the sub-device within Root, or -1 for the root device itself
	Sub int
}

// HostDevice stands for the host when a runtime call takes a device but the memory is host-local
var HostDevice = Device{Root: -1, Sub: -1}

// RootDevice returns the handle for the root device at index
func RootDevice(index int) Device {
	return Device{Root: index, Sub: -1}
}

// SubDevice returns the handle for sub-device sub of the root device at root
func SubDevice(root, sub int) Device {
	return Device{Root: root, Sub: sub}
}

// IsHost reports whether d is HostDevice
func (d Device) IsHost() bool {
	return d.Root < 0
}

// IsSubDevice reports whether d is a partition of a root device
func (d Device) IsSubDevice() bool {
	return d.Sub >= 0
}

// Parent returns the root device owning d. A root device is its own parent.
func (d Device) Parent() Device {
	return RootDevice(d.Root)
}

func (d Device) String() string {
	if d.IsHost() {
		return "host"
	}
	if d.IsSubDevice() {
		return fmt.Sprintf("device%d.%d", d.Root, d.Sub)
	}
	return fmt.Sprintf("device%d", d.Root)
}

// Provider exposes the physical device graph. Device discovery happens behind it; implementations
// must return the same handles for the lifetime of the process.
type Provider interface {
	RootDevices() []Device
	SubDevices(root Device) []Device
}

// Resolve maps a selection to the single compute device it names, on the first root device reported
// by provider. The host part of the selection is ignored. It returns an *Error when the selection
// names zero or several compute devices, or a sub-device the root does not expose.
func Resolve(provider Provider, selection Selection) (Device, error) {
	gpu := selection.WithoutHost()
	switch gpu.ComputeDeviceCount() {
	case 0:
		return Device{}, &Error{Selection: selection, Err: ErrNoDevice}
	case 1:
	default:
		return Device{}, &Error{Selection: selection, Err: ErrAmbiguousDevice}
	}

	roots := provider.RootDevices()
	if len(roots) == 0 {
		return Device{}, &Error{Selection: selection, Err: ErrNoRootDevice}
	}
	root := roots[0]

	if gpu == Root {
		return root, nil
	}

	index, ok := gpu.SubDeviceIndex()
	if !ok {
		return Device{}, &Error{Selection: selection, Err: ErrSubDeviceUnavailable}
	}

	subDevices := provider.SubDevices(root)
	if index >= len(subDevices) {
		return Device{}, &Error{Selection: selection, Err: ErrSubDeviceUnavailable}
	}

	return subDevices[index], nil
}

// IsResolvable reports whether Resolve would succeed, without building an error
func IsResolvable(provider Provider, selection Selection) bool {
	_, err := Resolve(provider, selection)
	return err == nil
}
