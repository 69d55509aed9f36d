package snapshot

// Placeholder names shown until a piece of hardware has been detected.
const (
	PlaceholderCPU     = "CPU"
	PlaceholderGPU     = "GPU"
	PlaceholderStorage = "Storage"
	PlaceholderNetwork = "Network"
)

// Identity names the hardware behind the readings. It is carried from one
// snapshot into the next so labels stay stable while a device is
// temporarily unmatched or the source is unreachable.
type Identity struct {
	CPUName     string `json:"cpu_name"`
	GPUName     string `json:"gpu_name"`
	StorageName string `json:"storage_name"`
	NetworkName string `json:"network_name"`

	// Capability flags. Once set they stay set.
	HasDedicatedGPU bool `json:"has_dedicated_gpu"`
	HasNetworkData  bool `json:"has_network_data"`
	HasStorageData  bool `json:"has_storage_data"`
}

// NewIdentity returns an identity holding only placeholders.
func NewIdentity() Identity {
	return Identity{
		CPUName:     PlaceholderCPU,
		GPUName:     PlaceholderGPU,
		StorageName: PlaceholderStorage,
		NetworkName: PlaceholderNetwork,
	}
}

// Detected lists the names found by one detection pass. An empty name
// means the category was not detected.
type Detected struct {
	CPU, GPU, Storage, Network string
}

// Next returns the identity for a snapshot built after id. Freshly
// detected names replace carried ones; undetected categories keep their
// carried name, or the placeholder if none was ever seen.
func (id Identity) Next(d Detected) Identity {
	next := Identity{
		CPUName:         pick(d.CPU, id.CPUName, PlaceholderCPU),
		GPUName:         pick(d.GPU, id.GPUName, PlaceholderGPU),
		StorageName:     pick(d.Storage, id.StorageName, PlaceholderStorage),
		NetworkName:     pick(d.Network, id.NetworkName, PlaceholderNetwork),
		HasDedicatedGPU: id.HasDedicatedGPU || d.GPU != "",
		HasNetworkData:  id.HasNetworkData || d.Network != "",
		HasStorageData:  id.HasStorageData || d.Storage != "",
	}
	return next
}

func pick(fresh, carried, placeholder string) string {
	switch {
	case fresh != "":
		return fresh
	case carried != "":
		return carried
	default:
		return placeholder
	}
}
