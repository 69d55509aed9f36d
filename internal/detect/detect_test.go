package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luki/hwtelemetry/internal/sensor"
	"github.com/luki/hwtelemetry/internal/sensor/sensortest"
)

func classify(t *testing.T, root *sensor.Node) Result {
	t.Helper()
	return Default(DefaultTuning()).Classify(root)
}

func name(t *testing.T, res Result, c Category) string {
	t.Helper()
	m, ok := res.Get(c)
	if !ok {
		return ""
	}
	return m.Name
}

func TestClassifyDesktop(t *testing.T) {
	res := classify(t, sensortest.Desktop())

	assert.Equal(t, "Intel Core i7-10700K", name(t, res, CPU))
	assert.Equal(t, "NVIDIA GeForce RTX 3060", name(t, res, GPU))
	assert.Equal(t, "Generic Memory", name(t, res, Memory))
	assert.Equal(t, "Samsung SSD 970 EVO 1TB", name(t, res, Storage))
	assert.Equal(t, "Ethernet", name(t, res, Network))
	assert.Equal(t, "ASUS ROG STRIX B550-F GAMING", name(t, res, Motherboard))
	assert.Empty(t, res.Missing())
}

func TestClassifyEmptyTree(t *testing.T) {
	for _, root := range []*sensor.Node{nil, sensor.Branch(""), sensortest.Machine()} {
		res := classify(t, root)
		assert.Equal(t, Categories, res.Missing())
	}
}

func TestExclusions(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		category Category
		want     bool
	}{
		{"integrated graphics is not a cpu", "Intel UHD Graphics 630", CPU, false},
		{"integrated graphics is not a gpu", "Intel UHD Graphics 630", GPU, false},
		{"radeon is not a cpu", "AMD Radeon RX 6800", CPU, false},
		{"radeon is a gpu", "AMD Radeon RX 6800", GPU, true},
		{"ryzen is a cpu", "AMD Ryzen 7 5800X", CPU, true},
		{"cpu memory is not memory", "CPU Memory Controller", Memory, false},
		{"virtual switch is not a nic", "vEthernet (WSL)", Network, false},
		{"loopback is not a nic", "Loopback Pseudo-Interface 1", Network, false},
		{"wi-fi is a nic", "Wi-Fi", Network, true},
		{"nvme is storage", "Generic NVMe Drive", Storage, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := sensortest.Machine(sensortest.Hardware(tt.label,
				sensortest.Group("Load", "Used Space", "10 %")))
			var d Detector
			for _, r := range Rules(DefaultTuning()) {
				if r.Category == tt.category {
					d = r
				}
			}
			_, ok := d.Detect(root, nil)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestClaimedNodesAreNotReused(t *testing.T) {
	root := sensortest.Machine(
		sensortest.Hardware("AMD Ryzen 9 5950X"),
		sensortest.Hardware("AMD Radeon RX 6800 XT"),
	)
	res := classify(t, root)
	assert.Equal(t, "AMD Ryzen 9 5950X", name(t, res, CPU))
	assert.Equal(t, "AMD Radeon RX 6800 XT", name(t, res, GPU))
}

func TestAMDCPUOnlyHasNoGPU(t *testing.T) {
	res := classify(t, sensortest.Machine(sensortest.Hardware("AMD Ryzen 5 5600")))
	_, ok := res.Get(GPU)
	assert.False(t, ok)
}

func TestStoragePicksHighestUsedSpace(t *testing.T) {
	root := sensortest.Machine(
		sensortest.Hardware("Samsung SSD 860", sensortest.Group("Load", "Used Space", "20 %")),
		sensortest.Hardware("WD Black SN850", sensortest.Group("Load", "Used Space", "95 %")),
		sensortest.Hardware("Crucial MX500", sensortest.Group("Load", "Used Space", "60 %")),
	)
	res := classify(t, root)
	assert.Equal(t, "WD Black SN850", name(t, res, Storage))
}

func TestStorageTieGoesToFirst(t *testing.T) {
	root := sensortest.Machine(
		sensortest.Hardware("Kingston A2000", sensortest.Group("Load", "Used Space", "50 %")),
		sensortest.Hardware("Seagate Barracuda", sensortest.Group("Load", "Used Space", "50 %")),
	)
	res := classify(t, root)
	assert.Equal(t, "Kingston A2000", name(t, res, Storage))
}

func TestStorageRequiresUsedSpace(t *testing.T) {
	root := sensortest.Machine(
		sensortest.Hardware("Samsung SSD 860", sensortest.Group("Temperatures", "Temperature", "30 °C")),
	)
	res := classify(t, root)
	_, ok := res.Get(Storage)
	assert.False(t, ok)
}

func TestNetworkPicksMostActive(t *testing.T) {
	root := sensortest.Machine(
		sensortest.Hardware("Ethernet",
			sensortest.Group("Throughput", "Upload Speed", "0 KB/s", "Download Speed", "0 KB/s")),
		sensortest.Hardware("Wi-Fi",
			sensortest.Group("Throughput", "Upload Speed", "5 KB/s", "Download Speed", "2 KB/s")),
	)
	res := classify(t, root)
	assert.Equal(t, "Wi-Fi", name(t, res, Network))
}

func TestNetworkIdleFallback(t *testing.T) {
	tests := []struct {
		name   string
		tuning func(*Tuning)
		want   string
	}{
		{"prefers ethernet", func(*Tuning) {}, "Ethernet 2"},
		{"first without preference", func(t *Tuning) { t.PreferEthernet = false }, "Wireless LAN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := sensortest.Machine(
				sensortest.Hardware("Wireless LAN"),
				sensortest.Hardware("Ethernet 2"),
			)
			tuning := DefaultTuning()
			tt.tuning(&tuning)
			res := Default(tuning).Classify(root)
			assert.Equal(t, tt.want, name(t, res, Network))
		})
	}
}

func TestActivityScore(t *testing.T) {
	w := DefaultTuning().Activity
	iface := sensortest.Hardware("Ethernet",
		sensortest.Group("Throughput", "Upload Speed", "5 KB/s", "Download Speed", "2 KB/s"),
		sensortest.Group("Load", "Network Utilization", "-3 %"),
	)
	assert.InDelta(t, 25.0, w.Score(iface), 1e-9)
	assert.Zero(t, w.Score(sensortest.Hardware("Ethernet")))
}

func TestTuningExtraKeywords(t *testing.T) {
	root := sensortest.Machine(
		sensortest.Hardware("Sabrent Rocket 4", sensortest.Group("Load", "Used Space", "40 %")),
		sensortest.Hardware("Biostar B450MH"),
	)
	res := classify(t, root)
	require.Len(t, res.Missing(), len(Categories))

	tuning := DefaultTuning()
	tuning.StorageKeywords = []string{"Sabrent"}
	tuning.MotherboardKeywords = []string{"biostar"}
	res = Default(tuning).Classify(root)
	assert.Equal(t, "Sabrent Rocket 4", name(t, res, Storage))
	assert.Equal(t, "Biostar B450MH", name(t, res, Motherboard))
}

func TestOnlyHardwareLevelIsScanned(t *testing.T) {
	// Chips nested under a board are not hardware-level nodes.
	root := sensortest.Machine(sensortest.Hardware("Mainboard",
		sensortest.Hardware("Intel Core i5")))
	res := classify(t, root)
	_, ok := res.Get(CPU)
	assert.False(t, ok)
}
