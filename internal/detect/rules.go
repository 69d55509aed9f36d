package detect

// ruleTable maps each category to the keyword sets its detector uses.
// Keywords are lower-case and matched as substrings of the hardware label.
var ruleTable = []struct {
	category Category
	include  []string
	exclude  []string
}{
	{CPU, []string{"intel", "amd", "processor", "core", "ryzen", "cpu"}, []string{"graphics", "radeon", "geforce", "gpu"}},
	{GPU, []string{"nvidia", "amd", "radeon", "geforce", "rtx", "gtx", "rx"}, []string{"uhd", "integrated", "igpu"}},
	{Memory, []string{"memory"}, []string{"cpu"}},
	{Storage, []string{"ssd", "hdd", "nvme", "samsung", "wd", "crucial", "seagate", "toshiba", "kingston"}, nil},
	{Network, []string{"ethernet", "wifi", "wi-fi", "wireless", "network"}, []string{"vethernet", "virtual", "loopback"}},
	{Motherboard, []string{"z590", "b550", "x570", "asus", "gigabyte", "msi", "asrock", "it8689", "nct"}, nil},
}

// Tuning holds the adjustable detection heuristics.
type Tuning struct {
	Activity       ActivityWeights `yaml:"activity"`
	PreferEthernet bool            `yaml:"prefer_ethernet"`
	// Extra include keywords appended to the default sets.
	StorageKeywords     []string `yaml:"storage_keywords"`
	MotherboardKeywords []string `yaml:"motherboard_keywords"`
}

// DefaultTuning returns the stock heuristics: download weighted ten times
// upload, Ethernet preferred when every interface is idle.
func DefaultTuning() Tuning {
	return Tuning{
		Activity:       ActivityWeights{Upload: 1, Download: 10, Utilization: 1},
		PreferEthernet: true,
	}
}

// Rules builds the detector set, in detection order, for a tuning.
func Rules(t Tuning) []Detector {
	out := make([]Detector, 0, len(ruleTable))
	for _, r := range ruleTable {
		d := Detector{
			Category: r.category,
			Include:  append([]string(nil), r.include...),
			Exclude:  append([]string(nil), r.exclude...),
			Strategy: First{},
		}
		switch r.category {
		case Storage:
			d.Include = append(d.Include, t.StorageKeywords...)
			d.Strategy = MostUsed{}
		case Network:
			d.Strategy = MostActive{Weights: t.Activity, PreferEthernet: t.PreferEthernet}
		case Motherboard:
			d.Include = append(d.Include, t.MotherboardKeywords...)
		}
		out = append(out, d)
	}
	return out
}
