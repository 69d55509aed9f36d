package extract

import (
	"github.com/luki/hwtelemetry/internal/sensor"
	"github.com/luki/hwtelemetry/internal/snapshot"
)

var (
	gpuTempPatterns = []string{"gpu core", "gpu", "core", "temperature"}
	gpuLoadPatterns = []string{"gpu core", "gpu", "core load", "3d load", "cuda load"}
)

// GPU reads temperature and load of a dedicated GPU.
func GPU(node *sensor.Node) snapshot.GPU {
	return snapshot.GPU{
		Temp:    temperature(sensor.FindIn(node, kindTemperature, gpuTempPatterns...)),
		Load:    percent(sensor.FindIn(node, kindLoad, gpuLoadPatterns...)),
		Present: true,
	}
}
