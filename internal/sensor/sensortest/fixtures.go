// Package sensortest holds sensor-tree fixtures shaped like a
// LibreHardwareMonitor data.json, shared by the engine's tests.
package sensortest

import "github.com/luki/hwtelemetry/internal/sensor"

// DesktopJSON is a trimmed data.json from an Intel desktop with a
// dedicated NVIDIA card, two drives, a physical and a virtual NIC and a
// Nuvoton super I/O chip on the board.
const DesktopJSON = `{
  "id": 0, "Text": "Sensor", "Min": "Min", "Value": "Value", "Max": "Max", "ImageURL": "",
  "Children": [
    {
      "id": 1, "Text": "DESKTOP-HTPC", "ImageURL": "images_icon/computer.png",
      "Children": [
        {
          "Text": "ASUS ROG STRIX B550-F GAMING",
          "Children": [
            {
              "Text": "Nuvoton NCT6798D",
              "Children": [
                {"Text": "Voltages", "Children": [
                  {"Text": "Vcore", "Value": "1.344 V"}
                ]},
                {"Text": "Temperatures", "Children": [
                  {"Text": "CPU", "Value": "45.0 °C"},
                  {"Text": "System", "Value": "60.0 °C"},
                  {"Text": "Auxiliary", "Value": "127.0 °C"},
                  {"Text": "PCH", "Value": "0.0 °C"}
                ]},
                {"Text": "Fans", "Children": [
                  {"Text": "CPU Fan", "Value": "1200 RPM"},
                  {"Text": "Chassis Fan #1", "Value": "0 RPM"},
                  {"Text": "Chassis Fan #2", "Value": "850 RPM"}
                ]}
              ]
            }
          ]
        },
        {
          "Text": "Intel Core i7-10700K",
          "Children": [
            {"Text": "Clocks", "Children": [
              {"Text": "Bus Speed", "Value": "100.0 MHz"},
              {"Text": "CPU Core #1", "Value": "4700.0 MHz"},
              {"Text": "CPU Core #2", "Value": "4500.0 MHz"}
            ]},
            {"Text": "Temperatures", "Children": [
              {"Text": "CPU Core #1", "Value": "50.0 °C"},
              {"Text": "CPU Package", "Value": "52.0 °C"},
              {"Text": "Core Average", "Value": "48.5 °C"}
            ]},
            {"Text": "Load", "Children": [
              {"Text": "CPU Total", "Value": "12.5 %"},
              {"Text": "CPU Core #1", "Value": "10.0 %"}
            ]},
            {"Text": "Powers", "Children": [
              {"Text": "CPU Package", "Value": "35.2 W"},
              {"Text": "CPU Cores", "Value": "30.1 W"}
            ]}
          ]
        },
        {
          "Text": "Generic Memory",
          "Children": [
            {"Text": "Load", "Children": [
              {"Text": "Memory", "Value": "45.0 %"}
            ]},
            {"Text": "Data", "Children": [
              {"Text": "Memory Used", "Value": "7.2 GB"},
              {"Text": "Memory Available", "Value": "8.8 GB"}
            ]}
          ]
        },
        {
          "Text": "NVIDIA GeForce RTX 3060",
          "Children": [
            {"Text": "Temperatures", "Children": [
              {"Text": "GPU Core", "Value": "41.0 °C"},
              {"Text": "GPU Hot Spot", "Value": "50.0 °C"}
            ]},
            {"Text": "Load", "Children": [
              {"Text": "GPU Core", "Value": "23.0 %"},
              {"Text": "GPU Memory Controller", "Value": "8.0 %"}
            ]}
          ]
        },
        {
          "Text": "WDC WD Blue 2TB",
          "Children": [
            {"Text": "Temperatures", "Children": [
              {"Text": "Temperature", "Value": "33.0 °C"}
            ]},
            {"Text": "Load", "Children": [
              {"Text": "Used Space", "Value": "20.0 %"}
            ]}
          ]
        },
        {
          "Text": "Samsung SSD 970 EVO 1TB",
          "Children": [
            {"Text": "Temperatures", "Children": [
              {"Text": "Temperature", "Value": "38.0 °C"}
            ]},
            {"Text": "Load", "Children": [
              {"Text": "Used Space", "Value": "62.5 %"}
            ]}
          ]
        },
        {
          "Text": "vEthernet (Default Switch)",
          "Children": [
            {"Text": "Throughput", "Children": [
              {"Text": "Upload Speed", "Value": "900.0 KB/s"},
              {"Text": "Download Speed", "Value": "900.0 KB/s"}
            ]}
          ]
        },
        {
          "Text": "Ethernet",
          "Children": [
            {"Text": "Load", "Children": [
              {"Text": "Network Utilization", "Value": "0.5 %"}
            ]},
            {"Text": "Data", "Children": [
              {"Text": "Data Uploaded", "Value": "1.2 GB"},
              {"Text": "Data Downloaded", "Value": "14.8 GB"}
            ]},
            {"Text": "Throughput", "Children": [
              {"Text": "Upload Speed", "Value": "250.0 KB/s"},
              {"Text": "Download Speed", "Value": "2.0 MB/s"}
            ]}
          ]
        }
      ]
    }
  ]
}`

// Desktop decodes DesktopJSON. It panics on error since the fixture is a
// compile-time constant.
func Desktop() *sensor.Node {
	root, err := sensor.Decode([]byte(DesktopJSON))
	if err != nil {
		panic(err)
	}
	return root
}

// Machine wraps hardware nodes in the root → machine levels every tree
// from the monitor carries.
func Machine(hardware ...*sensor.Node) *sensor.Node {
	return sensor.Branch("Sensor", sensor.Branch("TEST-PC", hardware...))
}

// Hardware builds a hardware node from sensor groups.
func Hardware(name string, groups ...*sensor.Node) *sensor.Node {
	return sensor.Branch(name, groups...)
}

// Group builds a sensor group from alternating label/value pairs.
func Group(name string, labelValues ...string) *sensor.Node {
	var sensors []*sensor.Node
	for i := 0; i+1 < len(labelValues); i += 2 {
		sensors = append(sensors, sensor.New(labelValues[i], labelValues[i+1]))
	}
	return sensor.Branch(name, sensors...)
}
