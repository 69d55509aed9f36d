package sensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"45.2 °C", 45.2, true},
		{"12.3 MB/s", 12.3, true},
		{"4700.0 MHz", 4700, true},
		{"1200 RPM", 1200, true},
		{"  7.5 GB", 7.5, true},
		{"-12.0 °C", -12, true},
		{"45,2 °C", 45.2, true},
		{"1,234.5 MHz", 1234.5, true},
		{"1,234,567 B", 1234567, true},
		{"35W", 35, true},
		{"1e3 RPM", 1000, true},
		{"", 0, false},
		{"   ", 0, false},
		{"N/A", 0, false},
		{"°C 45", 0, false},
		{"-", 0, false},
		{"NaN °C", 0, false},
		{"Inf", 0, false},
		{"1.2.3 V", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseValue(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseValueArbitrarySuffix(t *testing.T) {
	suffixes := []string{"", " °C", " %", " MHz", " W", " KB/s", " whatever (text)", "\tRPM"}
	numbers := map[string]float64{"0": 0, "3.14": 3.14, "100": 100, "0.001": 0.001, "98765.4321": 98765.4321}
	for literal, want := range numbers {
		for _, suffix := range suffixes {
			got, ok := ParseValue(literal + suffix)
			if assert.True(t, ok, "%q", literal+suffix) {
				assert.InDelta(t, want, got, 1e-9, "%q", literal+suffix)
			}
		}
	}
}
