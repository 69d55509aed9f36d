// Package format renders snapshot readings as display strings. Absent
// readings render as "N/A".
package format

import (
	"fmt"
	"strings"

	"github.com/luki/hwtelemetry/internal/snapshot"
)

// NA is shown for absent readings.
const NA = "N/A"

// Unit is a temperature display unit.
type Unit string

const (
	Celsius    Unit = "celsius"
	Fahrenheit Unit = "fahrenheit"
)

// ParseUnit returns Fahrenheit for "fahrenheit" (any case) and Celsius
// otherwise.
func ParseUnit(s string) Unit {
	if strings.EqualFold(strings.TrimSpace(s), string(Fahrenheit)) {
		return Fahrenheit
	}
	return Celsius
}

// Convert converts a Celsius value to u.
func (u Unit) Convert(celsius float64) float64 {
	if u == Fahrenheit {
		return celsius*9/5 + 32
	}
	return celsius
}

// Symbol returns °F or °C.
func (u Unit) Symbol() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}

// Temp formats a Celsius reading in u, e.g. "48.5°C".
func (u Unit) Temp(r snapshot.Reading) string {
	v, ok := r.Get()
	if !ok {
		return NA
	}
	return fmt.Sprintf("%.1f%s", u.Convert(v), u.Symbol())
}

// Percent formats a percentage, e.g. "12.5%".
func Percent(r snapshot.Reading) string {
	v, ok := r.Get()
	if !ok {
		return NA
	}
	return fmt.Sprintf("%.1f%%", v)
}

// Memory formats used and total GB as "7.2/16.0 GB (45.0%)".
func Memory(used, total snapshot.Reading) string {
	u, ok1 := used.Get()
	t, ok2 := total.Get()
	if !ok1 || !ok2 || t <= 0 {
		return NA
	}
	return fmt.Sprintf("%.1f/%.1f GB (%.1f%%)", u, t, u/t*100)
}

// Speed formats a rate in Mbps, switching to Gbps above 1000.
func Speed(r snapshot.Reading) string {
	v, ok := r.Get()
	if !ok {
		return NA
	}
	if v > 1000 {
		return fmt.Sprintf("%.2f Gbps", v/1000)
	}
	return fmt.Sprintf("%.1f Mbps", v)
}

// Power formats watts, e.g. "35.2W".
func Power(r snapshot.Reading) string {
	v, ok := r.Get()
	if !ok {
		return NA
	}
	return fmt.Sprintf("%.1fW", v)
}

// Clock formats a clock in MHz, e.g. "4600 MHz".
func Clock(r snapshot.Reading) string {
	v, ok := r.Get()
	if !ok {
		return NA
	}
	return fmt.Sprintf("%.0f MHz", v)
}

// GB formats a size, e.g. "625.0 GB".
func GB(r snapshot.Reading) string {
	v, ok := r.Get()
	if !ok {
		return NA
	}
	return fmt.Sprintf("%.1f GB", v)
}

// Value formats a metric value by kind, without unit conversion for
// anything but temperatures.
func (u Unit) Value(kind snapshot.Kind, v float64) string {
	r := snapshot.Of(v)
	switch kind {
	case snapshot.KindTemperature:
		return u.Temp(r)
	case snapshot.KindPercent:
		return Percent(r)
	case snapshot.KindClock:
		return Clock(r)
	case snapshot.KindPower:
		return Power(r)
	case snapshot.KindSize:
		return GB(r)
	case snapshot.KindRate:
		return Speed(r)
	case snapshot.KindFan:
		return fmt.Sprintf("%.0f RPM", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}
