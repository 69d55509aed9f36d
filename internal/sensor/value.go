package sensor

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// leadingNumberRe matches the numeric token at the start of a value
// string. Both '.' and ',' are accepted as separators so that locale
// formatted values ("45,2 °C", "1,234.5 MHz") parse.
var leadingNumberRe = regexp.MustCompile(`^[+-]?(?:\d[\d.,]*|[.,]\d+)(?:[eE][+-]?\d+)?`)

// ParseValue returns the leading number of a sensor value string such as
// "45.2 °C" or "12.3 MB/s". Empty, malformed or non-numeric-leading input
// yields false; it never panics and never returns NaN or Inf.
func ParseValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	token := leadingNumberRe.FindString(s)
	if token == "" {
		return 0, false
	}

	token = normalizeSeparators(token)
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// normalizeSeparators rewrites a token to Go float syntax. With both
// separators present the comma is a thousands separator; a lone comma is
// the decimal separator.
func normalizeSeparators(token string) string {
	hasDot := strings.Contains(token, ".")
	hasComma := strings.Contains(token, ",")
	switch {
	case hasDot && hasComma:
		return strings.ReplaceAll(token, ",", "")
	case strings.Count(token, ",") > 1:
		return strings.ReplaceAll(token, ",", "")
	case hasComma:
		return strings.Replace(token, ",", ".", 1)
	}
	return token
}
