package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SafeNumber coerces an arbitrary decoded JSON value to a finite float64.
// nil, NaN, ±Inf and non-numeric strings all collapse to def. It never
// panics regardless of input type.
func SafeNumber(value interface{}, def float64) float64 {
	if value == nil {
		return def
	}

	var num float64
	switch v := value.(type) {
	case float64:
		num = v
	case float32:
		num = float64(v)
	case int:
		num = float64(v)
	case int8:
		num = float64(v)
	case int16:
		num = float64(v)
	case int32:
		num = float64(v)
	case int64:
		num = float64(v)
	case uint:
		num = float64(v)
	case uint8:
		num = float64(v)
	case uint16:
		num = float64(v)
	case uint32:
		num = float64(v)
	case uint64:
		num = float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return def
		}
		num = parsed
	case fmt.Stringer:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		if err != nil {
			return def
		}
		num = parsed
	default:
		return def
	}

	if math.IsNaN(num) || math.IsInf(num, 0) {
		return def
	}
	return num
}

// SafeFixed renders a value with a fixed number of decimals, coercing first.
func SafeFixed(value interface{}, digits int) string {
	return strconv.FormatFloat(SafeNumber(value, 0), 'f', digits, 64)
}
