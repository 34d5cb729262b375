package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseNumber converts a raw attribute value to float64. Strings may use a
// comma as decimal separator. Non-finite results are rejected.
func ParseNumber(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", ".")
		if s == "" {
			return 0, fmt.Errorf("empty string")
		}
		var err error
		f, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not a decimal number")
		}
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not finite")
	}
	return f, nil
}
