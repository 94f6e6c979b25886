package pdf

import (
	"strconv"
	"strings"
)

// FormatDecimal prints a number with a decimal comma.
func FormatDecimal(v float64, places int) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', places, 64), ".", ",", 1)
}

func FormatTemperature(v float64) string {
	return FormatDecimal(v, 1) + " C"
}
