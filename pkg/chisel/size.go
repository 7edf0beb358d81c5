package chisel

import (
	"math"
	"strconv"
	"strings"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FormatSize renders a byte count in base-1024 units with the mantissa
// rounded half-to-even to two decimals: 0 -> "0B", 1536 -> "1.5 KB".
func FormatSize(n int64) string {
	if n <= 0 {
		return "0B"
	}

	i := 0
	scale := 1.0
	for i < len(sizeUnits)-1 && float64(n) >= scale*1024 {
		scale *= 1024
		i++
	}

	mantissa := math.RoundToEven(float64(n)/scale*100) / 100
	s := strconv.FormatFloat(mantissa, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + " " + sizeUnits[i]
}
