package usage

import (
	"fmt"
	"strconv"
	"strings"
)

// HumanTokens shortens token counts with K/M suffixes for log lines and
// the usage summary.
func HumanTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return trimScaled(float64(n)/1_000_000) + "M"
	case n >= 1_000:
		return trimScaled(float64(n)/1_000) + "K"
	default:
		return strconv.Itoa(n)
	}
}

// FormatCost renders a USD amount at micro-dollar precision, the scale
// individual haiku-class calls land at.
func FormatCost(usd float64) string {
	return fmt.Sprintf("$%.6f", usd)
}

func trimScaled(value float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.1f", value), ".0")
}
