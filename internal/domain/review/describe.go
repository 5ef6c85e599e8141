package review

import (
	"fmt"
	"math"
)

// IntervalDescription renders an interval in days as a short label.
func IntervalDescription(days int) string {
	switch {
	case days < 1:
		return "New"
	case days == 1:
		return "Tomorrow"
	case days < 7:
		return fmt.Sprintf("%d days", days)
	case days < 30:
		return plural(roundDiv(days, 7), "week")
	case days < 365:
		return plural(roundDiv(days, 30), "month")
	default:
		return plural(roundDiv(days, 365), "year")
	}
}

func roundDiv(n, d int) int {
	return int(math.Round(float64(n) / float64(d)))
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
