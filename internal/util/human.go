package util

import (
	"fmt"
	"time"
)

var units = []string{"KB", "MB", "GB"}

// Human formats a byte count with binary units.
func Human(n int64) string {
	if n < 1<<10 {
		return fmt.Sprintf("%d B", n)
	}

	v := float64(n) / (1 << 10)
	i := 0
	for v >= 1<<10 && i < len(units)-1 {
		v /= 1 << 10
		i++
	}

	return fmt.Sprintf("%.2f %s", v, units[i])
}

// HumanRate formats the throughput of n bytes read over d.
func HumanRate(n int64, d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return Human(int64(float64(n)/d.Seconds())) + "/s"
}
