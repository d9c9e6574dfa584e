package cli

import (
	"fmt"
	"time"
)

// FormatBytes renders a byte count with a binary unit, "2.4 KB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// FormatDuration renders d compactly: "850ms", "4.2s", "2m5.5s".
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		mins := int(d.Minutes())
		rest := d - time.Duration(mins)*time.Minute
		return fmt.Sprintf("%dm%.1fs", mins, rest.Seconds())
	}
}
