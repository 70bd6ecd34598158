package downloader

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// LogProgress returns a ProgressFunc that logs a progress bar for name each
// time another quarter of the file has arrived.
func LogProgress(name string) ProgressFunc {
	next := int64(25)
	return func(downloaded, total int64) {
		if total <= 0 {
			return
		}
		pct := downloaded * 100 / total
		if pct < next {
			return
		}
		for next <= pct {
			next += 25
		}
		log.Infof("%s %s", name, RenderProgress(downloaded, total))
	}
}

// RenderProgress draws a fixed-width text progress bar.
func RenderProgress(downloaded, total int64) string {
	if total <= 0 {
		return fmt.Sprintf("%s downloaded", FormatBytes(downloaded))
	}
	if downloaded > total {
		downloaded = total
	}
	const barWidth = 30
	ratio := float64(downloaded) / float64(total)
	filled := int(ratio * barWidth)
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)
	return fmt.Sprintf("[%s] %s / %s (%.1f%%)", bar, FormatBytes(downloaded), FormatBytes(total), ratio*100)
}

// FormatBytes renders a byte count with binary units.
func FormatBytes(value int64) string {
	if value < 0 {
		value = 0
	}
	const unit = 1024
	if value < unit {
		return fmt.Sprintf("%d B", value)
	}
	div := float64(unit)
	exp := 0
	for n := value / unit; n >= unit && exp < 5; n /= unit {
		div *= unit
		exp++
	}
	units := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	return fmt.Sprintf("%.1f %s", float64(value)/div, units[exp])
}
